package scanner

import (
	"sort"

	"rom-checker/catalog"

	"go.uber.org/zap"
)

// Check re-hashes the files of dir that have a stored record, using each
// record's own algorithm, and reports content changes. Nothing is written.
func (s *Scanner) Check(dir string) (*Outcome, error) {
	base, err := resolveDir(dir)
	if err != nil {
		return nil, err
	}
	s.log.Infow("Checking directory", zap.String("path", base))

	stored, err := s.backend.FilesByBasePath(base)
	if err != nil {
		return nil, err
	}
	known := make(map[string]catalog.ScannedFile, len(stored))
	for _, rec := range stored {
		known[rec.Path] = rec
	}

	r := s.newRun(base)
	err = s.walk(base, func(e entry) error {
		rec, ok := known[e.path]
		if !ok {
			r.emit(FileResult{Path: e.path, Status: StatusNew})
			return nil
		}
		delete(known, e.path)

		hash, err := hashEntry(e, rec.HashType)
		if err != nil {
			r.fail(e.path, err)
			return nil
		}
		res := recordResult(rec)
		if hash != rec.Hash {
			res.Status, res.Hash, res.Expected = StatusHashMismatch, hash, rec.Hash
		}
		r.emit(res)
		return nil
	}, r.fail)
	if err != nil {
		return nil, err
	}

	gone := make([]catalog.ScannedFile, 0, len(known))
	for _, rec := range known {
		gone = append(gone, rec)
	}
	sort.Slice(gone, func(i, j int) bool { return gone[i].Path < gone[j].Path })
	for _, rec := range gone {
		res := recordResult(rec)
		res.Status = StatusGone
		r.emit(res)
	}

	return r.finish(), nil
}

// List reports the stored records of dir without touching the filesystem.
// With Recursive set, nested partitions are included.
func (s *Scanner) List(dir string) (*Outcome, error) {
	base, err := BasePath(dir)
	if err != nil {
		return nil, err
	}

	var files []catalog.ScannedFile
	if s.opts.Recursive {
		files, err = s.backend.FilesUnderBasePath(base)
	} else {
		files, err = s.backend.FilesByBasePath(base)
	}
	if err != nil {
		return nil, err
	}
	s.log.Debugw("Listing stored files", zap.String("path", base), zap.Int("files", len(files)))

	r := s.newRun(base)
	for _, rec := range files {
		r.foldRecord(rec)
		res := recordResult(rec)
		res.Cached = true
		r.emit(res)
	}
	return r.finish(), nil
}
