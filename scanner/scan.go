package scanner

import (
	"fmt"
	"sort"

	"rom-checker/catalog"

	"go.uber.org/zap"
)

// Scan classifies every eligible file below dir from scratch. The stored
// records of the partition are cleared first, so repeated scans of an
// unchanged directory store the same records.
func (s *Scanner) Scan(dir string) (*Outcome, error) {
	base, err := resolveDir(dir)
	if err != nil {
		return nil, err
	}
	s.log.Infow("Scanning directory",
		zap.String("path", base),
		zap.String("hash_type", s.opts.HashType.String()),
		zap.Bool("recursive", s.opts.Recursive),
		zap.Bool("archives", s.opts.Archives))

	s.prepareIndex()
	if err := s.backend.ClearFilesByBasePath(base); err != nil {
		return nil, fmt.Errorf("clear stored files: %w", err)
	}

	r := s.newRun(base)
	err = s.walk(base, func(e entry) error {
		_, _, err := r.process(e)
		return err
	}, r.fail)
	if err != nil {
		return nil, err
	}

	out := r.finish()
	s.log.Infow("Scan finished", zap.String("path", base), zap.Int("results", len(out.Files)), zap.Int("games", len(out.Games)))
	return out, nil
}

// Update re-scans dir incrementally. Files with a stored record are trusted
// without hashing. Stored records whose file disappeared are matched by hash
// against the newly seen files: a single candidate is a confirmed rename and
// the stale record is deleted, anything else leaves the record untouched.
func (s *Scanner) Update(dir string) (*Outcome, error) {
	base, err := resolveDir(dir)
	if err != nil {
		return nil, err
	}
	s.log.Infow("Updating directory", zap.String("path", base), zap.String("hash_type", s.opts.HashType.String()))

	s.prepareIndex()
	stored, err := s.backend.FilesByBasePath(base)
	if err != nil {
		return nil, fmt.Errorf("load stored files: %w", err)
	}
	known := make(map[string]catalog.ScannedFile, len(stored))
	for _, rec := range stored {
		known[rec.Path] = rec
	}

	seen := make(map[string][]string)
	r := s.newRun(base)
	err = s.walk(base, func(e entry) error {
		if rec, ok := known[e.path]; ok {
			delete(known, e.path)
			r.foldRecord(rec)
			res := recordResult(rec)
			res.Cached = true
			r.emit(res)
			return nil
		}
		hash, path, err := r.process(e)
		if err != nil {
			return err
		}
		if hash != "" {
			// a fix-mode rename may land on a path whose record is stale
			delete(known, path)
			seen[hash] = append(seen[hash], path)
		}
		return nil
	}, r.fail)
	if err != nil {
		return nil, err
	}

	missing := make([]catalog.ScannedFile, 0, len(known))
	for _, rec := range known {
		missing = append(missing, rec)
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i].Path < missing[j].Path })

	for _, rec := range missing {
		res := recordResult(rec)
		var candidates []string
		if rec.HashType == s.opts.HashType {
			candidates = seen[rec.Hash]
		}
		if len(candidates) == 1 {
			if err := s.backend.DeleteFile(rec.Path); err != nil {
				return nil, fmt.Errorf("delete moved record %s: %w", rec.Path, err)
			}
			s.log.Infow("Detected moved file", zap.String("from", rec.Path), zap.String("to", candidates[0]))
			res.Status, res.Path, res.PreviousPath = StatusMoved, candidates[0], rec.Path
		} else {
			res.Status = StatusGone
			if len(candidates) > 1 {
				res.Candidates = append([]string(nil), candidates...)
				s.log.Infow("Ambiguous rename left untouched", zap.String("path", rec.Path), zap.Int("candidates", len(candidates)))
			}
		}
		r.emit(res)
	}

	return r.finish(), nil
}
