// Package scanner walks directories and archives, hashes their files and
// classifies them against a catalog backend.
package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"rom-checker/catalog"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Options control a scanner run.
type Options struct {
	HashType             catalog.HashType
	Recursive            bool
	Archives             bool
	Rename               bool
	FirstMatch           bool
	IgnorePartialOnExact bool
	ExcludeExtensions    []string
}

// DefaultOptions mirrors the command line defaults.
func DefaultOptions() Options {
	return Options{
		HashType:             catalog.HashSHA1,
		FirstMatch:           true,
		IgnorePartialOnExact: true,
		ExcludeExtensions:    []string{"m3u", "dat"},
	}
}

// Observer receives every file result as soon as it is produced.
type Observer func(FileResult)

// Scanner runs Scan, Update, Check and List against one backend.
type Scanner struct {
	backend  catalog.Backend
	opts     Options
	exclude  map[string]bool
	observer Observer
	log      *zap.SugaredLogger
}

// New returns a scanner for the backend.
func New(backend catalog.Backend, opts Options, log *zap.SugaredLogger) *Scanner {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	exclude := make(map[string]bool, len(opts.ExcludeExtensions))
	for _, ext := range opts.ExcludeExtensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			exclude[ext] = true
		}
	}
	return &Scanner{backend: backend, opts: opts, exclude: exclude, log: log}
}

// Observe registers fn to receive file results during the next operations.
func (s *Scanner) Observe(fn Observer) {
	s.observer = fn
}

// Options returns the options the scanner was built with.
func (s *Scanner) Options() Options {
	return s.opts
}

// BasePath returns the partition key for dir: its absolute, cleaned form.
func BasePath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: resolve %s: %v", catalog.ErrIO, dir, err)
	}
	return abs, nil
}

func resolveDir(dir string) (string, error) {
	base, err := BasePath(dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: directory does not exist: %s", catalog.ErrNotFound, base)
		}
		return "", fmt.Errorf("%w: stat %s: %v", catalog.ErrIO, base, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", base)
	}
	return base, nil
}

// prepareIndex makes the backend ready for hash searches of the selected algorithm.
func (s *Scanner) prepareIndex() {
	if idx, ok := s.backend.(catalog.HashIndexer); ok {
		idx.BuildHashIndex(s.opts.HashType)
	}
}

// run holds the state of one operation.
type run struct {
	s       *Scanner
	outcome *Outcome
	agg     *aggregate
	errs    error
}

func (s *Scanner) newRun(base string) *run {
	return &run{
		s:       s,
		outcome: &Outcome{BasePath: base, Files: make([]FileResult, 0)},
		agg:     newAggregate(s.backend, s.log),
	}
}

func (r *run) emit(res FileResult) {
	r.outcome.Files = append(r.outcome.Files, res)
	if r.s.observer != nil {
		r.s.observer(res)
	}
}

// fail records a per-file failure; the walk continues.
func (r *run) fail(path string, err error) {
	r.s.log.Warnw("Failed to process file", zap.String("path", path), zap.Error(err))
	r.errs = multierr.Append(r.errs, fmt.Errorf("%s: %w", path, err))
	r.emit(FileResult{Path: path, Status: StatusFailed, Err: err})
}

// note records an error that belongs to an already emitted result.
func (r *run) note(err error) {
	r.errs = multierr.Append(r.errs, err)
}

func (r *run) foldRecord(rec catalog.ScannedFile) {
	var err error
	switch rec.MatchType {
	case catalog.MatchExact:
		err = r.agg.addExact(rec.GameName, rec.RomName, rec.Path)
	case catalog.MatchPartial:
		err = r.agg.addPartial(rec.GameName, rec.RomName, rec.Path)
	}
	if err != nil {
		r.note(err)
	}
}

func (r *run) finish() *Outcome {
	r.outcome.Games = r.agg.reports()
	r.outcome.Err = r.errs
	return r.outcome
}

func recordResult(rec catalog.ScannedFile) FileResult {
	return FileResult{
		Path:     rec.Path,
		Hash:     rec.Hash,
		HashType: rec.HashType,
		Status:   statusOf(rec.MatchType),
		GameName: rec.GameName,
		RomName:  rec.RomName,
	}
}
