package cache

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"rom-checker/catalog"

	"go.uber.org/zap"
)

// Open loads the cache file at path. A missing file is reported as catalog.ErrNotFound
// so callers can tell the user to initialise the cache first.
func Open(path string, log *zap.SugaredLogger) (*Index, error) {
	x := New(log)
	if err := x.Load(path); err != nil {
		return nil, err
	}
	return x, nil
}

// Load replaces the index contents with the cache file at path. The file holds two
// gob values written back to back: the game arena, then the scanned files. There is
// no header, so a change to either record type breaks existing files.
func (x *Index) Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: cache file %s does not exist, initialize the cache first", catalog.ErrNotFound, path)
		}
		return fmt.Errorf("%w: open cache file: %v", catalog.ErrIO, err)
	}
	defer file.Close()

	dec := gob.NewDecoder(file)
	var games []catalog.Game
	if err := dec.Decode(&games); err != nil {
		return fmt.Errorf("%w: decode games from %s: %v", catalog.ErrCorrupt, path, err)
	}
	var files []catalog.ScannedFile
	if err := dec.Decode(&files); err != nil {
		return fmt.Errorf("%w: decode scanned files from %s: %v", catalog.ErrCorrupt, path, err)
	}

	x.games = games
	x.files = make(map[string]catalog.ScannedFile, len(files))
	for _, f := range files {
		x.files[f.Path] = f
	}
	x.hashBuilt = false
	x.byHash = make(map[string][]romRef)
	x.rebuild()

	x.log.Debugw("Loaded cache file",
		zap.String("path", path),
		zap.Int("games", len(x.byName)),
		zap.Int("files", len(x.files)))
	return nil
}

// Save writes the arena and the scanned files, in that order, through a temp file
// that is renamed over path.
func (x *Index) Save(path string) error {
	files := make([]catalog.ScannedFile, 0, len(x.files))
	for _, f := range x.files {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create cache directory: %v", catalog.ErrIO, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", catalog.ErrIO, err)
	}
	tmpPath := tmp.Name()

	enc := gob.NewEncoder(tmp)
	games := x.games
	if games == nil {
		games = []catalog.Game{}
	}
	if err := enc.Encode(games); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode games: %w", err)
	}
	if err := enc.Encode(files); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode scanned files: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: close temp file: %v", catalog.ErrIO, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: rename temp file: %v", catalog.ErrIO, err)
	}

	x.log.Debugw("Saved cache file", zap.String("path", path), zap.Int("files", len(files)))
	return nil
}
