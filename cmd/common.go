package cmd

import (
	"fmt"

	"rom-checker/cache"
	"rom-checker/catalog"
	"rom-checker/config"
	"rom-checker/datfile"
	"rom-checker/db"

	"github.com/gofrs/flock"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// session is an opened storage backend for the length of one command.
type session struct {
	storage   string
	cachePath string
	index     *cache.Index
	store     *db.Store
	lock      *flock.Flock
	dirty     bool
	log       *zap.SugaredLogger
}

// openMode selects whether a missing backend is an error or gets created.
type openMode int

const (
	openExisting openMode = iota
	createNew
)

// openSession opens the backend named by storage. Cache sessions hold the
// cache lock until Close.
func openSession(c config.Config, storage string, mode openMode, log *zap.SugaredLogger) (*session, error) {
	s := &session{storage: storage, cachePath: c.CachePath, log: log}
	switch storage {
	case config.StorageCache:
		s.lock = flock.New(c.CachePath + ".lock")
		ok, err := s.lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire cache lock: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("cache %s is in use by another romcheck process", c.CachePath)
		}
		if mode == createNew {
			s.index = cache.New(log)
		} else {
			s.index, err = cache.Open(c.CachePath, log)
			if err != nil {
				_ = s.lock.Unlock()
				return nil, err
			}
		}
		log.Debugw("Cache opened", zap.String("path", c.CachePath))
	case config.StorageDatabase:
		var err error
		if mode == createNew {
			s.store, err = db.Create(c.DatabasePath, log)
		} else {
			s.store, err = db.Open(c.DatabasePath, log)
		}
		if err != nil {
			return nil, err
		}
		log.Debugw("Database opened", zap.String("path", c.DatabasePath))
	default:
		return nil, fmt.Errorf("unknown storage %q", storage)
	}
	return s, nil
}

// backend returns the opened storage as a catalog backend.
func (s *session) backend() catalog.Backend {
	if s.index != nil {
		return s.index
	}
	return s.store
}

// markDirty records that the cache must be written back on Close.
func (s *session) markDirty() {
	s.dirty = true
}

// importDat parses the DAT file and merges it into the backend.
func (s *session) importDat(path string) (catalog.DataFile, error) {
	data, err := datfile.ParseFile(path)
	if err != nil {
		return catalog.DataFile{}, err
	}
	if s.index != nil {
		s.index.Merge(data)
		s.markDirty()
	} else if err := s.store.Merge(data); err != nil {
		return catalog.DataFile{}, err
	}
	s.log.Infow("Imported DAT file",
		zap.String("path", path),
		zap.String("name", data.Header.Name),
		zap.Int("games", len(data.Games)),
	)
	return data, nil
}

// Close saves a modified cache and releases the backend.
func (s *session) Close() error {
	var err error
	if s.index != nil {
		if s.dirty {
			if saveErr := s.index.Save(s.cachePath); saveErr != nil {
				err = multierr.Append(err, saveErr)
			} else {
				s.log.Debugw("Cache saved", zap.String("path", s.cachePath))
			}
		}
	}
	if s.store != nil {
		err = multierr.Append(err, s.store.Close())
	}
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); unlockErr != nil {
			s.log.Warnw("Failed to release cache lock", zap.Error(unlockErr))
		}
	}
	return err
}

// stats returns the catalog counts of the opened backend.
func (s *session) stats() (games, roms, files int, err error) {
	if s.index != nil {
		st := s.index.Stats()
		return st.Games, st.Roms, st.Files, nil
	}
	st, err := s.store.Stats()
	if err != nil {
		return 0, 0, 0, err
	}
	return st.Games, st.Roms, st.Files, nil
}
