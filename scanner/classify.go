package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rom-checker/catalog"

	"go.uber.org/zap"
)

type candidate struct {
	game string
	rom  string
}

func hashEntry(e entry, t catalog.HashType) (string, error) {
	rc, err := e.open()
	if err != nil {
		return "", fmt.Errorf("%w: open: %v", catalog.ErrIO, err)
	}
	defer rc.Close()
	return catalog.HashReader(rc, t)
}

// process hashes a file that has no stored record, classifies it and stores the
// result. It returns the computed hash and the path now holding the record, or
// empty strings when hashing failed. Only backend errors are returned.
func (r *run) process(e entry) (hash, finalPath string, err error) {
	s := r.s
	t := s.opts.HashType

	hash, herr := hashEntry(e, t)
	if herr != nil {
		r.fail(e.path, herr)
		return "", "", nil
	}
	s.log.Debugw("Hashed file", zap.String("path", e.path), zap.String("hash_type", t.String()), zap.String("hash", hash))

	groups, err := s.backend.SearchByHash(t, hash)
	if err != nil {
		return "", "", fmt.Errorf("search %s %s: %w", t, hash, err)
	}

	var exact, partial []candidate
	for _, g := range groups {
		for _, rom := range g.Roms {
			c := candidate{game: g.Game.Name, rom: rom.Name}
			if rom.Name == e.name {
				exact = append(exact, c)
			} else {
				partial = append(partial, c)
			}
		}
	}

	base := catalog.ScannedFile{
		BasePath: r.outcome.BasePath,
		Path:     e.path,
		Hash:     hash,
		HashType: t,
	}
	result := FileResult{Path: e.path, Hash: hash, HashType: t}

	switch {
	case len(exact) > 0:
		for _, c := range exact {
			if err := r.store(base, catalog.MatchExact, c); err != nil {
				return "", "", err
			}
			if err := r.agg.addExact(c.game, c.rom, e.path); err != nil {
				r.note(err)
			}
			res := result
			res.Status, res.GameName, res.RomName = StatusExact, c.game, c.rom
			r.emit(res)
			if s.opts.FirstMatch {
				break
			}
		}
		if !s.opts.IgnorePartialOnExact {
			// reported only; the exact row stays the stored record
			for _, c := range partial {
				if err := r.agg.addPartial(c.game, c.rom, e.path); err != nil {
					r.note(err)
				}
				res := result
				res.Status, res.GameName, res.RomName = StatusPartial, c.game, c.rom
				r.emit(res)
			}
		}

	case len(partial) == 1:
		c := partial[0]
		var renameErr error
		if s.opts.Rename && e.real {
			target, err := renameToRom(e.path, c.rom)
			if err == nil {
				s.log.Infow("Renamed file", zap.String("from", e.path), zap.String("to", target))
				base.Path = target
				if err := r.store(base, catalog.MatchExact, c); err != nil {
					return "", "", err
				}
				if err := r.agg.addExact(c.game, c.rom, target); err != nil {
					r.note(err)
				}
				res := result
				res.Path, res.PreviousPath = target, e.path
				res.Status, res.GameName, res.RomName = StatusExact, c.game, c.rom
				r.emit(res)
				return hash, target, nil
			}
			renameErr = err
			s.log.Warnw("Failed to rename file", zap.String("path", e.path), zap.String("rom", c.rom), zap.Error(err))
			r.note(fmt.Errorf("%s: %w", e.path, err))
		}
		if err := r.store(base, catalog.MatchPartial, c); err != nil {
			return "", "", err
		}
		if err := r.agg.addPartial(c.game, c.rom, e.path); err != nil {
			r.note(err)
		}
		res := result
		res.Status, res.GameName, res.RomName, res.Err = StatusPartial, c.game, c.rom, renameErr
		r.emit(res)

	case len(partial) > 1:
		names := make([]string, len(partial))
		for i, c := range partial {
			names[i] = c.rom
		}
		for _, c := range partial {
			if err := r.store(base, catalog.MatchPartial, c); err != nil {
				return "", "", err
			}
			if err := r.agg.addPartial(c.game, c.rom, e.path); err != nil {
				r.note(err)
			}
			res := result
			res.Status, res.GameName, res.RomName, res.Candidates = StatusPartial, c.game, c.rom, names
			r.emit(res)
		}

	default:
		if err := r.store(base, catalog.MatchMiss, candidate{}); err != nil {
			return "", "", err
		}
		res := result
		res.Status = StatusMiss
		r.emit(res)
	}
	return hash, e.path, nil
}

func (r *run) store(base catalog.ScannedFile, mt catalog.MatchType, c candidate) error {
	rec := base
	rec.MatchType, rec.GameName, rec.RomName = mt, c.game, c.rom
	if err := r.s.backend.StoreFile(rec); err != nil {
		return fmt.Errorf("store %s: %w", rec.Path, err)
	}
	return nil
}

// renameToRom renames the file in place to the rom name. Rom names with
// directory components and existing targets are refused.
func renameToRom(path, romName string) (string, error) {
	if romName == "" || romName == "." || romName == ".." || strings.ContainsAny(romName, `/\`) {
		return "", fmt.Errorf("rom name %q is not a plain file name", romName)
	}
	target := filepath.Join(filepath.Dir(path), romName)
	if _, err := os.Lstat(target); err == nil {
		return "", fmt.Errorf("rename target %s already exists", target)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: stat rename target: %v", catalog.ErrIO, err)
	}
	if err := os.Rename(path, target); err != nil {
		return "", fmt.Errorf("%w: rename: %v", catalog.ErrIO, err)
	}
	return target, nil
}
