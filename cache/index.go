package cache

import (
	"fmt"
	"sort"
	"strings"

	"rom-checker/catalog"

	"go.uber.org/zap"
)

// romRef addresses a rom inside the game arena without copying it.
type romRef struct {
	game int
	rom  int
}

// Index is the in-memory catalog backend. Games live in an arena; the name and
// hash lookups hold arena positions only, so the arena stays the single source of truth.
type Index struct {
	games []catalog.Game                 // persisted, rebuilt indices derive from it
	files map[string]catalog.ScannedFile // keyed by path

	byName    map[string]int
	hashType  catalog.HashType
	hashBuilt bool
	byHash    map[string][]romRef

	log *zap.SugaredLogger
}

// Stats summarises the index contents.
type Stats struct {
	Games int
	Roms  int
	Files int
}

// New returns an empty index.
func New(log *zap.SugaredLogger) *Index {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Index{
		files:  make(map[string]catalog.ScannedFile),
		byName: make(map[string]int),
		byHash: make(map[string][]romRef),
		log:    log,
	}
}

// Merge appends the delta's games and rebuilds the lookups. Games are not
// deduplicated here: a later game with the same name shadows the earlier one.
func (x *Index) Merge(data catalog.DataFile) {
	for _, game := range data.Games {
		g := game
		g.Roms = make([]catalog.Rom, len(game.Roms))
		for i, rom := range game.Roms {
			g.Roms[i] = rom.Normalize()
		}
		x.games = append(x.games, g)
	}
	x.rebuild()
	x.log.Infow("Merged catalog into cache",
		zap.String("datafile", data.Header.Name),
		zap.Int("games", len(data.Games)),
		zap.Int("total_games", len(x.byName)))
}

func (x *Index) rebuild() {
	x.byName = make(map[string]int, len(x.games))
	for i, game := range x.games {
		x.byName[game.Name] = i
	}
	if x.hashBuilt {
		x.BuildHashIndex(x.hashType)
	}
}

// live reports whether the arena slot is the current holder of its game name.
func (x *Index) live(i int) bool {
	return x.byName[x.games[i].Name] == i
}

// BuildHashIndex rebuilds the hash lookup for exactly one algorithm, discarding
// the index of any previously selected algorithm.
func (x *Index) BuildHashIndex(t catalog.HashType) {
	x.hashType = t
	x.hashBuilt = true
	x.byHash = make(map[string][]romRef)
	for gi, game := range x.games {
		if !x.live(gi) {
			continue
		}
		for ri, rom := range game.Roms {
			h := rom.Hash(t)
			if h == "" {
				continue
			}
			x.byHash[h] = append(x.byHash[h], romRef{game: gi, rom: ri})
		}
	}
	x.log.Debugw("Built hash index", zap.String("hash_type", t.String()), zap.Int("hashes", len(x.byHash)))
}

// HashType returns the algorithm of the current hash index and whether one was built.
func (x *Index) HashType() (catalog.HashType, bool) {
	return x.hashType, x.hashBuilt
}

// SearchByName is an exact game lookup; an absent name yields an empty slice.
func (x *Index) SearchByName(name string) []catalog.Game {
	i, ok := x.byName[name]
	if !ok {
		return []catalog.Game{}
	}
	return []catalog.Game{cloneGame(x.games[i])}
}

// SearchByGameName implements catalog.Searcher.
func (x *Index) SearchByGameName(name string) ([]catalog.Game, error) {
	return x.SearchByName(name), nil
}

// SearchByHash returns the roms whose hash of type t equals hash, grouped per game.
func (x *Index) SearchByHash(t catalog.HashType, hash string) ([]catalog.GameRoms, error) {
	if !x.hashBuilt {
		return nil, fmt.Errorf("%w: no hash index built, requested %s", catalog.ErrTypeMismatch, t)
	}
	if t != x.hashType {
		return nil, fmt.Errorf("%w: index built for %s, requested %s", catalog.ErrTypeMismatch, x.hashType, t)
	}

	groups := make(map[int]*catalog.GameRoms)
	var order []int
	for _, ref := range x.byHash[catalog.NormalizeHash(hash)] {
		group, ok := groups[ref.game]
		if !ok {
			game := x.games[ref.game]
			group = &catalog.GameRoms{Game: catalog.Game{
				Name:        game.Name,
				Category:    game.Category,
				Description: game.Description,
			}}
			groups[ref.game] = group
			order = append(order, ref.game)
		}
		group.Roms = append(group.Roms, x.games[ref.game].Roms[ref.rom])
	}

	results := make([]catalog.GameRoms, 0, len(order))
	for _, gi := range order {
		group := groups[gi]
		sort.SliceStable(group.Roms, func(i, j int) bool { return group.Roms[i].Name < group.Roms[j].Name })
		results = append(results, *group)
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Game.Name < results[j].Game.Name })
	return results, nil
}

// StoreFile upserts a scanned file by path.
func (x *Index) StoreFile(file catalog.ScannedFile) error {
	x.files[file.Path] = file
	return nil
}

// ClearFilesByBasePath removes every scanned file of the partition.
func (x *Index) ClearFilesByBasePath(basePath string) error {
	for path, file := range x.files {
		if file.BasePath == basePath {
			delete(x.files, path)
		}
	}
	return nil
}

// FilesByBasePath returns the partition's files ordered by path.
func (x *Index) FilesByBasePath(basePath string) ([]catalog.ScannedFile, error) {
	return x.collectFiles(func(f catalog.ScannedFile) bool { return f.BasePath == basePath }), nil
}

// FilesUnderBasePath returns files of the partition and of every partition nested below it.
func (x *Index) FilesUnderBasePath(basePath string) ([]catalog.ScannedFile, error) {
	prefix := strings.TrimSuffix(basePath, "/") + "/"
	return x.collectFiles(func(f catalog.ScannedFile) bool {
		return f.BasePath == basePath || strings.HasPrefix(f.BasePath, prefix)
	}), nil
}

// DeleteFile removes one scanned file; deleting an absent path is not an error.
func (x *Index) DeleteFile(path string) error {
	delete(x.files, path)
	return nil
}

// Stats counts live games, their roms, and stored files.
func (x *Index) Stats() Stats {
	stats := Stats{Files: len(x.files)}
	for i, game := range x.games {
		if !x.live(i) {
			continue
		}
		stats.Games++
		stats.Roms += len(game.Roms)
	}
	return stats
}

func (x *Index) collectFiles(keep func(catalog.ScannedFile) bool) []catalog.ScannedFile {
	files := make([]catalog.ScannedFile, 0)
	for _, file := range x.files {
		if keep(file) {
			files = append(files, file)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files
}

func cloneGame(g catalog.Game) catalog.Game {
	out := g
	out.Roms = append([]catalog.Rom(nil), g.Roms...)
	return out
}
