package catalog

// Searcher answers catalog lookups.
type Searcher interface {
	// SearchByGameName is an exact lookup returning zero or one game with all its roms.
	SearchByGameName(name string) ([]Game, error)
	// SearchByHash returns every game with roms whose hash of type t equals hash,
	// ordered by game name then rom name.
	SearchByHash(t HashType, hash string) ([]GameRoms, error)
}

// FileStore persists scan results keyed by path.
type FileStore interface {
	StoreFile(file ScannedFile) error
	ClearFilesByBasePath(basePath string) error
	FilesByBasePath(basePath string) ([]ScannedFile, error)
	FilesUnderBasePath(basePath string) ([]ScannedFile, error)
	DeleteFile(path string) error
}

// Backend is the contract shared by the in-memory index and the SQLite store.
type Backend interface {
	Searcher
	FileStore
}

// HashIndexer is implemented by backends that must prepare a hash index
// before SearchByHash can serve a given algorithm.
type HashIndexer interface {
	BuildHashIndex(t HashType)
}
