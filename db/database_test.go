package db

import (
	"path/filepath"
	"testing"

	"rom-checker/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Create(filepath.Join(t.TempDir(), "test.db"), zap.NewNop().Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testData() catalog.DataFile {
	return catalog.DataFile{
		Header: catalog.Header{Name: "Test DAT"},
		Games: []catalog.Game{
			{
				Name: "Foo", Category: "Games", Description: "Foo (World)",
				Roms: []catalog.Rom{
					{Name: "foo.bin", Size: 3, CRC: "AAAA0001", SHA1: "S-FOO"},
					{Name: "foo2.bin", Size: 4, CRC: "aaaa0002", SHA1: "s-foo2"},
				},
			},
			{
				Name: "Bar", Category: "Games",
				Roms: []catalog.Rom{
					{Name: "other.bin", Size: 3, CRC: "aaaa0001", SHA1: "s-foo"},
				},
			},
			{
				Name: "Foo_Special 100%", Category: "Demos",
				Roms: []catalog.Rom{{Name: "special.bin", MD5: "m-special"}},
			},
		},
	}
}

func TestOpenMissingDatabase(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.db"), nil)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestCreateThenOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	store, err := Create(path, nil)
	require.NoError(t, err)
	require.NoError(t, store.Merge(testData()))
	require.NoError(t, store.Close())

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	stats, err := reopened.Stats()
	require.NoError(t, err)
	assert.Equal(t, Stats{Games: 3, Roms: 4}, stats)
}

func TestSearchGames(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.Merge(testData()))

	exact, err := store.SearchGames("Foo", false)
	require.NoError(t, err)
	require.Len(t, exact, 1)
	assert.Equal(t, "Foo (World)", exact[0].Description)
	require.Len(t, exact[0].Roms, 2)
	assert.Equal(t, "foo.bin", exact[0].Roms[0].Name)
	assert.Equal(t, "s-foo", exact[0].Roms[0].SHA1, "hashes are stored lowercase")

	fuzzy, err := store.SearchGames("foo", true)
	require.NoError(t, err)
	require.Len(t, fuzzy, 2)
	assert.Equal(t, "Foo", fuzzy[0].Name)
	assert.Equal(t, "Foo_Special 100%", fuzzy[1].Name)

	// LIKE wildcards in the query are literal
	literal, err := store.SearchGames("_Special 100%", true)
	require.NoError(t, err)
	require.Len(t, literal, 1)

	none, err := store.SearchGames("Fo_", true)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearchByGameNameCachePurgedOnMerge(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.Merge(testData()))

	games, err := store.SearchByGameName("Bar")
	require.NoError(t, err)
	require.Len(t, games, 1)
	require.Len(t, games[0].Roms, 1)

	require.NoError(t, store.Merge(catalog.DataFile{Games: []catalog.Game{
		{Name: "Bar", Roms: []catalog.Rom{{Name: "bar1.bin", SHA1: "b1"}, {Name: "bar2.bin", SHA1: "b2"}}},
	}}))

	games, err = store.SearchByGameName("Bar")
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Len(t, games[0].Roms, 2)
}

func TestSearchRoms(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.Merge(testData()))

	_, err := store.SearchRoms(nil, nil)
	assert.ErrorIs(t, err, catalog.ErrInvalidQuery)

	_, err = store.SearchRoms(map[RomField]string{"size": "3"}, nil)
	assert.ErrorIs(t, err, catalog.ErrInvalidQuery)

	byCRC, err := store.SearchRoms(map[RomField]string{FieldCRC: "AAAA0001"}, nil)
	require.NoError(t, err)
	require.Len(t, byCRC, 2)
	assert.Equal(t, "Bar", byCRC[0].Game.Name)
	assert.Equal(t, "Foo", byCRC[1].Game.Name)

	both, err := store.SearchRoms(map[RomField]string{FieldCRC: "aaaa0001"}, map[RomField]string{FieldName: "foo"})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "foo.bin", both[0].Roms[0].Name)

	byName, err := store.SearchRoms(nil, map[RomField]string{FieldName: ".bin"})
	require.NoError(t, err)
	assert.Len(t, byName, 3)
}

func TestSearchByHash(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.Merge(testData()))

	results, err := store.SearchByHash(catalog.HashSHA1, "S-FOO")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Bar", results[0].Game.Name)
	assert.Equal(t, "other.bin", results[0].Roms[0].Name)
	assert.Equal(t, "Foo", results[1].Game.Name)
	assert.Equal(t, "foo.bin", results[1].Roms[0].Name)

	results, err = store.SearchByHash(catalog.HashMD5, "m-special")
	require.NoError(t, err)
	require.Len(t, results, 1)

	results, err = store.SearchByHash(catalog.HashMD5, "s-foo")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMergeReplacesRomsAndKeepsFiles(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.Merge(testData()))

	keep := catalog.ScannedFile{
		BasePath: "/roms", Path: "/roms/foo.bin", Hash: "s-foo", HashType: catalog.HashSHA1,
		MatchType: catalog.MatchExact, GameName: "Foo", RomName: "foo.bin",
	}
	drop := catalog.ScannedFile{
		BasePath: "/roms", Path: "/roms/foo2.bin", Hash: "s-foo2", HashType: catalog.HashSHA1,
		MatchType: catalog.MatchExact, GameName: "Foo", RomName: "foo2.bin",
	}
	require.NoError(t, store.StoreFile(keep))
	require.NoError(t, store.StoreFile(drop))

	require.NoError(t, store.Merge(catalog.DataFile{Games: []catalog.Game{
		{Name: "Foo", Category: "Updated", Roms: []catalog.Rom{{Name: "foo.bin", Size: 3, SHA1: "s-foo"}}},
	}}))

	games, err := store.SearchGames("Foo", false)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Updated", games[0].Category)
	require.Len(t, games[0].Roms, 1)

	files, err := store.FilesByBasePath("/roms")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, keep, files[0])

	// A game reimported without roms loses all of them
	require.NoError(t, store.Merge(catalog.DataFile{Games: []catalog.Game{{Name: "Foo"}}}))
	games, err = store.SearchGames("Foo", false)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Empty(t, games[0].Roms)
}

func TestMergeRollsBackOnFailure(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.Merge(testData()))

	// Without the roms table the stale rom delete fails mid-transaction
	require.NoError(t, store.db.Exec("DROP TABLE scanned_files").Error)
	require.NoError(t, store.db.Exec("DROP TABLE roms").Error)

	err := store.Merge(catalog.DataFile{Games: []catalog.Game{
		{Name: "New Game", Roms: []catalog.Rom{{Name: "n.bin", SHA1: "n"}}},
	}})
	require.Error(t, err)

	var count int64
	require.NoError(t, store.db.Model(&GameRow{}).Where("name = ?", "New Game").Count(&count).Error)
	assert.Zero(t, count)
}

func TestFileOperations(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.Merge(testData()))

	miss := func(base, path string) catalog.ScannedFile {
		return catalog.ScannedFile{BasePath: base, Path: path, Hash: "x", HashType: catalog.HashSHA1, MatchType: catalog.MatchMiss}
	}
	for _, f := range []catalog.ScannedFile{
		miss("/roms", "/roms/b.bin"),
		miss("/roms", "/roms/a.bin"),
		miss("/roms/nes", "/roms/nes/c.bin"),
		miss("/romsets", "/romsets/d.bin"),
		miss("/Roms/x", "/Roms/x/e.bin"),
	} {
		require.NoError(t, store.StoreFile(f))
	}

	// Upsert, not a duplicate key error
	updated := miss("/roms", "/roms/a.bin")
	updated.Hash = "y"
	require.NoError(t, store.StoreFile(updated))

	files, err := store.FilesByBasePath("/roms")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "/roms/a.bin", files[0].Path)
	assert.Equal(t, "y", files[0].Hash)

	under, err := store.FilesUnderBasePath("/roms")
	require.NoError(t, err)
	assert.Len(t, under, 3)

	require.NoError(t, store.DeleteFile("/roms/b.bin"))
	require.NoError(t, store.DeleteFile("/roms/does-not-exist"))
	files, _ = store.FilesByBasePath("/roms")
	assert.Len(t, files, 1)

	require.NoError(t, store.ClearFilesByBasePath("/roms"))
	files, _ = store.FilesByBasePath("/roms")
	assert.Empty(t, files)
	under, _ = store.FilesUnderBasePath("/roms")
	assert.Len(t, under, 1)
}

func TestParseRomField(t *testing.T) {
	tests := []struct {
		input   string
		want    RomField
		wantErr bool
	}{
		{"name", FieldName, false},
		{"CRC", FieldCRC, false},
		{"md5", FieldMD5, false},
		{"Sha1", FieldSHA1, false},
		{"size", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRomField(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, catalog.ErrInvalidQuery)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
