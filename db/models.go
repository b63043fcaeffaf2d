package db

import (
	"rom-checker/catalog"
)

// GameRow is one catalog game.
type GameRow struct {
	Name        string `gorm:"column:name;primaryKey"`
	Category    string `gorm:"column:category"`
	Description string `gorm:"column:description"`
}

func (GameRow) TableName() string { return "games" }

// RomRow is one expected file of a game. Absent hashes are NULL.
type RomRow struct {
	GameName string  `gorm:"column:game_name;primaryKey"`
	Name     string  `gorm:"column:name;primaryKey"`
	Size     int64   `gorm:"column:size"`
	CRC      *string `gorm:"column:crc"`
	MD5      *string `gorm:"column:md5"`
	SHA1     *string `gorm:"column:sha1"`
}

func (RomRow) TableName() string { return "roms" }

// FileRow is a stored scan result, keyed by path.
type FileRow struct {
	Path      string  `gorm:"column:path;primaryKey"`
	BasePath  string  `gorm:"column:base_path"`
	Hash      string  `gorm:"column:hash"`
	HashType  string  `gorm:"column:hash_type"`
	MatchType string  `gorm:"column:match_type"`
	GameName  *string `gorm:"column:game_name"`
	RomName   *string `gorm:"column:rom_name"`
}

func (FileRow) TableName() string { return "scanned_files" }

// joinedRow is one row of the games ⋈ roms projection used by every search.
type joinedRow struct {
	GameName    string  `gorm:"column:game_name"`
	Category    string  `gorm:"column:category"`
	Description string  `gorm:"column:description"`
	RomName     *string `gorm:"column:rom_name"`
	Size        *int64  `gorm:"column:size"`
	CRC         *string `gorm:"column:crc"`
	MD5         *string `gorm:"column:md5"`
	SHA1        *string `gorm:"column:sha1"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func newRomRow(gameName string, rom catalog.Rom) RomRow {
	rom = rom.Normalize()
	return RomRow{
		GameName: gameName,
		Name:     rom.Name,
		Size:     rom.Size,
		CRC:      nullable(rom.CRC),
		MD5:      nullable(rom.MD5),
		SHA1:     nullable(rom.SHA1),
	}
}

func newFileRow(f catalog.ScannedFile) FileRow {
	return FileRow{
		Path:      f.Path,
		BasePath:  f.BasePath,
		Hash:      f.Hash,
		HashType:  f.HashType.String(),
		MatchType: string(f.MatchType),
		GameName:  nullable(f.GameName),
		RomName:   nullable(f.RomName),
	}
}

func (r FileRow) toScannedFile() catalog.ScannedFile {
	mt, err := catalog.ParseMatchType(r.MatchType)
	if err != nil {
		mt = catalog.MatchType(r.MatchType)
	}
	return catalog.ScannedFile{
		BasePath:  r.BasePath,
		Path:      r.Path,
		Hash:      r.Hash,
		HashType:  catalog.HashType(r.HashType),
		MatchType: mt,
		GameName:  deref(r.GameName),
		RomName:   deref(r.RomName),
	}
}

func (r joinedRow) game() catalog.Game {
	return catalog.Game{Name: r.GameName, Category: r.Category, Description: r.Description}
}

// rom reports false for the NULL side of a games LEFT JOIN roms row.
func (r joinedRow) rom() (catalog.Rom, bool) {
	if r.RomName == nil {
		return catalog.Rom{}, false
	}
	rom := catalog.Rom{
		Name: *r.RomName,
		CRC:  deref(r.CRC),
		MD5:  deref(r.MD5),
		SHA1: deref(r.SHA1),
	}
	if r.Size != nil {
		rom.Size = *r.Size
	}
	return rom, true
}
