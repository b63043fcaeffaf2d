package catalog

import (
	"fmt"
	"path"
	"strings"
)

// Header describes the reference document a catalog import came from.
type Header struct {
	Name        string
	Description string
	Version     string
}

// DataFile is one catalog import: a header plus the games it declares, in document order.
type DataFile struct {
	Header Header
	Games  []Game
}

// Game is a catalog entry. Name is unique across the catalog; a Game owns its Roms.
type Game struct {
	Name        string
	Category    string
	Description string
	Roms        []Rom
}

// Rom is one expected file of a Game. Empty hash fields mean the hash was not declared.
type Rom struct {
	Name string
	Size int64
	CRC  string
	MD5  string
	SHA1 string
}

// Hash returns the rom's hash for the given algorithm, or "" when it was not declared.
func (r Rom) Hash(t HashType) string {
	switch t {
	case HashCRC:
		return r.CRC
	case HashMD5:
		return r.MD5
	case HashSHA1:
		return r.SHA1
	default:
		return ""
	}
}

// Normalize lowercases and trims the declared hashes so lookups are case-insensitive.
func (r Rom) Normalize() Rom {
	r.CRC = NormalizeHash(r.CRC)
	r.MD5 = NormalizeHash(r.MD5)
	r.SHA1 = NormalizeHash(r.SHA1)
	return r
}

// NormalizeHash returns the canonical (lowercase, trimmed) form of a hex digest.
func NormalizeHash(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// GameRoms groups the roms of one game that satisfied a search.
type GameRoms struct {
	Game Game
	Roms []Rom
}

// MatchType is the persisted classification of a scanned file.
type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchPartial MatchType = "partial"
	MatchMiss    MatchType = "miss"
)

// ParseMatchType accepts the persisted spelling of a match type.
func ParseMatchType(s string) (MatchType, error) {
	switch MatchType(strings.ToLower(strings.TrimSpace(s))) {
	case MatchExact:
		return MatchExact, nil
	case MatchPartial:
		return MatchPartial, nil
	case MatchMiss, "none":
		return MatchMiss, nil
	default:
		return "", fmt.Errorf("unknown match type %q", s)
	}
}

// ScannedFile is the stored result for one file (or archive member) of a scan.
type ScannedFile struct {
	BasePath  string
	Path      string
	Hash      string
	HashType  HashType
	MatchType MatchType
	GameName  string
	RomName   string
}

// FileName is the name used for exact-match comparison: the last element of Path.
// Archive members use forward slashes, so path.Base works for both kinds.
func (f ScannedFile) FileName() string {
	return BaseName(f.Path)
}

// Validate checks the match type invariants.
func (f ScannedFile) Validate() error {
	if f.Path == "" {
		return fmt.Errorf("scanned file: empty path")
	}
	switch f.MatchType {
	case MatchExact:
		if f.GameName == "" || f.RomName == "" {
			return fmt.Errorf("scanned file %s: exact match without game/rom", f.Path)
		}
		if f.FileName() != f.RomName {
			return fmt.Errorf("scanned file %s: exact match but name differs from rom %q", f.Path, f.RomName)
		}
	case MatchPartial:
		if f.GameName == "" || f.RomName == "" {
			return fmt.Errorf("scanned file %s: partial match without game/rom", f.Path)
		}
		if f.FileName() == f.RomName {
			return fmt.Errorf("scanned file %s: partial match but name equals rom %q", f.Path, f.RomName)
		}
	case MatchMiss:
		if f.GameName != "" || f.RomName != "" {
			return fmt.Errorf("scanned file %s: miss with game/rom set", f.Path)
		}
	default:
		return fmt.Errorf("scanned file %s: unknown match type %q", f.Path, f.MatchType)
	}
	return nil
}

// BaseName returns the last element of a real or synthetic archive path.
func BaseName(p string) string {
	return path.Base(strings.ReplaceAll(p, "\\", "/"))
}
