package db

import (
	"fmt"
	"sort"
	"strings"

	"rom-checker/catalog"

	"gorm.io/gorm"
)

// RomField names a searchable rom column.
type RomField string

const (
	FieldName RomField = "name"
	FieldCRC  RomField = "crc"
	FieldMD5  RomField = "md5"
	FieldSHA1 RomField = "sha1"
)

// ParseRomField accepts a column name case-insensitively.
func ParseRomField(s string) (RomField, error) {
	switch f := RomField(strings.ToLower(strings.TrimSpace(s))); f {
	case FieldName, FieldCRC, FieldMD5, FieldSHA1:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown rom field %q", catalog.ErrInvalidQuery, s)
	}
}

func (f RomField) isHash() bool {
	return f == FieldCRC || f == FieldMD5 || f == FieldSHA1
}

const selectJoined = "g.name AS game_name, g.category, g.description, r.name AS rom_name, r.size, r.crc, r.md5, r.sha1"

// SearchGames finds games by name. Fuzzy is a case-insensitive substring match.
// Games come back with all their roms, ordered by game name then rom name.
func (s *Store) SearchGames(name string, fuzzy bool) ([]catalog.Game, error) {
	q := s.db.Table("games AS g").
		Select(selectJoined).
		Joins("LEFT JOIN roms AS r ON r.game_name = g.name")
	if fuzzy {
		q = q.Where(`g.name LIKE ? ESCAPE '\'`, "%"+escapeLike(name)+"%")
	} else {
		q = q.Where("g.name = ?", name)
	}

	var rows []joinedRow
	if err := q.Order("g.name, r.name").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("search games: %w", err)
	}

	games := make([]catalog.Game, 0)
	for _, row := range rows {
		if len(games) == 0 || games[len(games)-1].Name != row.GameName {
			games = append(games, row.game())
		}
		if rom, ok := row.rom(); ok {
			last := &games[len(games)-1]
			last.Roms = append(last.Roms, rom)
		}
	}
	return games, nil
}

// SearchByGameName is the exact lookup used while aggregating scan results.
// Results are cached until the next Merge.
func (s *Store) SearchByGameName(name string) ([]catalog.Game, error) {
	if games, ok := s.games.Get(name); ok {
		return cloneGames(games), nil
	}
	games, err := s.SearchGames(name, false)
	if err != nil {
		return nil, err
	}
	s.games.Add(name, games)
	return cloneGames(games), nil
}

// SearchRoms returns the roms matching every predicate, grouped per game.
// Equality predicates come from criteria, substring predicates from fuzzyCriteria.
func (s *Store) SearchRoms(criteria, fuzzyCriteria map[RomField]string) ([]catalog.GameRoms, error) {
	if len(criteria)+len(fuzzyCriteria) == 0 {
		return nil, fmt.Errorf("%w: rom search needs at least one criterion", catalog.ErrInvalidQuery)
	}

	q := s.db.Table("roms AS r").
		Select(selectJoined).
		Joins("JOIN games AS g ON g.name = r.game_name")

	var err error
	if q, err = applyPredicates(q, criteria, false); err != nil {
		return nil, err
	}
	if q, err = applyPredicates(q, fuzzyCriteria, true); err != nil {
		return nil, err
	}

	var rows []joinedRow
	if err := q.Order("g.name, r.name").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("search roms: %w", err)
	}

	results := make([]catalog.GameRoms, 0)
	for _, row := range rows {
		if len(results) == 0 || results[len(results)-1].Game.Name != row.GameName {
			results = append(results, catalog.GameRoms{Game: row.game()})
		}
		if rom, ok := row.rom(); ok {
			last := &results[len(results)-1]
			last.Roms = append(last.Roms, rom)
		}
	}
	return results, nil
}

// SearchByHash is an equality search on the column of the hash type.
func (s *Store) SearchByHash(t catalog.HashType, hash string) ([]catalog.GameRoms, error) {
	field, err := ParseRomField(t.String())
	if err != nil || !field.isHash() {
		return nil, fmt.Errorf("%w: unsupported hash type %q", catalog.ErrInvalidQuery, t)
	}
	return s.SearchRoms(map[RomField]string{field: hash}, nil)
}

func applyPredicates(q *gorm.DB, predicates map[RomField]string, fuzzy bool) (*gorm.DB, error) {
	fields := make([]RomField, 0, len(predicates))
	for f := range predicates {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })

	for _, f := range fields {
		if _, err := ParseRomField(string(f)); err != nil {
			return nil, err
		}
		value := predicates[f]
		if f.isHash() {
			value = catalog.NormalizeHash(value)
		}
		col := "r." + string(f)
		if fuzzy {
			q = q.Where(col+` LIKE ? ESCAPE '\'`, "%"+escapeLike(value)+"%")
		} else {
			q = q.Where(col+" = ?", value)
		}
	}
	return q, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func cloneGames(games []catalog.Game) []catalog.Game {
	out := make([]catalog.Game, len(games))
	for i, g := range games {
		out[i] = g
		out[i].Roms = append([]catalog.Rom(nil), g.Roms...)
	}
	return out
}
