package db

import (
	"fmt"

	"rom-checker/catalog"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const romBatchSize = 500

// Merge imports the data file in a single transaction. Each game row is upserted
// and its roms are replaced by the delta's roms. Roms that survive the import keep
// their scanned_files references; dropped roms cascade to the files matched to them.
func (s *Store) Merge(data catalog.DataFile) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, game := range data.Games {
			if err := mergeGame(tx, game); err != nil {
				return fmt.Errorf("merge game %q: %w", game.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.games.Purge()
	s.log.Infow("Merged catalog into database",
		zap.String("datafile", data.Header.Name),
		zap.Int("games", len(data.Games)))
	return nil
}

func mergeGame(tx *gorm.DB, game catalog.Game) error {
	row := GameRow{Name: game.Name, Category: game.Category, Description: game.Description}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"category", "description"}),
	}).Create(&row).Error
	if err != nil {
		return err
	}

	names := make([]string, 0, len(game.Roms))
	roms := make([]RomRow, 0, len(game.Roms))
	for _, rom := range game.Roms {
		names = append(names, rom.Name)
		roms = append(roms, newRomRow(game.Name, rom))
	}

	stale := tx.Where("game_name = ?", game.Name)
	if len(names) > 0 {
		stale = stale.Where("name NOT IN ?", names)
	}
	if err := stale.Delete(&RomRow{}).Error; err != nil {
		return err
	}

	if len(roms) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "game_name"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"size", "crc", "md5", "sha1"}),
	}).CreateInBatches(&roms, romBatchSize).Error
}
