package db

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"rom-checker/catalog"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/ncruces/go-sqlite3/gormlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const gameCacheSize = 512

var schema = []string{
	`CREATE TABLE IF NOT EXISTS games (
		name TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		description TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS roms (
		game_name TEXT NOT NULL,
		name TEXT NOT NULL,
		size INTEGER NOT NULL,
		crc TEXT,
		md5 TEXT,
		sha1 TEXT,
		PRIMARY KEY (game_name, name),
		FOREIGN KEY (game_name) REFERENCES games(name) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_roms_crc ON roms(crc)`,
	`CREATE INDEX IF NOT EXISTS idx_roms_md5 ON roms(md5)`,
	`CREATE INDEX IF NOT EXISTS idx_roms_sha1 ON roms(sha1)`,
	`CREATE TABLE IF NOT EXISTS scanned_files (
		path TEXT PRIMARY KEY,
		base_path TEXT NOT NULL,
		hash TEXT NOT NULL,
		hash_type TEXT NOT NULL,
		match_type TEXT NOT NULL,
		game_name TEXT,
		rom_name TEXT,
		FOREIGN KEY (game_name, rom_name) REFERENCES roms(game_name, name) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scanned_files_base_path ON scanned_files(base_path)`,
}

// Store is the SQLite backed catalog and scan store.
type Store struct {
	db    *gorm.DB
	games *lru.Cache[string, []catalog.Game]
	log   *zap.SugaredLogger
}

// Stats counts the rows of each table.
type Stats struct {
	Games int
	Roms  int
	Files int
}

// Open connects to an existing database file and makes sure the schema is present.
func Open(path string, log *zap.SugaredLogger) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: database %s does not exist, initialize the database first", catalog.ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: stat database: %v", catalog.ErrIO, err)
	}
	return open(path, log)
}

// Create opens the database file, creating it when absent.
func Create(path string, log *zap.SugaredLogger) (*Store, error) {
	return open(path, log)
}

func open(path string, log *zap.SugaredLogger) (*Store, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	// Route gorm's own warnings through zap
	newLogger := gormlogger.New(
		zap.NewStdLog(log.Desugar()),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		},
	)

	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	gdb, err := gorm.Open(gormlite.Open(dsn), &gorm.Config{
		Logger:                 newLogger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = gdb.Transaction(func(tx *gorm.DB) error {
		for _, stmt := range schema {
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to create database schema: %w", err)
	}

	games, err := lru.New[string, []catalog.Game](gameCacheSize)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	log.Debugw("Opened database", zap.String("path", path))
	return &Store{db: gdb, games: games, log: log}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Stats counts games, roms and scanned files.
func (s *Store) Stats() (Stats, error) {
	var games, roms, files int64
	if err := s.db.Model(&GameRow{}).Count(&games).Error; err != nil {
		return Stats{}, err
	}
	if err := s.db.Model(&RomRow{}).Count(&roms).Error; err != nil {
		return Stats{}, err
	}
	if err := s.db.Model(&FileRow{}).Count(&files).Error; err != nil {
		return Stats{}, err
	}
	return Stats{Games: int(games), Roms: int(roms), Files: int(files)}, nil
}
