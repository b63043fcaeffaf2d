package db

import (
	"fmt"
	"strings"

	"rom-checker/catalog"

	"gorm.io/gorm/clause"
)

// StoreFile upserts the scanned file by path.
func (s *Store) StoreFile(file catalog.ScannedFile) error {
	row := newFileRow(file)
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("store file %s: %w", file.Path, err)
	}
	return nil
}

// ClearFilesByBasePath deletes every scanned file of the partition.
func (s *Store) ClearFilesByBasePath(basePath string) error {
	if err := s.db.Where("base_path = ?", basePath).Delete(&FileRow{}).Error; err != nil {
		return fmt.Errorf("clear files of %s: %w", basePath, err)
	}
	return nil
}

// FilesByBasePath returns the partition ordered by path.
func (s *Store) FilesByBasePath(basePath string) ([]catalog.ScannedFile, error) {
	var rows []FileRow
	if err := s.db.Where("base_path = ?", basePath).Order("path").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("files of %s: %w", basePath, err)
	}
	return toScannedFiles(rows), nil
}

// FilesUnderBasePath returns the partition and every partition nested below it.
// The prefix comparison is case-sensitive, unlike LIKE.
func (s *Store) FilesUnderBasePath(basePath string) ([]catalog.ScannedFile, error) {
	prefix := strings.TrimSuffix(basePath, "/") + "/"
	var rows []FileRow
	err := s.db.
		Where("base_path = ? OR substr(base_path, 1, length(?)) = ?", basePath, prefix, prefix).
		Order("path").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("files under %s: %w", basePath, err)
	}
	return toScannedFiles(rows), nil
}

// DeleteFile removes a single scanned file.
func (s *Store) DeleteFile(path string) error {
	if err := s.db.Where("path = ?", path).Delete(&FileRow{}).Error; err != nil {
		return fmt.Errorf("delete file %s: %w", path, err)
	}
	return nil
}

func toScannedFiles(rows []FileRow) []catalog.ScannedFile {
	files := make([]catalog.ScannedFile, len(rows))
	for i, row := range rows {
		files[i] = row.toScannedFile()
	}
	return files
}
