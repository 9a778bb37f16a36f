package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"crypto_dash/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage persists asset metadata (icon registry). Market data is never stored.
type Storage struct {
	db *gorm.DB
}

// NewStorage creates a new SQLite storage instance at dbPath
func NewStorage(dbPath string) (*Storage, error) {
	// Ensure directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto Migration
	if err := db.AutoMigrate(&domain.AssetInfo{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// DefaultDBPath resolves the database file path under the app data dir
func DefaultDBPath(dataDir string) string {
	return filepath.Join(dataDir, "data", "cryptodash.db")
}

// Close releases the underlying connection pool
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ======================================================================================
// Asset Operations
// ======================================================================================

// UpsertAsset creates or updates asset metadata
func (s *Storage) UpsertAsset(asset *domain.AssetInfo) error {
	return s.db.Save(asset).Error
}

// GetAsset retrieves asset metadata by coin id
func (s *Storage) GetAsset(id string) (*domain.AssetInfo, error) {
	var asset domain.AssetInfo
	err := s.db.First(&asset, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// GetAllAssets retrieves all assets ordered by symbol
func (s *Storage) GetAllAssets() ([]domain.AssetInfo, error) {
	var assets []domain.AssetInfo
	err := s.db.Order("symbol").Find(&assets).Error
	return assets, err
}

// DeleteAsset deletes an asset from the database
func (s *Storage) DeleteAsset(id string) error {
	return s.db.Where("id = ?", id).Delete(&domain.AssetInfo{}).Error
}
