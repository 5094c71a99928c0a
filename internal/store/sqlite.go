package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/serroba/url-shortener/internal/shortener"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// mappingRecord is the gorm model for the url_mappings table.
type mappingRecord struct {
	ID          uint      `gorm:"primaryKey"`
	ShortCode   string    `gorm:"size:6;not null;uniqueIndex:idx_url_mappings_short_code"`
	OriginalURL string    `gorm:"type:text;not null"`
	ContentHash string    `gorm:"size:64;not null;uniqueIndex:idx_url_mappings_content_hash"`
	CreatedAt   time.Time `gorm:"not null;index:idx_url_mappings_created_at"`
}

func (mappingRecord) TableName() string {
	return "url_mappings"
}

func (r *mappingRecord) toShortURL() *shortener.ShortURL {
	return &shortener.ShortURL{
		Code:        shortener.Code(r.ShortCode),
		OriginalURL: r.OriginalURL,
		URLHash:     shortener.URLHash(r.ContentHash),
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

// SQLiteStore is an embedded SQLite implementation of shortener.Repository.
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLite opens (creating if needed) the SQLite database at path and migrates it.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// SQLite allows a single writer.
	sqlDB.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.Migrate(); err != nil {
		_ = sqlDB.Close()

		return nil, err
	}

	return s, nil
}

// Migrate creates or updates the url_mappings table.
func (s *SQLiteStore) Migrate() error {
	if err := s.db.AutoMigrate(&mappingRecord{}); err != nil {
		return fmt.Errorf("migrate sqlite schema: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, shortURL *shortener.ShortURL) error {
	rec := &mappingRecord{
		ShortCode:   string(shortURL.Code),
		OriginalURL: shortURL.OriginalURL,
		ContentHash: string(shortURL.URLHash),
		CreatedAt:   shortURL.CreatedAt.UTC(),
	}

	err := s.db.WithContext(ctx).Create(rec).Error
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%w: %s", shortener.ErrConflict, err.Error())
		}

		return err
	}

	return nil
}

func (s *SQLiteStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	return s.first(ctx, "short_code = ?", string(code))
}

func (s *SQLiteStore) GetByHash(ctx context.Context, hash shortener.URLHash) (*shortener.ShortURL, error) {
	return s.first(ctx, "content_hash = ?", string(hash))
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*shortener.ShortURL, error) {
	var records []mappingRecord

	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	urls := make([]*shortener.ShortURL, 0, len(records))
	for i := range records {
		urls = append(urls, records[i].toShortURL())
	}

	return urls, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Where("1 = 1").Delete(&mappingRecord{})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

// Ping checks that the database file is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

// Shutdown closes the underlying database.
func (s *SQLiteStore) Shutdown() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

func (s *SQLiteStore) first(ctx context.Context, query string, arg string) (*shortener.ShortURL, error) {
	var rec mappingRecord

	err := s.db.WithContext(ctx).Where(query, arg).Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return rec.toShortURL(), nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var _ shortener.Repository = (*SQLiteStore)(nil)
