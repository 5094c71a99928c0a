package shortener

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Code represents a short URL code.
type Code string

// URLHash represents the content hash of a submitted URL.
type URLHash string

// ShortURL is the persisted mapping between a short code and the original URL.
// Mappings are immutable once created.
type ShortURL struct {
	Code        Code
	OriginalURL string
	URLHash     URLHash
	CreatedAt   time.Time
}

var (
	// ErrValidation is the parent of all input validation errors.
	ErrValidation = errors.New("validation failed")

	ErrInvalidURL  = fmt.Errorf("%w: url must be an absolute http or https url", ErrValidation)
	ErrInvalidCode = fmt.Errorf("%w: short code must be %d alphanumeric characters", ErrValidation, CodeLength)

	ErrNotFound      = errors.New("url not found")
	ErrConflict      = errors.New("mapping already exists")
	ErrCodeExhausted = errors.New("no free short code found")
)

// Repository is the persistence contract for mappings.
//
// Save only inserts. Any uniqueness violation on the code or the hash must be
// reported as ErrConflict so callers can recover from insert races.
type Repository interface {
	Save(ctx context.Context, shortURL *ShortURL) error
	GetByCode(ctx context.Context, code Code) (*ShortURL, error)
	GetByHash(ctx context.Context, hash URLHash) (*ShortURL, error)
	// List returns at most limit mappings, newest first.
	List(ctx context.Context, limit int) ([]*ShortURL, error)
	// Clear removes every mapping and reports how many were deleted.
	Clear(ctx context.Context) (int64, error)
}
