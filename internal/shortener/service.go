package shortener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	// MaxAttempts bounds how many candidate codes Shorten draws before giving up.
	MaxAttempts = 10

	DefaultListLimit = 10
	MaxListLimit     = 1000
)

// Outcome labels reported to a Recorder.
const (
	OutcomeCreated  = "created"
	OutcomeExisting = "existing"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeFound    = "found"
	OutcomeError    = "error"
)

// Recorder observes store activity. Implementations must be safe for concurrent use.
type Recorder interface {
	ShortenDone(outcome string)
	ResolveDone(outcome string)
	CodeCollision()
}

type nopRecorder struct{}

func (nopRecorder) ShortenDone(string) {}
func (nopRecorder) ResolveDone(string) {}
func (nopRecorder) CodeCollision()     {}

// Option configures a Service.
type Option func(*Service)

// WithRecorder sets the Recorder notified of shorten and resolve outcomes.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock replaces time.Now as the source of creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service maps long URLs to short codes and back.
// It keeps no mutable state of its own; the repository's unique
// constraints are the guard against concurrent inserts of the same URL.
type Service struct {
	store        Repository
	generateCode CodeGenerator
	recorder     Recorder
	logger       *zap.Logger
	now          func() time.Time
}

// NewService creates a Service over store drawing candidates from generator.
func NewService(store Repository, generator CodeGenerator, opts ...Option) *Service {
	s := &Service{
		store:        store,
		generateCode: generator,
		recorder:     nopRecorder{},
		logger:       zap.NewNop(),
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Shorten returns the mapping for rawURL, creating it when none exists.
// created is false when an existing mapping for the same URL was returned.
func (s *Service) Shorten(ctx context.Context, rawURL string) (*ShortURL, bool, error) {
	shortURL, created, err := s.shorten(ctx, rawURL)

	switch {
	case err == nil && created:
		s.recorder.ShortenDone(OutcomeCreated)
	case err == nil:
		s.recorder.ShortenDone(OutcomeExisting)
	case errors.Is(err, ErrValidation):
		s.recorder.ShortenDone(OutcomeInvalid)
	default:
		s.recorder.ShortenDone(OutcomeError)
	}

	return shortURL, created, err
}

func (s *Service) shorten(ctx context.Context, rawURL string) (*ShortURL, bool, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, false, err
	}

	urlHash := HashURL(rawURL)

	existing, err := s.findByHash(ctx, urlHash)
	if err != nil {
		return nil, false, err
	}

	if existing != nil {
		return existing, false, nil
	}

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		code := Code(s.generateCode())

		free, err := s.codeFree(ctx, code)
		if err != nil {
			return nil, false, err
		}

		if !free {
			s.collision(code, attempt)

			continue
		}

		shortURL := &ShortURL{
			Code:        code,
			OriginalURL: rawURL,
			URLHash:     urlHash,
			CreatedAt:   s.now().UTC(),
		}

		err = s.store.Save(ctx, shortURL)
		if err == nil {
			return shortURL, true, nil
		}

		if !errors.Is(err, ErrConflict) {
			return nil, false, fmt.Errorf("save mapping: %w", err)
		}

		// Lost an insert race. Either another request stored the same URL,
		// or the candidate code was taken in between.
		existing, err = s.findByHash(ctx, urlHash)
		if err != nil {
			return nil, false, err
		}

		if existing != nil {
			return existing, false, nil
		}

		free, err = s.codeFree(ctx, code)
		if err != nil {
			return nil, false, err
		}

		if free {
			return nil, false, fmt.Errorf("save mapping %s: %w", code, ErrConflict)
		}

		s.collision(code, attempt)
	}

	s.logger.Warn("short code generation exhausted", zap.Int("attempts", MaxAttempts))

	return nil, false, fmt.Errorf("%w after %d attempts", ErrCodeExhausted, MaxAttempts)
}

// Resolve returns the mapping for a short code.
// Malformed codes are rejected before the repository is consulted.
func (s *Service) Resolve(ctx context.Context, raw string) (*ShortURL, error) {
	code, err := ParseCode(raw)
	if err != nil {
		s.recorder.ResolveDone(OutcomeInvalid)

		return nil, err
	}

	shortURL, err := s.store.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.recorder.ResolveDone(OutcomeNotFound)

			return nil, err
		}

		s.recorder.ResolveDone(OutcomeError)

		return nil, fmt.Errorf("get mapping %s: %w", code, err)
	}

	s.recorder.ResolveDone(OutcomeFound)

	return shortURL, nil
}

// List returns up to limit mappings, newest first.
// A non-positive limit selects DefaultListLimit; larger limits are capped at MaxListLimit.
func (s *Service) List(ctx context.Context, limit int) ([]*ShortURL, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}

	urls, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}

	return urls, nil
}

// Clear deletes every mapping.
func (s *Service) Clear(ctx context.Context) (int64, error) {
	deleted, err := s.store.Clear(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear mappings: %w", err)
	}

	s.logger.Info("mappings cleared", zap.Int64("deleted", deleted))

	return deleted, nil
}

func (s *Service) findByHash(ctx context.Context, urlHash URLHash) (*ShortURL, error) {
	existing, err := s.store.GetByHash(ctx, urlHash)
	if err == nil {
		return existing, nil
	}

	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}

	return nil, fmt.Errorf("get mapping by hash: %w", err)
}

// codeFree reports whether code is well formed, not reserved and unused.
func (s *Service) codeFree(ctx context.Context, code Code) (bool, error) {
	if !code.Valid() || code.Reserved() {
		return false, nil
	}

	_, err := s.store.GetByCode(ctx, code)
	if err == nil {
		return false, nil
	}

	if errors.Is(err, ErrNotFound) {
		return true, nil
	}

	return false, fmt.Errorf("check code %s: %w", code, err)
}

func (s *Service) collision(code Code, attempt int) {
	s.recorder.CodeCollision()
	s.logger.Debug("short code collision",
		zap.String("code", string(code)),
		zap.Int("attempt", attempt),
	)
}
