package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/url-shortener/internal/shortener"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// The UNIQUE constraints back the lookups by code and by hash.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS url_mappings (
	id           BIGSERIAL PRIMARY KEY,
	short_code   VARCHAR(6)  NOT NULL,
	original_url TEXT        NOT NULL,
	content_hash CHAR(64)    NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT url_mappings_short_code_key UNIQUE (short_code),
	CONSTRAINT url_mappings_content_hash_key UNIQUE (content_hash)
);

CREATE INDEX IF NOT EXISTS idx_url_mappings_created_at ON url_mappings (created_at DESC, id DESC);
`

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed URL store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the url_mappings table and its indexes when missing.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate postgres schema: %w", err)
	}

	return nil
}

func (p *PostgresStore) Save(ctx context.Context, shortURL *shortener.ShortURL) error {
	query := `
		INSERT INTO url_mappings (short_code, original_url, content_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := p.pool.Exec(ctx, query,
		string(shortURL.Code),
		shortURL.OriginalURL,
		string(shortURL.URLHash),
		shortURL.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: %s", shortener.ErrConflict, pgErr.ConstraintName)
		}

		return err
	}

	return nil
}

func (p *PostgresStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	query := `
		SELECT short_code, original_url, content_hash, created_at
		FROM url_mappings
		WHERE short_code = $1
	`

	return p.getOne(ctx, query, string(code))
}

func (p *PostgresStore) GetByHash(ctx context.Context, hash shortener.URLHash) (*shortener.ShortURL, error) {
	query := `
		SELECT short_code, original_url, content_hash, created_at
		FROM url_mappings
		WHERE content_hash = $1
	`

	return p.getOne(ctx, query, string(hash))
}

func (p *PostgresStore) List(ctx context.Context, limit int) ([]*shortener.ShortURL, error) {
	query := `
		SELECT short_code, original_url, content_hash, created_at
		FROM url_mappings
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	rows, err := p.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	urls, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*shortener.ShortURL, error) {
		var url shortener.ShortURL

		err := row.Scan(&url.Code, &url.OriginalURL, &url.URLHash, &url.CreatedAt)

		return &url, err
	})
	if err != nil {
		return nil, err
	}

	return urls, nil
}

func (p *PostgresStore) Clear(ctx context.Context) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM url_mappings`)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// Ping checks database connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Shutdown closes the connection pool.
func (p *PostgresStore) Shutdown() error {
	p.pool.Close()

	return nil
}

func (p *PostgresStore) getOne(ctx context.Context, query string, arg string) (*shortener.ShortURL, error) {
	var url shortener.ShortURL

	err := p.pool.QueryRow(ctx, query, arg).Scan(
		&url.Code,
		&url.OriginalURL,
		&url.URLHash,
		&url.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return &url, nil
}

var _ shortener.Repository = (*PostgresStore)(nil)
