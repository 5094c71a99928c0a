package store

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/url-shortener/internal/shortener"
	"go.uber.org/zap"
)

// RedisCacheRepository wraps a Repository with Redis caching for reads.
type RedisCacheRepository struct {
	store   shortener.Repository
	client  redis.UniversalClient
	prefix  string
	hashKey string
	ttl     time.Duration
	logger  *zap.Logger
	// generation advances on every Clear in this process; see fill.
	generation atomic.Uint64
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store shortener.Repository, client redis.UniversalClient, ttl time.Duration, logger *zap.Logger,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:   store,
		client:  client,
		prefix:  "url:",
		hashKey: "url_hashes",
		ttl:     ttl,
		logger:  logger,
	}
}

// Save stores a short URL in the underlying store and updates the cache.
func (r *RedisCacheRepository) Save(ctx context.Context, shortURL *shortener.ShortURL) error {
	if err := r.store.Save(ctx, shortURL); err != nil {
		return err
	}

	// Write-through: update cache after successful save
	r.cacheURL(ctx, shortURL)

	return nil
}

// GetByCode retrieves a short URL by its code, checking cache first.
func (r *RedisCacheRepository) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	if url, err := r.getFromCache(ctx, code); err == nil {
		return url, nil
	}

	gen := r.generation.Load()

	url, err := r.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	r.fill(ctx, url, gen)

	return url, nil
}

// GetByHash retrieves a short URL by its hash, checking the hash index first.
func (r *RedisCacheRepository) GetByHash(ctx context.Context, hash shortener.URLHash) (*shortener.ShortURL, error) {
	code, err := r.client.HGet(ctx, r.hashKey, string(hash)).Result()
	if err == nil {
		if url, err := r.getFromCache(ctx, shortener.Code(code)); err == nil {
			return url, nil
		}
	}

	gen := r.generation.Load()

	url, err := r.store.GetByHash(ctx, hash)
	if err != nil {
		return nil, err
	}

	r.fill(ctx, url, gen)

	return url, nil
}

// List always reads from the underlying store; ordering lives there.
func (r *RedisCacheRepository) List(ctx context.Context, limit int) ([]*shortener.ShortURL, error) {
	return r.store.List(ctx, limit)
}

// Clear deletes all mappings and then drops every cached entry.
// The rows are gone once the store succeeds, so a failed invalidation is logged,
// not returned; stale entries then live until their TTL.
func (r *RedisCacheRepository) Clear(ctx context.Context) (int64, error) {
	deleted, err := r.store.Clear(ctx)
	if err != nil {
		return 0, err
	}

	r.generation.Add(1)

	if err := r.invalidate(ctx); err != nil {
		r.logger.Warn("failed to invalidate redis cache after clear",
			zap.Int64("deleted", deleted),
			zap.Duration("ttl", r.ttl),
			zap.Error(err),
		)
	}

	return deleted, nil
}

// Ping checks the underlying store.
func (r *RedisCacheRepository) Ping(ctx context.Context) error {
	return ping(ctx, r.store)
}

func (r *RedisCacheRepository) invalidate(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()

	keys := []string{r.hashKey}
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return err
	}

	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(code)).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, shortener.ErrNotFound
	}

	var createdAt time.Time

	if ts, ok := result["created_at"]; ok {
		if nanos, err := strconv.ParseInt(ts, 10, 64); err == nil {
			createdAt = time.Unix(0, nanos).UTC()
		}
	}

	return &shortener.ShortURL{
		Code:        shortener.Code(result["code"]),
		OriginalURL: result["original_url"],
		URLHash:     shortener.URLHash(result["url_hash"]),
		CreatedAt:   createdAt,
	}, nil
}

func (r *RedisCacheRepository) cacheURL(ctx context.Context, url *shortener.ShortURL) {
	pipe := r.client.Pipeline()
	key := r.prefix + string(url.Code)

	pipe.HSet(ctx, key, map[string]interface{}{
		"code":         string(url.Code),
		"original_url": url.OriginalURL,
		"url_hash":     string(url.URLHash),
		"created_at":   url.CreatedAt.UnixNano(),
	})

	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	pipe.HSet(ctx, r.hashKey, string(url.URLHash), string(url.Code))

	_, _ = pipe.Exec(ctx)
}

// fill caches a read-through result unless a Clear happened since gen was taken.
func (r *RedisCacheRepository) fill(ctx context.Context, url *shortener.ShortURL, gen uint64) {
	r.cacheURL(ctx, url)

	if r.generation.Load() != gen {
		pipe := r.client.Pipeline()
		pipe.Del(ctx, r.prefix+string(url.Code))
		pipe.HDel(ctx, r.hashKey, string(url.URLHash))
		_, _ = pipe.Exec(ctx)
	}
}

// Shutdown releases the underlying store. The redis client is owned by the caller.
func (r *RedisCacheRepository) Shutdown() error {
	return shutdown(r.store)
}

// Compile-time check.
var _ shortener.Repository = (*RedisCacheRepository)(nil)
