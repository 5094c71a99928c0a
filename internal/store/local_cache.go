package store

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/serroba/url-shortener/internal/shortener"
)

// LocalCacheRepository wraps a Repository with an in-process read cache.
// Only resolved mappings are cached; misses always reach the store.
type LocalCacheRepository struct {
	store shortener.Repository
	cache *cache.Cache
	// generation advances on every Clear; read-throughs that started
	// before a Clear must not leave their result in the cache.
	generation atomic.Uint64
}

// NewLocalCacheRepository creates a cache decorator whose entries expire after ttl.
func NewLocalCacheRepository(store shortener.Repository, ttl time.Duration) *LocalCacheRepository {
	return &LocalCacheRepository{
		store: store,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (l *LocalCacheRepository) Save(ctx context.Context, shortURL *shortener.ShortURL) error {
	if err := l.store.Save(ctx, shortURL); err != nil {
		return err
	}

	l.put(shortURL)

	return nil
}

func (l *LocalCacheRepository) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	if v, ok := l.cache.Get(codeKey(code)); ok {
		url := v.(shortener.ShortURL)

		return &url, nil
	}

	gen := l.generation.Load()

	url, err := l.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	l.fill(url, gen)

	return url, nil
}

func (l *LocalCacheRepository) GetByHash(ctx context.Context, hash shortener.URLHash) (*shortener.ShortURL, error) {
	if v, ok := l.cache.Get(hashKey(hash)); ok {
		url := v.(shortener.ShortURL)

		return &url, nil
	}

	gen := l.generation.Load()

	url, err := l.store.GetByHash(ctx, hash)
	if err != nil {
		return nil, err
	}

	l.fill(url, gen)

	return url, nil
}

func (l *LocalCacheRepository) List(ctx context.Context, limit int) ([]*shortener.ShortURL, error) {
	return l.store.List(ctx, limit)
}

func (l *LocalCacheRepository) Clear(ctx context.Context) (int64, error) {
	deleted, err := l.store.Clear(ctx)
	if err != nil {
		return 0, err
	}

	l.generation.Add(1)
	l.cache.Flush()

	return deleted, nil
}

// Ping checks the underlying store.
func (l *LocalCacheRepository) Ping(ctx context.Context) error {
	return ping(ctx, l.store)
}

// Shutdown releases the underlying store.
func (l *LocalCacheRepository) Shutdown() error {
	return shutdown(l.store)
}

// Len reports the number of cached entries.
func (l *LocalCacheRepository) Len() int {
	return l.cache.ItemCount()
}

func (l *LocalCacheRepository) put(url *shortener.ShortURL) {
	l.cache.SetDefault(codeKey(url.Code), *url)
	l.cache.SetDefault(hashKey(url.URLHash), *url)
}

// fill caches a read-through result unless a Clear happened since gen was taken.
// The check runs after the write so a Clear racing with it is still seen.
func (l *LocalCacheRepository) fill(url *shortener.ShortURL, gen uint64) {
	l.put(url)

	if l.generation.Load() != gen {
		l.cache.Delete(codeKey(url.Code))
		l.cache.Delete(hashKey(url.URLHash))
	}
}

func codeKey(code shortener.Code) string {
	return "code:" + string(code)
}

func hashKey(hash shortener.URLHash) string {
	return "hash:" + string(hash)
}

var _ shortener.Repository = (*LocalCacheRepository)(nil)
