package store

import (
	"context"
	"sort"
	"sync"

	"github.com/serroba/url-shortener/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository.
// It enforces the same uniqueness rules as the SQL stores.
type MemoryStore struct {
	mu     sync.RWMutex
	seq    int64
	urls   map[shortener.Code]memoryRecord
	hashes map[shortener.URLHash]shortener.Code
}

type memoryRecord struct {
	seq int64
	url shortener.ShortURL
}

// NewMemoryStore creates a new in-memory URL store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		urls:   make(map[shortener.Code]memoryRecord),
		hashes: make(map[shortener.URLHash]shortener.Code),
	}
}

func (m *MemoryStore) Save(_ context.Context, shortURL *shortener.ShortURL) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.urls[shortURL.Code]; ok {
		return shortener.ErrConflict
	}

	if _, ok := m.hashes[shortURL.URLHash]; ok {
		return shortener.ErrConflict
	}

	m.seq++
	m.urls[shortURL.Code] = memoryRecord{seq: m.seq, url: *shortURL}
	m.hashes[shortURL.URLHash] = shortURL.Code

	return nil
}

func (m *MemoryStore) GetByCode(_ context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.urls[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	url := rec.url

	return &url, nil
}

func (m *MemoryStore) GetByHash(_ context.Context, hash shortener.URLHash) (*shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	code, ok := m.hashes[hash]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	url := m.urls[code].url

	return &url, nil
}

func (m *MemoryStore) List(_ context.Context, limit int) ([]*shortener.ShortURL, error) {
	m.mu.RLock()
	records := make([]memoryRecord, 0, len(m.urls))

	for _, rec := range m.urls {
		records = append(records, rec)
	}
	m.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.url.CreatedAt.Equal(b.url.CreatedAt) {
			return a.url.CreatedAt.After(b.url.CreatedAt)
		}

		return a.seq > b.seq
	})

	if limit >= 0 && len(records) > limit {
		records = records[:limit]
	}

	urls := make([]*shortener.ShortURL, 0, len(records))
	for i := range records {
		urls = append(urls, &records[i].url)
	}

	return urls, nil
}

func (m *MemoryStore) Clear(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := int64(len(m.urls))
	m.urls = make(map[shortener.Code]memoryRecord)
	m.hashes = make(map[shortener.URLHash]shortener.Code)

	return deleted, nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}

var _ shortener.Repository = (*MemoryStore)(nil)
