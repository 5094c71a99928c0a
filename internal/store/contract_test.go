package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func mapping(code, url string, createdAt time.Time) *shortener.ShortURL {
	return &shortener.ShortURL{
		Code:        shortener.Code(code),
		OriginalURL: url,
		URLHash:     shortener.HashURL(url),
		CreatedAt:   createdAt,
	}
}

// runRepositoryContract exercises the behaviour every shortener.Repository must share.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) shortener.Repository) {
	t.Helper()

	ctx := context.Background()

	t.Run("save and get by code", func(t *testing.T) {
		repo := newRepo(t)
		want := mapping("abc123", "https://example.com/a", baseTime)

		require.NoError(t, repo.Save(ctx, want))

		got, err := repo.GetByCode(ctx, want.Code)
		require.NoError(t, err)
		assert.Equal(t, want.Code, got.Code)
		assert.Equal(t, want.OriginalURL, got.OriginalURL)
		assert.Equal(t, want.URLHash, got.URLHash)
		assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("save and get by hash", func(t *testing.T) {
		repo := newRepo(t)
		want := mapping("hash01", "https://example.com/hashed", baseTime)

		require.NoError(t, repo.Save(ctx, want))

		got, err := repo.GetByHash(ctx, want.URLHash)
		require.NoError(t, err)
		assert.Equal(t, want.Code, got.Code)
		assert.Equal(t, want.OriginalURL, got.OriginalURL)
	})

	t.Run("duplicate code is a conflict", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, mapping("dup001", "https://old.com", baseTime)))

		err := repo.Save(ctx, mapping("dup001", "https://new.com", baseTime))
		assert.ErrorIs(t, err, shortener.ErrConflict)

		got, err := repo.GetByCode(ctx, "dup001")
		require.NoError(t, err)
		assert.Equal(t, "https://old.com", got.OriginalURL)
	})

	t.Run("duplicate hash is a conflict", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, mapping("first1", "https://same.com", baseTime)))

		err := repo.Save(ctx, mapping("secnd2", "https://same.com", baseTime))
		assert.ErrorIs(t, err, shortener.ErrConflict)

		_, err = repo.GetByCode(ctx, "secnd2")
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("get non-existent returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)

		got, err := repo.GetByCode(ctx, "nope00")
		assert.Nil(t, got)
		assert.ErrorIs(t, err, shortener.ErrNotFound)

		got, err = repo.GetByHash(ctx, shortener.HashURL("https://missing.com"))
		assert.Nil(t, got)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("list returns newest first up to limit", func(t *testing.T) {
		repo := newRepo(t)

		for i := 0; i < 5; i++ {
			m := mapping(fmt.Sprintf("list0%d", i), fmt.Sprintf("https://example.com/%d", i),
				baseTime.Add(time.Duration(i)*time.Second))
			require.NoError(t, repo.Save(ctx, m))
		}

		urls, err := repo.List(ctx, 3)
		require.NoError(t, err)
		require.Len(t, urls, 3)
		assert.Equal(t, shortener.Code("list04"), urls[0].Code)
		assert.Equal(t, shortener.Code("list03"), urls[1].Code)
		assert.Equal(t, shortener.Code("list02"), urls[2].Code)
	})

	t.Run("list breaks timestamp ties by insertion order", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, mapping("tie001", "https://example.com/1", baseTime)))
		require.NoError(t, repo.Save(ctx, mapping("tie002", "https://example.com/2", baseTime)))

		urls, err := repo.List(ctx, 10)
		require.NoError(t, err)
		require.Len(t, urls, 2)
		assert.Equal(t, shortener.Code("tie002"), urls[0].Code)
	})

	t.Run("clear removes everything", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, mapping("clr001", "https://example.com/1", baseTime)))
		require.NoError(t, repo.Save(ctx, mapping("clr002", "https://example.com/2", baseTime)))

		deleted, err := repo.Clear(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)

		urls, err := repo.List(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, urls)

		_, err = repo.GetByCode(ctx, "clr001")
		assert.ErrorIs(t, err, shortener.ErrNotFound)

		_, err = repo.GetByHash(ctx, shortener.HashURL("https://example.com/2"))
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("clear on empty store deletes nothing", func(t *testing.T) {
		repo := newRepo(t)

		deleted, err := repo.Clear(ctx)
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})
}
