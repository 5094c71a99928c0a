package shortener_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/serroba/url-shortener/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// sequence returns a generator yielding codes in order and counting draws.
func sequence(codes ...string) (shortener.CodeGenerator, *int) {
	calls := 0

	return func() string {
		code := codes[calls%len(codes)]
		calls++

		return code
	}, &calls
}

// hookRepo wraps a MemoryStore and lets tests interfere with individual calls.
type hookRepo struct {
	*store.MemoryStore
	beforeSave func(ctx context.Context, shortURL *shortener.ShortURL)
	saveErr    error
	hashErr    error
	codeErr    error
	listErr    error
	clearErr   error
	codeReads  int
	listLimit  int
}

func newHookRepo() *hookRepo {
	return &hookRepo{MemoryStore: store.NewMemoryStore()}
}

func (h *hookRepo) Save(ctx context.Context, shortURL *shortener.ShortURL) error {
	if h.beforeSave != nil {
		h.beforeSave(ctx, shortURL)
	}

	if h.saveErr != nil {
		return h.saveErr
	}

	return h.MemoryStore.Save(ctx, shortURL)
}

func (h *hookRepo) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	h.codeReads++

	if h.codeErr != nil {
		return nil, h.codeErr
	}

	return h.MemoryStore.GetByCode(ctx, code)
}

func (h *hookRepo) GetByHash(ctx context.Context, hash shortener.URLHash) (*shortener.ShortURL, error) {
	if h.hashErr != nil {
		return nil, h.hashErr
	}

	return h.MemoryStore.GetByHash(ctx, hash)
}

func (h *hookRepo) List(ctx context.Context, limit int) ([]*shortener.ShortURL, error) {
	h.listLimit = limit

	if h.listErr != nil {
		return nil, h.listErr
	}

	return h.MemoryStore.List(ctx, limit)
}

func (h *hookRepo) Clear(ctx context.Context) (int64, error) {
	if h.clearErr != nil {
		return 0, h.clearErr
	}

	return h.MemoryStore.Clear(ctx)
}

type fakeRecorder struct {
	mu         sync.Mutex
	shorten    map[string]int
	resolve    map[string]int
	collisions int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{shorten: map[string]int{}, resolve: map[string]int{}}
}

func (f *fakeRecorder) ShortenDone(outcome string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shorten[outcome]++
}

func (f *fakeRecorder) ResolveDone(outcome string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolve[outcome]++
}

func (f *fakeRecorder) CodeCollision() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collisions++
}

func seededService(repo shortener.Repository, opts ...shortener.Option) *shortener.Service {
	return shortener.NewService(repo, shortener.NewRandGenerator(rand.New(rand.NewPCG(7, 11))), opts...)
}

func TestService_Shorten(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves back to the original url", func(t *testing.T) {
		svc := seededService(store.NewMemoryStore())

		for i := 0; i < 100; i++ {
			url := fmt.Sprintf("https://example.com/page/%d?q=%d", i, i*i)

			shortURL, created, err := svc.Shorten(ctx, url)
			require.NoError(t, err)
			assert.True(t, created)
			assert.True(t, shortURL.Code.Valid())

			got, err := svc.Resolve(ctx, string(shortURL.Code))
			require.NoError(t, err)
			assert.Equal(t, url, got.OriginalURL)
		}
	})

	t.Run("same url twice yields the same code", func(t *testing.T) {
		svc := seededService(store.NewMemoryStore())

		first, created1, err := svc.Shorten(ctx, "https://example.com/a/b")
		require.NoError(t, err)

		second, created2, err := svc.Shorten(ctx, "https://example.com/a/b")
		require.NoError(t, err)

		assert.Equal(t, first.Code, second.Code)
		assert.True(t, created1)
		assert.False(t, created2)
	})

	t.Run("different urls get different codes", func(t *testing.T) {
		svc := seededService(store.NewMemoryStore())

		a, _, err := svc.Shorten(ctx, "https://example.com/path")
		require.NoError(t, err)
		b, _, err := svc.Shorten(ctx, "https://example.com/path/")
		require.NoError(t, err)

		assert.NotEqual(t, a.Code, b.Code)
	})

	t.Run("stores hash and creation time", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		svc := seededService(store.NewMemoryStore(), shortener.WithClock(func() time.Time { return now }))

		shortURL, _, err := svc.Shorten(ctx, "https://example.com")
		require.NoError(t, err)

		assert.Equal(t, shortener.HashURL("https://example.com"), shortURL.URLHash)
		assert.Equal(t, now, shortURL.CreatedAt)
	})

	t.Run("rejects invalid url without touching the store", func(t *testing.T) {
		repo := newHookRepo()
		svc := seededService(repo)

		shortURL, _, err := svc.Shorten(ctx, "not-a-valid-url")

		assert.Nil(t, shortURL)
		assert.ErrorIs(t, err, shortener.ErrInvalidURL)
		assert.Zero(t, repo.codeReads)
	})

	t.Run("retries on collision", func(t *testing.T) {
		mem := store.NewMemoryStore()
		require.NoError(t, mem.Save(ctx, &shortener.ShortURL{
			Code: "taken1", OriginalURL: "https://taken.com", URLHash: shortener.HashURL("https://taken.com"),
		}))

		gen, calls := sequence("taken1", "fresh1")
		rec := newFakeRecorder()
		svc := shortener.NewService(mem, gen, shortener.WithRecorder(rec))

		shortURL, created, err := svc.Shorten(ctx, "https://example.com")

		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, shortener.Code("fresh1"), shortURL.Code)
		assert.Equal(t, 2, *calls)
		assert.Equal(t, 1, rec.collisions)
	})

	t.Run("skips reserved and malformed candidates", func(t *testing.T) {
		gen, calls := sequence("health", "bad!!!", "short", "good01")
		svc := shortener.NewService(store.NewMemoryStore(), gen)

		shortURL, _, err := svc.Shorten(ctx, "https://example.com")

		require.NoError(t, err)
		assert.Equal(t, shortener.Code("good01"), shortURL.Code)
		assert.Equal(t, 4, *calls)
	})

	t.Run("fails after the attempt bound", func(t *testing.T) {
		mem := store.NewMemoryStore()
		require.NoError(t, mem.Save(ctx, &shortener.ShortURL{
			Code: "taken1", OriginalURL: "https://taken.com", URLHash: shortener.HashURL("https://taken.com"),
		}))

		gen, calls := sequence("taken1")
		rec := newFakeRecorder()
		svc := shortener.NewService(mem, gen, shortener.WithRecorder(rec))

		shortURL, _, err := svc.Shorten(ctx, "https://example.com")

		assert.Nil(t, shortURL)
		assert.ErrorIs(t, err, shortener.ErrCodeExhausted)
		assert.Equal(t, shortener.MaxAttempts, *calls)
		assert.Equal(t, shortener.MaxAttempts, rec.collisions)
		assert.Equal(t, 1, rec.shorten[shortener.OutcomeError])
	})

	t.Run("returns the winner when a concurrent insert stored the same url", func(t *testing.T) {
		repo := newHookRepo()
		repo.beforeSave = func(ctx context.Context, shortURL *shortener.ShortURL) {
			_ = repo.MemoryStore.Save(ctx, &shortener.ShortURL{
				Code:        "rival1",
				OriginalURL: shortURL.OriginalURL,
				URLHash:     shortURL.URLHash,
			})
		}

		gen, _ := sequence("mine01")
		svc := shortener.NewService(repo, gen)

		shortURL, created, err := svc.Shorten(ctx, "https://example.com/race")

		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, shortener.Code("rival1"), shortURL.Code)
	})

	t.Run("draws again when a concurrent insert took the candidate code", func(t *testing.T) {
		repo := newHookRepo()
		raced := false
		repo.beforeSave = func(ctx context.Context, shortURL *shortener.ShortURL) {
			if raced {
				return
			}

			raced = true
			_ = repo.MemoryStore.Save(ctx, &shortener.ShortURL{
				Code:        shortURL.Code,
				OriginalURL: "https://other.com",
				URLHash:     shortener.HashURL("https://other.com"),
			})
		}

		gen, calls := sequence("code01", "code02")
		svc := shortener.NewService(repo, gen)

		shortURL, created, err := svc.Shorten(ctx, "https://example.com/race")

		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, shortener.Code("code02"), shortURL.Code)
		assert.Equal(t, 2, *calls)
	})

	t.Run("surfaces an unexplained uniqueness violation", func(t *testing.T) {
		repo := newHookRepo()
		repo.saveErr = shortener.ErrConflict
		svc := seededService(repo)

		shortURL, _, err := svc.Shorten(ctx, "https://example.com")

		assert.Nil(t, shortURL)
		assert.ErrorIs(t, err, shortener.ErrConflict)
	})

	t.Run("propagates hash lookup failure", func(t *testing.T) {
		repo := newHookRepo()
		repo.hashErr = errBoom
		svc := seededService(repo)

		_, _, err := svc.Shorten(ctx, "https://example.com")

		assert.ErrorIs(t, err, errBoom)
	})

	t.Run("propagates code lookup failure", func(t *testing.T) {
		repo := newHookRepo()
		repo.codeErr = errBoom
		svc := seededService(repo)

		_, _, err := svc.Shorten(ctx, "https://example.com")

		assert.ErrorIs(t, err, errBoom)
	})

	t.Run("propagates save failure", func(t *testing.T) {
		repo := newHookRepo()
		repo.saveErr = errBoom
		svc := seededService(repo)

		_, _, err := svc.Shorten(ctx, "https://example.com")

		assert.ErrorIs(t, err, errBoom)
		assert.NotErrorIs(t, err, shortener.ErrConflict)
	})

	t.Run("records outcomes", func(t *testing.T) {
		rec := newFakeRecorder()
		svc := seededService(store.NewMemoryStore(), shortener.WithRecorder(rec))

		_, _, _ = svc.Shorten(ctx, "https://example.com")
		_, _, _ = svc.Shorten(ctx, "https://example.com")
		_, _, _ = svc.Shorten(ctx, "nope")

		assert.Equal(t, 1, rec.shorten[shortener.OutcomeCreated])
		assert.Equal(t, 1, rec.shorten[shortener.OutcomeExisting])
		assert.Equal(t, 1, rec.shorten[shortener.OutcomeInvalid])
	})
}

func TestService_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown code is not found", func(t *testing.T) {
		svc := seededService(store.NewMemoryStore())

		shortURL, err := svc.Resolve(ctx, "ABCDEF")

		assert.Nil(t, shortURL)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("malformed code fails before lookup", func(t *testing.T) {
		for _, code := range []string{"", "abc", "abcdefg", "abc-12", "../../"} {
			repo := newHookRepo()
			svc := seededService(repo)

			_, err := svc.Resolve(ctx, code)

			assert.ErrorIs(t, err, shortener.ErrInvalidCode, code)
			assert.Zero(t, repo.codeReads, code)
		}
	})

	t.Run("wraps store failure", func(t *testing.T) {
		repo := newHookRepo()
		repo.codeErr = errBoom
		rec := newFakeRecorder()
		svc := seededService(repo, shortener.WithRecorder(rec))

		_, err := svc.Resolve(ctx, "abc123")

		assert.ErrorIs(t, err, errBoom)
		assert.NotErrorIs(t, err, shortener.ErrNotFound)
		assert.Equal(t, 1, rec.resolve[shortener.OutcomeError])
	})

	t.Run("records outcomes", func(t *testing.T) {
		rec := newFakeRecorder()
		svc := seededService(store.NewMemoryStore(), shortener.WithRecorder(rec))

		shortURL, _, err := svc.Shorten(ctx, "https://example.com")
		require.NoError(t, err)

		_, _ = svc.Resolve(ctx, string(shortURL.Code))
		_, _ = svc.Resolve(ctx, "ABCDEF")
		_, _ = svc.Resolve(ctx, "bad")

		assert.Equal(t, 1, rec.resolve[shortener.OutcomeFound])
		assert.Equal(t, 1, rec.resolve[shortener.OutcomeNotFound])
		assert.Equal(t, 1, rec.resolve[shortener.OutcomeInvalid])
	})
}

func TestService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("returns newest first", func(t *testing.T) {
		now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		clock := func() time.Time {
			now = now.Add(time.Second)

			return now
		}
		svc := seededService(store.NewMemoryStore(), shortener.WithClock(clock))

		for i := 0; i < 3; i++ {
			_, _, err := svc.Shorten(ctx, fmt.Sprintf("https://example.com/%d", i))
			require.NoError(t, err)
		}

		urls, err := svc.List(ctx, 2)
		require.NoError(t, err)
		require.Len(t, urls, 2)
		assert.Equal(t, "https://example.com/2", urls[0].OriginalURL)
		assert.Equal(t, "https://example.com/1", urls[1].OriginalURL)
	})

	t.Run("applies default and maximum limits", func(t *testing.T) {
		repo := newHookRepo()
		svc := seededService(repo)

		_, err := svc.List(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, shortener.DefaultListLimit, repo.listLimit)

		_, err = svc.List(ctx, -5)
		require.NoError(t, err)
		assert.Equal(t, shortener.DefaultListLimit, repo.listLimit)

		_, err = svc.List(ctx, shortener.MaxListLimit+1)
		require.NoError(t, err)
		assert.Equal(t, shortener.MaxListLimit, repo.listLimit)

		_, err = svc.List(ctx, 25)
		require.NoError(t, err)
		assert.Equal(t, 25, repo.listLimit)
	})

	t.Run("wraps store failure", func(t *testing.T) {
		repo := newHookRepo()
		repo.listErr = errBoom
		svc := seededService(repo)

		_, err := svc.List(ctx, 10)

		assert.ErrorIs(t, err, errBoom)
	})
}

func TestService_Clear(t *testing.T) {
	ctx := context.Background()

	t.Run("removes every mapping", func(t *testing.T) {
		svc := seededService(store.NewMemoryStore())

		a, _, err := svc.Shorten(ctx, "https://example.com/a")
		require.NoError(t, err)
		_, _, err = svc.Shorten(ctx, "https://example.com/b")
		require.NoError(t, err)

		deleted, err := svc.Clear(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)

		urls, err := svc.List(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, urls)

		_, err = svc.Resolve(ctx, string(a.Code))
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("wraps store failure", func(t *testing.T) {
		repo := newHookRepo()
		repo.clearErr = errBoom
		svc := seededService(repo)

		_, err := svc.Clear(ctx)

		assert.ErrorIs(t, err, errBoom)
	})
}

func TestService_Scenario(t *testing.T) {
	ctx := context.Background()
	svc := seededService(store.NewMemoryStore())

	first, _, err := svc.Shorten(ctx, "https://example.com/a/b")
	require.NoError(t, err)
	assert.Len(t, string(first.Code), 6)
	assert.True(t, first.Code.Valid())

	second, _, err := svc.Shorten(ctx, "https://example.com/a/b")
	require.NoError(t, err)
	assert.Equal(t, first.Code, second.Code)

	resolved, err := svc.Resolve(ctx, string(first.Code))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a/b", resolved.OriginalURL)

	if first.Code != "ABCDEF" {
		_, err = svc.Resolve(ctx, "ABCDEF")
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	}
}
