package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classfit/backend/internal/domain"
)

func stagedPreview(ttl time.Duration) *domain.ImportPreview {
	now := time.Now()
	return &domain.ImportPreview{
		ID:        uuid.NewString(),
		Context:   domain.ImportContext{Kind: domain.ImportKindStudents, SchoolID: uuid.New()},
		FileName:  "roster.csv",
		Rows:      []domain.ImportRow{{RowNumber: 2, Status: domain.RowStatusValid}},
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestMemoryStore_PutGet(t *testing.T) {
	store := NewMemoryPreviewStore()
	defer store.Close()
	ctx := context.Background()

	preview := stagedPreview(time.Minute)
	require.NoError(t, store.Put(ctx, preview))

	got, err := store.Get(ctx, preview.ID)
	require.NoError(t, err)
	assert.Equal(t, preview.ID, got.ID)

	// Get does not consume.
	_, err = store.Get(ctx, preview.ID)
	assert.NoError(t, err)
}

func TestMemoryStore_PutConflict(t *testing.T) {
	store := NewMemoryPreviewStore()
	defer store.Close()
	ctx := context.Background()

	preview := stagedPreview(time.Minute)
	require.NoError(t, store.Put(ctx, preview))
	assert.ErrorIs(t, store.Put(ctx, preview), ErrPreviewConflict)
}

// An expired preview is indistinguishable from one that never existed.
func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryPreviewStore()
	defer store.Close()
	ctx := context.Background()

	preview := stagedPreview(-time.Second)
	require.NoError(t, store.Put(ctx, preview))

	_, err := store.Get(ctx, preview.ID)
	assert.ErrorIs(t, err, ErrPreviewNotFound)

	_, err = store.Take(ctx, preview.ID)
	assert.ErrorIs(t, err, ErrPreviewNotFound)

	// The dead id can be reused.
	assert.NoError(t, store.Put(ctx, preview))
}

func TestMemoryStore_TakeConsumes(t *testing.T) {
	store := NewMemoryPreviewStore()
	defer store.Close()
	ctx := context.Background()

	preview := stagedPreview(time.Minute)
	require.NoError(t, store.Put(ctx, preview))

	got, err := store.Take(ctx, preview.ID)
	require.NoError(t, err)
	assert.Equal(t, preview.ID, got.ID)

	_, err = store.Take(ctx, preview.ID)
	assert.ErrorIs(t, err, ErrPreviewNotFound)
	_, err = store.Get(ctx, preview.ID)
	assert.ErrorIs(t, err, ErrPreviewNotFound)
}

// Exactly one of many concurrent Take callers wins.
func TestMemoryStore_TakeFirstCallerWins(t *testing.T) {
	store := NewMemoryPreviewStore()
	defer store.Close()
	ctx := context.Background()

	preview := stagedPreview(time.Minute)
	require.NoError(t, store.Put(ctx, preview))

	const callers = 16
	var wg sync.WaitGroup
	wins := make(chan *domain.ImportPreview, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got, err := store.Take(ctx, preview.ID); err == nil {
				wins <- got
			}
		}()
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	assert.Equal(t, 1, count)
}

func TestMemoryStore_RemoveIdempotent(t *testing.T) {
	store := NewMemoryPreviewStore()
	defer store.Close()
	ctx := context.Background()

	preview := stagedPreview(time.Minute)
	require.NoError(t, store.Put(ctx, preview))

	assert.NoError(t, store.Remove(ctx, preview.ID))
	assert.NoError(t, store.Remove(ctx, preview.ID))
	assert.NoError(t, store.Remove(ctx, "never-existed"))

	_, err := store.Get(ctx, preview.ID)
	assert.ErrorIs(t, err, ErrPreviewNotFound)
}

func TestMemoryStore_CountSkipsExpired(t *testing.T) {
	store := NewMemoryPreviewStore()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, stagedPreview(time.Minute)))
	require.NoError(t, store.Put(ctx, stagedPreview(-time.Second)))

	assert.Equal(t, 1, store.Count())
}
