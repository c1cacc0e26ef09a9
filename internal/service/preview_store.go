package service

import (
	"context"
	"sync"
	"time"

	"github.com/classfit/backend/internal/domain"
)

// PreviewStore holds staged previews between creation and consumption.
// Implementations must be safe for concurrent use across distinct preview
// ids; previews are independent and never share state.
type PreviewStore interface {
	// Put inserts under preview.ID; ErrPreviewConflict if the id exists.
	Put(ctx context.Context, preview *domain.ImportPreview) error

	// Get returns the preview, or ErrPreviewNotFound if absent or expired.
	Get(ctx context.Context, id string) (*domain.ImportPreview, error)

	// Take atomically gets and removes the preview, so exactly one caller
	// can ever consume it. ErrPreviewNotFound if absent or expired.
	Take(ctx context.Context, id string) (*domain.ImportPreview, error)

	// Remove deletes the preview. Idempotent: removing an absent or
	// already-removed id is not an error.
	Remove(ctx context.Context, id string) error
}

const sweepInterval = 5 * time.Minute

// MemoryPreviewStore is the in-process PreviewStore. Expiry is enforced on
// every read; a background sweep reclaims memory from abandoned previews.
type MemoryPreviewStore struct {
	mu       sync.RWMutex
	previews map[string]*domain.ImportPreview
	stop     chan struct{}
	stopOnce sync.Once
}

func NewMemoryPreviewStore() *MemoryPreviewStore {
	s := &MemoryPreviewStore{
		previews: make(map[string]*domain.ImportPreview),
		stop:     make(chan struct{}),
	}
	go s.sweep()
	return s
}

func (s *MemoryPreviewStore) Put(_ context.Context, preview *domain.ImportPreview) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.previews[preview.ID]; ok && time.Now().Before(existing.ExpiresAt) {
		return ErrPreviewConflict
	}
	s.previews[preview.ID] = preview
	return nil
}

func (s *MemoryPreviewStore) Get(_ context.Context, id string) (*domain.ImportPreview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	preview, ok := s.previews[id]
	if !ok || time.Now().After(preview.ExpiresAt) {
		return nil, ErrPreviewNotFound
	}
	return preview, nil
}

func (s *MemoryPreviewStore) Take(_ context.Context, id string) (*domain.ImportPreview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	preview, ok := s.previews[id]
	if !ok || time.Now().After(preview.ExpiresAt) {
		return nil, ErrPreviewNotFound
	}
	delete(s.previews, id)
	return preview, nil
}

func (s *MemoryPreviewStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.previews, id)
	return nil
}

// Count returns the number of live previews (for monitoring).
func (s *MemoryPreviewStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	count := 0
	for _, preview := range s.previews {
		if now.Before(preview.ExpiresAt) {
			count++
		}
	}
	return count
}

// Close stops the sweep goroutine.
func (s *MemoryPreviewStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// sweep reclaims expired entries. Correctness never depends on it; Get and
// Take check ExpiresAt themselves.
func (s *MemoryPreviewStore) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			now := time.Now()
			for id, preview := range s.previews {
				if now.After(preview.ExpiresAt) {
					delete(s.previews, id)
				}
			}
			s.mu.Unlock()
		}
	}
}
