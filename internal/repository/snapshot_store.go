package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"TicketPulse/internal/domain/models"
	"TicketPulse/internal/domain/repository"
	"TicketPulse/pkg/cache"
)

const latestSnapshotKey = "snapshot:latest"

// CacheSnapshotStore keeps the latest dashboard snapshot in a cache.Service.
// With a Redis-backed cache every instance serves the same snapshot.
type CacheSnapshotStore struct {
	cache cache.Service
	ttl   time.Duration

	mu      sync.Mutex
	lastSeq uint64
}

// NewCacheSnapshotStore creates the store. Entries expire after ttl so a dead
// poller does not leave an old snapshot looking current.
func NewCacheSnapshotStore(c cache.Service, ttl time.Duration) repository.SnapshotStore {
	return &CacheSnapshotStore{cache: c, ttl: ttl}
}

// Publish stores s unless a newer snapshot was already stored by this process.
func (s *CacheSnapshotStore) Publish(ctx context.Context, snap *models.DashboardSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.Sequence != 0 && snap.Sequence <= s.lastSeq {
		return nil
	}
	if err := s.cache.Set(ctx, latestSnapshotKey, snap, s.ttl); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	s.lastSeq = snap.Sequence
	return nil
}

func (s *CacheSnapshotStore) Latest(ctx context.Context) (*models.DashboardSnapshot, error) {
	var snap models.DashboardSnapshot
	if err := s.cache.Get(ctx, latestSnapshotKey, &snap); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, repository.ErrNoSnapshot
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return &snap, nil
}

// Clear removes the snapshot. Sequence tracking restarts with the next session.
func (s *CacheSnapshotStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSeq = 0
	if err := s.cache.Delete(ctx, latestSnapshotKey); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}
