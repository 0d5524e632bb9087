package stores

import (
	"context"
	"sync"
	"time"

	"github.com/veloxpay/velox/models"
	"github.com/veloxpay/velox/utils"
)

// IdempotencyStore caches successful responses keyed by the caller-supplied
// idempotency key. Put is first-writer-wins: a key already present is left
// untouched. A miss after eviction is a miss, never an error.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*models.IdempotencyRecord, error)
	Put(ctx context.Context, record *models.IdempotencyRecord) error
	Stats(ctx context.Context) (*models.IdempotencyStats, error)
}

type MemoryIdempotencyStoreConfig struct {
	Retention     time.Duration
	SweepInterval time.Duration
	MaxEntries    int
}

// MemoryIdempotencyStore is the single-instance store: one process-wide
// map, constructed once at startup and passed to the middleware. Entries
// expire after the retention window; a background sweep on a much slower
// cadence reclaims them, and reads check expiry themselves so a not-yet-
// swept stale entry still reads as a miss.
type MemoryIdempotencyStore struct {
	mu      sync.RWMutex
	entries map[string]*models.IdempotencyRecord

	retention  time.Duration
	maxEntries int

	sweepInterval time.Duration
	stop          chan struct{}
	stopOnce      sync.Once
}

func CreateMemoryIdempotencyStore(cfg MemoryIdempotencyStoreConfig) *MemoryIdempotencyStore {
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 5 * time.Minute
	}

	store := &MemoryIdempotencyStore{
		entries:       make(map[string]*models.IdempotencyRecord),
		retention:     cfg.Retention,
		maxEntries:    cfg.MaxEntries,
		sweepInterval: cfg.SweepInterval,
		stop:          make(chan struct{}),
	}

	go store.sweepLoop()

	return store
}

func (s *MemoryIdempotencyStore) Get(ctx context.Context, key string) (*models.IdempotencyRecord, error) {
	s.mu.RLock()
	record, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if time.Since(record.RecordedAt) > s.retention {
		return nil, nil
	}
	return record, nil
}

func (s *MemoryIdempotencyStore) Put(ctx context.Context, record *models.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[record.Key]; exists {
		return nil
	}

	if s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		s.evictOldestLocked()
	}

	s.entries[record.Key] = record
	return nil
}

func (s *MemoryIdempotencyStore) Stats(ctx context.Context) (*models.IdempotencyStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &models.IdempotencyStats{TotalKeys: len(s.entries)}
	for _, record := range s.entries {
		recordedAt := record.RecordedAt
		if stats.OldestEntryTimestamp == nil || recordedAt.Before(*stats.OldestEntryTimestamp) {
			t := recordedAt
			stats.OldestEntryTimestamp = &t
		}
		if stats.NewestEntryTimestamp == nil || recordedAt.After(*stats.NewestEntryTimestamp) {
			t := recordedAt
			stats.NewestEntryTimestamp = &t
		}
	}
	return stats, nil
}

func (s *MemoryIdempotencyStore) Close() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

func (s *MemoryIdempotencyStore) sweepLoop() {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			removed := s.sweep()
			if removed > 0 {
				utils.Debug(context.Background(), "idempotency sweep removed expired entries", map[string]interface{}{
					"removed": removed,
				})
			}
		}
	}
}

func (s *MemoryIdempotencyStore) sweep() int {
	cutoff := time.Now().Add(-s.retention)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, record := range s.entries {
		if record.RecordedAt.Before(cutoff) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

func (s *MemoryIdempotencyStore) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for key, record := range s.entries {
		if oldestKey == "" || record.RecordedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = record.RecordedAt
		}
	}
	if oldestKey != "" {
		delete(s.entries, oldestKey)
	}
}
