package stores

import (
	"context"
	"testing"
	"time"

	"github.com/veloxpay/velox/models"
)

func newStore(t *testing.T, cfg MemoryIdempotencyStoreConfig) *MemoryIdempotencyStore {
	t.Helper()
	store := CreateMemoryIdempotencyStore(cfg)
	t.Cleanup(store.Close)
	return store
}

func record(key string, recordedAt time.Time) *models.IdempotencyRecord {
	return &models.IdempotencyRecord{
		Key:        key,
		StatusCode: 200,
		Body:       []byte(`{"success":true}`),
		RecordedAt: recordedAt,
	}
}

func TestMemoryStore_FirstWriterWins(t *testing.T) {
	store := newStore(t, MemoryIdempotencyStoreConfig{})
	ctx := context.Background()

	first := record("k1", time.Now())
	if err := store.Put(ctx, first); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	second := record("k1", time.Now())
	second.Body = []byte(`{"success":false}`)
	if err := store.Put(ctx, second); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := store.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Fatal("Get() = nil, want the first record")
	}
	if string(got.Body) != `{"success":true}` {
		t.Errorf("Body = %s, want the first writer's body", got.Body)
	}
}

func TestMemoryStore_MissReturnsNil(t *testing.T) {
	store := newStore(t, MemoryIdempotencyStoreConfig{})

	got, err := store.Get(context.Background(), "absent")
	if err != nil {
		t.Errorf("Get() error = %v, want nil on miss", err)
	}
	if got != nil {
		t.Errorf("Get() = %+v, want nil", got)
	}
}

func TestMemoryStore_ExpiredEntryReadsAsMiss(t *testing.T) {
	store := newStore(t, MemoryIdempotencyStoreConfig{Retention: time.Hour})
	ctx := context.Background()

	stale := record("old", time.Now().Add(-2*time.Hour))
	if err := store.Put(ctx, stale); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := store.Get(ctx, "old")
	if err != nil {
		t.Errorf("Get() error = %v, want nil", err)
	}
	if got != nil {
		t.Errorf("Get() = %+v, want nil for an entry past retention", got)
	}
}

func TestMemoryStore_SweepRemovesExpired(t *testing.T) {
	store := newStore(t, MemoryIdempotencyStoreConfig{Retention: time.Hour})
	ctx := context.Background()

	store.Put(ctx, record("stale", time.Now().Add(-2*time.Hour)))
	store.Put(ctx, record("fresh", time.Now()))

	removed := store.sweep()
	if removed != 1 {
		t.Errorf("sweep() removed %d, want 1", removed)
	}

	stats, _ := store.Stats(ctx)
	if stats.TotalKeys != 1 {
		t.Errorf("TotalKeys = %d, want 1 after sweep", stats.TotalKeys)
	}
}

func TestMemoryStore_CapacityEviction(t *testing.T) {
	store := newStore(t, MemoryIdempotencyStoreConfig{MaxEntries: 2})
	ctx := context.Background()

	base := time.Now().Add(-time.Minute)
	store.Put(ctx, record("oldest", base))
	store.Put(ctx, record("middle", base.Add(10*time.Second)))
	store.Put(ctx, record("newest", base.Add(20*time.Second)))

	if got, _ := store.Get(ctx, "oldest"); got != nil {
		t.Error("oldest entry survived eviction")
	}
	if got, _ := store.Get(ctx, "newest"); got == nil {
		t.Error("newest entry was evicted")
	}

	stats, _ := store.Stats(ctx)
	if stats.TotalKeys != 2 {
		t.Errorf("TotalKeys = %d, want 2", stats.TotalKeys)
	}
}

func TestMemoryStore_Stats(t *testing.T) {
	store := newStore(t, MemoryIdempotencyStoreConfig{})
	ctx := context.Background()

	empty, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if empty.TotalKeys != 0 || empty.OldestEntryTimestamp != nil || empty.NewestEntryTimestamp != nil {
		t.Errorf("empty stats = %+v", empty)
	}

	oldest := time.Now().Add(-time.Minute)
	newest := time.Now()
	store.Put(ctx, record("a", oldest))
	store.Put(ctx, record("b", newest))

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalKeys != 2 {
		t.Errorf("TotalKeys = %d, want 2", stats.TotalKeys)
	}
	if stats.OldestEntryTimestamp == nil || !stats.OldestEntryTimestamp.Equal(oldest) {
		t.Errorf("OldestEntryTimestamp = %v, want %v", stats.OldestEntryTimestamp, oldest)
	}
	if stats.NewestEntryTimestamp == nil || !stats.NewestEntryTimestamp.Equal(newest) {
		t.Errorf("NewestEntryTimestamp = %v, want %v", stats.NewestEntryTimestamp, newest)
	}
}
