package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/veloxpay/velox/stores"
)

func newTestStore(t *testing.T) *stores.MemoryIdempotencyStore {
	t.Helper()
	store := stores.CreateMemoryIdempotencyStore(stores.MemoryIdempotencyStoreConfig{
		Retention:     time.Hour,
		SweepInterval: time.Hour,
	})
	t.Cleanup(store.Close)
	return store
}

func countingHandler(calls *int, status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(status)
		w.Write([]byte(body))
	})
}

const testKey = "d9428888-122b-41e6-a8a7-bfd23e1e32a1"

func TestIdempotency_ReplaySecondRequest(t *testing.T) {
	store := newTestStore(t)
	calls := 0
	handler := NewIdempotencyMiddleware(store).Handler(countingHandler(&calls, http.StatusOK, `{"success":true}`))

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/purchase", nil)
	req.Header.Set(IdempotencyKeyHeader, testKey)
	handler.ServeHTTP(first, req)

	second := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodPost, "/payments/purchase", nil)
	req2.Header.Set(IdempotencyKeyHeader, testKey)
	handler.ServeHTTP(second, req2)

	if calls != 1 {
		t.Errorf("handler calls = %d, want exactly 1", calls)
	}
	if second.Code != first.Code {
		t.Errorf("replayed status = %d, want %d", second.Code, first.Code)
	}
	if second.Body.String() != first.Body.String() {
		t.Errorf("replayed body = %q, want %q", second.Body.String(), first.Body.String())
	}
}

func TestIdempotency_MalformedKeyRejected(t *testing.T) {
	store := newTestStore(t)
	calls := 0
	handler := NewIdempotencyMiddleware(store).Handler(countingHandler(&calls, http.StatusOK, "ok"))

	cases := []string{
		"not-a-uuid",
		"d9428888122b41e6a8a7bfd23e1e32a1x",
		"d9428888-122b-11e6-a8a7-bfd23e1e32a1", // v1, not v4
		" d9428888-122b-41e6-a8a7-bfd23e1e32a1",
	}

	for _, key := range cases {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/payments/purchase", nil)
		req.Header.Set(IdempotencyKeyHeader, key)
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("key %q: status = %d, want 400", key, rec.Code)
		}
	}

	if calls != 0 {
		t.Errorf("handler calls = %d, want 0", calls)
	}
}

func TestIdempotency_MissingKeyPassesThrough(t *testing.T) {
	store := newTestStore(t)
	calls := 0
	handler := NewIdempotencyMiddleware(store).Handler(countingHandler(&calls, http.StatusOK, "ok"))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/payments/purchase", nil)
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	}

	if calls != 2 {
		t.Errorf("handler calls = %d, want 2 without deduplication", calls)
	}
}

func TestIdempotency_ReadOnlyRequestsUntouched(t *testing.T) {
	store := newTestStore(t)
	calls := 0
	handler := NewIdempotencyMiddleware(store).Handler(countingHandler(&calls, http.StatusOK, "ok"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/payments/transactions/1", nil)
	req.Header.Set(IdempotencyKeyHeader, "definitely not a uuid")
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200; GET must bypass key validation", rec.Code)
	}
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}
}

func TestIdempotency_FailedResponseNotCached(t *testing.T) {
	store := newTestStore(t)
	calls := 0
	handler := NewIdempotencyMiddleware(store).Handler(countingHandler(&calls, http.StatusPaymentRequired, `{"success":false}`))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/payments/purchase", nil)
		req.Header.Set(IdempotencyKeyHeader, testKey)
		handler.ServeHTTP(rec, req)
	}

	if calls != 2 {
		t.Errorf("handler calls = %d, want 2; failures must be allowed to retry", calls)
	}
}

func TestIdempotency_KeyAttachedToContext(t *testing.T) {
	store := newTestStore(t)
	var seenKey string
	handler := NewIdempotencyMiddleware(store).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenKey = IdempotencyKeyFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/purchase", nil)
	req.Header.Set(IdempotencyKeyHeader, testKey)
	handler.ServeHTTP(rec, req)

	if seenKey != testKey {
		t.Errorf("key from context = %q, want %q", seenKey, testKey)
	}
}
