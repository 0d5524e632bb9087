package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/veloxpay/velox/models"
	"github.com/veloxpay/velox/stores"
	"github.com/veloxpay/velox/utils"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type idempotencyContextKey string

const idempotencyKeyContextKey idempotencyContextKey = "idempotency_key"

// IdempotencyMiddleware deduplicates retried mutating requests. A request
// bearing a key that already has a cached response gets that response
// replayed verbatim and never reaches the handler, so at most one real
// processor call happens per key. Requests without a key pass through
// untouched.
//
// Two requests racing on the same key before either response is stored can
// both reach the handler; the first stored response wins the cache. That
// window matches the consistency the store offers and is a documented
// limitation, not a bug to paper over with locking here.
type IdempotencyMiddleware struct {
	store stores.IdempotencyStore
}

func NewIdempotencyMiddleware(store stores.IdempotencyStore) *IdempotencyMiddleware {
	return &IdempotencyMiddleware{store: store}
}

func (m *IdempotencyMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !mutating(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		if !validKeyFormat(key) {
			writeError(w, http.StatusBadRequest, utils.ErrInvalidIdempotencyKey.Message)
			return
		}

		ctx := r.Context()

		record, err := m.store.Get(ctx, key)
		if err != nil {
			// A broken cache must not block payments; treat as a miss.
			utils.LogError(ctx, err, "idempotency lookup failed", map[string]interface{}{"key": key})
		}
		if record != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(record.StatusCode)
			w.Write(record.Body)
			return
		}

		ctx = context.WithValue(ctx, idempotencyKeyContextKey, key)
		recorder := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(recorder, r.WithContext(ctx))

		// Only successful responses are worth replaying; a failed request
		// must be allowed to retry the real operation.
		if recorder.statusCode >= 200 && recorder.statusCode < 300 {
			putErr := m.store.Put(ctx, &models.IdempotencyRecord{
				Key:        key,
				StatusCode: recorder.statusCode,
				Body:       recorder.body.Bytes(),
				RecordedAt: time.Now(),
			})
			if putErr != nil {
				utils.LogError(ctx, putErr, "failed to store idempotency record", map[string]interface{}{"key": key})
			}
		}
	})
}

// IdempotencyKeyFromContext returns the validated key attached on a cache
// miss, or "" when the request carried none.
func IdempotencyKeyFromContext(ctx context.Context) string {
	if key, ok := ctx.Value(idempotencyKeyContextKey).(string); ok {
		return key
	}
	return ""
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

func validKeyFormat(key string) bool {
	id, err := uuid.Parse(key)
	if err != nil {
		return false
	}
	return id.Version() == 4
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (r *responseRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
