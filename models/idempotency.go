package models

import (
	"time"
)

// IdempotencyRecord is a cached successful response for a caller-supplied
// key. First writer wins; a key is never overwritten.
type IdempotencyRecord struct {
	Key        string    `json:"key"`
	StatusCode int       `json:"status_code"`
	Body       []byte    `json:"body"`
	RecordedAt time.Time `json:"recorded_at"`
}

type IdempotencyStats struct {
	TotalKeys            int        `json:"total_keys"`
	OldestEntryTimestamp *time.Time `json:"oldest_entry_timestamp,omitempty"`
	NewestEntryTimestamp *time.Time `json:"newest_entry_timestamp,omitempty"`
}
