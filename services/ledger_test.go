package services

import (
	"context"
	"errors"
	"testing"

	"github.com/veloxpay/velox/gateway"
	"github.com/veloxpay/velox/models"
)

type recordingStore struct {
	createErr   error
	finalizeErr error
	created     []*models.Transaction
	finalized   map[string]map[string]interface{}
}

func (s *recordingStore) Create(ctx context.Context, tx *models.Transaction) error {
	s.created = append(s.created, tx)
	return s.createErr
}

func (s *recordingStore) Finalize(ctx context.Context, transactionID string, fields map[string]interface{}) error {
	if s.finalized == nil {
		s.finalized = map[string]map[string]interface{}{}
	}
	s.finalized[transactionID] = fields
	return s.finalizeErr
}

func TestRecordAttempt_SetsProcessingStatus(t *testing.T) {
	store := &recordingStore{}
	writer := NewLedgerWriter(store)

	tx := writer.RecordAttempt(context.Background(), &models.Transaction{TransactionID: "t-1"})

	if tx.Status != models.TransactionStatusProcessing {
		t.Errorf("Status = %q, want processing", tx.Status)
	}
	if len(store.created) != 1 {
		t.Fatalf("created %d rows, want 1", len(store.created))
	}
}

func TestRecordAttempt_ReturnsRowOnStoreError(t *testing.T) {
	store := &recordingStore{createErr: errors.New("connection refused")}
	writer := NewLedgerWriter(store)

	tx := writer.RecordAttempt(context.Background(), &models.Transaction{TransactionID: "t-1"})

	if tx == nil {
		t.Fatal("RecordAttempt returned nil on store error")
	}
}

func TestFinalizeAttempt_Mapping(t *testing.T) {
	tests := []struct {
		name       string
		result     *gateway.Result
		callErr    error
		wantStatus models.TransactionStatus
		wantReason string
	}{
		{
			name:       "approved",
			result:     &gateway.Result{Success: true, GatewayTransactionID: "gw-1"},
			wantStatus: models.TransactionStatusCompleted,
		},
		{
			name:       "declined",
			result:     &gateway.Result{Success: false, ResponseText: "insufficient funds"},
			wantStatus: models.TransactionStatusFailed,
			wantReason: "insufficient funds",
		},
		{
			name:       "call failure",
			callErr:    errors.New("connection reset by peer"),
			wantStatus: models.TransactionStatusFailed,
			wantReason: "connection reset by peer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &recordingStore{}
			writer := NewLedgerWriter(store)

			writer.FinalizeAttempt(context.Background(), "t-1", tt.result, tt.callErr)

			fields := store.finalized["t-1"]
			if fields == nil {
				t.Fatal("no finalize call recorded")
			}
			if got := fields["status"]; got != tt.wantStatus {
				t.Errorf("status = %v, want %v", got, tt.wantStatus)
			}
			if tt.wantReason != "" {
				if got := fields["failure_reason"]; got != tt.wantReason {
					t.Errorf("failure_reason = %v, want %q", got, tt.wantReason)
				}
			}
		})
	}
}
