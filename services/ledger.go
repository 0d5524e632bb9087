package services

import (
	"context"

	"github.com/veloxpay/velox/gateway"
	"github.com/veloxpay/velox/models"
	"github.com/veloxpay/velox/utils"
)

// TransactionStore is the ledger persistence contract the writer needs.
type TransactionStore interface {
	Create(ctx context.Context, tx *models.Transaction) error
	Finalize(ctx context.Context, transactionID string, fields map[string]interface{}) error
}

// LedgerWriter keeps the audit trail of every attempt. Its writes are
// intentionally fail-open: the payment result returned to the caller is
// decided by the processor alone, so a ledger outage is logged and
// swallowed, never propagated.
type LedgerWriter struct {
	store TransactionStore
}

func NewLedgerWriter(store TransactionStore) *LedgerWriter {
	return &LedgerWriter{store: store}
}

// RecordAttempt writes the processing-status row before the processor is
// called. The record is returned even when the write fails so the rest of
// the flow can carry on with the in-memory copy.
func (w *LedgerWriter) RecordAttempt(ctx context.Context, tx *models.Transaction) *models.Transaction {
	tx.Status = models.TransactionStatusProcessing

	if err := w.store.Create(ctx, tx); err != nil {
		utils.LogError(ctx, err, "failed to record transaction attempt", map[string]interface{}{
			"transaction_id": tx.TransactionID,
			"type":           string(tx.Type),
		})
	}

	return tx
}

// FinalizeAttempt moves the row to completed or failed once the processor
// has answered. A nil result means the call itself failed; the raw error
// text becomes the failure reason.
func (w *LedgerWriter) FinalizeAttempt(ctx context.Context, transactionID string, result *gateway.Result, callErr error) {
	fields := map[string]interface{}{}

	switch {
	case result != nil && result.Success:
		fields["status"] = models.TransactionStatusCompleted
		if result.GatewayTransactionID != "" {
			fields["gateway_transaction_id"] = result.GatewayTransactionID
		}
	case result != nil:
		fields["status"] = models.TransactionStatusFailed
		fields["failure_reason"] = result.ResponseText
		if result.GatewayTransactionID != "" {
			fields["gateway_transaction_id"] = result.GatewayTransactionID
		}
	default:
		fields["status"] = models.TransactionStatusFailed
		if callErr != nil {
			fields["failure_reason"] = callErr.Error()
		}
	}

	if err := w.store.Finalize(ctx, transactionID, fields); err != nil {
		utils.LogError(ctx, err, "failed to finalize transaction attempt", map[string]interface{}{
			"transaction_id": transactionID,
		})
	}
}
