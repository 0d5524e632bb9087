package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/veloxpay/velox/models"
	"github.com/veloxpay/velox/services"
	"github.com/veloxpay/velox/stores"
)

// TransactionDirectory is the ledger read surface the handlers need.
type TransactionDirectory interface {
	GetByTransactionID(ctx context.Context, transactionID string) (*models.Transaction, error)
	ListByReference(ctx context.Context, referenceTransactionID string) ([]*models.Transaction, error)
}

type PaymentHandler struct {
	paymentService   *services.PaymentService
	transactionStore TransactionDirectory
	idempotencyStore stores.IdempotencyStore
}

func CreatePaymentHandler(paymentService *services.PaymentService, transactionStore TransactionDirectory, idempotencyStore stores.IdempotencyStore) *PaymentHandler {
	return &PaymentHandler{
		paymentService:   paymentService,
		transactionStore: transactionStore,
		idempotencyStore: idempotencyStore,
	}
}

func (h *PaymentHandler) HandlePurchase(w http.ResponseWriter, r *http.Request) {
	var req models.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.paymentService.Purchase(r.Context(), &req)
	h.writeOperationResult(w, resp, err)
}

func (h *PaymentHandler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	var req models.AuthorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.paymentService.Authorize(r.Context(), &req)
	h.writeOperationResult(w, resp, err)
}

func (h *PaymentHandler) HandleCapture(w http.ResponseWriter, r *http.Request) {
	var req models.CaptureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.paymentService.Capture(r.Context(), &req)
	h.writeOperationResult(w, resp, err)
}

func (h *PaymentHandler) HandleRefund(w http.ResponseWriter, r *http.Request) {
	var req models.RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.paymentService.Refund(r.Context(), &req)
	h.writeOperationResult(w, resp, err)
}

func (h *PaymentHandler) HandleVoid(w http.ResponseWriter, r *http.Request) {
	var req models.CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.paymentService.Cancel(r.Context(), &req)
	h.writeOperationResult(w, resp, err)
}

func (h *PaymentHandler) HandleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	tx, err := h.transactionStore.GetByTransactionID(r.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Transaction not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, tx)
}

// HandleGetTransactionHistory lists the follow-up operations (captures,
// refunds, voids) recorded against one original transaction.
func (h *PaymentHandler) HandleGetTransactionHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	txs, err := h.transactionStore.ListByReference(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if txs == nil {
		txs = []*models.Transaction{}
	}

	writeJSON(w, http.StatusOK, txs)
}

func (h *PaymentHandler) HandleIdempotencyStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.idempotencyStore.Stats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// writeOperationResult maps the service contract onto HTTP: a returned
// error is a 5xx-equivalent (processor unreachable after retries), a
// non-success response is a 4xx-equivalent, and validation failures are
// distinguishable by the absence of a transaction id.
func (h *PaymentHandler) writeOperationResult(w http.ResponseWriter, resp *models.OperationResponse, err error) {
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount),
			errors.Is(err, services.ErrMissingTransactionID),
			errors.Is(err, services.ErrMissingRefundAmount):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: err.Error()})
		}
		return
	}

	if !resp.Success {
		if resp.TransactionID == "" {
			writeJSON(w, http.StatusBadRequest, resp)
			return
		}
		writeJSON(w, http.StatusPaymentRequired, resp)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
