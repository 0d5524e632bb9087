package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/veloxpay/velox/gateway"
	"github.com/veloxpay/velox/models"
	"github.com/veloxpay/velox/utils"
)

var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrMissingTransactionID = errors.New("transaction ID is required")
	ErrMissingRefundAmount  = errors.New("refund amount is required")
)

// TransactionReader looks up prior transactions referenced by capture,
// refund and void. A lookup failure is tolerated the same way ledger
// writes are: the operation proceeds without the referenced row's data.
type TransactionReader interface {
	GetByTransactionID(ctx context.Context, transactionID string) (*models.Transaction, error)
}

// PaymentService is the orchestration core: each operation records a
// ledger attempt, drives the processor call through the retry layer,
// normalizes the reply and finalizes the ledger. Only retry-exhausted or
// non-retryable call errors cross this boundary as errors; declines and
// validation failures are ordinary return values.
type PaymentService struct {
	ledger   *LedgerWriter
	reader   TransactionReader
	client   gateway.Client
	retryCfg gateway.RetryConfig
}

func NewPaymentService(ledger *LedgerWriter, reader TransactionReader, client gateway.Client, retryCfg gateway.RetryConfig) *PaymentService {
	return &PaymentService{
		ledger:   ledger,
		reader:   reader,
		client:   client,
		retryCfg: retryCfg,
	}
}

func (s *PaymentService) Purchase(ctx context.Context, req *models.PurchaseRequest) (*models.OperationResponse, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if errs := ValidatePaymentMethod(req.PaymentMethod); len(errs) > 0 {
		return validationFailure(errs), nil
	}

	tx := s.newTransaction(req.TransactionID, models.TransactionTypePayment, req.Amount, req.Currency)
	tx.CustomerEmail = req.CustomerEmail
	tx.Description = req.Description
	tx.Metadata = req.Metadata
	tx.CardLastFour, tx.CardType = maskedCard(req.PaymentMethod.CardNumber)

	payload := &gateway.Request{
		Type:           gateway.RequestAuthCapture,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Card:           cardFields(req.PaymentMethod),
		BillingAddress: req.BillingAddress,
		CustomerEmail:  req.CustomerEmail,
		Description:    req.Description,
	}

	return s.execute(ctx, tx, payload)
}

func (s *PaymentService) Authorize(ctx context.Context, req *models.AuthorizeRequest) (*models.OperationResponse, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if errs := ValidatePaymentMethod(req.PaymentMethod); len(errs) > 0 {
		return validationFailure(errs), nil
	}

	tx := s.newTransaction(req.TransactionID, models.TransactionTypeAuthorization, req.Amount, req.Currency)
	tx.CustomerEmail = req.CustomerEmail
	tx.Description = req.Description
	tx.Metadata = req.Metadata
	tx.CardLastFour, tx.CardType = maskedCard(req.PaymentMethod.CardNumber)

	payload := &gateway.Request{
		Type:           gateway.RequestAuthOnly,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Card:           cardFields(req.PaymentMethod),
		BillingAddress: req.BillingAddress,
		CustomerEmail:  req.CustomerEmail,
		Description:    req.Description,
	}

	return s.execute(ctx, tx, payload)
}

// Capture settles a prior authorization. When the amount is omitted the
// processor captures the full held amount.
func (s *PaymentService) Capture(ctx context.Context, req *models.CaptureRequest) (*models.OperationResponse, error) {
	if req.TransactionID == "" {
		return nil, ErrMissingTransactionID
	}

	original := s.lookupReference(ctx, req.TransactionID)

	amount := req.Amount
	if amount == 0 && original != nil {
		amount = original.Amount
	}

	tx := s.newTransaction("", models.TransactionTypeCapture, amount, currencyOf(original))
	tx.ReferenceTransactionID = req.TransactionID

	payload := &gateway.Request{
		Type:                   gateway.RequestPriorAuthCapture,
		Amount:                 req.Amount,
		ReferenceTransactionID: gatewayReference(original, req.TransactionID),
	}

	return s.execute(ctx, tx, payload)
}

// Refund reverses a completed transaction. Full card data is never
// retained after the original charge, so the processor gets placeholder
// payment-method fields built from the masked digits on file.
func (s *PaymentService) Refund(ctx context.Context, req *models.RefundRequest) (*models.OperationResponse, error) {
	if req.TransactionID == "" {
		return nil, ErrMissingTransactionID
	}
	if req.Amount <= 0 {
		return nil, ErrMissingRefundAmount
	}

	original := s.lookupReference(ctx, req.TransactionID)

	tx := s.newTransaction("", models.TransactionTypeRefund, req.Amount, currencyOf(original))
	tx.ReferenceTransactionID = req.TransactionID
	tx.Description = req.Reason

	payload := &gateway.Request{
		Type:                   gateway.RequestRefund,
		Amount:                 req.Amount,
		Card:                   placeholderCard(original),
		Description:            req.Reason,
		ReferenceTransactionID: gatewayReference(original, req.TransactionID),
	}

	return s.execute(ctx, tx, payload)
}

// Cancel voids an authorization that has not settled yet.
func (s *PaymentService) Cancel(ctx context.Context, req *models.CancelRequest) (*models.OperationResponse, error) {
	if req.TransactionID == "" {
		return nil, ErrMissingTransactionID
	}

	original := s.lookupReference(ctx, req.TransactionID)

	tx := s.newTransaction("", models.TransactionTypeVoid, 0, currencyOf(original))
	tx.ReferenceTransactionID = req.TransactionID

	payload := &gateway.Request{
		Type:                   gateway.RequestVoid,
		ReferenceTransactionID: gatewayReference(original, req.TransactionID),
	}

	return s.execute(ctx, tx, payload)
}

// execute is the shared tail of every operation: ledger write, retried
// processor call, normalization, ledger finalize.
func (s *PaymentService) execute(ctx context.Context, tx *models.Transaction, payload *gateway.Request) (*models.OperationResponse, error) {
	correlationID := uuid.NewString()
	ctx = utils.WithCorrelationID(ctx, correlationID)
	payload.CorrelationID = correlationID

	s.ledger.RecordAttempt(ctx, tx)

	raw, err := gateway.SendWithRetry(ctx, s.retryCfg, correlationID, func() (json.RawMessage, error) {
		return s.client.Send(ctx, payload)
	})
	if err != nil {
		s.ledger.FinalizeAttempt(ctx, tx.TransactionID, nil, err)
		return nil, err
	}

	result := gateway.Normalize(raw)
	s.ledger.FinalizeAttempt(ctx, tx.TransactionID, result, nil)

	return &models.OperationResponse{
		Success:           result.Success,
		TransactionID:     tx.TransactionID,
		AuthorizationCode: result.AuthorizationCode,
		ResponseCode:      result.ResponseCode,
		ResponseText:      result.ResponseText,
		AVSResultCode:     result.AVSResultCode,
		CVVResultCode:     result.CVVResultCode,
		Errors:            result.Errors,
	}, nil
}

func (s *PaymentService) newTransaction(transactionID string, txType models.TransactionType, amount int64, currency string) *models.Transaction {
	if transactionID == "" {
		transactionID = uuid.NewString()
	}
	return &models.Transaction{
		TransactionID: transactionID,
		Type:          txType,
		Amount:        amount,
		Currency:      currency,
	}
}

func (s *PaymentService) lookupReference(ctx context.Context, transactionID string) *models.Transaction {
	if s.reader == nil {
		return nil
	}
	original, err := s.reader.GetByTransactionID(ctx, transactionID)
	if err != nil {
		utils.Warn(ctx, "referenced transaction not found in ledger", map[string]interface{}{
			"reference_transaction_id": transactionID,
			"error":                    err.Error(),
		})
		return nil
	}
	return original
}

func validationFailure(errs []string) *models.OperationResponse {
	return &models.OperationResponse{
		Success:      false,
		ResponseText: "Validation failed",
		Errors:       errs,
	}
}

func cardFields(pm models.PaymentMethod) *gateway.Card {
	return &gateway.Card{
		Number:     pm.CardNumber,
		Expiration: pm.ExpirationDate,
		CVV:        pm.CVV,
	}
}

// placeholderCard builds the minimal payment-method stand-in a refund
// needs when the real card data is long gone.
func placeholderCard(original *models.Transaction) *gateway.Card {
	lastFour := "0000"
	if original != nil && original.CardLastFour != "" {
		lastFour = original.CardLastFour
	}
	return &gateway.Card{
		Number:     "XXXXXXXXXXXX" + lastFour,
		Expiration: "XXXX",
	}
}

func currencyOf(original *models.Transaction) string {
	if original == nil {
		return ""
	}
	return original.Currency
}

// gatewayReference prefers the processor's own transaction id when the
// ledger has it; the caller-facing id is only a fallback.
func gatewayReference(original *models.Transaction, transactionID string) string {
	if original != nil && original.GatewayTransactionID != "" {
		return original.GatewayTransactionID
	}
	return transactionID
}
