package models

import (
	"time"
)

type TransactionStatus string
type TransactionType string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusProcessing TransactionStatus = "processing"
	TransactionStatusCompleted  TransactionStatus = "completed"
	TransactionStatusFailed     TransactionStatus = "failed"
	TransactionStatusCancelled  TransactionStatus = "cancelled"
	TransactionStatusRefunded   TransactionStatus = "refunded"

	TransactionTypePayment       TransactionType = "payment"
	TransactionTypeAuthorization TransactionType = "authorization"
	TransactionTypeCapture       TransactionType = "capture"
	TransactionTypeRefund        TransactionType = "refund"
	TransactionTypeVoid          TransactionType = "void"
)

// Transaction is the append-only audit record for one attempted gateway
// operation. Rows are never deleted; a crash between the processing write
// and the finalize write leaves the row at processing for reconciliation.
type Transaction struct {
	ID                     string            `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	TransactionID          string            `json:"transaction_id" gorm:"uniqueIndex;not null"`
	GatewayTransactionID   string            `json:"gateway_transaction_id" gorm:"index"`
	Type                   TransactionType   `json:"type" gorm:"not null"`
	Status                 TransactionStatus `json:"status" gorm:"not null;default:'pending'"`
	Amount                 int64             `json:"amount" gorm:"not null"`
	Currency               string            `json:"currency" gorm:"not null"`
	CustomerEmail          string            `json:"customer_email"`
	Description            string            `json:"description"`
	CardLastFour           string            `json:"card_last_four"`
	CardType               string            `json:"card_type"`
	ReferenceTransactionID string            `json:"reference_transaction_id" gorm:"index"`
	FailureReason          string            `json:"failure_reason"`
	Metadata               JSON              `json:"metadata" gorm:"type:jsonb"`
	CreatedAt              time.Time         `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt              time.Time         `json:"updated_at" gorm:"autoUpdateTime"`
}

// PaymentMethod carries raw card fields on inbound requests. Only the
// masked subset (last four, card type) is ever persisted.
type PaymentMethod struct {
	CardNumber     string `json:"card_number"`
	ExpirationDate string `json:"expiration_date"`
	CVV            string `json:"cvv"`
	CardholderName string `json:"cardholder_name,omitempty"`
}

type BillingAddress struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Street    string `json:"street,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Zip       string `json:"zip,omitempty"`
	Country   string `json:"country,omitempty"`
}

type PurchaseRequest struct {
	TransactionID  string          `json:"transaction_id,omitempty"`
	Amount         int64           `json:"amount"`
	Currency       string          `json:"currency"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	BillingAddress *BillingAddress `json:"billing_address,omitempty"`
	CustomerEmail  string          `json:"customer_email,omitempty"`
	Description    string          `json:"description,omitempty"`
	Metadata       JSON            `json:"metadata,omitempty"`
}

type AuthorizeRequest struct {
	TransactionID  string          `json:"transaction_id,omitempty"`
	Amount         int64           `json:"amount"`
	Currency       string          `json:"currency"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	BillingAddress *BillingAddress `json:"billing_address,omitempty"`
	CustomerEmail  string          `json:"customer_email,omitempty"`
	Description    string          `json:"description,omitempty"`
	Metadata       JSON            `json:"metadata,omitempty"`
}

type CaptureRequest struct {
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount,omitempty"`
}

type RefundRequest struct {
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
	Reason        string `json:"reason,omitempty"`
}

type CancelRequest struct {
	TransactionID string `json:"transaction_id"`
}

// OperationResponse is the caller-visible outcome of one payment operation.
type OperationResponse struct {
	Success           bool     `json:"success"`
	TransactionID     string   `json:"transaction_id,omitempty"`
	AuthorizationCode string   `json:"authorization_code,omitempty"`
	ResponseCode      string   `json:"response_code"`
	ResponseText      string   `json:"response_text"`
	AVSResultCode     string   `json:"avs_result_code,omitempty"`
	CVVResultCode     string   `json:"cvv_result_code,omitempty"`
	Errors            []string `json:"errors,omitempty"`
}
