package gateway

import (
	"context"
	"encoding/json"

	"github.com/veloxpay/velox/models"
)

type RequestType string

const (
	RequestAuthCapture      RequestType = "authCaptureTransaction"
	RequestAuthOnly         RequestType = "authOnlyTransaction"
	RequestPriorAuthCapture RequestType = "priorAuthCaptureTransaction"
	RequestRefund           RequestType = "refundTransaction"
	RequestVoid             RequestType = "voidTransaction"
)

// Card carries the raw card fields sent to the processor. Never persisted.
type Card struct {
	Number     string `json:"number,omitempty"`
	Expiration string `json:"expiration,omitempty"`
	CVV        string `json:"cvv,omitempty"`
}

// Request is the processor-specific payload for one transaction attempt.
type Request struct {
	Type                   RequestType            `json:"transaction_type"`
	Amount                 int64                  `json:"amount,omitempty"`
	Currency               string                 `json:"currency,omitempty"`
	Card                   *Card                  `json:"card,omitempty"`
	BillingAddress         *models.BillingAddress `json:"billing_address,omitempty"`
	CustomerEmail          string                 `json:"customer_email,omitempty"`
	Description            string                 `json:"description,omitempty"`
	ReferenceTransactionID string                 `json:"reference_transaction_id,omitempty"`
	CorrelationID          string                 `json:"correlation_id"`
}

// Result is the canonical outcome of one processor call, regardless of
// which reply shape the processor chose to answer in.
type Result struct {
	Success              bool     `json:"success"`
	GatewayTransactionID string   `json:"gateway_transaction_id,omitempty"`
	AuthorizationCode    string   `json:"authorization_code,omitempty"`
	AVSResultCode        string   `json:"avs_result_code,omitempty"`
	CVVResultCode        string   `json:"cvv_result_code,omitempty"`
	ResponseCode         string   `json:"response_code"`
	ResponseText         string   `json:"response_text"`
	Errors               []string `json:"errors,omitempty"`
}

// Client sends a request to the remote card processor and returns its raw
// reply. Network failures surface as ordinary errors; the reply bytes are
// only meaningful to Normalize.
type Client interface {
	Send(ctx context.Context, req *Request) (json.RawMessage, error)
}
