package gateway

import (
	"encoding/json"
)

const (
	resultCodeOK = "Ok"

	// Transaction-level response code for an approved transaction. Anything
	// else is a decline.
	responseCodeApproved = "1"
)

const invalidFormatText = "Invalid response format from payment gateway"

// Normalize maps a raw processor reply to a canonical Result. It never
// fails: an unrecognized shape produces a non-success Result with a
// generic explanation so the caller always has something usable.
func Normalize(raw json.RawMessage) *Result {
	reply, ok := parseReply(raw)
	if !ok {
		return &Result{
			Success:      false,
			ResponseText: invalidFormatText,
			Errors:       []string{invalidFormatText},
		}
	}

	if reply.legacy != nil {
		return normalizeLegacy(reply.legacy)
	}
	return normalizeModern(reply.modern)
}

func normalizeLegacy(env *legacyEnvelope) *Result {
	if env.Messages == nil || env.Messages.ResultCode != resultCodeOK {
		// The processor rejected the message itself; the only useful
		// content is the message list.
		result := &Result{Success: false, ResponseText: "Transaction failed"}
		if env.Messages != nil {
			for _, msg := range env.Messages.Message {
				if msg.Text != "" {
					result.Errors = append(result.Errors, msg.Text)
				}
			}
			if len(result.Errors) > 0 {
				result.ResponseText = result.Errors[0]
			}
		}
		if len(result.Errors) == 0 {
			result.Errors = []string{result.ResponseText}
		}
		return result
	}

	tx := env.TransactionResponse
	if tx == nil {
		return &Result{
			Success:      false,
			ResponseText: invalidFormatText,
			Errors:       []string{invalidFormatText},
		}
	}

	result := &Result{
		ResponseCode:  tx.ResponseCode,
		AVSResultCode: tx.AvsResultCode,
		CVVResultCode: tx.CvvResultCode,
	}

	if tx.ResponseCode == responseCodeApproved {
		result.Success = true
		result.GatewayTransactionID = tx.TransID
		result.AuthorizationCode = tx.AuthCode
		result.ResponseText = legacyText(tx, "Transaction approved")
		return result
	}

	// Declined, but the processor did answer; carry its explanation.
	result.Success = false
	result.ResponseText = legacyText(tx, "Transaction declined")
	for _, e := range tx.Errors {
		if e.ErrorText != "" {
			result.Errors = append(result.Errors, e.ErrorText)
		}
	}
	if len(result.Errors) == 0 {
		result.Errors = []string{result.ResponseText}
	}
	return result
}

func legacyText(tx *legacyTransactionResponse, fallback string) string {
	for _, msg := range tx.Messages {
		if msg.Description != "" {
			return msg.Description
		}
		if msg.Text != "" {
			return msg.Text
		}
	}
	for _, e := range tx.Errors {
		if e.ErrorText != "" {
			return e.ErrorText
		}
	}
	return fallback
}

func normalizeModern(reply *modernReply) *Result {
	result := &Result{
		ResponseCode:  reply.ResponseCode,
		AVSResultCode: reply.AVSResultCode,
		CVVResultCode: reply.CVVResultCode,
		ResponseText:  reply.ResponseText,
	}

	if reply.Result != resultCodeOK {
		result.Success = false
		result.Errors = reply.Errors
		if result.ResponseText == "" && len(reply.Errors) > 0 {
			result.ResponseText = reply.Errors[0]
		}
		if result.ResponseText == "" {
			result.ResponseText = "Transaction failed"
		}
		if len(result.Errors) == 0 {
			result.Errors = []string{result.ResponseText}
		}
		return result
	}

	if reply.ResponseCode == responseCodeApproved {
		result.Success = true
		result.GatewayTransactionID = reply.TransactionID
		result.AuthorizationCode = reply.AuthCode
		if result.ResponseText == "" {
			result.ResponseText = "Transaction approved"
		}
		return result
	}

	result.Success = false
	if result.ResponseText == "" {
		result.ResponseText = "Transaction declined"
	}
	result.Errors = reply.Errors
	if len(result.Errors) == 0 {
		result.Errors = []string{result.ResponseText}
	}
	return result
}
