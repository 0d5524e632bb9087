package gateway

import (
	"encoding/json"
)

// The processor answers in one of two shapes. Older deployments wrap the
// outcome in a response envelope keyed by transactionResponse/messages;
// newer ones return a flat document. Each shape gets its own parser and a
// probe decides which one applies.

type replyShape int

const (
	shapeUnknown replyShape = iota
	shapeLegacy
	shapeModern
)

type legacyMessage struct {
	Code        string `json:"code"`
	Text        string `json:"text"`
	Description string `json:"description"`
}

type legacyTransactionResponse struct {
	ResponseCode  string          `json:"responseCode"`
	TransID       string          `json:"transId"`
	AuthCode      string          `json:"authCode"`
	AvsResultCode string          `json:"avsResultCode"`
	CvvResultCode string          `json:"cvvResultCode"`
	Messages      []legacyMessage `json:"messages"`
	Errors        []struct {
		ErrorCode string `json:"errorCode"`
		ErrorText string `json:"errorText"`
	} `json:"errors"`
}

type legacyEnvelope struct {
	TransactionResponse *legacyTransactionResponse `json:"transactionResponse"`
	Messages            *struct {
		ResultCode string          `json:"resultCode"`
		Message    []legacyMessage `json:"message"`
	} `json:"messages"`
}

type modernReply struct {
	Result        string   `json:"result"`
	ResponseCode  string   `json:"response_code"`
	TransactionID string   `json:"transaction_id"`
	AuthCode      string   `json:"auth_code"`
	AVSResultCode string   `json:"avs_result_code"`
	CVVResultCode string   `json:"cvv_result_code"`
	ResponseText  string   `json:"response_text"`
	Errors        []string `json:"errors"`
}

// parsedReply is the tagged union handed to the normalizer. Exactly one of
// the branches is set for a recognized shape.
type parsedReply struct {
	legacy *legacyEnvelope
	modern *modernReply
}

func detectShape(raw json.RawMessage) replyShape {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return shapeUnknown
	}

	if _, ok := probe["transactionResponse"]; ok {
		return shapeLegacy
	}
	if _, ok := probe["messages"]; ok {
		return shapeLegacy
	}
	if _, ok := probe["result"]; ok {
		return shapeModern
	}
	return shapeUnknown
}

func parseLegacy(raw json.RawMessage) (*parsedReply, bool) {
	var env legacyEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false
	}
	if env.TransactionResponse == nil && env.Messages == nil {
		return nil, false
	}
	return &parsedReply{legacy: &env}, true
}

func parseModern(raw json.RawMessage) (*parsedReply, bool) {
	var reply modernReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, false
	}
	if reply.Result == "" {
		return nil, false
	}
	return &parsedReply{modern: &reply}, true
}

func parseReply(raw json.RawMessage) (*parsedReply, bool) {
	switch detectShape(raw) {
	case shapeLegacy:
		return parseLegacy(raw)
	case shapeModern:
		return parseModern(raw)
	default:
		return nil, false
	}
}
