package gateway

import (
	"strings"
)

// Failure is the normalized description of a failed attempt, built at the
// boundary where the raw error is first caught. Classification only ever
// looks at this value, never at the raw error's type.
type Failure struct {
	Message string
	Code    string
}

func DescribeFailure(err error) Failure {
	if err == nil {
		return Failure{}
	}
	return Failure{Message: err.Error()}
}

// Substring markers of transient network failures. Business declines,
// malformed requests, and auth failures never match.
var retryableMarkers = []string{
	"connection reset",
	"connection refused",
	"timeout",
	"timed out",
	"no such host",
	"host not found",
	"network error",
	"econnreset",
	"econnrefused",
	"etimedout",
	"enotfound",
}

// IsRetryable reports whether a failed attempt is worth reissuing. Pure
// function, case-insensitive match against the marker list.
func IsRetryable(f Failure) bool {
	if f.Message == "" {
		return false
	}

	message := strings.ToLower(f.Message)
	for _, marker := range retryableMarkers {
		if strings.Contains(message, marker) {
			return true
		}
	}
	return false
}
