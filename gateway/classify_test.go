package gateway

import (
	"errors"
	"testing"
)

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name    string
		message string
		want    bool
	}{
		{"connection reset", "read tcp 10.0.0.1:443: connection reset by peer", true},
		{"connection refused", "dial tcp 10.0.0.1:443: connect: connection refused", true},
		{"timeout", "net/http: request canceled (Client.Timeout exceeded)", true},
		{"timed out", "dial tcp: i/o timed out", true},
		{"dns failure", "dial tcp: lookup gateway.example.com: no such host", true},
		{"node style econnreset", "Error: socket hang up ECONNRESET", true},
		{"generic network error", "network error while contacting processor", true},
		{"mixed case", "Connection Refused", true},
		{"business decline", "This transaction has been declined.", false},
		{"auth failure", "merchant authentication failed", false},
		{"malformed request", "invalid request payload", false},
		{"circuit open", "Circuit breaker is open", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := IsRetryable(Failure{Message: tc.message})
			if got != tc.want {
				t.Errorf("IsRetryable(%q) = %v, want %v", tc.message, got, tc.want)
			}
		})
	}
}

func TestDescribeFailure(t *testing.T) {
	if f := DescribeFailure(nil); f.Message != "" {
		t.Errorf("DescribeFailure(nil).Message = %q, want empty", f.Message)
	}

	err := errors.New("connection refused")
	if f := DescribeFailure(err); f.Message != "connection refused" {
		t.Errorf("DescribeFailure().Message = %q", f.Message)
	}
}
