package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/veloxpay/velox/utils"
)

type slowClient struct {
	delay time.Duration
}

func (c slowClient) Send(ctx context.Context, req *Request) (json.RawMessage, error) {
	time.Sleep(c.delay)
	return json.RawMessage(`{"result":"Ok","response_code":"1"}`), nil
}

func TestBreakerClient_ConcurrentSendsOverlap(t *testing.T) {
	client := NewBreakerClient(slowClient{delay: 100 * time.Millisecond}, 5, time.Minute)

	const callers = 4
	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.Send(context.Background(), &Request{Type: RequestAuthCapture}); err != nil {
				t.Errorf("Send() error = %v", err)
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	// One slow processor call must not stall the others behind it.
	if elapsed > 250*time.Millisecond {
		t.Errorf("4 concurrent sends took %v, want them to overlap (~100ms)", elapsed)
	}
}

type failingClient struct{}

func (failingClient) Send(ctx context.Context, req *Request) (json.RawMessage, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestBreakerClient_OpenBreakerNotRetryable(t *testing.T) {
	client := NewBreakerClient(failingClient{}, 1, time.Minute)

	client.Send(context.Background(), &Request{Type: RequestAuthCapture})

	_, err := client.Send(context.Background(), &Request{Type: RequestAuthCapture})
	if err != utils.ErrCircuitOpen {
		t.Fatalf("error = %v, want ErrCircuitOpen", err)
	}
	if IsRetryable(DescribeFailure(err)) {
		t.Error("breaker-open failure classified retryable; it must fail fast")
	}
}
