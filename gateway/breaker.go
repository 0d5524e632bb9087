package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/veloxpay/velox/utils"
)

// BreakerClient wraps a Client with a circuit breaker so a dead processor
// fails fast instead of eating the full retry budget on every request.
// The breaker-open error carries no network marker, so the classifier
// never retries it.
type BreakerClient struct {
	client  Client
	breaker *utils.CircuitBreaker
}

func NewBreakerClient(client Client, maxFailures int, resetTimeout time.Duration) *BreakerClient {
	return &BreakerClient{
		client:  client,
		breaker: utils.CreateCircuitBreaker(maxFailures, resetTimeout),
	}
}

func (c *BreakerClient) Send(ctx context.Context, req *Request) (json.RawMessage, error) {
	var reply json.RawMessage
	err := c.breaker.Execute(ctx, func() error {
		var sendErr error
		reply, sendErr = c.client.Send(ctx, req)
		return sendErr
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}
