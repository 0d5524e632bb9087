package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

type ClientConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// HTTPClient posts transaction requests to the processor's JSON endpoint.
// It returns whatever body the processor answered with; interpreting it is
// Normalize's job. Transport failures come back as plain errors so the
// retry layer can classify them from their message text.
type HTTPClient struct {
	http     *resty.Client
	endpoint string
}

func NewHTTPClient(cfg ClientConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+cfg.APIKey)

	return &HTTPClient{
		http:     client,
		endpoint: cfg.Endpoint,
	}
}

func (c *HTTPClient) Send(ctx context.Context, req *Request) (json.RawMessage, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}

	body := resp.Body()
	if len(body) == 0 {
		return nil, fmt.Errorf("gateway returned empty reply (status %d)", resp.StatusCode())
	}

	return json.RawMessage(body), nil
}
