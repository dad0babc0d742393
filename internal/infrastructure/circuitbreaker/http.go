package circuitbreaker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Doer is satisfied by *http.Client and *HTTPClient.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClient wraps an HTTP client with circuit breaker protection.
// 5xx and 429 responses count as failures and are returned as *StatusError.
type HTTPClient struct {
	client  *http.Client
	breaker *Breaker
	log     *zap.Logger
}

func NewHTTPClient(client *http.Client, breaker *Breaker, log *zap.Logger) *HTTPClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClient{client: client, breaker: breaker, log: log}
}

// NewHTTPClientFor builds a client whose breaker is named after the provider.
func NewHTTPClientFor(name string, timeout time.Duration, log *zap.Logger) *HTTPClient {
	return NewHTTPClient(&http.Client{Timeout: timeout}, New(DefaultSettings(name), log), log)
}

// StatusError is an upstream response the breaker counted as a failure.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Body)
}

func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	result, err := c.breaker.Execute(req.Context(), func(ctx context.Context) (interface{}, error) {
		resp, err := c.client.Do(req.WithContext(ctx))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
		}
		return resp, nil
	})

	if err != nil {
		if IsOpen(err) {
			c.log.Warn("Circuit breaker open, request blocked",
				zap.String("host", req.URL.Host),
				zap.String("breaker", c.breaker.Name()),
			)
		}
		return nil, err
	}
	return result.(*http.Response), nil
}

func (c *HTTPClient) Breaker() *Breaker {
	return c.breaker
}
