package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Dheerajkumar69/AutoReadme/internal/metrics"
)

const maxResponseBytes = 4 << 20

type ClientConfig struct {
	BaseURL string
	APIKey  string
	// Timeout bounds each attempt, not the whole call.
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	// RequestsPerSecond of 0 disables pacing.
	RequestsPerSecond float64
	Burst             int
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:        30 * time.Second,
		MaxAttempts:    3,
		InitialBackoff: 1 * time.Second,
	}
}

// ResilientClient posts JSON to the generation service with a per-attempt
// timeout, exponential backoff between attempts and no retries for client
// errors. Every error it returns is an *Error, except caller cancellation.
type ResilientClient struct {
	cfg     ClientConfig
	http    *http.Client
	limiter *rate.Limiter
	sleep   func(ctx context.Context, d time.Duration) error
	logger  *zap.Logger
	online  atomic.Bool
}

type ClientOption func(*ResilientClient)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *ResilientClient) { c.http = hc }
}

// WithSleep replaces the backoff wait, mainly for tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) ClientOption {
	return func(c *ResilientClient) { c.sleep = fn }
}

func NewResilientClient(cfg ClientConfig, logger *zap.Logger, opts ...ClientOption) *ResilientClient {
	defaults := DefaultClientConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaults.InitialBackoff
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &ResilientClient{
		cfg:    cfg,
		http:   &http.Client{},
		sleep:  sleepContext,
		logger: logger.Named("client"),
	}
	if cfg.RequestsPerSecond > 0 {
		burst := max(cfg.Burst, 1)
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	for _, opt := range opts {
		opt(c)
	}

	c.online.Store(true)
	metrics.ClientOnline.Set(1)
	return c
}

// Online is advisory: false after a transport failure, true again after the
// service answers.
func (c *ResilientClient) Online() bool {
	return c.online.Load()
}

func (c *ResilientClient) setOnline(v bool) {
	c.online.Store(v)
	if v {
		metrics.ClientOnline.Set(1)
	} else {
		metrics.ClientOnline.Set(0)
	}
}

// Send posts payload as JSON to endpoint and returns the response body.
// endpoint is either a path relative to BaseURL or an absolute URL.
func (c *ResilientClient) Send(ctx context.Context, endpoint string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	start := time.Now()
	result, err := c.sendWithRetry(ctx, endpoint, body)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.ClientLatency.WithLabelValues(endpoint, status).Observe(time.Since(start).Seconds())
	return result, err
}

func (c *ResilientClient) sendWithRetry(ctx context.Context, endpoint string, body []byte) (json.RawMessage, error) {
	backoff := c.cfg.InitialBackoff
	var last *Error

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		result, err := c.attempt(ctx, endpoint, body)
		if err == nil {
			metrics.ClientAttempts.WithLabelValues(endpoint, "success").Inc()
			return result, nil
		}

		var clientErr *Error
		if !errors.As(err, &clientErr) {
			// caller cancelled
			return nil, err
		}
		clientErr.Attempts = attempt
		last = clientErr
		metrics.ClientAttempts.WithLabelValues(endpoint, outcomeLabel(clientErr.Kind)).Inc()

		c.logger.Debug("attempt failed",
			zap.String("endpoint", endpoint),
			zap.Int("attempt", attempt),
			zap.String("kind", string(clientErr.Kind)),
			zap.Int("status", clientErr.StatusCode),
			zap.Error(clientErr.cause))

		if !clientErr.Retryable() || attempt == c.cfg.MaxAttempts {
			break
		}

		if err := c.sleep(ctx, backoff); err != nil {
			return nil, err
		}
		backoff *= 2
	}

	return nil, last
}

func (c *ResilientClient) attempt(ctx context.Context, endpoint string, body []byte) (json.RawMessage, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.url(endpoint), bytes.NewReader(body))
	if err != nil {
		return nil, newError(KindClientRejected, 0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, c.transportError(err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("failed to close response body", zap.Error(closeErr))
		}
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, c.transportError(err)
	}

	// the service answered, whatever the status
	c.setOnline(true)

	switch {
	case resp.StatusCode == http.StatusRequestTimeout:
		return nil, newError(KindTimeout, resp.StatusCode, statusError(resp.StatusCode, respBody))
	case resp.StatusCode >= 500:
		return nil, newError(KindServerFault, resp.StatusCode, statusError(resp.StatusCode, respBody))
	case resp.StatusCode >= 400:
		return nil, newError(KindClientRejected, resp.StatusCode, statusError(resp.StatusCode, respBody))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, newError(KindMalformedResponse, resp.StatusCode, statusError(resp.StatusCode, respBody))
	}

	if !json.Valid(respBody) {
		return nil, newError(KindMalformedResponse, resp.StatusCode, fmt.Errorf("response is not valid JSON"))
	}
	return json.RawMessage(respBody), nil
}

func (c *ResilientClient) transportError(err error) *Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return newError(KindTimeout, 0, err)
	}
	c.setOnline(false)
	return newError(KindNetworkUnavailable, 0, err)
}

func (c *ResilientClient) url(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return strings.TrimSuffix(c.cfg.BaseURL, "/") + "/" + strings.TrimPrefix(endpoint, "/")
}

func statusError(status int, body []byte) error {
	detail := strings.TrimSpace(string(body))
	if len(detail) > 200 {
		detail = detail[:200] + "..."
	}
	return fmt.Errorf("request failed with status: %d. Details: %s", status, detail)
}

func outcomeLabel(kind ErrorKind) string {
	switch kind {
	case KindTimeout:
		return "timeout"
	case KindNetworkUnavailable:
		return "network"
	case KindClientRejected:
		return "rejected"
	case KindServerFault:
		return "server_fault"
	}
	return "malformed"
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
