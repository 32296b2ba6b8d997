package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v4"
	"github.com/gbg-hll/watchdog/internal/setup/config"
	"github.com/gbg-hll/watchdog/pkg/utils"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

var ErrUnexpectedStatus = errors.New("unexpected response status")

// requestTimeout bounds a single chat-completion round trip.
const requestTimeout = 60 * time.Second

// Message is a single chat message in a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat-completions endpoint.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

// Client performs chat-completion requests against a bearer-token endpoint.
// Requests are bounded by a semaphore and guarded by a circuit breaker.
// Network and timeout failures are retried with a linearly increasing delay;
// non-2xx responses fail immediately.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	semaphore  *semaphore.Weighted
	config     *config.Grok
	logger     *zap.Logger
}

// NewClient creates a new chat-completions client.
func NewClient(cfg *config.Grok, logger *zap.Logger) *Client {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	settings := gobreaker.Settings{
		Name:        "grok",
		MaxRequests: 1,
		Timeout:     60 * time.Second,
		Interval:    0,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
		OnStateChange: func(_ string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		breaker:    gobreaker.NewCircuitBreaker(settings),
		semaphore:  semaphore.NewWeighted(maxConcurrent),
		config:     cfg,
		logger:     logger.Named("ai_client"),
	}
}

// IsConfigured reports whether a service credential is available.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// CreateCompletion sends a chat-completion request and returns the raw
// response body. Non-2xx responses are not retried; network and timeout
// failures are retried up to the configured attempt count with a delay of
// backoff base * attempt between attempts.
func (c *Client) CreateCompletion(ctx context.Context, request *ChatRequest) ([]byte, error) {
	payload, err := sonic.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	if err := c.semaphore.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("failed to acquire semaphore: %w", err)
	}
	defer c.semaphore.Release(1)

	var (
		body    []byte
		attempt uint64
	)

	operation := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}

		attempt++

		result, err := c.breaker.Execute(func() (any, error) {
			return c.doRequest(ctx, payload)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				c.logger.Error("Circuit breaker rejected request", zap.Error(err))
				return backoff.Permanent(err)
			}

			c.logger.Warn("Chat completion request failed",
				zap.Error(err),
				zap.String("model", request.Model),
				zap.Uint64("attempt", attempt))
			return err
		}

		body = result.([]byte)
		return nil
	}

	backoffBase := time.Duration(c.config.RetryBackoff) * time.Millisecond
	if err := utils.WithLinearRetry(ctx, operation, c.config.MaxAttempts, backoffBase); err != nil {
		return nil, err
	}

	return body, nil
}

// doRequest performs a single POST to the configured endpoint. Status errors
// are marked permanent so the retry loop does not repeat them.
func (c *Client) doRequest(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Error("Chat completion endpoint returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("message", extractErrorMessage(body)))

		return nil, backoff.Permanent(fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode))
	}

	return body, nil
}

// extractErrorMessage pulls a human-readable message out of an error envelope,
// falling back to the raw body.
func extractErrorMessage(body []byte) string {
	var envelope map[string]any
	if err := sonic.Unmarshal(body, &envelope); err != nil {
		return string(body)
	}

	errVal, ok := envelope["error"]
	if !ok {
		return string(body)
	}

	if errMap, ok := errVal.(map[string]any); ok {
		if msg, ok := errMap["message"].(string); ok {
			return msg
		}
		return fmt.Sprintf("%v", errMap)
	}

	return fmt.Sprintf("%v", errVal)
}
