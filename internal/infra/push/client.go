package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/KasumiMercury/primind-dose-reminder/internal/observability/tracing"
)

const (
	DefaultMaxBatch   = 100
	DefaultMaxRetries = 3
)

var errNonRetryable = errors.New("non-retryable push response")

type ClientConfig struct {
	URL           string
	AccessToken   string
	MaxBatch      int
	MaxRetries    int
	RatePerSecond float64
	Burst         int
	Timeout       time.Duration
}

// Client posts batches of messages to a push gateway speaking the Expo push API.
type Client struct {
	url         string
	accessToken string
	httpClient  *http.Client
	maxBatch    int
	maxRetries  int
	limiter     *rate.Limiter
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = DefaultMaxBatch
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		url:         cfg.URL,
		accessToken: cfg.AccessToken,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		maxBatch:   cfg.MaxBatch,
		maxRetries: cfg.MaxRetries,
		limiter:    rate.NewLimiter(limit, burst),
	}
}

func (c *Client) MaxBatch() int {
	return c.maxBatch
}

func (c *Client) Send(ctx context.Context, messages []Message) ([]Result, error) {
	results := make([]Result, 0, len(messages))

	for start := 0; start < len(messages); start += c.maxBatch {
		end := min(start+c.maxBatch, len(messages))
		chunk := messages[start:end]

		payload, err := json.Marshal(chunk)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal push messages: %w", err)
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		chunkResults, err := c.sendWithRetry(ctx, payload, len(chunk))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			chunkResults = failAll(len(chunk), err.Error())
		}
		results = append(results, chunkResults...)
	}

	return results, nil
}

func (c *Client) sendWithRetry(ctx context.Context, payload []byte, count int) ([]Result, error) {
	ctx, span := tracing.StartPushSpan(ctx, c.url, count)
	defer span.End()

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * 100 * time.Millisecond
			slog.DebugContext(ctx, "retrying push batch",
				slog.Int("message_count", count),
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				tracing.RecordError(span, ctx.Err())
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		results, err := c.doRequest(ctx, payload, count)
		if err == nil {
			tracing.RecordError(span, nil)
			return results, nil
		}
		lastErr = err
		if errors.Is(err, errNonRetryable) {
			break
		}
	}

	slog.WarnContext(ctx, "push batch failed",
		slog.Int("message_count", count),
		slog.Int("max_retries", c.maxRetries),
		slog.String("error", lastErr.Error()),
	)
	tracing.RecordError(span, lastErr)
	return nil, lastErr
}

func (c *Client) doRequest(ctx context.Context, payload []byte, count int) ([]Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", errNonRetryable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status code %d", errNonRetryable, resp.StatusCode)
	}

	var body ticketResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(body.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s: %s", errNonRetryable, body.Errors[0].Code, body.Errors[0].Message)
	}
	if len(body.Data) != count {
		return nil, fmt.Errorf("%w: got %d tickets for %d messages", errNonRetryable, len(body.Data), count)
	}

	results := make([]Result, count)
	for i, t := range body.Data {
		if t.Status == ticketStatusOK && t.ID != "" {
			results[i] = Result{TicketID: t.ID}
			continue
		}
		reason := t.Message
		if t.Details.Error != "" {
			reason = t.Details.Error
		}
		if reason == "" {
			reason = "rejected by push gateway"
		}
		results[i] = Result{Error: reason}
	}
	return results, nil
}

func failAll(count int, reason string) []Result {
	results := make([]Result, count)
	for i := range results {
		results[i] = Result{Error: reason}
	}
	return results
}
