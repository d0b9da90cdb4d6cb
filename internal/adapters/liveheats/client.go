// Package liveheats is a GraphQL client for the Liveheats competition API.
package liveheats

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/fwtrank/pkg/logger"
	"github.com/okian/fwtrank/pkg/metrics"
)

// Client talks to the Liveheats GraphQL endpoint. It is safe for concurrent use.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	timeout       time.Duration
	maxRetries    int
	retryDelay    time.Duration
	maxConcurrent int
	slots         chan struct{}
	logger        logger.Logger
	now           func() time.Time
}

// New creates a Client for baseURL (DefaultURL when empty).
func New(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultURL
	}
	c := &Client{
		baseURL:       baseURL,
		timeout:       defaultTimeout,
		maxRetries:    defaultMaxRetries,
		retryDelay:    defaultRetryDelay,
		maxConcurrent: defaultMaxConcurrent,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout: c.timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 16,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	if c.logger == nil {
		c.logger = logger.Named("liveheats")
	}
	c.slots = make(chan struct{}, c.maxConcurrent)
	return c
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type gqlError struct {
	Message string `json:"message"`
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

// retryable marks failures worth another attempt.
type retryable struct{ err error }

func (r retryable) Error() string { return r.err.Error() }
func (r retryable) Unwrap() error { return r.err }

// execute runs one GraphQL operation and decodes its data into out.
func (c *Client) execute(ctx context.Context, op, query string, vars map[string]any, out any) error {
	payload, err := json.Marshal(request{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("encode %s request: %w", op, err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			c.logger.Info(ctx, "retrying upstream request",
				logger.String("operation", op),
				logger.Int("attempt", attempt),
				logger.Duration("backoff", backoff),
				logger.Error(lastErr))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		data, err := c.post(ctx, payload)
		metrics.RecordUpstreamLatency(op, float64(time.Since(start).Milliseconds()))
		if err == nil {
			metrics.RecordUpstreamRequest(op, "ok")
			if out == nil || len(data) == 0 || string(data) == "null" {
				return nil
			}
			if err := json.Unmarshal(data, out); err != nil {
				return fmt.Errorf("decode %s data: %w", op, err)
			}
			return nil
		}

		metrics.RecordUpstreamRequest(op, statusLabel(err))
		var r retryable
		if !errors.As(err, &r) || ctx.Err() != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		lastErr = err
	}
	return fmt.Errorf("%s: giving up after %d attempts: %w", op, c.maxRetries+1, lastErr)
}

// post sends one request and returns the "data" member of the response.
func (c *Client) post(ctx context.Context, payload []byte) (json.RawMessage, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case c.slots <- struct{}{}:
	}
	defer func() { <-c.slots }()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, retryable{fmt.Errorf("request failed: %w", err)}
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, retryable{fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w %d: %s", ErrUpstreamStatus, resp.StatusCode, truncate(body, 256))
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return nil, retryable{err}
		}
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if len(env.Errors) > 0 {
		msgs := make([]string, 0, len(env.Errors))
		for _, e := range env.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("%w: %s", ErrGraphQL, strings.Join(msgs, "; "))
	}
	return env.Data, nil
}

func statusLabel(err error) string {
	switch {
	case errors.Is(err, ErrGraphQL):
		return "graphql_error"
	case errors.Is(err, ErrUpstreamStatus):
		return "http_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "transport_error"
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "...(" + strconv.Itoa(len(b)) + " bytes)"
}
