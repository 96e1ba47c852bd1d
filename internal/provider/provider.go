// Package provider reads learner analytics from the Raw Data Provider over HTTP.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/skillpulse/skillpulse/internal/contract"
	"github.com/skillpulse/skillpulse/schema"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 32 << 20

// maxErrorBody caps how much of an error body is kept on a StatusError.
const maxErrorBody = 512

var (
	// ErrNoProvider is returned when no provider URL is configured.
	ErrNoProvider = errors.New("no provider URL configured")

	// ErrSuperseded is returned when a newer request replaced this one.
	ErrSuperseded = errors.New("request superseded by a newer request")
)

// StatusError is returned for non-2xx provider responses.
type StatusError struct {
	Code int
	URL  string
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("provider returned %d for %s", e.Code, e.URL)
	}
	return fmt.Sprintf("provider returned %d for %s: %s", e.Code, e.URL, e.Body)
}

// Retryable reports whether the status is worth retrying.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBackOff sets the backoff policy factory. Each request gets a fresh policy.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(c *Client) { c.newBackOff = newBackOff }
}

// Client implements contract.DataProvider against a primary base URL
// with an optional fallback base URL.
type Client struct {
	baseURLs   []string
	httpClient *http.Client
	maxRetries int
	pageSize   int
	newBackOff func() backoff.BackOff
	log        *logrus.Entry
}

var _ contract.DataProvider = (*Client)(nil)

// NewClient builds a provider client from the config.
func NewClient(cfg *contract.Config, opts ...Option) (*Client, error) {
	if cfg.ProviderURL == "" {
		return nil, ErrNoProvider
	}

	timeout := cfg.ProviderTimeout
	if timeout <= 0 {
		timeout = contract.DefaultProviderTimeout
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = contract.DefaultPageSize
	}

	c := &Client{
		baseURLs:   []string{cfg.ProviderURL},
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: cfg.ProviderRetries,
		pageSize:   pageSize,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 250 * time.Millisecond
			b.MaxInterval = 5 * time.Second
			b.MaxElapsedTime = timeout
			return b
		},
		log: logrus.WithField("component", "provider"),
	}
	if cfg.ProviderFallbackURL != "" && cfg.ProviderFallbackURL != cfg.ProviderURL {
		c.baseURLs = append(c.baseURLs, cfg.ProviderFallbackURL)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// PageSize returns the page size used when walking all learners.
func (c *Client) PageSize() int {
	return c.pageSize
}

// getJSON fetches an endpoint and decodes the body into out.
// Each base URL is tried in order; the first success wins.
func (c *Client) getJSON(ctx context.Context, endpoint schema.Endpoint, params url.Values, out any) error {
	var lastErr error
	for i, base := range c.baseURLs {
		body, err := c.getWithRetry(ctx, base, endpoint, params)
		if err == nil {
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("decode %s response: %w", endpoint, err)
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		lastErr = err
		if i+1 < len(c.baseURLs) {
			c.log.WithError(err).WithField("endpoint", endpoint).Warn("primary provider failed, trying fallback")
		}
	}
	return lastErr
}

// getWithRetry performs a GET with exponential backoff.
// Network errors, 429 and 5xx are retried; other statuses fail immediately.
func (c *Client) getWithRetry(ctx context.Context, base string, endpoint schema.Endpoint, params url.Values) ([]byte, error) {
	target := base + "/" + string(endpoint)
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	reqID := uuid.NewString()
	log := c.log.WithFields(logrus.Fields{
		"req_id":   reqID,
		"endpoint": endpoint,
	})

	var (
		body    []byte
		attempt int
	)
	op := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", reqID)

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			log.WithError(err).WithField("attempt", attempt).Debug("provider request failed")
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"attempt":  attempt,
			"status":   resp.StatusCode,
			"duration": time.Since(start).String(),
		}).Debug("provider response")

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			body = data
			return nil
		}

		statusErr := &StatusError{Code: resp.StatusCode, URL: target, Body: contract.TruncateText(string(data), maxErrorBody)}
		if statusErr.Retryable() {
			return statusErr
		}
		return backoff.Permanent(statusErr)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(max(c.maxRetries, 0))), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, fmt.Errorf("GET %s: %w", target, err)
	}
	return body, nil
}
