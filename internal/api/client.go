package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"schedly/internal/config"
	"schedly/internal/metrics"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 4 << 20

// resource names one REST collection and its fixed error messages.
type resource struct {
	path     string
	plural   string
	singular string
	title    string
}

var (
	servicesResource     = resource{path: "/api/services", plural: "services", singular: "service", title: "Service"}
	appointmentsResource = resource{path: "/api/appointments", plural: "appointments", singular: "appointment", title: "Appointment"}
)

func (r resource) itemPath(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

// Client calls the scheduling REST API. Session credentials travel as
// cookies in the client's jar.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      RetryPolicy
	logger     *zerolog.Logger
}

// NewClient constructs a client for cfg.BaseURL. jar may be nil, in which
// case no session is kept between calls.
func NewClient(cfg config.APIConfig, jar http.CookieJar, logger *zerolog.Logger) *Client {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout, Jar: jar},
		retry:      retryPolicyFromConfig(cfg.Retry),
		logger:     logger,
	}
	if cfg.RateLimit.RPS > 0 {
		burst := cfg.RateLimit.Burst
		if burst <= 0 {
			burst = 5
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), burst)
	}
	return c
}

type response struct {
	status int
	body   []byte
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// decode unmarshals the body into out. A body that is not JSON means the
// backend is not the API we expect, so it is reported as a network error.
func (r *response) decode(res, op string, out any) error {
	if err := json.Unmarshal(r.body, out); err != nil {
		return &NetworkError{Resource: res, Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// do sends one request. Idempotent requests are retried on network errors.
// A cancelled or expired ctx is returned as ctx.Err(), not as a network
// error, so callers never mistake it for the API being down.
func (c *Client) do(ctx context.Context, res, op, method, path string, in any, idempotent bool) (*response, error) {
	var payload []byte
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s request: %w", res, op, err)
		}
		payload = data
	}

	attempts := 1
	if idempotent && c.retry.MaxRetries > 0 {
		attempts += c.retry.MaxRetries
	}

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, c.retry.NextDelay(attempt-1)); err != nil {
				lastErr = err
				break
			}
		}

		resp, err := c.roundTrip(ctx, method, path, payload)
		if err == nil {
			outcome := metrics.OutcomeOK
			if !resp.ok() {
				outcome = metrics.OutcomeHTTPError
			}
			metrics.ObserveRequest(res, op, outcome, time.Since(start))
			return resp, nil
		}
		lastErr = err
		c.logger.Debug().Err(err).Str("resource", res).Str("op", op).Int("attempt", attempt).Msg("api request failed")
		if ctx.Err() != nil {
			break
		}
	}

	if err := ctx.Err(); err != nil {
		metrics.ObserveRequest(res, op, metrics.OutcomeCanceled, time.Since(start))
		return nil, err
	}
	metrics.ObserveRequest(res, op, metrics.OutcomeNetworkError, time.Since(start))
	return nil, &NetworkError{Resource: res, Op: op, Err: lastErr}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte) (*response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}
	return &response{status: resp.StatusCode, body: data}, nil
}

func list[T any](ctx context.Context, c *Client, r resource) ([]*T, error) {
	resp, err := c.do(ctx, r.plural, "list", http.MethodGet, r.path, nil, true)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, &Error{Kind: ErrFetch, Message: "Failed to fetch " + r.plural, StatusCode: resp.status}
	}
	var out []*T
	if err := resp.decode(r.plural, "list", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []*T{}
	}
	return out, nil
}

func get[T any](ctx context.Context, c *Client, r resource, id string) (*T, error) {
	resp, err := c.do(ctx, r.plural, "get", http.MethodGet, r.itemPath(id), nil, true)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, &Error{Kind: ErrNotFound, Message: r.title + " not found", StatusCode: resp.status}
	}
	out := new(T)
	if err := resp.decode(r.plural, "get", out); err != nil {
		return nil, err
	}
	return out, nil
}

// save replaces the entity at its own endpoint when id is set and creates
// it otherwise. Saves are never retried: a repeated create could insert twice.
func save[T any](ctx context.Context, c *Client, r resource, id string, item *T) (*T, error) {
	method, path := http.MethodPost, r.path
	if id != "" {
		method, path = http.MethodPut, r.itemPath(id)
	}
	resp, err := c.do(ctx, r.plural, "save", method, path, item, false)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, &Error{Kind: ErrSave, Message: "Failed to save " + r.singular, StatusCode: resp.status}
	}
	out := new(T)
	if err := resp.decode(r.plural, "save", out); err != nil {
		return nil, err
	}
	return out, nil
}

func remove(ctx context.Context, c *Client, r resource, id string) error {
	resp, err := c.do(ctx, r.plural, "delete", http.MethodDelete, r.itemPath(id), nil, true)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return &Error{Kind: ErrDelete, Message: "Failed to delete " + r.singular, StatusCode: resp.status}
	}
	return nil
}
