package twitterbot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/google/uuid"
)

// maxRateLimitWaits bounds how many reset windows a single request sleeps through.
const maxRateLimitWaits = 3

// doGET executes a signed GET with cache lookup, rate-limit handling and
// retries on transport errors and configured status codes.
func (c *Client) doGET(ctx context.Context, endpoint, url string) ([]byte, error) {
	if c.cfg.Cache != nil {
		if body, ok := c.cfg.Cache.Get(url); ok {
			slog.Debug("cache hit", slog.String("endpoint", endpoint))
			return body, nil
		}
	}

	backoff := stealth.BackoffConfig{
		InitialWait: c.cfg.RetryDelay,
		MaxWait:     c.cfg.RetryDelay * 8,
		Multiplier:  2.0,
	}

	var lastErr error
	attempt, waits := 0, 0
	for attempt <= c.cfg.RetryCount {
		if err := c.awaitRateLimit(ctx, endpoint); err != nil {
			return nil, err
		}

		reqID := uuid.NewString()
		start := time.Now()
		body, status, hdrs, err := c.do(ctx, url)
		slog.Debug("request",
			slog.String("request_id", reqID),
			slog.String("endpoint", endpoint),
			slog.Int("status", status),
			slog.Int("attempt", attempt+1),
			slog.Duration("took", time.Since(start)))

		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err

		case status == http.StatusTooManyRequests:
			until := parseRateLimitReset(hdrs.Get("x-rate-limit-reset"))
			c.limiter.MarkRateLimited(endpoint, until)
			slog.Warn("rate limited",
				slog.String("request_id", reqID),
				slog.String("endpoint", endpoint),
				slog.Time("reset", until))
			if !c.cfg.WaitOnRateLimit || waits >= maxRateLimitWaits {
				return nil, newAPIError(endpoint, status, body)
			}
			waits++
			continue

		case status == http.StatusOK:
			if c.cfg.Cache != nil {
				c.cfg.Cache.Set(url, body)
			}
			return body, nil

		case c.cfg.shouldRetry(status):
			lastErr = newAPIError(endpoint, status, body)
			slog.Warn("retryable status",
				slog.String("request_id", reqID),
				slog.String("endpoint", endpoint),
				slog.Int("status", status),
				slog.String("body", truncateBytes(body, 500)))

		default:
			return nil, newAPIError(endpoint, status, body)
		}

		attempt++
		if attempt > c.cfg.RetryCount {
			break
		}
		if c.cfg.RetryDelay > 0 {
			delay := backoff.Duration(attempt - 1)
			if delay <= 0 {
				delay = c.cfg.RetryDelay
			}
			if err := sleepCtx(ctx, delay); err != nil {
				return nil, err
			}
		}
	}

	if c.cfg.RetryCount == 0 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%s failed after %d attempts: %w", endpoint, c.cfg.RetryCount+1, lastErr)
}

// do sends one signed GET and reads the full body.
func (c *Client) do(ctx context.Context, url string) ([]byte, int, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, resp.Header, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, resp.Header, nil
}

// awaitRateLimit blocks until the endpoint's rate-limit window resets, or
// fails fast when waiting is disabled.
func (c *Client) awaitRateLimit(ctx context.Context, endpoint string) error {
	if !c.limiter.IsRateLimited(endpoint) {
		return nil
	}
	until := c.limiter.AvailableAt(endpoint)
	if !c.cfg.WaitOnRateLimit {
		return &APIError{
			Endpoint: endpoint,
			Status:   http.StatusTooManyRequests,
			Message:  "rate limited until " + until.Format(time.RFC3339),
			class:    errRateLimit,
		}
	}
	slog.Info("waiting for rate limit reset",
		slog.String("endpoint", endpoint),
		slog.Duration("wait", time.Until(until)))
	return sleepCtx(ctx, time.Until(until))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRetryable reports whether err is a transient failure worth retrying later.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= 500 || apiErr.class == errInternal
	}
	return false
}
