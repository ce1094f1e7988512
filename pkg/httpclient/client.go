package httpclient

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"skycache/pkg/config"
	errs "skycache/pkg/errors"
	"skycache/pkg/logger"
	"skycache/pkg/ratelimit"
	"skycache/pkg/retry"
)

// New builds the client used for small requests: whole-request timeout
func New(cfg config.HTTPConfig) *http.Client {
	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport(cfg),
	}
}

// NewStreaming builds the client used for file downloads and catalog
// queries. It has no whole-request timeout so long bodies are not cut off;
// only waiting for response headers is bounded.
func NewStreaming(cfg config.HTTPConfig) *http.Client {
	return &http.Client{Transport: transport(cfg)}
}

func transport(cfg config.HTTPConfig) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          4,
	}
}

// Client performs paced, retried GET requests and maps failures onto the
// typed errors in pkg/errors.
type Client struct {
	http      *http.Client
	userAgent string
	limiter   ratelimit.Limiter
	retry     *retry.Config
	logger    logger.Logger
}

// Options configures a Client. Zero values get no pacing, no retries and a
// no-op logger.
type Options struct {
	UserAgent string
	Limiter   ratelimit.Limiter
	Retry     *retry.Config
	Logger    logger.Logger
}

// NewClient wraps hc with pacing, retries and request logging
func NewClient(hc *http.Client, opts Options) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.Unlimited{}
	}
	if opts.Retry == nil {
		opts.Retry = &retry.Config{MaxAttempts: 1}
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger()
	}
	return &Client{
		http:      hc,
		userAgent: opts.UserAgent,
		limiter:   opts.Limiter,
		retry:     opts.Retry,
		logger:    opts.Logger,
	}
}

// GetBytes fetches url and returns the whole body. Reading the body is
// part of each attempt, so a truncated body is retried.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	return retry.DoWithResult(ctx, func(ctx context.Context) ([]byte, error) {
		resp, err := c.once(ctx, url)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &errs.Error{Type: errs.ErrorTypeNetwork, URL: url, Message: "failed to read response body", Err: err}
		}
		return body, nil
	}, c.retry)
}

// Open fetches url and returns the 2xx response for streaming. Only
// establishing the response is retried; the caller owns and closes Body.
func (c *Client) Open(ctx context.Context, url string) (*http.Response, error) {
	return retry.DoWithResult(ctx, func(ctx context.Context) (*http.Response, error) {
		return c.once(ctx, url)
	}, c.retry)
}

func (c *Client) once(ctx context.Context, url string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    url,
	})

	resp, err := c.http.Do(req)
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.WarnWithFields("HTTP request failed", map[string]interface{}{
			"method":      req.Method,
			"url":         url,
			"error":       err.Error(),
			"duration_ms": elapsed,
		})
		return nil, &errs.Error{Type: errs.ErrorTypeNetwork, URL: url, Message: "request failed", Err: err}
	}

	logger.LogRequest(c.logger, req.Method, url, resp.StatusCode, elapsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// drain a little so the connection can be reused
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		resp.Body.Close()
		return nil, errs.FromStatus(resp.StatusCode, url)
	}
	return resp, nil
}
