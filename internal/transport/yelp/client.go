// Package yelp implements the conversational and listing business sources
// on top of the Yelp Fusion AI chat and business search APIs.
package yelp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gana36/YELPB/internal/domain"
	"github.com/gana36/YELPB/internal/domain/entity"
	"github.com/gana36/YELPB/internal/metrics"
)

// Source names used in metrics, logs and usage accounting.
const (
	SourceChat    = "chat"
	SourceListing = "listing"
)

const (
	defaultBaseURL = "https://api.yelp.com"
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 4 << 20 // 4MB guard
)

// Config holds the shared source client settings.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond paces outbound calls; 0 disables pacing.
	RequestsPerSecond float64
	Burst             int
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client is the authenticated HTTP client shared by both sources.
type Client struct {
	apiKey    string
	baseURL   string
	http      *http.Client
	limiter   *rate.Limiter
	extractor *entity.Extractor
	logger    *zap.Logger
}

// NewClient creates a source client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(cfg.Burst, 1))
	}

	return &Client{
		apiKey:    cfg.APIKey,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		http:      hc,
		limiter:   limiter,
		extractor: entity.NewExtractor(cfg.Logger),
		logger:    cfg.Logger,
	}
}

// do sends req with auth headers and returns the response body of a 2xx reply.
// Every non-2xx reply becomes a *domain.SourceError.
func (c *Client) do(ctx context.Context, source string, req *http.Request) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s: wait for rate limiter: %w", source, err)
		}
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	domain.SourceUsageFromContext(ctx).AddCall(source)
	start := time.Now()

	resp, err := c.http.Do(req)

	metrics.SourceRequestDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.SourceRequestsTotal.WithLabelValues(source, "error").Inc()
		// keep ctx errors visible to callers (timeouts, cancellation)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s request: %w", source, ctxErr)
		}
		return nil, fmt.Errorf("%s request: %w: %w", source, domain.ErrSourceUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		metrics.SourceRequestsTotal.WithLabelValues(source, "error").Inc()
		return nil, fmt.Errorf("%s read body: %w: %w", source, domain.ErrSourceUnavailable, err)
	}
	if len(body) > maxBodyBytes {
		metrics.SourceRequestsTotal.WithLabelValues(source, "error").Inc()
		return nil, fmt.Errorf("%s response exceeds %d bytes: %w", source, maxBodyBytes, domain.ErrSourceUnavailable)
	}

	metrics.SourceRequestsTotal.WithLabelValues(source, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		srcErr := domain.NewSourceError(source, resp.StatusCode, errorDescription(body))
		c.logger.Warn("Source returned error status",
			zap.String("source", source),
			zap.Int("status", resp.StatusCode),
			zap.Error(srcErr),
		)
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %w", domain.ErrRateLimited, srcErr)
		}
		return nil, srcErr
	}
	return body, nil
}

// errorDescription extracts {"error":{"description": ...}} from an error body.
func errorDescription(body []byte) string {
	var parsed struct {
		Error struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Error.Description != "" {
		return parsed.Error.Description
	}
	if len(body) > 256 {
		body = body[:256]
	}
	return string(body)
}

// envelope decodes a response body into its top-level fields.
func envelope(source string, body []byte) (entity.Candidate, error) {
	env, ok := entity.ParseCandidate(body)
	if !ok {
		return nil, fmt.Errorf("%s: malformed response: %w", source, domain.ErrSourceUnavailable)
	}
	return env, nil
}
