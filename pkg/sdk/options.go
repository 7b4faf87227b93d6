package yelpb

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client

	requestsPerSecond float64
	burst             int
	branchTimeout     time.Duration

	dailyLimit  int64
	rejectOver  bool
	redisAddrs  []string
	redisPass   string
	redisPrefix string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithAPIKey sets the Yelp API key. Required.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = key
	})
}

// WithBaseURL overrides the API base URL (default https://api.yelp.com).
func WithBaseURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = url
	})
}

// WithTimeout sets the per-request HTTP timeout. Default: 30s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithHTTPClient replaces the HTTP client used for source calls.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithRateLimit paces outbound calls to rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return optionFunc(func(c *clientConfig) {
		c.requestsPerSecond = rps
		c.burst = burst
	})
}

// WithBranchTimeout bounds each source call of a combined search. Default: 30s.
func WithBranchTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.branchTimeout = d
	})
}

// WithDailyLimit sets a per-source daily request quota. With reject set,
// calls over the quota fail with ErrQuotaExceeded; otherwise they are only logged.
func WithDailyLimit(limit int64, reject bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.dailyLimit = limit
		c.rejectOver = reject
	})
}

// WithRedis persists quota counters in Redis so they survive restarts.
func WithRedis(addr, password, keyPrefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisAddrs = []string{addr}
		c.redisPass = password
		c.redisPrefix = keyPrefix
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
