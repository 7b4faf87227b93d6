package chi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	gochi "github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/gana36/YELPB/internal/domain"
	"github.com/gana36/YELPB/internal/domain/business"
	logpkg "github.com/gana36/YELPB/internal/logger"
	"github.com/gana36/YELPB/internal/metrics"
	assistantuc "github.com/gana36/YELPB/internal/usecase/assistant"
	healthuc "github.com/gana36/YELPB/internal/usecase/health"
	searchuc "github.com/gana36/YELPB/internal/usecase/search"
	usageuc "github.com/gana36/YELPB/internal/usecase/usage"
)

// HeaderSourcesDegraded lists the combined search branches that failed.
const HeaderSourcesDegraded = "X-Sources-Degraded"

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, r *http.Request, err error, msg string) bool

// Server serves the restaurant search API.
type Server struct {
	search        *searchuc.Service
	assistant     *assistantuc.Service
	usage         *usageuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	assistant *assistantuc.Service,
	usage *usageuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search:    search,
		assistant: assistant,
		usage:     usage,
		health:    health,
		logger:    logger,
	}
	// Order matters: an upstream 429 is both rate limited and unavailable.
	s.errorHandlers = []errorHandler{
		invalidArgumentHandler,
		sentinelHandler(domain.ErrQuotaExceeded, http.StatusTooManyRequests, ErrorCodeQuotaExceeded),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, ErrorCodeRateLimited),
		sentinelHandler(domain.ErrSourceUnavailable, http.StatusBadGateway, ErrorCodeSourceUnavailable),
		sentinelHandler(domain.ErrAnalyzerError, http.StatusBadGateway, ErrorCodeAnalyzerError),
		sentinelHandler(domain.ErrNotConfigured, http.StatusNotImplemented, ErrorCodeNotConfigured),
	}
	return s
}

// Register mounts all routes on r.
func (s *Server) Register(r gochi.Router) {
	r.Get("/", s.HealthCheck)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api", func(r gochi.Router) {
		r.Route("/yelp", func(r gochi.Router) {
			r.Post("/chat", s.Chat)
			r.Post("/search", s.Search)
			r.Post("/book-reservation", s.BookReservation)
			r.Post("/combined-search", s.CombinedSearch)
			r.Get("/businesses", s.ListBusinesses)
		})
		r.Route("/assistant", func(r gochi.Router) {
			r.Post("/analyze", s.Analyze)
			r.Post("/search", s.AssistantSearch)
		})
		r.Get("/usage", s.GetUsage)
	})
}

// GetUsage handles GET /api/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	report := s.usage.GetReport(r.Context())

	resp := UsageResponse{
		Period:  string(report.Period()),
		Sources: make([]SourceUsage, 0, len(report.Sources())),
	}
	if report.PeriodStart() > 0 {
		start := time.UnixMilli(report.PeriodStart()).UTC()
		end := time.UnixMilli(report.PeriodEnd()).UTC()
		resp.PeriodStartAt = &start
		resp.PeriodEndAt = &end
	}

	for _, src := range report.Sources() {
		b := src.Budget()
		item := SourceUsage{
			Source:   src.Name(),
			Requests: src.Requests(),
			Budget: BudgetStatus{
				RequestsLimit:     b.RequestsLimit(),
				RequestsRemaining: b.RequestsRemaining(),
				IsExhausted:       b.IsExhausted(),
			},
		}
		if !b.Unlimited() && b.ResetsAt() > 0 {
			resetsAt := time.UnixMilli(b.ResetsAt()).UTC()
			item.Budget.ResetsAt = &resetsAt
		}
		resp.Sources = append(resp.Sources, item)
	}

	writeJSON(w, r, http.StatusOK, resp)
}

// HealthCheck handles GET / and GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, r, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	metrics.Handler().ServeHTTP(w, r)
}

func setDegradedHeader(w http.ResponseWriter, usage *domain.SourceUsage) {
	if failed := usage.Failed(); len(failed) > 0 {
		w.Header().Set(HeaderSourcesDegraded, strings.Join(failed, ","))
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code ErrorCode, message string) {
	writeJSON(w, r, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// decodeJSON reads the request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		writeError(w, r, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidArgument,
		domain.ErrQuotaExceeded,
		domain.ErrRateLimited,
		domain.ErrSourceUnavailable,
		domain.ErrAnalyzerError,
		domain.ErrNotConfigured,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, r, status, code, msg)
		return true
	}
}

// invalidArgumentHandler keeps the validation detail: it names the
// offending field and never carries upstream text.
func invalidArgumentHandler(w http.ResponseWriter, r *http.Request, err error, _ string) bool {
	if !errors.Is(err, domain.ErrInvalidArgument) {
		return false
	}
	writeError(w, r, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logpkg.FromContextOr(r.Context(), s.logger)
	logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, r, err, msg) {
			return
		}
	}
	logger.Error("internal error", zap.Error(err))
	writeError(w, r, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

// coordinatesFrom validates an optional latitude/longitude pair.
// Both absent yields nil; one without the other is an error.
func coordinatesFrom(lat, lon *float64) (*business.Coordinates, error) {
	if lat == nil && lon == nil {
		return nil, nil
	}
	if lat == nil || lon == nil {
		return nil, domain.InvalidArgument("latitude and longitude must be given together")
	}
	c, err := business.NewCoordinates(*lat, *lon)
	if err != nil {
		return nil, domain.InvalidArgument("%s", err.Error())
	}
	return &c, nil
}

func nonNil(bs []business.Business) []business.Business {
	if bs == nil {
		return []business.Business{}
	}
	return bs
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
