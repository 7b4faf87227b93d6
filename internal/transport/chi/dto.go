package chi

import (
	"encoding/json"
	"time"

	domassistant "github.com/gana36/YELPB/internal/domain/assistant"
	"github.com/gana36/YELPB/internal/domain/business"
)

// ErrorCode is the machine-readable code of an error response.
type ErrorCode string

// Error codes returned by the API.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeValidationFailed  ErrorCode = "validation_failed"
	ErrorCodeQuotaExceeded     ErrorCode = "quota_exceeded"
	ErrorCodeRateLimited       ErrorCode = "rate_limited"
	ErrorCodeSourceUnavailable ErrorCode = "source_unavailable"
	ErrorCodeAnalyzerError     ErrorCode = "analyzer_error"
	ErrorCodeNotConfigured     ErrorCode = "not_configured"
	ErrorCodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// UserContext locates the caller for conversational requests.
type UserContext struct {
	Locale    string   `json:"locale,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// ChatRequest is the body of POST /api/yelp/chat.
type ChatRequest struct {
	Query       string       `json:"query"`
	UserContext *UserContext `json:"user_context,omitempty"`
	ChatID      string       `json:"chat_id,omitempty"`
}

// ChatResponse is one turn of a conversation.
type ChatResponse struct {
	ResponseText string              `json:"response_text"`
	ChatID       string              `json:"chat_id,omitempty"`
	Businesses   []business.Business `json:"businesses"`
	Types        json.RawMessage     `json:"types,omitempty"`
	RawResponse  json.RawMessage     `json:"raw_response,omitempty"`
}

// SearchRequest is the body of POST /api/yelp/search.
type SearchRequest struct {
	Query     string   `json:"query"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Locale    string   `json:"locale,omitempty"`
}

// BookingRequest is the body of POST /api/yelp/book-reservation.
type BookingRequest struct {
	BusinessName string   `json:"business_name"`
	PartySize    int      `json:"party_size,omitempty"`
	Date         string   `json:"date"`
	Time         string   `json:"time"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Locale       string   `json:"locale,omitempty"`
	ChatID       string   `json:"chat_id,omitempty"`
}

// BookingDetails echoes the validated reservation.
type BookingDetails struct {
	BusinessName string `json:"business_name"`
	PartySize    int    `json:"party_size"`
	Date         string `json:"date"`
	Time         string `json:"time"`
}

// BookingResponse is the outcome of a reservation command.
type BookingResponse struct {
	Success        bool                `json:"success"`
	Message        string              `json:"message"`
	ChatID         string              `json:"chat_id,omitempty"`
	BookingDetails BookingDetails      `json:"booking_details"`
	Businesses     []business.Business `json:"businesses"`
}

// CombinedSearchRequest is the body of POST /api/yelp/combined-search.
type CombinedSearchRequest struct {
	Query      string   `json:"query,omitempty"`
	Term       string   `json:"term,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	Radius     int      `json:"radius,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Price      []int    `json:"price,omitempty"`
	Limit      int      `json:"limit,omitempty"`
	Locale     string   `json:"locale,omitempty"`
}

// ListBusinessesParams are the query parameters of GET /api/yelp/businesses.
type ListBusinessesParams struct {
	Latitude   float64
	Longitude  float64
	Term       *string
	Radius     *int
	Categories *[]string
	Price      *[]int
	OpenNow    *bool
	Attributes *[]string
	SortBy     *string
	Limit      *int
	Offset     *int
	Locale     *string
}

// ListBusinessesResponse is one page of a listing search.
type ListBusinessesResponse struct {
	Businesses []business.Business `json:"businesses"`
	Total      int                 `json:"total"`
}

// AnalyzeRequest is the body of POST /api/assistant/analyze.
type AnalyzeRequest struct {
	TextQuery string `json:"text_query"`
}

// AssistantSearchRequest is the body of POST /api/assistant/search.
type AssistantSearchRequest struct {
	TextQuery string   `json:"text_query"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Locale    string   `json:"locale,omitempty"`
	Limit     int      `json:"limit,omitempty"`
}

// AssistantSearchResponse carries the analysis and what it found.
type AssistantSearchResponse struct {
	Analysis    domassistant.Preferences `json:"analysis"`
	SearchQuery string                   `json:"search_query"`
	Businesses  []business.Business      `json:"businesses"`
}

// BudgetStatus is the daily quota state of one source.
type BudgetStatus struct {
	RequestsLimit     int64      `json:"requests_limit"`
	RequestsRemaining int64      `json:"requests_remaining"`
	IsExhausted       bool       `json:"is_exhausted"`
	ResetsAt          *time.Time `json:"resets_at,omitempty"`
}

// SourceUsage is the daily usage of one source.
type SourceUsage struct {
	Source   string       `json:"source"`
	Requests int64        `json:"requests"`
	Budget   BudgetStatus `json:"budget"`
}

// UsageResponse is the body of GET /api/usage.
type UsageResponse struct {
	Period        string        `json:"period"`
	PeriodStartAt *time.Time    `json:"period_start_at,omitempty"`
	PeriodEndAt   *time.Time    `json:"period_end_at,omitempty"`
	Sources       []SourceUsage `json:"sources"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
