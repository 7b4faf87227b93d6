// Package gemini implements the text analyzer on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/gana36/YELPB/internal/domain"
	"github.com/gana36/YELPB/internal/domain/assistant"
	"github.com/gana36/YELPB/internal/metrics"
)

const provider = "gemini"

// Config holds the Gemini analyzer settings.
type Config struct {
	APIKey  string
	BaseURL string // empty = public Gemini API endpoint
	Model   string
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Analyzer extracts dining preferences with a JSON-typed generateContent call.
type Analyzer struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewAnalyzer creates a Gemini analyzer.
func NewAnalyzer(ctx context.Context, cfg *Config) (*Analyzer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	cc := &genai.ClientConfig{
		Backend:    genai.BackendGeminiAPI,
		APIKey:     cfg.APIKey,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{client: client, model: cfg.Model, logger: logger}, nil
}

// Analyze sends text for preference extraction and parses the JSON reply.
func (a *Analyzer) Analyze(ctx context.Context, text string) (assistant.Preferences, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(assistant.SystemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0.2),
	}

	start := time.Now()
	resp, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(assistant.AnalysisPrompt(text)), config)
	duration := time.Since(start)

	if err != nil {
		metrics.AnalyzerRequestsTotal.WithLabelValues(provider, "error").Inc()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return assistant.Preferences{}, fmt.Errorf("analyzer request: %w", ctxErr)
		}
		return assistant.Preferences{}, parseAPIError(err)
	}

	out := resp.Text()
	if out == "" {
		metrics.AnalyzerRequestsTotal.WithLabelValues(provider, "error").Inc()
		return assistant.Preferences{}, fmt.Errorf("empty analyzer response: %w", domain.ErrAnalyzerError)
	}

	prefs, err := assistant.ParsePreferences([]byte(out))
	if err != nil {
		metrics.AnalyzerRequestsTotal.WithLabelValues(provider, "error").Inc()
		return assistant.Preferences{}, err
	}

	metrics.AnalyzerRequestsTotal.WithLabelValues(provider, "success").Inc()
	fields := []zap.Field{
		zap.String("provider", provider),
		zap.String("model", a.model),
		zap.Duration("duration", duration),
	}
	if resp.UsageMetadata != nil {
		fields = append(fields, zap.Int32("total_tokens", resp.UsageMetadata.TotalTokenCount))
	}
	a.logger.Debug("Preferences analyzed", fields...)
	return prefs, nil
}

// HealthCheck verifies the configured model is reachable.
func (a *Analyzer) HealthCheck(ctx context.Context) error {
	if _, err := a.client.Models.Get(ctx, a.model, nil); err != nil {
		return fmt.Errorf("get model %s: %w", a.model, err)
	}
	return nil
}

// parseAPIError wraps every provider failure with domain.ErrAnalyzerError for 502 mapping.
func parseAPIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("analyzer API error %d: %s: %w", apiErr.Code, apiErr.Message, domain.ErrAnalyzerError)
	}
	return fmt.Errorf("analyzer request failed: %v: %w", err, domain.ErrAnalyzerError)
}
