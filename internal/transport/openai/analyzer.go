// Package openai implements the text analyzer on any OpenAI-compatible chat completion API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/gana36/YELPB/internal/domain"
	"github.com/gana36/YELPB/internal/domain/assistant"
	"github.com/gana36/YELPB/internal/metrics"
)

const provider = "openai"

// Analyzer extracts dining preferences with a chat completion in JSON mode.
type Analyzer struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// Config holds the analyzer provider settings.
type Config struct {
	APIKey  string
	BaseURL string // empty = api.openai.com
	Model   string
	Logger  *zap.Logger
}

// NewAnalyzer creates an OpenAI-compatible analyzer.
func NewAnalyzer(cfg *Config) *Analyzer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Analyzer{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: logger,
	}
}

// Analyze sends text for preference extraction and parses the JSON reply.
func (a *Analyzer) Analyze(ctx context.Context, text string) (assistant.Preferences, error) {
	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: assistant.SystemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: assistant.AnalysisPrompt(text)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.2,
	}

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.AnalyzerRequestsTotal.WithLabelValues(provider, "error").Inc()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return assistant.Preferences{}, fmt.Errorf("analyzer request: %w", ctxErr)
		}
		return assistant.Preferences{}, parseAPIError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		metrics.AnalyzerRequestsTotal.WithLabelValues(provider, "error").Inc()
		return assistant.Preferences{}, fmt.Errorf("empty analyzer response: %w", domain.ErrAnalyzerError)
	}

	prefs, err := assistant.ParsePreferences([]byte(resp.Choices[0].Message.Content))
	if err != nil {
		metrics.AnalyzerRequestsTotal.WithLabelValues(provider, "error").Inc()
		return assistant.Preferences{}, err
	}

	metrics.AnalyzerRequestsTotal.WithLabelValues(provider, "success").Inc()
	a.logger.Debug("Preferences analyzed",
		zap.String("provider", provider),
		zap.String("model", a.model),
		zap.Duration("duration", duration),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return prefs, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (a *Analyzer) HealthCheck(ctx context.Context) error {
	if _, err := a.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrAnalyzerError for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrAnalyzerError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("analyzer API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("analyzer API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("analyzer API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("analyzer request failed: %w", wrap)
}

// extractDetail reads {"detail": ...}, the error format of some compatible gateways.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
