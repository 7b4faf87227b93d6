package yelp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/gana36/YELPB/internal/domain/search/request"
	"github.com/gana36/YELPB/internal/domain/search/result"
	"github.com/gana36/YELPB/internal/metrics"
)

const chatPath = "/ai/chat/v2"

// ChatClient is the conversational source.
type ChatClient struct {
	client *Client
}

// NewChatClient creates the conversational source on a shared client.
func NewChatClient(c *Client) *ChatClient {
	return &ChatClient{client: c}
}

type chatPayload struct {
	Query       string       `json:"query"`
	UserContext *userContext `json:"user_context,omitempty"`
	ChatID      string       `json:"chat_id,omitempty"`
}

type userContext struct {
	Locale    string   `json:"locale"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Invoke sends one conversational turn. A non-empty ChatID in req continues
// an existing conversation; the result carries the id for the next turn.
func (c *ChatClient) Invoke(ctx context.Context, req request.Chat) (result.Chat, error) {
	payload := chatPayload{
		Query:       req.Query(),
		UserContext: &userContext{Locale: req.Locale()},
		ChatID:      req.ChatID(),
	}
	if coords := req.Coordinates(); coords != nil {
		lat, lon := coords.Latitude, coords.Longitude
		payload.UserContext.Latitude = &lat
		payload.UserContext.Longitude = &lon
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return result.Chat{}, fmt.Errorf("marshal chat payload: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.client.baseURL+chatPath, bytes.NewReader(data))
	if err != nil {
		return result.Chat{}, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	body, err := c.client.do(ctx, SourceChat, httpReq)
	if err != nil {
		return result.Chat{}, err
	}
	return c.parse(body)
}

func (c *ChatClient) parse(body []byte) (result.Chat, error) {
	env, err := envelope(SourceChat, body)
	if err != nil {
		return result.Chat{}, err
	}

	var res result.Chat
	if resp, ok := env.Object("response"); ok {
		res.ResponseText, _ = resp.String("text")
	}
	res.ChatID, _ = env.Identifier("chat_id")
	res.Types = env.Raw("types")
	res.Raw = json.RawMessage(body)

	var dropped int
	res.Businesses, dropped = c.client.extractor.Entities(SourceChat, env.Raw("entities"))
	if dropped > 0 {
		metrics.SourceCandidatesDropped.WithLabelValues(SourceChat).Add(float64(dropped))
	}
	c.client.logger.Debug("Chat response parsed",
		zap.String("chat_id", res.ChatID),
		zap.Int("businesses", len(res.Businesses)),
	)
	return res, nil
}
