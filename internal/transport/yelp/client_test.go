package yelp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/gana36/YELPB/internal/domain"
	"github.com/gana36/YELPB/internal/domain/business"
	"github.com/gana36/YELPB/internal/domain/search/request"
	"github.com/gana36/YELPB/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterSourceMetrics()
	os.Exit(m.Run())
}

var sf = &business.Coordinates{Latitude: 37.7749, Longitude: -122.4194}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return NewClient(Config{
		APIKey:  "test-key",
		BaseURL: server.URL + "/",
		Timeout: 5 * time.Second,
		Logger:  zap.NewNop(),
	})
}

const chatResponseBody = `{
	"response": {"text": "Here are some great pasta spots."},
	"chat_id": "chat-abc",
	"types": ["business_search"],
	"entities": [
		{"businesses": [
			{"id": "pasta-place", "name": "Pasta Place", "rating": 4.5, "distance": 1609,
			 "contextual_info": {"photos": [{"original_url": "https://img/pasta.jpg"}]}},
			{"id": "nameless"}
		]},
		{"id": "sushi-bar", "name": "Sushi Bar", "price": "$$$"}
	]
}`

func TestChatClient_Invoke(t *testing.T) {
	var got chatPayload
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/ai/chat/v2" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content type: %s", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, chatResponseBody)
	})

	req, _ := request.NewChat("pasta please", sf, "en-us", "chat-prev")
	res, err := NewChatClient(c).Invoke(context.Background(), req)
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	if got.Query != "pasta please" || got.ChatID != "chat-prev" {
		t.Errorf("payload = %+v", got)
	}
	if got.UserContext == nil || got.UserContext.Locale != "en_US" ||
		got.UserContext.Latitude == nil || *got.UserContext.Latitude != sf.Latitude {
		t.Errorf("user_context = %+v", got.UserContext)
	}

	if res.ResponseText != "Here are some great pasta spots." {
		t.Errorf("ResponseText = %q", res.ResponseText)
	}
	if res.ChatID != "chat-abc" {
		t.Errorf("ChatID = %q", res.ChatID)
	}
	if want := []string{"pasta-place", "sushi-bar"}; !reflect.DeepEqual(business.IDs(res.Businesses), want) {
		t.Fatalf("businesses = %v, want %v", business.IDs(res.Businesses), want)
	}
	pasta := res.Businesses[0]
	if pasta.Distance == nil || *pasta.Distance != "1.0 mi" {
		t.Errorf("distance = %v", pasta.Distance)
	}
	if pasta.ImageURL == nil || *pasta.ImageURL != "https://img/pasta.jpg" {
		t.Errorf("image = %v", pasta.ImageURL)
	}
	if string(res.Types) != `["business_search"]` {
		t.Errorf("types = %s", res.Types)
	}
	if len(res.Raw) == 0 {
		t.Error("raw response should be kept for the debug channel")
	}
}

func TestChatClient_NoCoordinatesOmitsLatLon(t *testing.T) {
	var raw map[string]json.RawMessage
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		_, _ = io.WriteString(w, `{"response":{"text":"hi"},"chat_id":"x"}`)
	})

	req, _ := request.NewChat("hello", nil, "", "")
	res, err := NewChatClient(c).Invoke(context.Background(), req)
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if _, ok := raw["chat_id"]; ok {
		t.Error("chat_id must be omitted for a new conversation")
	}
	if uc := string(raw["user_context"]); uc != `{"locale":"en_US"}` {
		t.Errorf("user_context = %s", uc)
	}
	if res.Businesses == nil || len(res.Businesses) != 0 {
		t.Errorf("missing entities should yield an empty list, got %#v", res.Businesses)
	}
}

func TestChatClient_KeyedEntities(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"chat_id":"k","entities":{"e2":{"id":"b","name":"B"},"e1":{"id":"a","name":"A"}}}`)
	})
	req, _ := request.NewChat("q", nil, "", "")
	res, err := NewChatClient(c).Invoke(context.Background(), req)
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if want := []string{"b", "a"}; !reflect.DeepEqual(business.IDs(res.Businesses), want) {
		t.Errorf("businesses = %v, want document order %v", business.IDs(res.Businesses), want)
	}
}

func TestChatClient_DuplicateAcrossContainers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"entities":[
			{"businesses":[{"id":"1","name":"Pasta Place"}]},
			{"businesses":[{"id":"1","name":"Pasta Place dup"},{"id":"2","name":"Sushi Bar"}]}
		]}`)
	})
	req, _ := request.NewChat("q", nil, "", "")
	res, err := NewChatClient(c).Invoke(context.Background(), req.OneShot())
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if want := []string{"1", "2"}; !reflect.DeepEqual(business.IDs(res.Businesses), want) {
		t.Fatalf("businesses = %v, want %v", business.IDs(res.Businesses), want)
	}
	if res.Businesses[0].Name != "Pasta Place" {
		t.Errorf("kept %q, want the first occurrence", res.Businesses[0].Name)
	}
}

func TestChatClient_ErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"code":"TOKEN_INVALID","description":"Invalid access token"}}`)
	})
	req, _ := request.NewChat("q", nil, "", "")
	_, err := NewChatClient(c).Invoke(context.Background(), req)
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	var srcErr *domain.SourceError
	if !errors.As(err, &srcErr) || srcErr.StatusCode != 401 || srcErr.Body != "Invalid access token" {
		t.Errorf("source error = %+v", srcErr)
	}
}

func TestChatClient_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<html>oops</html>`)
	})
	req, _ := request.NewChat("q", nil, "", "")
	if _, err := NewChatClient(c).Invoke(context.Background(), req); !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestClient_RateLimitedStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	req, _ := request.NewChat("q", nil, "", "")
	_, err := NewChatClient(c).Invoke(context.Background(), req)
	if !errors.Is(err, domain.ErrRateLimited) || !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected rate limited source error, got %v", err)
	}
}

func TestClient_ContextTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	req, _ := request.NewChat("q", nil, "", "")
	_, err := NewChatClient(c).Invoke(ctx, req)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestClient_RecordsUsageAndMetrics(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"businesses":[],"total":0}`)
	})
	before := testutil.ToFloat64(metrics.SourceRequestsTotal.WithLabelValues(SourceListing, "200"))

	ctx, usage := domain.NewContextWithSourceUsage(context.Background())
	req, _ := request.NewListing(request.ListingParams{Coordinates: sf})
	if _, err := NewListingClient(c).Search(ctx, req); err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if usage.Calls()[SourceListing] != 1 {
		t.Errorf("usage calls = %v", usage.Calls())
	}
	after := testutil.ToFloat64(metrics.SourceRequestsTotal.WithLabelValues(SourceListing, "200"))
	if after-before != 1 {
		t.Errorf("requests_total delta = %v", after-before)
	}
}

func TestClient_Pacing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"chat_id":"x"}`)
	}))
	defer server.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: server.URL, RequestsPerSecond: 1, Burst: 1})
	chat := NewChatClient(c)
	req, _ := request.NewChat("q", nil, "", "")

	if _, err := chat.Invoke(context.Background(), req); err != nil {
		t.Fatalf("first call: %v", err)
	}
	// burst spent: the second call must wait ~1s, longer than this deadline
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := chat.Invoke(ctx, req)
	if err == nil || !strings.Contains(err.Error(), "rate limiter") {
		t.Fatalf("expected limiter wait error, got %v", err)
	}
}
