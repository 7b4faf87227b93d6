package quota

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/gana36/YELPB/internal/domain"
	"github.com/gana36/YELPB/internal/domain/business"
	"github.com/gana36/YELPB/internal/domain/search/request"
	"github.com/gana36/YELPB/internal/domain/search/result"
	"github.com/gana36/YELPB/internal/metrics"
)

type mockChat struct {
	calls int
	res   result.Chat
	err   error
}

func (m *mockChat) Invoke(_ context.Context, _ request.Chat) (result.Chat, error) {
	m.calls++
	return m.res, m.err
}

type mockListing struct {
	calls int
	res   result.Listing
	err   error
}

func (m *mockListing) Search(_ context.Context, _ request.Listing) (result.Listing, error) {
	m.calls++
	return m.res, m.err
}

func chatReq(t *testing.T) request.Chat {
	t.Helper()
	req, err := request.NewChat("tacos", nil, "", "")
	if err != nil {
		t.Fatalf("NewChat: %v", err)
	}
	return req
}

func TestGuardedChat_RecordsAndPublishesRemaining(t *testing.T) {
	inner := &mockChat{res: result.Chat{ChatID: "c1"}}
	tr := NewTracker("chat", "yelpb:", 10, ActionReject, zap.NewNop())
	g := NewGuardedChat(inner, "chat", tr, zap.NewNop())

	res, err := g.Invoke(context.Background(), chatReq(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ChatID != "c1" || inner.calls != 1 {
		t.Errorf("res=%+v calls=%d", res, inner.calls)
	}
	if tr.DailyUsed() != 1 {
		t.Errorf("expected 1 recorded call, got %d", tr.DailyUsed())
	}
	if got := testutil.ToFloat64(metrics.SourceQuotaRemaining.WithLabelValues("chat")); got != 9 {
		t.Errorf("quota gauge = %v, want 9", got)
	}
}

func TestGuardedChat_FailedCallStillCounts(t *testing.T) {
	inner := &mockChat{err: domain.ErrSourceUnavailable}
	tr := NewTracker("chat", "yelpb:", 10, ActionReject, zap.NewNop())

	_, err := NewGuardedChat(inner, "chat", tr, nil).Invoke(context.Background(), chatReq(t))
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected inner error, got %v", err)
	}
	if tr.DailyUsed() != 1 {
		t.Errorf("expected the failed call to count, got %d", tr.DailyUsed())
	}
}

func TestGuardedListing_RejectSkipsInner(t *testing.T) {
	inner := &mockListing{}
	tr := NewTracker("listing", "yelpb:", 1, ActionReject, zap.NewNop())
	tr.Record(1)
	g := NewGuardedListing(inner, "listing", tr, zap.NewNop())

	req, _ := request.NewListing(request.ListingParams{Coordinates: &business.Coordinates{Latitude: 1, Longitude: 2}})
	_, err := g.Search(context.Background(), req)
	if !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if inner.calls != 0 {
		t.Error("inner source must not be called once the quota is spent")
	}
}

func TestGuardedListing_NilQuotaPassesThrough(t *testing.T) {
	inner := &mockListing{res: result.Listing{Total: 3}}
	g := NewGuardedListing(inner, "listing", nil, nil)

	req, _ := request.NewListing(request.ListingParams{Coordinates: &business.Coordinates{Latitude: 1, Longitude: 2}})
	res, err := g.Search(context.Background(), req)
	if err != nil || res.Total != 3 {
		t.Fatalf("res=%+v err=%v", res, err)
	}
}
