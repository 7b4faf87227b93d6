package domain

import (
	"context"
	"sync"
	"testing"
)

func TestSourceUsage_NilSafe(t *testing.T) {
	u := SourceUsageFromContext(context.Background())
	if u != nil {
		t.Fatal("expected nil collector without context value")
	}
	u.AddCall("chat")
	u.MarkFailed("listing")
	if u.Calls() != nil || u.Failed() != nil {
		t.Error("nil collector should report nothing")
	}
}

func TestSourceUsage_Concurrent(t *testing.T) {
	ctx, u := NewContextWithSourceUsage(context.Background())
	if SourceUsageFromContext(ctx) != u {
		t.Fatal("collector not stored in context")
	}

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() { defer wg.Done(); u.AddCall("chat") }()
		go func() { defer wg.Done(); u.AddCall("listing") }()
	}
	wg.Wait()
	u.MarkFailed("conversational")

	calls := u.Calls()
	if calls["chat"] != 50 || calls["listing"] != 50 {
		t.Errorf("calls = %v", calls)
	}
	if f := u.Failed(); len(f) != 1 || f[0] != "conversational" {
		t.Errorf("failed = %v", f)
	}
}
