package domain

import (
	"context"
	"sync"
)

type sourceUsageKey struct{}

// SourceUsage collects upstream calls and failed branches for a single HTTP request.
// The handler puts it into the context before calling the service; source
// decorators and the reconciliation engine write to it; the handler reads it
// for response headers and the canonical log line. Safe for concurrent use.
type SourceUsage struct {
	mu     sync.Mutex
	calls  map[string]int
	failed []string
}

// NewContextWithSourceUsage returns a context with a source usage collector.
func NewContextWithSourceUsage(ctx context.Context) (context.Context, *SourceUsage) {
	u := &SourceUsage{calls: make(map[string]int)}
	return context.WithValue(ctx, sourceUsageKey{}, u), u
}

// SourceUsageFromContext extracts the collector from context. Returns nil if not set.
func SourceUsageFromContext(ctx context.Context) *SourceUsage {
	u, _ := ctx.Value(sourceUsageKey{}).(*SourceUsage)
	return u
}

// AddCall records one upstream request to source.
func (u *SourceUsage) AddCall(source string) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.calls[source]++
	u.mu.Unlock()
}

// MarkFailed records a branch that contributed nothing because it failed.
func (u *SourceUsage) MarkFailed(branch string) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.failed = append(u.failed, branch)
	u.mu.Unlock()
}

// Calls returns a copy of per-source call counts.
func (u *SourceUsage) Calls() map[string]int {
	if u == nil {
		return nil
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make(map[string]int, len(u.calls))
	for k, v := range u.calls {
		out[k] = v
	}
	return out
}

// Failed returns the failed branches in the order they were recorded.
func (u *SourceUsage) Failed() []string {
	if u == nil {
		return nil
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.failed...)
}
