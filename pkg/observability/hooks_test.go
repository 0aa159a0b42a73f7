package observability

import (
	"context"
	"testing"
	"time"
)

type recordingPipelineHooks struct {
	NoopPipelineHooks
	events []string
}

func (h *recordingPipelineHooks) OnIngestStart(ctx context.Context, source string) {
	h.events = append(h.events, "ingest:"+source)
}

func (h *recordingPipelineHooks) OnAllocateComplete(ctx context.Context, strategy string, relocated, failed int, duration time.Duration, err error) {
	h.events = append(h.events, "allocate:"+strategy)
}

type recordingCacheHooks struct {
	NoopCacheHooks
	hits, misses int
}

func (h *recordingCacheHooks) OnCacheHit(ctx context.Context, keyType string)  { h.hits++ }
func (h *recordingCacheHooks) OnCacheMiss(ctx context.Context, keyType string) { h.misses++ }

func TestDefaultHooksAreNoop(t *testing.T) {
	Reset()
	ctx := context.Background()

	// Must not panic
	Pipeline().OnIngestStart(ctx, "inventory.csv")
	Pipeline().OnIngestComplete(ctx, "inventory.csv", 10, time.Second, nil)
	Pipeline().OnAllocateStart(ctx, "expand-up", 10)
	Pipeline().OnAllocateComplete(ctx, "expand-up", 1, 0, time.Second, nil)
	Pipeline().OnRenderStart(ctx, "drawio")
	Pipeline().OnRenderComplete(ctx, "drawio", 1024, time.Second, nil)
	Cache().OnCacheHit(ctx, "plan")
	Cache().OnCacheMiss(ctx, "plan")
	Cache().OnCacheSet(ctx, "plan", 1024)
}

func TestSetPipelineHooks(t *testing.T) {
	defer Reset()

	h := &recordingPipelineHooks{}
	SetPipelineHooks(h)

	ctx := context.Background()
	Pipeline().OnIngestStart(ctx, "inventory.csv")
	Pipeline().OnAllocateComplete(ctx, "nearest", 2, 1, time.Second, nil)

	if len(h.events) != 2 {
		t.Fatalf("have %d events, want 2", len(h.events))
	}
	if h.events[0] != "ingest:inventory.csv" || h.events[1] != "allocate:nearest" {
		t.Errorf("events = %v", h.events)
	}

	// Embedded no-op methods still satisfy the interface
	Pipeline().OnRenderStart(ctx, "drawio")
}

func TestSetCacheHooks(t *testing.T) {
	defer Reset()

	h := &recordingCacheHooks{}
	SetCacheHooks(h)

	ctx := context.Background()
	Cache().OnCacheHit(ctx, "items")
	Cache().OnCacheHit(ctx, "plan")
	Cache().OnCacheMiss(ctx, "artifact")

	if h.hits != 2 || h.misses != 1 {
		t.Errorf("hits = %d, misses = %d", h.hits, h.misses)
	}
}

func TestSetNilHooksIgnored(t *testing.T) {
	defer Reset()

	h := &recordingCacheHooks{}
	SetCacheHooks(h)
	SetCacheHooks(nil)

	Cache().OnCacheHit(context.Background(), "plan")
	if h.hits != 1 {
		t.Error("nil registration should not replace the current hooks")
	}
}

func TestReset(t *testing.T) {
	h := &recordingCacheHooks{}
	SetCacheHooks(h)
	Reset()

	Cache().OnCacheHit(context.Background(), "plan")
	if h.hits != 0 {
		t.Error("Reset should restore the no-op hooks")
	}
}
