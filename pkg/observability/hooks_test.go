package observability

import (
	"context"
	"testing"
	"time"
)

type recordingConvertHooks struct {
	NoopConvertHooks
	layoutStarts int
}

func (h *recordingConvertHooks) OnLayoutStart(ctx context.Context, nodeCount int) {
	h.layoutStarts++
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

	// Calling no-op hooks must never panic.
	Convert().OnParseStart(ctx, "flow.json")
	Convert().OnLayoutComplete(ctx, 10, time.Millisecond, nil)
	Cache().OnCacheHit(ctx, "layout")
	Store().OnRunSaved(ctx, "run-1")
}

func TestSetAndResetHooks(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	convert := &recordingConvertHooks{}
	SetConvertHooks(convert)
	Convert().OnLayoutStart(context.Background(), 5)
	if convert.layoutStarts != 1 {
		t.Errorf("layout starts = %d, want 1", convert.layoutStarts)
	}

	cacheRec := &recordingCacheHooks{}
	SetCacheHooks(cacheRec)
	Cache().OnCacheHit(context.Background(), "layout")
	Cache().OnCacheMiss(context.Background(), "artifact")
	if cacheRec.hits != 1 || cacheRec.misses != 1 {
		t.Errorf("cache events = %d hits / %d misses, want 1/1", cacheRec.hits, cacheRec.misses)
	}

	Reset()
	if _, ok := Convert().(*recordingConvertHooks); ok {
		t.Error("Reset did not restore no-op convert hooks")
	}
}

func TestSetNilHooksKeepsCurrent(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	convert := &recordingConvertHooks{}
	SetConvertHooks(convert)
	SetConvertHooks(nil)
	if _, ok := Convert().(*recordingConvertHooks); !ok {
		t.Error("SetConvertHooks(nil) should keep the current hooks")
	}
}
