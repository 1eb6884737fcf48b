// Package observability lets the serve command watch what polytree does
// without the pipeline, cache or server importing a logging backend.
//
// Each of those packages reports events to a global hook set. The set
// starts out as no-ops and is replaced once at startup:
//
//	hooks := observability.NewLogHooks(logger)
//	observability.SetPipelineHooks(hooks)
//	observability.SetCacheHooks(hooks)
//	defer observability.Reset()
//
// [LogHooks] implements all three interfaces.
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks sees reductions and renders. kind is "polymer" or
// "license", size is the input length in bytes and nodes the size of the
// reduced tree.
type PipelineHooks interface {
	OnReduceStart(ctx context.Context, kind string, size int)
	OnReduceComplete(ctx context.Context, kind string, nodes int, duration time.Duration, err error)
	OnRenderStart(ctx context.Context, vizType string, formats []string)
	OnRenderComplete(ctx context.Context, vizType string, formats []string, duration time.Duration, err error)
}

// CacheHooks sees cache lookups. keyType is "forest" or "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks sees requests to the server. route is the chi route pattern,
// so "/polymer/{format}" rather than "/polymer/svg".
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, route string, err error)
}

type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnReduceStart(context.Context, string, int) {}

func (NoopPipelineHooks) OnReduceComplete(context.Context, string, int, time.Duration, error) {}

func (NoopPipelineHooks) OnRenderStart(context.Context, string, []string) {}

func (NoopPipelineHooks) OnRenderComplete(context.Context, string, []string, time.Duration, error) {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// hookSet is the registered hooks. It is only replaced whole under mu.
type hookSet struct {
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

func noopHooks() hookSet {
	return hookSet{NoopPipelineHooks{}, NoopCacheHooks{}, NoopHTTPHooks{}}
}

var (
	mu      sync.RWMutex
	current = noopHooks()
)

func update(fn func(*hookSet)) {
	mu.Lock()
	defer mu.Unlock()
	fn(&current)
}

func load() hookSet {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// SetPipelineHooks installs h. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		update(func(s *hookSet) { s.pipeline = h })
	}
}

// SetCacheHooks installs h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(s *hookSet) { s.cache = h })
	}
}

// SetHTTPHooks installs h. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(s *hookSet) { s.http = h })
	}
}

func Pipeline() PipelineHooks { return load().pipeline }
func Cache() CacheHooks       { return load().cache }
func HTTP() HTTPHooks         { return load().http }

// Reset puts the no-op hooks back.
func Reset() {
	update(func(s *hookSet) { *s = noopHooks() })
}
