package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/polytree/pkg/cache"
	"github.com/matzehuels/polytree/pkg/chain"
	"github.com/matzehuels/polytree/pkg/errors"
	"github.com/matzehuels/polytree/pkg/license"
	"github.com/matzehuels/polytree/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both the CLI and the server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete reduce → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, input []byte, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	input = chain.Parse(input)
	result := &Result{InputHash: cache.Hash(input)}

	// Stage 1: Reduce
	reduceStart := time.Now()
	var produce func(context.Context) (map[string][]byte, error)
	switch opts.Kind {
	case KindPolymer:
		f, hit, err := r.ReduceWithCacheInfo(ctx, input, opts)
		if err != nil {
			return nil, err
		}
		s := f.Stats()
		result.Forest = f
		result.Stats.Nodes = s.Units
		result.Stats.Trunk = s.Trunk
		result.CacheInfo.ReduceHit = hit
		produce = func(ctx context.Context) (map[string][]byte, error) { return RenderForest(ctx, f, opts) }
	case KindLicense:
		root, err := r.ParseLicense(ctx, input, opts)
		if err != nil {
			return nil, err
		}
		result.License = root
		result.Stats.Nodes = root.Count()
		produce = func(ctx context.Context) (map[string][]byte, error) { return RenderLicense(ctx, root, opts) }
	}
	result.Stats.ReduceTime = time.Since(reduceStart)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.renderCached(ctx, result.InputHash, opts, produce)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// polymerInput normalizes input and applies the prefix and size limits.
func polymerInput(input []byte, opts Options) ([]byte, error) {
	seq := chain.Parse(input)
	if opts.Strict {
		if err := errors.ValidatePolymer(seq); err != nil {
			return nil, err
		}
	} else if err := errors.ValidateInputSize(len(seq)); err != nil {
		return nil, err
	}
	if opts.Prefix > 0 && opts.Prefix < len(seq) {
		seq = seq[:opts.Prefix]
	}
	return seq, nil
}

// ReduceWithCacheInfo reduces a polymer with caching and returns cache hit info.
func (r *Runner) ReduceWithCacheInfo(ctx context.Context, input []byte, opts Options) (chain.Forest, bool, error) {
	opts.Kind = KindPolymer
	if err := opts.ValidateForReduce(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	hooks := observability.Pipeline()
	hooks.OnReduceStart(ctx, KindPolymer, len(input))
	start := time.Now()

	seq, err := polymerInput(input, opts)
	if err != nil {
		hooks.OnReduceComplete(ctx, KindPolymer, 0, time.Since(start), err)
		return nil, false, err
	}

	// The hash covers the whole polymer. The prefix is one of the key
	// options, so every animation frame gets its own entry.
	cacheKey := r.Keyer.ForestKey(cache.Hash(chain.Parse(input)), opts.ForestKeyOpts())

	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		if f, err := chain.UnmarshalForest(data); err == nil {
			observability.Cache().OnCacheHit(ctx, "forest")
			hooks.OnReduceComplete(ctx, KindPolymer, f.Stats().Units, time.Since(start), nil)
			return f, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "forest")

	f := chain.Reduce(seq, opts.ReduceOptions()...)
	elapsed := time.Since(start)
	hooks.OnReduceComplete(ctx, KindPolymer, len(seq), elapsed, nil)

	opts.Logger.Info("polymer ready",
		"trunk", f.TrunkLen(),
		"units", len(seq),
		"elapsed", elapsed)

	if data, err := chain.MarshalForest(f); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLForest); err == nil {
			observability.Cache().OnCacheSet(ctx, "forest", len(data))
		}
	}

	return f, false, nil
}

// Reduce is a convenience wrapper that calls ReduceWithCacheInfo and discards the cache hit info.
func (r *Runner) Reduce(ctx context.Context, input []byte, opts Options) (chain.Forest, error) {
	f, _, err := r.ReduceWithCacheInfo(ctx, input, opts)
	return f, err
}

// ParseLicense decodes a license. Decoding is linear in the input and is
// not cached.
func (r *Runner) ParseLicense(ctx context.Context, input []byte, opts Options) (*license.Node, error) {
	opts.Kind = KindLicense
	if err := opts.ValidateForReduce(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	hooks := observability.Pipeline()
	hooks.OnReduceStart(ctx, KindLicense, len(input))
	start := time.Now()

	if err := errors.ValidateInputSize(len(input)); err != nil {
		hooks.OnReduceComplete(ctx, KindLicense, 0, time.Since(start), err)
		return nil, err
	}
	root, err := license.Parse(string(input))
	elapsed := time.Since(start)
	if err != nil {
		hooks.OnReduceComplete(ctx, KindLicense, 0, elapsed, err)
		return nil, err
	}
	hooks.OnReduceComplete(ctx, KindLicense, root.Count(), elapsed, nil)

	opts.Logger.Info("license tree ready",
		"nodes", root.Count(),
		"elapsed", elapsed)

	return root, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// The input is only reduced when some format misses the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, input []byte, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	input = chain.Parse(input)
	return r.renderCached(ctx, cache.Hash(input), opts, func(ctx context.Context) (map[string][]byte, error) {
		if opts.Kind == KindLicense {
			root, err := r.ParseLicense(ctx, input, opts)
			if err != nil {
				return nil, err
			}
			return RenderLicense(ctx, root, opts)
		}
		f, err := r.Reduce(ctx, input, opts)
		if err != nil {
			return nil, err
		}
		return RenderForest(ctx, f, opts)
	})
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, input []byte, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, input, opts)
	return artifacts, err
}

func (r *Runner) renderCached(ctx context.Context, inputHash string, opts Options,
	produce func(context.Context) (map[string][]byte, error)) (map[string][]byte, bool, error) {

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(inputHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil // All artifacts from cache
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.VizType, opts.Formats)
	start := time.Now()

	rendered, err := produce(ctx)
	hooks.OnRenderComplete(ctx, opts.VizType, opts.Formats, time.Since(start), err)
	if err != nil {
		if errors.GetCode(err) != "" || ctx.Err() != nil {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("render: %w", err)
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(inputHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil // Cache miss
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
// Options validation installs a discarding logger, which is replaced too.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil || opts.Logger == discard {
		opts.Logger = r.Logger
	}
}
