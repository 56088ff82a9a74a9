package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orrery/pkg/cache"
	"github.com/matzehuels/orrery/pkg/observability"
	"github.com/matzehuels/orrery/pkg/planet"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching behaves the same everywhere.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
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

// Execute runs the complete layout → render pipeline with caching.
// Rendering is skipped when opts.Formats is empty.
func (r *Runner) Execute(ctx context.Context, c *planet.Collection, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}

	result := &Result{}

	layoutStart := time.Now()
	sys, hit, err := r.LayoutWithCacheInfo(ctx, c, opts)
	if err != nil {
		return nil, err
	}
	result.System = sys
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = hit

	st := sys.Stats()
	result.Stats.NodeCount = st.Bodies
	result.Stats.RootCount = st.Roots
	result.Stats.MaxDepth = st.MaxDepth

	if input, err := c.MarshalJSON(); err == nil {
		result.InputHash = cache.Hash(input)
	}
	if data, err := json.Marshal(sys); err == nil {
		result.LayoutHash = cache.Hash(data)
	}

	r.Logger.Info("computed layout",
		"mode", sys.Mode,
		"nodes", st.Bodies,
		"roots", st.Roots,
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	if len(opts.Formats) == 0 {
		return result, nil
	}

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, sys, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ExecuteFile reads a collection from path and runs [Runner.Execute].
func (r *Runner) ExecuteFile(ctx context.Context, path string, opts Options) (*Result, error) {
	c, err := planet.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("decoded collection", "path", path, "bodies", c.Len())
	return r.Execute(ctx, c, opts)
}

// LayoutWithCacheInfo lays out c with caching and returns cache hit info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, c *planet.Collection, opts Options) (*planet.System, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}

	input, err := c.MarshalJSON()
	if err != nil {
		return nil, false, fmt.Errorf("serialize collection for cache key: %w", err)
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(input), opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if sys, err := decodeCachedLayout(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return sys, true, nil
			}
			// If deserialization fails, fall through to recompute
			opts.Logger.Warn("discarding unreadable cached layout", "key", cacheKey)
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	sys, err := Layout(ctx, c, opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := encodeCachedLayout(sys); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.LayoutTTL); err != nil {
			opts.Logger.Warn("cache write failed", "key", cacheKey, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return sys, false, nil
}

// cachedLayout is the cache entry for a layout. The records alone do not
// say which mode placed them.
type cachedLayout struct {
	Mode    planet.Mode     `json:"mode"`
	Planets json.RawMessage `json:"planets"`
}

func encodeCachedLayout(sys *planet.System) ([]byte, error) {
	planets, err := json.Marshal(sys)
	if err != nil {
		return nil, err
	}
	return json.Marshal(cachedLayout{Mode: sys.Mode, Planets: planets})
}

func decodeCachedLayout(data []byte) (*planet.System, error) {
	var entry cachedLayout
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return planet.DecodeSystem(entry.Planets, entry.Mode)
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, c *planet.Collection, opts Options) (*planet.System, error) {
	sys, _, err := r.LayoutWithCacheInfo(ctx, c, opts)
	return sys, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// The hit flag is true only when every requested format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, sys *planet.System, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutData, err := json.Marshal(sys)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
	}

	rendered, err := Render(ctx, sys, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err != nil {
			opts.Logger.Warn("cache write failed", "key", key, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, sys *planet.System, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, sys, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
