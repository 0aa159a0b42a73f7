package pipeline

import (
	"bytes"
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rackplan/rackplan/pkg/cache"
	"github.com/rackplan/rackplan/pkg/errors"
	"github.com/rackplan/rackplan/pkg/observability"
	"github.com/rackplan/rackplan/pkg/rack"
	"github.com/rackplan/rackplan/pkg/rack/allocator"
	"github.com/rackplan/rackplan/pkg/rack/strategy"
	"github.com/rackplan/rackplan/pkg/render/drawio"
	"github.com/rackplan/rackplan/pkg/render/report"
	"github.com/rackplan/rackplan/pkg/source/csvsource"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely share one
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Diagram overrides the default draw.io geometry when set.
	Diagram *drawio.Config
}

// NewRunner creates a runner with the given cache and keyer.
// A nil keyer gets the DefaultKeyer; a nil cache disables caching.
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
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs the complete ingest → allocate → render pipeline with
// caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid options")
	}
	r.applyLogger(&opts)

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Ingest
	ingestStart := time.Now()
	items, itemsHash, ingestHit, err := r.IngestWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "ingest")
	}
	result.Items = items
	result.Stats.IngestTime = time.Since(ingestStart)
	result.Stats.ItemCount = len(items)
	result.CacheInfo.IngestHit = ingestHit

	r.Logger.Info("loaded inventory",
		"items", len(items),
		"cached", ingestHit,
		"duration", result.Stats.IngestTime)

	// Stage 2: Allocate
	allocStart := time.Now()
	plan, sum, planHash, allocHit, err := r.AllocateWithCacheInfo(ctx, items, itemsHash, opts)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "allocate")
	}
	result.Plan = plan
	result.Summary = sum
	result.Stats.AllocateTime = time.Since(allocStart)
	result.Stats.CabinetCount = plan.TotalCabinets()
	result.CacheInfo.AllocateHit = allocHit

	r.Logger.Info("computed placement",
		"cabinets", plan.TotalCabinets(),
		"placed", sum.Placed,
		"relocated", sum.Relocated,
		"failed", sum.Failed,
		"cached", allocHit,
		"duration", result.Stats.AllocateTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, plan, planHash, opts)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "render")
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// IngestWithCacheInfo loads the inventory with caching. It returns the
// items, the content hash used for downstream cache keys, and whether
// the parsed form came from cache.
func (r *Runner) IngestWithCacheInfo(ctx context.Context, opts Options) ([]*rack.Item, string, bool, error) {
	if err := opts.ValidateForIngest(); err != nil {
		return nil, "", false, err
	}
	r.applyLogger(&opts)

	observability.Pipeline().OnIngestStart(ctx, opts.Input)
	start := time.Now()

	raw, err := os.ReadFile(opts.Input)
	if err != nil {
		if os.IsNotExist(err) {
			err = errors.Wrap(errors.ErrCodeFileNotFound, err, "inventory file %s", opts.Input)
		}
		observability.Pipeline().OnIngestComplete(ctx, opts.Input, 0, time.Since(start), err)
		return nil, "", false, err
	}
	contentHash := cache.Hash(raw)
	cacheKey := r.Keyer.ItemsKey(contentHash)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if items, err := decodeItems(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "items")
				observability.Pipeline().OnIngestComplete(ctx, opts.Input, len(items), time.Since(start), nil)
				return items, contentHash, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "items")
	}

	res, err := csvsource.Parse(bytes.NewReader(raw), csvsource.Config{
		Schema:        opts.Schema,
		DefaultArea:   opts.DefaultArea,
		DefaultZone:   opts.DefaultZone,
		DefaultRoom:   opts.DefaultRoom,
		DefaultVendor: opts.DefaultVendor,
	})
	if err != nil {
		observability.Pipeline().OnIngestComplete(ctx, opts.Input, 0, time.Since(start), err)
		return nil, "", false, err
	}
	for _, rowErr := range res.Errors {
		r.Logger.Warn("skipped invalid row", "err", rowErr)
	}
	if res.Skipped > 0 {
		r.Logger.Debug("skipped incomplete rows", "count", res.Skipped)
	}

	if data, err := encodeItems(res.Items); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLItems)
		observability.Cache().OnCacheSet(ctx, "items", len(data))
	}

	observability.Pipeline().OnIngestComplete(ctx, opts.Input, len(res.Items), time.Since(start), nil)
	return res.Items, contentHash, false, nil
}

// Ingest loads the inventory and discards the cache hit info.
func (r *Runner) Ingest(ctx context.Context, opts Options) ([]*rack.Item, error) {
	items, _, _, err := r.IngestWithCacheInfo(ctx, opts)
	return items, err
}

// AllocateWithCacheInfo computes the placement with caching. It returns
// the plan, its outcome summary, the plan hash used for artifact cache
// keys, and whether the plan came from cache.
func (r *Runner) AllocateWithCacheInfo(ctx context.Context, items []*rack.Item, itemsHash string, opts Options) (*rack.Plan, allocator.Summary, string, bool, error) {
	if err := opts.ValidateForAllocate(); err != nil {
		return nil, allocator.Summary{}, "", false, err
	}
	r.applyLogger(&opts)

	observability.Pipeline().OnAllocateStart(ctx, opts.Strategy, len(items))
	start := time.Now()

	cacheKey := r.Keyer.PlanKey(itemsHash, opts.PlanKeyOpts())

	if !opts.Refresh && itemsHash != "" {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if plan, sum, err := decodePlan(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "plan")
				observability.Pipeline().OnAllocateComplete(ctx, opts.Strategy, sum.Relocated, sum.Failed, time.Since(start), nil)
				return plan, sum, cache.Hash(data), true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "plan")
	}

	strat, err := strategy.New(opts.Strategy)
	if err != nil {
		return nil, allocator.Summary{}, "", false, err
	}
	alloc := allocator.New(opts.AllocatorConfig(),
		allocator.WithStrategy(strat),
		allocator.WithLogger(opts.Logger))

	plan, sum, err := alloc.Allocate(items)
	observability.Pipeline().OnAllocateComplete(ctx, opts.Strategy, sum.Relocated, sum.Failed, time.Since(start), err)
	if err != nil {
		return plan, sum, "", false, err
	}

	planHash := ""
	if data, encErr := encodePlan(plan, sum); encErr == nil {
		planHash = cache.Hash(data)
		if itemsHash != "" {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLPlan)
			observability.Cache().OnCacheSet(ctx, "plan", len(data))
		}
	}

	return plan, sum, planHash, false, nil
}

// Allocate computes the placement and discards the cache hit info.
func (r *Runner) Allocate(ctx context.Context, items []*rack.Item, opts Options) (*rack.Plan, allocator.Summary, error) {
	plan, sum, _, _, err := r.AllocateWithCacheInfo(ctx, items, "", opts)
	return plan, sum, err
}

// RenderWithCacheInfo generates artifacts with caching and reports
// whether every requested format came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, plan *rack.Plan, planHash string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Try to serve every format from cache first.
	if planHash != "" && !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		allCached := true
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(planHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
		if allCached && len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		observability.Pipeline().OnRenderStart(ctx, format)
		start := time.Now()

		data, err := r.renderFormat(plan, format, opts)
		observability.Pipeline().OnRenderComplete(ctx, format, len(data), time.Since(start), err)
		if err != nil {
			return nil, false, err
		}
		artifacts[format] = data

		if planHash != "" {
			key := r.Keyer.ArtifactKey(planHash, opts.ArtifactKeyOpts(format))
			_ = r.Cache.Set(ctx, key, data, cache.TTLArtifact)
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return artifacts, false, nil
}

// Render generates artifacts and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, plan *rack.Plan, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, plan, "", opts)
	return artifacts, err
}

// renderFormat produces one artifact.
func (r *Runner) renderFormat(plan *rack.Plan, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatDrawio:
		cfg := drawio.DefaultConfig()
		if r.Diagram != nil {
			cfg = *r.Diagram
		}
		cfg.Detailed = opts.Detailed
		cfg.ShowAssetID = opts.ShowAssetID
		renderer, err := drawio.New(cfg)
		if err != nil {
			return nil, err
		}
		return renderer.Render(plan)
	case FormatJSON:
		return report.Render(plan)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
	}
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
