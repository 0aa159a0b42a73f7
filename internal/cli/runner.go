package cli

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/rackplan/rackplan/pkg/cache"
	"github.com/rackplan/rackplan/pkg/config"
	"github.com/rackplan/rackplan/pkg/pipeline"
	"github.com/rackplan/rackplan/pkg/render/drawio"
)

// newRunner builds a pipeline runner from the project configuration.
// noCache forces the null backend regardless of configuration.
func newRunner(ctx context.Context, cfg config.Config, noCache bool, logger *log.Logger) (*pipeline.Runner, error) {
	backend, err := newCache(ctx, cfg.Cache, noCache)
	if err != nil {
		logger.Warn("cache unavailable, continuing without", "err", err)
		backend = cache.NewNullCache()
	}

	runner := pipeline.NewRunner(backend, nil, logger)
	diagram := diagramConfig(cfg.Diagram)
	runner.Diagram = &diagram
	return runner, nil
}

// newCache selects the cache backend from configuration.
func newCache(ctx context.Context, cfg config.CacheCfg, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Backend == config.CacheOff {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
	default:
		return cache.NewFileCache(cfg.Dir)
	}
}

// diagramConfig converts the file configuration into renderer settings.
func diagramConfig(d config.Diagram) drawio.Config {
	cfg := drawio.DefaultConfig()
	if d.CabinetWidth > 0 {
		cfg.CabinetWidth = d.CabinetWidth
	}
	if d.CabinetHeight > 0 {
		cfg.CabinetHeight = d.CabinetHeight
	}
	if d.SlotHeight > 0 {
		cfg.SlotHeight = d.SlotHeight
	}
	if d.CabinetGap > 0 {
		cfg.CabinetGap = d.CabinetGap
	}
	if d.Slots > 0 {
		cfg.Slots = d.Slots
	}
	cfg.ShowRuler = d.ShowRuler
	cfg.ShowRoomTitle = d.ShowRoomTitle
	cfg.ShowAssetID = d.ShowAssetID
	cfg.Detailed = d.Detailed
	return cfg
}

// optionsFromConfig seeds pipeline options from the project configuration.
func optionsFromConfig(cfg config.Config) pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.Start = cfg.Layout.Start
	opts.End = cfg.Layout.End
	opts.Spacing = cfg.Layout.Spacing
	opts.Strategy = cfg.Layout.Strategy
	opts.Relocate = cfg.Layout.Relocate
	opts.Strict = cfg.Layout.Strict
	opts.Optimize = cfg.Layout.Optimize
	opts.Schema = cfg.CSV.Schema
	opts.DefaultArea = cfg.CSV.DefaultArea
	opts.DefaultZone = cfg.CSV.DefaultZone
	opts.DefaultRoom = cfg.CSV.DefaultRoom
	opts.DefaultVendor = cfg.CSV.DefaultVendor
	opts.Detailed = cfg.Diagram.Detailed
	opts.ShowAssetID = cfg.Diagram.ShowAssetID
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatDrawio}
	}
	return strings.Split(s, ",")
}
