// Package pipeline provides the core placement pipeline for rackplan.
//
// The pipeline runs three stages:
//
//  1. Ingest: load and validate the equipment inventory (CSV)
//  2. Allocate: compute a conflict-free slot placement per cabinet
//  3. Render: generate output artifacts (draw.io XML, JSON report)
//
// Each stage can be run independently or as part of the complete
// pipeline, and each stage's result is cached content-addressed: the
// same inventory with the same options reuses the cached plan and
// artifacts.
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:    "inventory.csv",
//	    Strategy: "expand-up",
//	    Relocate: true,
//	    Formats:  []string{"drawio"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	xml := result.Artifacts["drawio"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rackplan/rackplan/pkg/cache"
	"github.com/rackplan/rackplan/pkg/errors"
	"github.com/rackplan/rackplan/pkg/rack"
	"github.com/rackplan/rackplan/pkg/rack/allocator"
	"github.com/rackplan/rackplan/pkg/rack/strategy"
)

// Defaults shared by the CLI and library callers.
const (
	// DefaultStart is the first usable slot in a cabinet.
	DefaultStart = rack.DefaultStart

	// DefaultEnd is the last usable slot in a cabinet.
	DefaultEnd = rack.DefaultEnd

	// DefaultSpacing is the number of free slots kept adjacent to every
	// placed run.
	DefaultSpacing = 1

	// DefaultStrategy is the default relocation search strategy.
	DefaultStrategy = strategy.NameExpandUp
)

// Format constants for output artifacts.
const (
	FormatDrawio = "drawio"
	FormatJSON   = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDrawio: true,
	FormatJSON:   true,
}

// Options contains all configuration for the placement pipeline.
// The struct supports JSON serialization so runs can be scripted.
type Options struct {
	// Ingest options
	Input         string `json:"input"`
	Schema        string `json:"schema,omitempty"` // "", "full", or "legacy"
	DefaultArea   string `json:"default_area,omitempty"`
	DefaultZone   string `json:"default_zone,omitempty"`
	DefaultRoom   string `json:"default_room,omitempty"`
	DefaultVendor string `json:"default_vendor,omitempty"`
	Refresh       bool   `json:"refresh,omitempty"` // bypass and repopulate the cache

	// Allocation options
	Start    int    `json:"start,omitempty"`
	End      int    `json:"end,omitempty"`
	Spacing  int    `json:"spacing"` // zero disables spacing
	Strategy string `json:"strategy,omitempty"`
	Relocate bool   `json:"relocate"`
	Strict   bool   `json:"strict,omitempty"`
	Optimize bool   `json:"optimize,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Detailed    bool     `json:"detailed,omitempty"`
	ShowAssetID bool     `json:"show_asset_id,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// DefaultOptions returns options with the standard allocation settings.
// The input path still has to be set by the caller.
func DefaultOptions() Options {
	return Options{
		Start:    DefaultStart,
		End:      DefaultEnd,
		Spacing:  DefaultSpacing,
		Strategy: DefaultStrategy,
		Relocate: true,
		Formats:  []string{FormatDrawio},
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Items is the parsed inventory.
	Items []*rack.Item

	// Plan is the computed placement.
	Plan *rack.Plan

	// Summary counts placement outcomes.
	Summary allocator.Summary

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ItemCount    int
	CabinetCount int
	IngestTime   time.Duration
	AllocateTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	IngestHit   bool // whether the parsed inventory came from cache
	AllocateHit bool // whether the plan came from cache
	RenderHit   bool // whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: drawio, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults for
// the full pipeline. Idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForIngest(); err != nil {
		return err
	}
	if err := o.ValidateForAllocate(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForIngest checks required fields for inventory loading.
func (o *Options) ValidateForIngest() error {
	if o.Input == "" {
		return errors.New(errors.ErrCodeInvalidInput, "input is required")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ValidateForAllocate validates and sets defaults for allocation.
func (o *Options) ValidateForAllocate() error {
	if o.Start == 0 {
		o.Start = DefaultStart
	}
	if o.End == 0 {
		o.End = DefaultEnd
	}
	if o.Strategy == "" {
		o.Strategy = DefaultStrategy
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.End < o.Start || o.Start < 1 {
		return errors.New(errors.ErrCodeInvalidConfig,
			"slot bounds %d..%d are invalid", o.Start, o.End)
	}
	if o.Spacing < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "spacing must not be negative")
	}
	if _, err := strategy.New(o.Strategy); err != nil {
		return err
	}
	return nil
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatDrawio}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return ValidateFormats(o.Formats)
}

// AllocatorConfig converts the options into an allocator configuration.
func (o *Options) AllocatorConfig() allocator.Config {
	return allocator.Config{
		Start:    o.Start,
		End:      o.End,
		Spacing:  o.Spacing,
		Relocate: o.Relocate,
		Strict:   o.Strict,
		Optimize: o.Optimize,
	}
}

// PlanKeyOpts returns cache key options for the allocation stage.
func (o *Options) PlanKeyOpts() cache.PlanKeyOpts {
	return cache.PlanKeyOpts{
		Start:    o.Start,
		End:      o.End,
		Spacing:  o.Spacing,
		Strategy: o.Strategy,
		Relocate: o.Relocate,
		Optimize: o.Optimize,
	}
}

// ArtifactKeyOpts returns cache key options for one render format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:      format,
		Detailed:    o.Detailed,
		ShowAssetID: o.ShowAssetID,
	}
}
