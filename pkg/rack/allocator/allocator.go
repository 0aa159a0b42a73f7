// Package allocator implements the placement pass: it partitions items by
// cabinet, orders them, attempts each item's requested slot, and resolves
// conflicts by relocating items according to the configured strategy.
//
// Processing order is part of the contract. Cabinets are visited in
// first-appearance order of their key and items within a cabinet in
// ascending requested-position order, so the item with the lower requested
// position wins a contested slot. An Allocator instance is not safe for
// concurrent use; allocate once per instance call.
package allocator

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/rackplan/rackplan/pkg/errors"
	"github.com/rackplan/rackplan/pkg/rack"
	"github.com/rackplan/rackplan/pkg/rack/strategy"
)

// Config carries the placement parameters for one allocation run.
// It is passed by value; the allocator never mutates it and there are no
// package-level defaults to reconfigure.
type Config struct {
	Start    int  // first usable slot, inclusive
	End      int  // last usable slot, inclusive
	Spacing  int  // free slots required adjacent to every placed run
	Relocate bool // search for an alternative run on conflict
	Strict   bool // treat a non-empty final conflict list as an error
	Optimize bool // run best-effort compaction after placement
}

// DefaultConfig returns the standard 42U cabinet configuration:
// usable range U3–U39, one slot of spacing, relocation on.
func DefaultConfig() Config {
	return Config{
		Start:    rack.DefaultStart,
		End:      rack.DefaultEnd,
		Spacing:  1,
		Relocate: true,
	}
}

// Summary counts the outcomes of one allocation pass.
type Summary struct {
	Placed    int // items placed, at their requested slot or relocated
	Relocated int // subset of Placed that needed a new slot
	Failed    int // items dropped because no slot could be found
}

// Allocator places items into cabinets. Construct with New; the strategy
// is fixed at construction.
type Allocator struct {
	cfg      Config
	strategy strategy.Strategy
	logger   *log.Logger
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithStrategy sets the relocation search strategy.
// The default is expand-up.
func WithStrategy(s strategy.Strategy) Option {
	return func(a *Allocator) { a.strategy = s }
}

// WithLogger sets the logger for placement progress and drop warnings.
func WithLogger(l *log.Logger) Option {
	return func(a *Allocator) { a.logger = l }
}

// New creates an allocator with the given configuration.
func New(cfg Config, opts ...Option) *Allocator {
	a := &Allocator{
		cfg:    cfg,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.strategy == nil {
		a.strategy, _ = strategy.New(strategy.NameExpandUp)
	}
	return a
}

// Allocate runs one placement pass over items and returns the resulting
// plan and outcome summary. The pass always completes: individual item
// failures are logged and counted, never raised. The returned error is
// non-nil only when cfg.Strict is set and the final conflict scan found
// violations; the plan is valid and fully populated either way.
func (a *Allocator) Allocate(items []*rack.Item) (*rack.Plan, Summary, error) {
	a.logger.Info("allocating placement", "items", len(items), "strategy", a.strategy.Name())

	plan := rack.NewPlan()
	var sum Summary

	for _, group := range partition(items) {
		cab := plan.Ensure(group.key, a.cfg.Start, a.cfg.End)
		a.logger.Debug("processing cabinet", "cabinet", group.key, "items", len(group.items))

		// Ascending requested position decides contested-slot winners.
		sort.SliceStable(group.items, func(i, j int) bool {
			return group.items[i].Position < group.items[j].Position
		})

		for _, it := range group.items {
			switch a.place(plan, cab, it) {
			case outcomePlaced:
				sum.Placed++
			case outcomeRelocated:
				sum.Placed++
				sum.Relocated++
			case outcomeDropped:
				sum.Failed++
			}
		}
	}

	valid := plan.Validate()
	a.logger.Info("allocation complete",
		"cabinets", plan.TotalCabinets(),
		"placed", sum.Placed,
		"relocated", sum.Relocated,
		"failed", sum.Failed,
		"valid", valid)

	if a.cfg.Optimize {
		moved := a.Optimize(plan)
		if moved > 0 {
			plan.Validate()
		}
	}

	if a.cfg.Strict && len(plan.Conflicts()) > 0 {
		return plan, sum, errors.New(errors.ErrCodeConflicts,
			"placement has %d unresolved conflicts", len(plan.Conflicts()))
	}
	return plan, sum, nil
}

type outcome int

const (
	outcomePlaced outcome = iota
	outcomeRelocated
	outcomeDropped
)

// place attempts one item against the cabinet as built so far.
func (a *Allocator) place(plan *rack.Plan, cab *rack.Cabinet, it *rack.Item) outcome {
	if cab.IsAvailable(it.Position, it.Height, a.cfg.Spacing) {
		_ = cab.Place(it)
		return outcomePlaced
	}

	if !a.cfg.Relocate {
		a.logger.Warn("slot taken and relocation disabled, dropping item",
			"item", it.AssetID, "cabinet", cab.Key(), "slot", it.PositionRange())
		return outcomeDropped
	}

	original := it.Position
	pos, ok := a.strategy.Search(cab, it.Height, it.Position, a.cfg.Spacing)
	if !ok {
		a.logger.Warn("no slot found anywhere in cabinet, dropping item",
			"item", it.AssetID, "cabinet", cab.Key(), "height", it.Height)
		return outcomeDropped
	}

	it.Position = pos
	_ = cab.Place(it)
	plan.RecordAdjustment(rack.NewAdjustment(it, original, pos,
		fmt.Sprintf("requested slot U%d unavailable, %s search", original, a.strategy.Name())))
	a.logger.Info("relocated item", "item", it.AssetID, "from", original, "to", pos)
	return outcomeRelocated
}

// group pairs a cabinet key with the items requesting it.
type group struct {
	key   rack.CabinetKey
	items []*rack.Item
}

// partition splits items by cabinet key, preserving the first-appearance
// order of each key.
func partition(items []*rack.Item) []group {
	index := make(map[rack.CabinetKey]int)
	var groups []group
	for _, it := range items {
		key := it.Key()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, group{key: key})
		}
		groups[i].items = append(groups[i].items, it)
	}
	return groups
}
