// Package strategy provides the deterministic free-run search orders used
// to relocate an item whose requested slot is unavailable.
//
// Every strategy is a pure function of cabinet state: it reads occupancy
// through rack.Cabinet.IsAvailable and never mutates anything. The
// allocator performs the actual move.
package strategy

import (
	"github.com/rackplan/rackplan/pkg/errors"
	"github.com/rackplan/rackplan/pkg/rack"
)

// Strategy names accepted by New and the CLI.
const (
	NameExpandUp   = "expand-up"
	NameExpandDown = "expand-down"
	NameNearest    = "nearest"
)

// Strategy finds an alternative run for an item of the given height whose
// preferred position is taken. It returns the chosen bottom slot and
// whether any run was found.
type Strategy interface {
	Name() string
	Search(c *rack.Cabinet, height, preferred, spacing int) (int, bool)
}

// New returns the strategy registered under name.
func New(name string) (Strategy, error) {
	switch name {
	case NameExpandUp:
		return expandUp{}, nil
	case NameExpandDown:
		return expandDown{}, nil
	case NameNearest:
		return nearestFirst{}, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidStrategy,
			"unknown strategy: %q (must be %s, %s, or %s)", name, NameExpandUp, NameExpandDown, NameNearest)
	}
}

// Names returns the valid strategy names.
func Names() []string {
	return []string{NameExpandUp, NameExpandDown, NameNearest}
}

// expandUp scans ascending above the preferred slot first, then
// descending below it. First hit wins.
type expandUp struct{}

func (expandUp) Name() string { return NameExpandUp }

func (expandUp) Search(c *rack.Cabinet, height, preferred, spacing int) (int, bool) {
	if pos, ok := scanUp(c, height, preferred, spacing); ok {
		return pos, true
	}
	return scanDown(c, height, preferred, spacing)
}

// expandDown is the mirror of expandUp: descending first, then ascending.
type expandDown struct{}

func (expandDown) Name() string { return NameExpandDown }

func (expandDown) Search(c *rack.Cabinet, height, preferred, spacing int) (int, bool) {
	if pos, ok := scanDown(c, height, preferred, spacing); ok {
		return pos, true
	}
	return scanUp(c, height, preferred, spacing)
}

// nearestFirst walks outward from the preferred slot one distance step at
// a time, trying preferred+d before preferred−d, which guarantees the
// numerically closest relocation with ties broken upward.
type nearestFirst struct{}

func (nearestFirst) Name() string { return NameNearest }

func (nearestFirst) Search(c *rack.Cabinet, height, preferred, spacing int) (int, bool) {
	maxDist := max(preferred-c.Start, c.End-preferred)
	for d := 1; d <= maxDist; d++ {
		if up := preferred + d; up <= c.End-height+1 && c.IsAvailable(up, height, spacing) {
			return up, true
		}
		if down := preferred - d; down >= c.Start && c.IsAvailable(down, height, spacing) {
			return down, true
		}
	}
	return 0, false
}

// scanUp tries every slot from preferred+1 to the topmost slot that still
// fits the run, in ascending order.
func scanUp(c *rack.Cabinet, height, preferred, spacing int) (int, bool) {
	for pos := preferred + 1; pos <= c.End-height+1; pos++ {
		if c.IsAvailable(pos, height, spacing) {
			return pos, true
		}
	}
	return 0, false
}

// scanDown tries every slot from preferred−1 down to Start, in
// descending order.
func scanDown(c *rack.Cabinet, height, preferred, spacing int) (int, bool) {
	for pos := preferred - 1; pos >= c.Start; pos-- {
		if c.IsAvailable(pos, height, spacing) {
			return pos, true
		}
	}
	return 0, false
}
