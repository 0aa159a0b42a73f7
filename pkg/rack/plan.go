package rack

import (
	"slices"
	"sort"
)

// Plan aggregates every cabinet produced by one allocation run together
// with the conflicts found on the final placed set and the relocation
// history. A cabinet key maps to exactly one Cabinet; cabinets are kept
// in first-appearance order of their key because processing order is an
// observable part of the allocation contract.
type Plan struct {
	cabinets map[CabinetKey]*Cabinet
	order    []CabinetKey

	conflicts   []Conflict
	adjustments []Adjustment
}

// NewPlan creates an empty plan.
func NewPlan() *Plan {
	return &Plan{cabinets: make(map[CabinetKey]*Cabinet)}
}

// Ensure returns the cabinet for key, creating it lazily on first
// reference with the given bounds.
func (p *Plan) Ensure(key CabinetKey, start, end int) *Cabinet {
	if c, ok := p.cabinets[key]; ok {
		return c
	}
	c := NewCabinet(key, start, end)
	p.cabinets[key] = c
	p.order = append(p.order, key)
	return c
}

// Cabinet returns the cabinet for key, or nil.
func (p *Plan) Cabinet(key CabinetKey) *Cabinet { return p.cabinets[key] }

// Cabinets returns all cabinets in first-appearance order.
func (p *Plan) Cabinets() []*Cabinet {
	out := make([]*Cabinet, len(p.order))
	for i, k := range p.order {
		out[i] = p.cabinets[k]
	}
	return out
}

// TotalCabinets returns the number of cabinets in the plan.
func (p *Plan) TotalCabinets() int { return len(p.cabinets) }

// TotalItems returns the number of placed items across all cabinets.
func (p *Plan) TotalItems() int {
	n := 0
	for _, c := range p.cabinets {
		n += len(c.items)
	}
	return n
}

// Rooms returns the sorted set of rooms referenced by the plan.
func (p *Plan) Rooms() []string {
	seen := make(map[string]bool)
	var rooms []string
	for _, k := range p.order {
		if !seen[k.Room] {
			seen[k.Room] = true
			rooms = append(rooms, k.Room)
		}
	}
	sort.Strings(rooms)
	return rooms
}

// CabinetsByRoom returns the room's cabinets sorted by cabinet id.
func (p *Plan) CabinetsByRoom(room string) []*Cabinet {
	var out []*Cabinet
	for _, k := range p.order {
		if k.Room == room {
			out = append(out, p.cabinets[k])
		}
	}
	slices.SortFunc(out, func(a, b *Cabinet) int {
		if a.Cabinet < b.Cabinet {
			return -1
		}
		if a.Cabinet > b.Cabinet {
			return 1
		}
		return 0
	})
	return out
}

// Utilization returns the aggregate slot utilization across all
// cabinets, occupied/total × 100.
func (p *Plan) Utilization() float64 {
	total, used := 0, 0
	for _, c := range p.cabinets {
		total += c.Capacity()
		used += c.UsedSlots()
	}
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total) * 100
}

// Validate clears and repopulates the conflict list by scanning every
// cabinet. It returns true iff no conflicts remain.
func (p *Plan) Validate() bool {
	p.conflicts = p.conflicts[:0]
	for _, k := range p.order {
		p.conflicts = append(p.conflicts, p.cabinets[k].DetectConflicts()...)
	}
	return len(p.conflicts) == 0
}

// Conflicts returns the conflicts found by the last Validate call.
func (p *Plan) Conflicts() []Conflict { return p.conflicts }

// RecordAdjustment appends a relocation record. History is append-only.
func (p *Plan) RecordAdjustment(a Adjustment) { p.adjustments = append(p.adjustments, a) }

// Adjustments returns the relocation history in order of occurrence.
func (p *Plan) Adjustments() []Adjustment { return p.adjustments }

// Stats summarizes a plan for reports and CLI output.
type Stats struct {
	Cabinets    int
	Items       int
	Rooms       int
	Conflicts   int
	Adjustments int
	Utilization float64
}

// Stats computes the plan summary.
func (p *Plan) Stats() Stats {
	return Stats{
		Cabinets:    p.TotalCabinets(),
		Items:       p.TotalItems(),
		Rooms:       len(p.Rooms()),
		Conflicts:   len(p.conflicts),
		Adjustments: len(p.adjustments),
		Utilization: p.Utilization(),
	}
}
