package rack

import (
	"fmt"
	"slices"
)

// Default usable slot bounds for a standard 42U cabinet: the bottom two
// and top three units are reserved for cabling and power.
const (
	DefaultStart = 3
	DefaultEnd   = 39
)

// Cabinet owns a fixed-length occupancy bitmap over an inclusive slot
// range [Start, End] and the ordered list of items placed in it.
//
// The bitmap is a derived cache: it is rebuilt from the item list after
// every mutation so that occupied[i] is true iff some placed item covers
// slot Start+i. Cabinets hold at most a few hundred items, so the O(n)
// rebuild is not worth replacing with incremental tracking.
type Cabinet struct {
	Room    string
	Cabinet string
	Start   int // first usable slot, inclusive
	End     int // last usable slot, inclusive

	items    []*Item
	occupied []bool
}

// NewCabinet creates an empty cabinet over the inclusive range [start, end].
func NewCabinet(key CabinetKey, start, end int) *Cabinet {
	if end < start {
		start, end = end, start
	}
	return &Cabinet{
		Room:     key.Room,
		Cabinet:  key.Cabinet,
		Start:    start,
		End:      end,
		occupied: make([]bool, end-start+1),
	}
}

// Key returns the cabinet's identifying key.
func (c *Cabinet) Key() CabinetKey { return CabinetKey{Room: c.Room, Cabinet: c.Cabinet} }

// Capacity returns the number of usable slots.
func (c *Cabinet) Capacity() int { return c.End - c.Start + 1 }

// Items returns the placed items in placement order.
// The returned slice is shared; callers must not mutate it.
func (c *Cabinet) Items() []*Item { return c.items }

// UsedSlots returns the number of occupied slots.
func (c *Cabinet) UsedSlots() int {
	used := 0
	for _, occ := range c.occupied {
		if occ {
			used++
		}
	}
	return used
}

// Utilization returns occupied/total × 100.
func (c *Cabinet) Utilization() float64 {
	if c.Capacity() == 0 {
		return 0
	}
	return float64(c.UsedSlots()) / float64(c.Capacity()) * 100
}

// IsAvailable reports whether a run of the given height starting at pos
// fits entirely inside the usable range, covers only free slots, and has
// no occupied slot within spacing positions immediately above or below.
// spacing 0 disables the adjacency check. Malformed input (height ≤ 0 or
// pos below Start) returns false rather than failing. The method never
// mutates cabinet state.
func (c *Cabinet) IsAvailable(pos, height, spacing int) bool {
	if height <= 0 || pos < c.Start || pos+height-1 > c.End {
		return false
	}

	lo := pos - c.Start
	hi := lo + height - 1

	for i := lo; i <= hi; i++ {
		if c.occupied[i] {
			return false
		}
	}

	if spacing > 0 {
		for i := max(0, lo-spacing); i < lo; i++ {
			if c.occupied[i] {
				return false
			}
		}
		for i := hi + 1; i <= min(len(c.occupied)-1, hi+spacing); i++ {
			if c.occupied[i] {
				return false
			}
		}
	}

	return true
}

// FindFree locates a free run of the given height. If preferred > 0 and
// the exact slot is available it wins immediately; otherwise the scan
// runs ascending from Start and the first fit is returned. The boolean
// is false when no run exists anywhere in the cabinet.
func (c *Cabinet) FindFree(height, preferred, spacing int) (int, bool) {
	if preferred > 0 && c.IsAvailable(preferred, height, spacing) {
		return preferred, true
	}
	for pos := c.Start; pos <= c.End-height+1; pos++ {
		if c.IsAvailable(pos, height, spacing) {
			return pos, true
		}
	}
	return 0, false
}

// Place appends the item and rebuilds the occupancy bitmap.
// The run must be available with spacing 0; spacing policy is the
// allocator's concern and has already been applied by the time an item
// is committed.
func (c *Cabinet) Place(it *Item) error {
	if !c.IsAvailable(it.Position, it.Height, 0) {
		return fmt.Errorf("cabinet %s: %s does not fit at %s", c.Key(), it.AssetID, it.PositionRange())
	}
	c.items = append(c.items, it)
	c.rebuild()
	return nil
}

// Force appends the item without any availability or bounds check.
// Conflicts the item introduces are reported by DetectConflicts rather
// than prevented; this is the relaxed-enforcement registration path.
func (c *Cabinet) Force(it *Item) {
	c.items = append(c.items, it)
	c.rebuild()
}

// Remove deletes the item with the given asset id and rebuilds the
// bitmap. It reports whether an item was removed.
func (c *Cabinet) Remove(assetID string) bool {
	for i, it := range c.items {
		if it.AssetID == assetID {
			c.items = slices.Delete(c.items, i, i+1)
			c.rebuild()
			return true
		}
	}
	return false
}

// Get returns the placed item with the given asset id, or nil.
func (c *Cabinet) Get(assetID string) *Item {
	for _, it := range c.items {
		if it.AssetID == assetID {
			return it
		}
	}
	return nil
}

// Reposition moves a placed item to a new bottom slot and rebuilds the
// bitmap. The caller is responsible for having checked availability with
// the item's own slots ignored (typically by removing first or by
// scanning before placement).
func (c *Cabinet) Reposition(it *Item, pos int) {
	it.Position = pos
	c.rebuild()
}

// rebuild recomputes the occupancy bitmap from the full item list.
// Out-of-range slots are clamped so that out-of-bounds items (kept for
// conflict reporting under relaxed enforcement) never panic.
func (c *Cabinet) rebuild() {
	c.occupied = make([]bool, c.End-c.Start+1)
	for _, it := range c.items {
		lo := max(0, it.Position-c.Start)
		hi := min(len(c.occupied)-1, it.Position-c.Start+it.Height-1)
		for i := lo; i <= hi; i++ {
			c.occupied[i] = true
		}
	}
}

// DetectConflicts scans the placed items and reports every violation:
// one OutOfRange record per item extending past the usable range, and
// one Overlap record per overlapping pair (three mutually overlapping
// items yield three records). Conflicts are reporting data, never
// errors; they surface only when strict enforcement is relaxed upstream.
func (c *Cabinet) DetectConflicts() []Conflict {
	var conflicts []Conflict

	for i, a := range c.items {
		if a.Position < c.Start || a.EndPosition() > c.End {
			conflicts = append(conflicts, Conflict{
				Kind: ConflictOutOfRange,
				Item: a,
				Description: fmt.Sprintf("item %s at %s exceeds usable range U%d-U%d",
					a.AssetID, a.PositionRange(), c.Start, c.End),
			})
		}
		for _, b := range c.items[i+1:] {
			if a.OverlapsWith(b) {
				conflicts = append(conflicts, Conflict{
					Kind:  ConflictOverlap,
					Item:  a,
					Other: b,
					Description: fmt.Sprintf("items %s (%s) and %s (%s) overlap",
						a.AssetID, a.PositionRange(), b.AssetID, b.PositionRange()),
				})
			}
		}
	}

	return conflicts
}
