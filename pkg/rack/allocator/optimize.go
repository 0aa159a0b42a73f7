package allocator

import (
	"sort"

	"github.com/rackplan/rackplan/pkg/rack"
)

// compactionReason tags adjustment records produced by Optimize.
const compactionReason = "compaction"

// Optimize compacts every cabinet in the plan toward the bottom of its
// usable range and returns the number of items moved. For each cabinet,
// items are visited in ascending current-position order and moved to the
// lowest free run found by first-fit scan; every move appends an
// adjustment record.
//
// Occupancy is rebuilt as items move, so the result depends on visit
// order: this is best-effort compaction, not a guaranteed-minimal
// packing.
func (a *Allocator) Optimize(plan *rack.Plan) int {
	moved := 0
	for _, cab := range plan.Cabinets() {
		moved += a.compact(plan, cab)
	}
	if moved > 0 {
		a.logger.Info("compacted layout", "moves", moved)
	}
	return moved
}

// compact shifts a single cabinet's items downward where possible.
func (a *Allocator) compact(plan *rack.Plan, cab *rack.Cabinet) int {
	items := append([]*rack.Item(nil), cab.Items()...)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Position < items[j].Position
	})

	moved := 0
	for _, it := range items {
		original := it.Position

		// Scan below the item with the item itself lifted out of the
		// bitmap, so its own slots do not block the search.
		cab.Remove(it.AssetID)
		pos, ok := cab.FindFree(it.Height, 0, a.cfg.Spacing)
		if ok && pos < original {
			it.Position = pos
			_ = cab.Place(it)
			plan.RecordAdjustment(rack.NewAdjustment(it, original, pos, compactionReason))
			moved++
			continue
		}
		it.Position = original
		_ = cab.Place(it)
	}
	return moved
}
