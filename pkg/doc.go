// Package pkg provides the core libraries for rackplan cabinet planning.
//
// # Overview
//
// Rackplan turns data-center equipment inventories into conflict-free
// rack-unit placements and cabinet diagrams. The pkg directory is
// organized by pipeline stage plus shared infrastructure:
//
//	Inventory CSV
//	       ↓
//	  [source/csvsource] (parse rows into items)
//	       ↓
//	  [rack/allocator] (place items, resolve conflicts)
//	       ↓
//	  [render/drawio] / [render/report] (diagram + report output)
//
// # Main Packages
//
// [rack] - The placement data model: items, cabinets with slot
// occupancy, plans aggregating cabinets with conflict and adjustment
// records.
//
// [rack/strategy] - Relocation search strategies (expand-up,
// expand-down, nearest) used when an item's requested slot is taken.
//
// [rack/allocator] - The placement pass: partition by cabinet, order by
// requested slot, place or relocate, then scan for conflicts. Optional
// best-effort compaction.
//
// [source/csvsource] - CSV inventory ingestion with schema detection
// and GB18030 fallback decoding.
//
// [render/drawio] - draw.io mxfile XML output, one sheet per room.
//
// [render/report] - JSON report output with per-cabinet utilization,
// conflicts, and adjustments.
//
// [pipeline] - Orchestration (ingest → allocate → render) with
// content-addressed caching, shared by all entry points.
//
// [cache] - Cache backends (file, Redis, null) and key builders.
//
// [config] - rackplan.toml project configuration.
//
// [errors] - Structured error codes shared across packages.
//
// [observability] - Optional instrumentation hooks with no-op defaults.
//
// # Quick Start
//
// Load an inventory and compute a placement:
//
//	res, _ := csvsource.Load("inventory.csv", csvsource.DefaultConfig())
//	alloc := allocator.New(allocator.DefaultConfig())
//	plan, sum, _ := alloc.Allocate(res.Items)
//	fmt.Printf("placed %d, relocated %d\n", sum.Placed, sum.Relocated)
//
// Render the result:
//
//	renderer, _ := drawio.New(drawio.DefaultConfig())
//	xml, _ := renderer.Render(plan)
package pkg
