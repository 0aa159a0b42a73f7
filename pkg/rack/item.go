// Package rack defines the placement data model: items of equipment, the
// cabinets they occupy, and the plan aggregating one placement run.
//
// A cabinet is a one-dimensional slot space addressed in rack units (U).
// Items request a contiguous run of slots; the allocator in
// pkg/rack/allocator decides where each run ends up. All state here is
// in-memory and owned for the duration of a single run.
package rack

import (
	"fmt"
	"strings"

	"github.com/rackplan/rackplan/pkg/errors"
)

// Item is a single piece of equipment to be placed in a cabinet.
// Height and Position are in rack units; both are 1-based and validated
// at construction time so the allocator never sees malformed values.
type Item struct {
	AssetID  string // unique inventory identifier
	Area     string
	Zone     string
	Purpose  string // normalized purpose tag (see csvsource.NormalizePurpose)
	Name     string
	Model    string
	Height   int // slots occupied, ≥ 1
	Room     string
	Cabinet  string
	Position int // requested bottom slot, ≥ 1
	Vendor   string
	Note     string
}

// NewItem validates height and position and returns the item.
// Malformed fields are rejected here, before any placement logic runs.
func NewItem(it Item) (*Item, error) {
	if it.Height < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "item %s: height must be ≥ 1, got %d", it.AssetID, it.Height)
	}
	if it.Position < 1 {
		return nil, errors.New(errors.ErrCodeInvalidPosition, "item %s: position must be ≥ 1, got %d", it.AssetID, it.Position)
	}
	return &it, nil
}

// EndPosition returns the topmost slot covered by the item.
func (it *Item) EndPosition() int { return it.Position + it.Height - 1 }

// Key returns the cabinet key the item belongs to.
func (it *Item) Key() CabinetKey { return CabinetKey{Room: it.Room, Cabinet: it.Cabinet} }

// PositionRange describes the covered run, e.g. "U10" or "U10-U11".
func (it *Item) PositionRange() string {
	if it.Height == 1 {
		return fmt.Sprintf("U%d", it.Position)
	}
	return fmt.Sprintf("U%d-U%d", it.Position, it.EndPosition())
}

// Label returns the display text used on diagrams.
// Detailed adds the vendor line.
func (it *Item) Label(detailed bool) string {
	if detailed && it.Vendor != "" {
		return fmt.Sprintf("%s\n%s\n(%s)", it.Name, it.Model, it.Vendor)
	}
	return fmt.Sprintf("%s\n%s", it.Name, it.Model)
}

// OverlapsWith reports whether the two items occupy intersecting runs in
// the same cabinet. Items in different cabinets never overlap.
func (it *Item) OverlapsWith(other *Item) bool {
	if it.Key() != other.Key() {
		return false
	}
	return it.EndPosition() >= other.Position && other.EndPosition() >= it.Position
}

// CabinetKey identifies a cabinet by room and cabinet id.
// A key maps to exactly one Cabinet within a Plan.
type CabinetKey struct {
	Room    string
	Cabinet string
}

// String renders the key in "room-cabinet" form.
func (k CabinetKey) String() string { return k.Room + "-" + k.Cabinet }

// ParseCabinetKey splits a "room-cabinet" id into its parts.
// The room part must be non-empty and the id must contain a separator;
// malformed ids fail the batch for that key rather than being guessed at.
func ParseCabinetKey(id string) (CabinetKey, error) {
	room, cab, ok := strings.Cut(id, "-")
	if !ok || room == "" || cab == "" {
		return CabinetKey{}, errors.New(errors.ErrCodeInvalidCabinet, "malformed cabinet id: %q", id)
	}
	return CabinetKey{Room: room, Cabinet: cab}, nil
}
