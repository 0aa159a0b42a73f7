package rack

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ConflictKind classifies a placement violation.
type ConflictKind string

const (
	// ConflictOverlap marks two items whose slot runs intersect.
	ConflictOverlap ConflictKind = "overlap"
	// ConflictOutOfRange marks an item extending past the usable range.
	ConflictOutOfRange ConflictKind = "out-of-range"
)

// Conflict records a single violation found on a placed item set.
// Other is nil for out-of-range conflicts.
type Conflict struct {
	Kind        ConflictKind
	Item        *Item
	Other       *Item
	Description string
}

// String renders the conflict for logs and reports.
func (c Conflict) String() string {
	if c.Other != nil {
		return fmt.Sprintf("%s: %s / %s - %s", c.Kind, c.Item.AssetID, c.Other.AssetID, c.Description)
	}
	return fmt.Sprintf("%s: %s - %s", c.Kind, c.Item.AssetID, c.Description)
}

// Adjustment records one relocation performed during a run.
// Records are append-only and ordered by time of occurrence.
type Adjustment struct {
	ID     string // unique record id
	Item   *Item
	From   int // original requested position
	To     int // position after relocation
	Reason string
	At     time.Time
}

// NewAdjustment stamps a relocation record with an id and the current time.
func NewAdjustment(it *Item, from, to int, reason string) Adjustment {
	return Adjustment{
		ID:     uuid.NewString(),
		Item:   it,
		From:   from,
		To:     to,
		Reason: reason,
		At:     time.Now(),
	}
}

// String renders the adjustment for logs and reports.
func (a Adjustment) String() string {
	return fmt.Sprintf("%s: U%d → U%d (%s)", a.Item.AssetID, a.From, a.To, a.Reason)
}
