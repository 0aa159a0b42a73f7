package pipeline

import (
	"encoding/json"
	"time"

	"github.com/rackplan/rackplan/pkg/errors"
	"github.com/rackplan/rackplan/pkg/rack"
	"github.com/rackplan/rackplan/pkg/rack/allocator"
)

// Serialized forms for cache entries. The plan is stored as its cabinet
// contents plus adjustment history; conflicts are recomputed on decode.

type planState struct {
	Cabinets    []cabinetState    `json:"cabinets"`
	Adjustments []adjustmentState `json:"adjustments,omitempty"`
	Summary     allocator.Summary `json:"summary"`
}

type cabinetState struct {
	Room    string      `json:"room"`
	Cabinet string      `json:"cabinet"`
	Start   int         `json:"start"`
	End     int         `json:"end"`
	Items   []rack.Item `json:"items"`
}

type adjustmentState struct {
	ID      string    `json:"id"`
	AssetID string    `json:"asset_id"`
	From    int       `json:"from"`
	To      int       `json:"to"`
	Reason  string    `json:"reason"`
	At      time.Time `json:"at"`
}

// encodeItems serializes a parsed inventory for the ingest cache.
func encodeItems(items []*rack.Item) ([]byte, error) {
	return json.Marshal(items)
}

// decodeItems restores a parsed inventory from the ingest cache.
func decodeItems(data []byte) ([]*rack.Item, error) {
	var items []*rack.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode cached inventory")
	}
	return items, nil
}

// encodePlan serializes a computed plan and its summary for the cache.
func encodePlan(plan *rack.Plan, sum allocator.Summary) ([]byte, error) {
	state := planState{Summary: sum}

	for _, cab := range plan.Cabinets() {
		cs := cabinetState{
			Room:    cab.Room,
			Cabinet: cab.Cabinet,
			Start:   cab.Start,
			End:     cab.End,
		}
		for _, it := range cab.Items() {
			cs.Items = append(cs.Items, *it)
		}
		state.Cabinets = append(state.Cabinets, cs)
	}

	for _, a := range plan.Adjustments() {
		as := adjustmentState{
			ID:     a.ID,
			From:   a.From,
			To:     a.To,
			Reason: a.Reason,
			At:     a.At,
		}
		if a.Item != nil {
			as.AssetID = a.Item.AssetID
		}
		state.Adjustments = append(state.Adjustments, as)
	}

	return json.Marshal(state)
}

// decodePlan restores a plan from its serialized form. Conflicts are
// recomputed rather than stored.
func decodePlan(data []byte) (*rack.Plan, allocator.Summary, error) {
	var state planState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, allocator.Summary{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode cached plan")
	}

	plan := rack.NewPlan()
	for _, cs := range state.Cabinets {
		cab := plan.Ensure(rack.CabinetKey{Room: cs.Room, Cabinet: cs.Cabinet}, cs.Start, cs.End)
		for i := range cs.Items {
			it := cs.Items[i]
			cab.Force(&it)
		}
	}

	for _, as := range state.Adjustments {
		plan.RecordAdjustment(rack.Adjustment{
			ID:     as.ID,
			Item:   findItem(plan, as.AssetID),
			From:   as.From,
			To:     as.To,
			Reason: as.Reason,
			At:     as.At,
		})
	}

	plan.Validate()
	return plan, state.Summary, nil
}

// findItem locates a placed item by asset id across all cabinets.
func findItem(plan *rack.Plan, assetID string) *rack.Item {
	for _, cab := range plan.Cabinets() {
		if it := cab.Get(assetID); it != nil {
			return it
		}
	}
	return nil
}
