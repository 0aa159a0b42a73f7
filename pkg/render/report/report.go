// Package report renders placement plans as a JSON summary document,
// the machine-readable companion to the diagram output.
package report

import (
	"encoding/json"
	"time"

	"github.com/rackplan/rackplan/pkg/errors"
	"github.com/rackplan/rackplan/pkg/rack"
)

// Document is the top-level report structure.
type Document struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Summary     Summary      `json:"summary"`
	Cabinets    []CabinetDoc `json:"cabinets"`
	Conflicts   []Conflict   `json:"conflicts,omitempty"`
	Adjustments []Adjustment `json:"adjustments,omitempty"`
}

// Summary aggregates plan-wide counts.
type Summary struct {
	Rooms       int     `json:"rooms"`
	Cabinets    int     `json:"cabinets"`
	Items       int     `json:"items"`
	Conflicts   int     `json:"conflicts"`
	Adjustments int     `json:"adjustments"`
	Utilization float64 `json:"utilization_pct"`
}

// CabinetDoc describes one cabinet and its placed items.
type CabinetDoc struct {
	Room        string    `json:"room"`
	Cabinet     string    `json:"cabinet"`
	Start       int       `json:"start"`
	End         int       `json:"end"`
	UsedSlots   int       `json:"used_slots"`
	Capacity    int       `json:"capacity"`
	Utilization float64   `json:"utilization_pct"`
	Items       []ItemDoc `json:"items"`
}

// ItemDoc describes one placed item.
type ItemDoc struct {
	AssetID  string `json:"asset_id"`
	Name     string `json:"name"`
	Model    string `json:"model,omitempty"`
	Vendor   string `json:"vendor,omitempty"`
	Purpose  string `json:"purpose,omitempty"`
	Height   int    `json:"height"`
	Position int    `json:"position"`
	Range    string `json:"range"`
}

// Conflict describes one unresolved placement conflict.
type Conflict struct {
	Kind        string `json:"kind"`
	AssetID     string `json:"asset_id"`
	OtherID     string `json:"other_id,omitempty"`
	Description string `json:"description"`
}

// Adjustment describes one relocation performed during allocation.
type Adjustment struct {
	ID       string    `json:"id"`
	AssetID  string    `json:"asset_id"`
	From     int       `json:"from"`
	To       int       `json:"to"`
	Reason   string    `json:"reason"`
	MovedAt  time.Time `json:"moved_at"`
}

// Render produces the indented JSON document for the plan.
func Render(plan *rack.Plan) ([]byte, error) {
	if plan == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nothing to report: plan is nil")
	}
	doc := Build(plan)
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "marshal report")
	}
	return append(out, '\n'), nil
}

// Build assembles the report document without serializing it.
func Build(plan *rack.Plan) *Document {
	stats := plan.Stats()
	doc := &Document{
		GeneratedAt: time.Now().UTC(),
		Summary: Summary{
			Rooms:       stats.Rooms,
			Cabinets:    stats.Cabinets,
			Items:       stats.Items,
			Conflicts:   stats.Conflicts,
			Adjustments: stats.Adjustments,
			Utilization: stats.Utilization,
		},
	}

	for _, cab := range plan.Cabinets() {
		cd := CabinetDoc{
			Room:        cab.Room,
			Cabinet:     cab.Cabinet,
			Start:       cab.Start,
			End:         cab.End,
			UsedSlots:   cab.UsedSlots(),
			Capacity:    cab.Capacity(),
			Utilization: cab.Utilization(),
		}
		for _, it := range cab.Items() {
			cd.Items = append(cd.Items, ItemDoc{
				AssetID:  it.AssetID,
				Name:     it.Name,
				Model:    it.Model,
				Vendor:   it.Vendor,
				Purpose:  it.Purpose,
				Height:   it.Height,
				Position: it.Position,
				Range:    it.PositionRange(),
			})
		}
		doc.Cabinets = append(doc.Cabinets, cd)
	}

	for _, c := range plan.Conflicts() {
		rc := Conflict{
			Kind:        string(c.Kind),
			Description: c.Description,
		}
		if c.Item != nil {
			rc.AssetID = c.Item.AssetID
		}
		if c.Other != nil {
			rc.OtherID = c.Other.AssetID
		}
		doc.Conflicts = append(doc.Conflicts, rc)
	}

	for _, a := range plan.Adjustments() {
		ra := Adjustment{
			ID:      a.ID,
			From:    a.From,
			To:      a.To,
			Reason:  a.Reason,
			MovedAt: a.At,
		}
		if a.Item != nil {
			ra.AssetID = a.Item.AssetID
		}
		doc.Adjustments = append(doc.Adjustments, ra)
	}

	return doc
}
