package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/rackplan/rackplan/pkg/errors"
	"github.com/rackplan/rackplan/pkg/rack"
)

func testPlan(t *testing.T) *rack.Plan {
	t.Helper()
	plan := rack.NewPlan()

	cab := plan.Ensure(rack.CabinetKey{Room: "R1", Cabinet: "C01"}, 3, 39)
	it := &rack.Item{
		AssetID: "A-1", Name: "web-01", Model: "DL380", Vendor: "HPE",
		Purpose: "web", Room: "R1", Cabinet: "C01", Height: 2, Position: 12,
	}
	if err := cab.Place(it); err != nil {
		t.Fatal(err)
	}
	plan.RecordAdjustment(rack.NewAdjustment(it, 10, 12, "testing"))
	plan.Validate()
	return plan
}

func TestBuild(t *testing.T) {
	doc := Build(testPlan(t))

	if doc.GeneratedAt.IsZero() {
		t.Error("GeneratedAt should be stamped")
	}
	if doc.Summary.Rooms != 1 || doc.Summary.Cabinets != 1 || doc.Summary.Items != 1 {
		t.Errorf("summary counts wrong: %+v", doc.Summary)
	}
	if doc.Summary.Adjustments != 1 || doc.Summary.Conflicts != 0 {
		t.Errorf("summary history wrong: %+v", doc.Summary)
	}

	if len(doc.Cabinets) != 1 {
		t.Fatalf("have %d cabinets, want 1", len(doc.Cabinets))
	}
	cd := doc.Cabinets[0]
	if cd.Room != "R1" || cd.Cabinet != "C01" || cd.Start != 3 || cd.End != 39 {
		t.Errorf("cabinet doc wrong: %+v", cd)
	}
	if cd.UsedSlots != 2 || cd.Capacity != 37 {
		t.Errorf("UsedSlots = %d, Capacity = %d", cd.UsedSlots, cd.Capacity)
	}

	if len(cd.Items) != 1 {
		t.Fatalf("have %d items, want 1", len(cd.Items))
	}
	id := cd.Items[0]
	if id.AssetID != "A-1" || id.Position != 12 || id.Height != 2 || id.Range != "U12-U13" {
		t.Errorf("item doc wrong: %+v", id)
	}

	if len(doc.Adjustments) != 1 {
		t.Fatalf("have %d adjustments, want 1", len(doc.Adjustments))
	}
	adj := doc.Adjustments[0]
	if adj.AssetID != "A-1" || adj.From != 10 || adj.To != 12 || adj.Reason != "testing" {
		t.Errorf("adjustment doc wrong: %+v", adj)
	}
	if adj.ID == "" || adj.MovedAt.IsZero() {
		t.Error("adjustment doc should carry id and timestamp")
	}
}

func TestBuildConflicts(t *testing.T) {
	plan := testPlan(t)
	cab := plan.Cabinet(rack.CabinetKey{Room: "R1", Cabinet: "C01"})
	cab.Force(&rack.Item{
		AssetID: "A-2", Name: "web-02", Room: "R1", Cabinet: "C01", Height: 2, Position: 13,
	})
	plan.Validate()

	doc := Build(plan)
	if len(doc.Conflicts) != 1 {
		t.Fatalf("have %d conflicts, want 1", len(doc.Conflicts))
	}
	c := doc.Conflicts[0]
	if c.Kind != "overlap" || c.AssetID != "A-1" || c.OtherID != "A-2" {
		t.Errorf("conflict doc wrong: %+v", c)
	}
	if c.Description == "" {
		t.Error("conflict doc should carry a description")
	}
}

func TestRender(t *testing.T) {
	out, err := Render(testPlan(t))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.HasSuffix(string(out), "\n") {
		t.Error("output should end with a newline")
	}

	// Round-trip through encoding/json to confirm well-formed output
	var doc Document
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if doc.Summary.Items != 1 {
		t.Errorf("Items = %d, want 1", doc.Summary.Items)
	}
	if doc.Conflicts != nil {
		t.Error("conflict-free plan should omit the conflict list")
	}
}

func TestRenderNilPlan(t *testing.T) {
	if _, err := Render(nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("code = %q, want INVALID_INPUT", errors.GetCode(err))
	}
}
