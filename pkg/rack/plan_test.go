package rack

import (
	"testing"
)

func TestPlanEnsure(t *testing.T) {
	p := NewPlan()

	key := CabinetKey{Room: "R1", Cabinet: "C01"}
	c1 := p.Ensure(key, 3, 39)
	c2 := p.Ensure(key, 1, 42) // second Ensure ignores new bounds

	if c1 != c2 {
		t.Error("Ensure should return the same cabinet for the same key")
	}
	if c1.Start != 3 || c1.End != 39 {
		t.Errorf("bounds = [%d, %d], want the first-call bounds [3, 39]", c1.Start, c1.End)
	}
	if p.TotalCabinets() != 1 {
		t.Errorf("TotalCabinets = %d, want 1", p.TotalCabinets())
	}
}

func TestPlanCabinetOrder(t *testing.T) {
	p := NewPlan()
	p.Ensure(CabinetKey{Room: "R2", Cabinet: "C01"}, 3, 39)
	p.Ensure(CabinetKey{Room: "R1", Cabinet: "C02"}, 3, 39)
	p.Ensure(CabinetKey{Room: "R1", Cabinet: "C01"}, 3, 39)

	// Cabinets iterate in first-appearance order
	cabs := p.Cabinets()
	wantOrder := []string{"R2-C01", "R1-C02", "R1-C01"}
	for i, c := range cabs {
		if c.Key().String() != wantOrder[i] {
			t.Errorf("Cabinets[%d] = %s, want %s", i, c.Key(), wantOrder[i])
		}
	}

	// Rooms are sorted regardless of appearance order
	rooms := p.Rooms()
	if len(rooms) != 2 || rooms[0] != "R1" || rooms[1] != "R2" {
		t.Errorf("Rooms = %v, want [R1 R2]", rooms)
	}

	// Within a room, cabinets sort by cabinet id
	r1 := p.CabinetsByRoom("R1")
	if len(r1) != 2 || r1[0].Cabinet != "C01" || r1[1].Cabinet != "C02" {
		t.Errorf("CabinetsByRoom(R1) order wrong: %v, %v", r1[0].Cabinet, r1[1].Cabinet)
	}
}

func TestPlanValidate(t *testing.T) {
	p := NewPlan()
	c := p.Ensure(CabinetKey{Room: "R1", Cabinet: "C01"}, 3, 39)

	if !p.Validate() {
		t.Error("empty plan should validate clean")
	}

	c.Force(&Item{AssetID: "A-1", Room: "R1", Cabinet: "C01", Height: 2, Position: 10})
	c.Force(&Item{AssetID: "A-2", Room: "R1", Cabinet: "C01", Height: 2, Position: 11})

	if p.Validate() {
		t.Error("overlapping items should fail validation")
	}
	if len(p.Conflicts()) != 1 {
		t.Errorf("have %d conflicts, want 1", len(p.Conflicts()))
	}

	// Validate rescans from scratch after the conflict is resolved
	c.Remove("A-2")
	if !p.Validate() {
		t.Error("plan should validate clean after removal")
	}
	if len(p.Conflicts()) != 0 {
		t.Errorf("have %d conflicts, want 0", len(p.Conflicts()))
	}
}

func TestPlanAdjustments(t *testing.T) {
	p := NewPlan()
	it := &Item{AssetID: "A-1", Height: 1, Position: 12}

	a := NewAdjustment(it, 10, 12, "testing")
	if a.ID == "" {
		t.Error("NewAdjustment should assign an id")
	}
	if a.At.IsZero() {
		t.Error("NewAdjustment should stamp a time")
	}

	p.RecordAdjustment(a)
	if len(p.Adjustments()) != 1 {
		t.Fatalf("have %d adjustments, want 1", len(p.Adjustments()))
	}
	if got := p.Adjustments()[0].String(); got != "A-1: U10 → U12 (testing)" {
		t.Errorf("String = %q", got)
	}
}

func TestPlanStats(t *testing.T) {
	p := NewPlan()
	c1 := p.Ensure(CabinetKey{Room: "R1", Cabinet: "C01"}, 1, 10)
	c2 := p.Ensure(CabinetKey{Room: "R2", Cabinet: "C01"}, 1, 10)

	if err := c1.Place(&Item{AssetID: "A-1", Room: "R1", Cabinet: "C01", Height: 4, Position: 1}); err != nil {
		t.Fatal(err)
	}
	if err := c2.Place(&Item{AssetID: "A-2", Room: "R2", Cabinet: "C01", Height: 6, Position: 1}); err != nil {
		t.Fatal(err)
	}
	p.Validate()

	stats := p.Stats()
	if stats.Cabinets != 2 {
		t.Errorf("Cabinets = %d, want 2", stats.Cabinets)
	}
	if stats.Items != 2 {
		t.Errorf("Items = %d, want 2", stats.Items)
	}
	if stats.Rooms != 2 {
		t.Errorf("Rooms = %d, want 2", stats.Rooms)
	}
	if stats.Conflicts != 0 {
		t.Errorf("Conflicts = %d, want 0", stats.Conflicts)
	}

	// 10 of 20 aggregate slots occupied
	if stats.Utilization != 50 {
		t.Errorf("Utilization = %f, want 50", stats.Utilization)
	}
}
