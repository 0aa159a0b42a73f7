package rack

import (
	"testing"

	"github.com/rackplan/rackplan/pkg/errors"
)

func TestNewItem(t *testing.T) {
	tests := []struct {
		name     string
		item     Item
		wantCode errors.Code
	}{
		{"valid", Item{AssetID: "A-1", Height: 2, Position: 10}, ""},
		{"one slot at bottom", Item{AssetID: "A-2", Height: 1, Position: 1}, ""},
		{"zero height", Item{AssetID: "A-3", Height: 0, Position: 10}, errors.ErrCodeInvalidInput},
		{"negative height", Item{AssetID: "A-4", Height: -2, Position: 10}, errors.ErrCodeInvalidInput},
		{"zero position", Item{AssetID: "A-5", Height: 1, Position: 0}, errors.ErrCodeInvalidPosition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, err := NewItem(tt.item)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("NewItem: %v", err)
				}
				if it.AssetID != tt.item.AssetID {
					t.Errorf("AssetID = %q, want %q", it.AssetID, tt.item.AssetID)
				}
				return
			}
			if err == nil {
				t.Fatal("NewItem should fail")
			}
			if got := errors.GetCode(err); got != tt.wantCode {
				t.Errorf("code = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

func TestPositionRange(t *testing.T) {
	single := &Item{Height: 1, Position: 10}
	if got := single.PositionRange(); got != "U10" {
		t.Errorf("PositionRange = %q, want %q", got, "U10")
	}

	multi := &Item{Height: 2, Position: 10}
	if got := multi.PositionRange(); got != "U10-U11" {
		t.Errorf("PositionRange = %q, want %q", got, "U10-U11")
	}
	if multi.EndPosition() != 11 {
		t.Errorf("EndPosition = %d, want 11", multi.EndPosition())
	}
}

func TestLabel(t *testing.T) {
	it := &Item{Name: "web-01", Model: "DL380", Vendor: "HPE"}

	if got := it.Label(false); got != "web-01\nDL380" {
		t.Errorf("Label(false) = %q", got)
	}
	if got := it.Label(true); got != "web-01\nDL380\n(HPE)" {
		t.Errorf("Label(true) = %q", got)
	}

	// Detailed without a vendor falls back to the plain label
	it.Vendor = ""
	if got := it.Label(true); got != "web-01\nDL380" {
		t.Errorf("Label(true) without vendor = %q", got)
	}
}

func TestOverlapsWith(t *testing.T) {
	tests := []struct {
		name string
		a, b Item
		want bool
	}{
		{
			"identical runs",
			Item{Room: "R1", Cabinet: "C01", Height: 2, Position: 10},
			Item{Room: "R1", Cabinet: "C01", Height: 2, Position: 10},
			true,
		},
		{
			"partial overlap",
			Item{Room: "R1", Cabinet: "C01", Height: 2, Position: 10},
			Item{Room: "R1", Cabinet: "C01", Height: 2, Position: 11},
			true,
		},
		{
			"adjacent runs",
			Item{Room: "R1", Cabinet: "C01", Height: 2, Position: 10},
			Item{Room: "R1", Cabinet: "C01", Height: 2, Position: 12},
			false,
		},
		{
			"different cabinets",
			Item{Room: "R1", Cabinet: "C01", Height: 2, Position: 10},
			Item{Room: "R1", Cabinet: "C02", Height: 2, Position: 10},
			false,
		},
		{
			"different rooms",
			Item{Room: "R1", Cabinet: "C01", Height: 2, Position: 10},
			Item{Room: "R2", Cabinet: "C01", Height: 2, Position: 10},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.OverlapsWith(&tt.b); got != tt.want {
				t.Errorf("OverlapsWith = %v, want %v", got, tt.want)
			}
			// Overlap is symmetric
			if got := tt.b.OverlapsWith(&tt.a); got != tt.want {
				t.Errorf("reverse OverlapsWith = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseCabinetKey(t *testing.T) {
	tests := []struct {
		id      string
		want    CabinetKey
		wantErr bool
	}{
		{"R1-C01", CabinetKey{Room: "R1", Cabinet: "C01"}, false},
		{"R1-C01-extra", CabinetKey{Room: "R1", Cabinet: "C01-extra"}, false},
		{"R1", CabinetKey{}, true},
		{"-C01", CabinetKey{}, true},
		{"R1-", CabinetKey{}, true},
		{"", CabinetKey{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			key, err := ParseCabinetKey(tt.id)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ParseCabinetKey should fail")
				}
				if !errors.Is(err, errors.ErrCodeInvalidCabinet) {
					t.Errorf("code = %q, want INVALID_CABINET", errors.GetCode(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCabinetKey: %v", err)
			}
			if key != tt.want {
				t.Errorf("key = %+v, want %+v", key, tt.want)
			}
			if key.String() != tt.id {
				t.Errorf("String = %q, want %q", key.String(), tt.id)
			}
		})
	}
}
