package cli

import (
	"testing"
)

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"derived from input", "", "racks/inventory.csv", "racks/inventory"},
		{"explicit base", "out/diagram", "inventory.csv", "out/diagram"},
		{"format extension stripped", "diagram.drawio", "inventory.csv", "diagram"},
		{"json extension stripped", "report.json", "inventory.csv", "report"},
		{"foreign extension kept", "diagram.v2", "inventory.csv", "diagram.v2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestArtifactPath(t *testing.T) {
	tests := []struct {
		name        string
		base        string
		output      string
		format      string
		formatCount int
		want        string
	}{
		{"derived", "inventory", "", "drawio", 1, "inventory.drawio"},
		{"explicit single output", "diagram", "diagram.drawio", "drawio", 1, "diagram.drawio"},
		{"multiple formats use base", "diagram", "diagram.drawio", "json", 2, "diagram.json"},
		{"output without extension", "out/plan", "out/plan", "json", 1, "out/plan.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := artifactPath(tt.base, tt.output, tt.format, tt.formatCount)
			if got != tt.want {
				t.Errorf("artifactPath = %q, want %q", got, tt.want)
			}
		})
	}
}
