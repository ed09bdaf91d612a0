package domain

import (
	"testing"
)

func TestPositionSnap(t *testing.T) {
	tests := []struct {
		name string
		in   Position
		unit float64
		want Position
	}{
		{"rounds up to nearest grid line", Position{53, 78}, 20, Position{60, 80}},
		{"rounds down to nearest grid line", Position{49, 61}, 20, Position{40, 60}},
		{"half rounds away from zero", Position{10, 30}, 20, Position{20, 40}},
		{"already on grid", Position{100, 200}, 20, Position{100, 200}},
		{"negative coordinates", Position{-53, -9}, 20, Position{-60, 0}},
		{"zero unit leaves position", Position{53.5, 78.25}, 0, Position{53.5, 78.25}},
		{"negative unit leaves position", Position{53, 78}, -20, Position{53, 78}},
		{"custom unit", Position{53, 78}, 25, Position{50, 75}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Snap(tt.unit)
			if got != tt.want {
				t.Errorf("Snap(%v, %v) = %v, want %v", tt.in, tt.unit, got, tt.want)
			}
		})
	}
}

func TestNodeTypeDefaultSize(t *testing.T) {
	t.Run("segments are larger than devices", func(t *testing.T) {
		vlan := NodeTypeVLAN.DefaultSize()
		sw := NodeTypeSwitch.DefaultSize()

		if vlan.Width != 120 || vlan.Height != 80 {
			t.Errorf("expected vlan size 120x80, got %vx%v", vlan.Width, vlan.Height)
		}
		if sw.Width != 100 || sw.Height != 60 {
			t.Errorf("expected switch size 100x60, got %vx%v", sw.Width, sw.Height)
		}
	})

	t.Run("every node type has a size and category", func(t *testing.T) {
		for _, nt := range NodeTypes() {
			if nt.DefaultSize().Width == 0 {
				t.Errorf("node type %s has no default size", nt)
			}
			if nt.Category() == "" {
				t.Errorf("node type %s has no category", nt)
			}
		}
	})
}
