package domain

import "math"

// DefaultGridUnit is the canvas grid spacing used when snapping
const DefaultGridUnit = 20

// Position is a point on the design canvas
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Snap rounds both coordinates to the nearest multiple of unit.
// A non-positive unit leaves the position unchanged.
func (p Position) Snap(unit float64) Position {
	if unit <= 0 {
		return p
	}
	return Position{
		X: math.Round(p.X/unit) * unit,
		Y: math.Round(p.Y/unit) * unit,
	}
}

// Size is the rendered footprint of a node
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}
