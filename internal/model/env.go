package model

import (
	"github.com/talgya/floodsim/internal/grid"
	"github.com/talgya/floodsim/internal/sim"
)

// Model implements sim.Env: the slice of itself an agent may touch while
// stepping. Reads go against live state — an agent activated later in the
// same step sees the writes of agents activated earlier. This is the
// documented ordering hazard of the random-activation discipline, tolerated
// rather than eliminated.
var _ sim.Env = (*Model)(nil)

// Neighbors implements sim.Env.
func (m *Model) Neighbors(pos grid.Point, radius int, includeCenter bool) []grid.Occupant {
	return m.Registry.Neighbors(pos, radius, includeCenter)
}

// Shelters implements sim.Env.
func (m *Model) Shelters() []sim.ShelterSpace {
	return m.shelter
}

// Rainfall implements sim.Env.
func (m *Model) Rainfall(pos grid.Point) float64 {
	return m.rain.At(pos)
}

// CellsWithin implements sim.Env.
func (m *Model) CellsWithin(center grid.Cell, radius int) []grid.Cell {
	return m.Registry.CellsWithin(center, radius)
}

// Moved implements sim.Env.
func (m *Model) Moved(a grid.Occupant) {
	m.Registry.Move(a)
}
