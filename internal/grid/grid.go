// Package grid provides the spatial registry for the delta simulation.
// Agents live at continuous (x, y) positions; neighbor queries run against a
// discretized cell index using Chebyshev (Moore) adjacency.
package grid

import (
	"fmt"
	"math"
)

// Point is a continuous position in the bounded coordinate space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo returns the Euclidean distance to another point.
func (p Point) DistanceTo(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Cell is a discrete index cell. Continuous positions round to the nearest
// cell before any index lookup.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// CellOf returns the index cell containing a continuous position.
func CellOf(p Point) Cell {
	return Cell{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))}
}

// Center returns the continuous position at the middle of the cell.
func (c Cell) Center() Point {
	return Point{X: float64(c.X), Y: float64(c.Y)}
}

// Occupant is the minimal view of an agent the registry needs.
type Occupant interface {
	AgentID() string
	Position() Point
}

// Registry indexes agents by cell for radius-bounded neighbor queries.
//
// Queries are not snapshotted: within one scheduler pass a query observes the
// current index, so agents already advanced this step appear at their updated
// positions while the rest appear at their start-of-step positions. Callers
// must tolerate either.
type Registry struct {
	Width  int
	Height int

	cells map[Cell][]Occupant
	where map[string]Cell
}

// NewRegistry creates an empty registry over a width x height cell space.
func NewRegistry(width, height int) *Registry {
	return &Registry{
		Width:  width,
		Height: height,
		cells:  make(map[Cell][]Occupant),
		where:  make(map[string]Cell),
	}
}

// Place registers an agent at its current position.
func (r *Registry) Place(a Occupant) error {
	if _, ok := r.where[a.AgentID()]; ok {
		return fmt.Errorf("agent %s already placed", a.AgentID())
	}
	cell := CellOf(a.Position())
	r.cells[cell] = append(r.cells[cell], a)
	r.where[a.AgentID()] = cell
	return nil
}

// Move reindexes an agent that has relocated. Positions are owned by the
// agent; Move only maintains the cell index.
func (r *Registry) Move(a Occupant) {
	old, ok := r.where[a.AgentID()]
	next := CellOf(a.Position())
	if ok && old == next {
		return
	}
	if ok {
		bucket := r.cells[old]
		for i, occ := range bucket {
			if occ.AgentID() == a.AgentID() {
				bucket[i] = bucket[len(bucket)-1]
				r.cells[old] = bucket[:len(bucket)-1]
				break
			}
		}
		if len(r.cells[old]) == 0 {
			delete(r.cells, old)
		}
	}
	r.cells[next] = append(r.cells[next], a)
	r.where[a.AgentID()] = next
}

// Neighbors returns all agents within Chebyshev distance radius of the cell
// containing pos. With includeCenter false, agents indexed in the query cell
// itself are skipped.
func (r *Registry) Neighbors(pos Point, radius int, includeCenter bool) []Occupant {
	center := CellOf(pos)
	var out []Occupant
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			cell := Cell{X: center.X + dx, Y: center.Y + dy}
			if cell == center && !includeCenter {
				continue
			}
			out = append(out, r.cells[cell]...)
		}
	}
	return out
}

// CellsWithin returns the cells within Chebyshev distance radius of center,
// excluding the center cell. Used for affected-area derivation.
func (r *Registry) CellsWithin(center Cell, radius int) []Cell {
	var out []Cell
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			c := Cell{X: center.X + dx, Y: center.Y + dy}
			if c.X < 0 || c.Y < 0 || c.X >= r.Width || c.Y >= r.Height {
				continue
			}
			out = append(out, c)
		}
	}
	return out
}

// Count returns the number of indexed agents.
func (r *Registry) Count() int {
	return len(r.where)
}
