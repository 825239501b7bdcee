// Package sim defines the agent contract shared by every agent kind: stable
// identity, position, the environment an agent steps against, the capability
// interfaces coupling agent types, and the append-only state history log.
package sim

import (
	"math/rand"

	"github.com/talgya/floodsim/internal/grid"
)

// Agent is a simulation participant driven by the scheduler.
type Agent interface {
	grid.Occupant

	// Step runs one activation against the live environment. Reads of other
	// agents are not snapshotted; see the registry ordering note.
	Step(env Env)
}

// Env is the slice of the model an agent may touch during its step.
type Env interface {
	// Neighbors queries the spatial registry around a position.
	Neighbors(pos grid.Point, radius int, includeCenter bool) []grid.Occupant

	// Shelters returns every shelter in the simulation, for nearest-shelter
	// search. Order is unspecified.
	Shelters() []ShelterSpace

	// Rainfall returns the external rainfall input at a position for the
	// current step, in mm per time unit. Always non-negative.
	Rainfall(pos grid.Point) float64

	// CellsWithin returns in-bounds index cells within Chebyshev distance
	// radius of center, excluding the center cell.
	CellsWithin(center grid.Cell, radius int) []grid.Cell

	// Moved reindexes an agent after it changed its own position.
	Moved(a grid.Occupant)
}

// FloodWarning is the read-only coupling surface a river exposes to
// households and economic agents.
type FloodWarning struct {
	RiverName     string  `json:"river_name"`
	WaterLevel    float64 `json:"water_level"`
	FloodStatus   string  `json:"flood_status"`
	WarningLevel  int     `json:"warning_level"`
	AffectedAreas int     `json:"affected_areas"`
}

// FloodWarningSource is the capability of emitting flood warnings.
// Implemented by river agents only.
type FloodWarningSource interface {
	FloodWarning() FloodWarning
}

// ShelterSpace is the capability of admitting evacuating households.
type ShelterSpace interface {
	AgentID() string
	Position() grid.Point
	Admit(householdID string) error
	Release(householdID string)
	Occupancy() int
	Capacity() int
}

// NewRand builds the single seedable random source threaded through the
// model. A fixed seed with a fixed agent registration order reproduces a run.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
