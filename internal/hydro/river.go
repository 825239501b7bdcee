// Package hydro models river segments: rainfall-driven water levels, a
// Manning-style open-channel flow approximation, sediment transport, and
// flood classification against configured thresholds.
package hydro

import (
	"math"
	"math/rand"

	"github.com/talgya/floodsim/internal/grid"
	"github.com/talgya/floodsim/internal/sim"
)

// Flood status values in increasing severity.
const (
	StatusNormal  = "normal"
	StatusWarning = "warning"
	StatusDanger  = "danger"
	StatusSevere  = "severe"
)

// Thresholds are the configured water levels that classify flood severity.
// The warning band starts at 0.7 x Danger; both bounds are inclusive.
type Thresholds struct {
	Danger float64
	Severe float64
}

// Classify maps a water level to (status, warning level). Warning level is a
// monotone non-decreasing step function of the water level.
func (t Thresholds) Classify(waterLevel float64) (string, int) {
	switch {
	case waterLevel >= t.Severe:
		return StatusSevere, 3
	case waterLevel >= t.Danger:
		return StatusDanger, 2
	case waterLevel >= t.Danger*0.7:
		return StatusWarning, 1
	default:
		return StatusNormal, 0
	}
}

// Channel holds the fixed geometry and roughness of a river segment.
type Channel struct {
	ManningCoefficient float64 // roughness, typical natural river ~0.03
	Slope              float64
	Width              float64 // meters
	Depth              float64 // meters
}

// DefaultChannel returns geometry typical of a large delta river.
func DefaultChannel() Channel {
	return Channel{
		ManningCoefficient: 0.03,
		Slope:              0.0001,
		Width:              1000,
		Depth:              10,
	}
}

// River is one river segment agent. Its derived state is mutated only by its
// own Step; other agents read it through FloodWarning.
type River struct {
	ID  string
	Pos grid.Point

	// Fixed characteristics from configuration.
	Name      string
	Length    float64 // kilometers
	Source    string
	BasinArea float64 // square kilometers
	Channel   Channel
	Limits    Thresholds

	// Derived per step.
	WaterLevel    float64
	FlowRate      float64
	SedimentLoad  float64
	FloodStatus   string
	WarningLevel  int
	AffectedAreas []grid.Cell

	rng  *rand.Rand
	hist sim.History
}

// New creates a river segment at pos with the given characteristics.
func New(id, name string, pos grid.Point, length, basinArea float64, source string, limits Thresholds, rng *rand.Rand) *River {
	return &River{
		ID:          id,
		Pos:         pos,
		Name:        name,
		Length:      length,
		Source:      source,
		BasinArea:   basinArea,
		Channel:     DefaultChannel(),
		Limits:      limits,
		FloodStatus: StatusNormal,
		rng:         rng,
	}
}

// AgentID implements grid.Occupant.
func (r *River) AgentID() string { return r.ID }

// Position implements grid.Occupant.
func (r *River) Position() grid.Point { return r.Pos }

// Step advances the segment: water level, flow, sediment, classification,
// affected areas — in that order.
func (r *River) Step(env sim.Env) {
	r.updateWaterLevel(env.Rainfall(r.Pos))
	r.updateFlowRate()
	r.updateSedimentLoad()
	r.classify()
	r.updateAffectedAreas(env)
}

// updateWaterLevel applies the rainfall contribution minus a simplified
// evaporation loss, floored at zero.
func (r *River) updateWaterLevel(rainfall float64) {
	level := r.WaterLevel + rainfall*0.1 - r.WaterLevel*0.01
	r.WaterLevel = math.Max(0, level)
	r.record()
}

// updateFlowRate applies Manning's equation Q = (1/n) A R^(2/3) S^(1/2) with
// cross-sectional area A = width x level and hydraulic radius A / wetted
// perimeter. A dry channel yields zero flow.
func (r *River) updateFlowRate() {
	area := r.Channel.Width * r.WaterLevel
	wetted := 2*r.WaterLevel + r.Channel.Width
	hydraulicRadius := area / wetted
	r.FlowRate = (1 / r.Channel.ManningCoefficient) *
		area *
		math.Pow(hydraulicRadius, 2.0/3.0) *
		math.Sqrt(r.Channel.Slope)
	r.record()
}

func (r *River) updateSedimentLoad() {
	r.SedimentLoad = r.FlowRate * r.WaterLevel * 1e-3
	r.record()
}

func (r *River) classify() {
	r.FloodStatus, r.WarningLevel = r.Limits.Classify(r.WaterLevel)
	r.record()
}

// updateAffectedAreas re-derives the flooded cells while the segment is in
// danger or severe. Cells closer to the segment flood with higher
// probability; nothing beyond distance 2 floods.
func (r *River) updateAffectedAreas(env sim.Env) {
	if r.FloodStatus != StatusDanger && r.FloodStatus != StatusSevere {
		r.AffectedAreas = nil
		r.record()
		return
	}

	var affected []grid.Cell
	for _, cell := range env.CellsWithin(grid.CellOf(r.Pos), 2) {
		dist := r.Pos.DistanceTo(cell.Center())
		if dist < 2 && r.rng.Float64() < 1/(1+dist) {
			affected = append(affected, cell)
		}
	}
	r.AffectedAreas = affected
	r.record()
}

// FloodWarning implements sim.FloodWarningSource.
func (r *River) FloodWarning() sim.FloodWarning {
	return sim.FloodWarning{
		RiverName:     r.Name,
		WaterLevel:    r.WaterLevel,
		FloodStatus:   r.FloodStatus,
		WarningLevel:  r.WarningLevel,
		AffectedAreas: len(r.AffectedAreas),
	}
}

// History returns the per-mutation state log.
func (r *River) History() *sim.History { return &r.hist }

func (r *River) record() {
	r.hist.Record(sim.Snapshot{
		"water_level":    r.WaterLevel,
		"flow_rate":      r.FlowRate,
		"sediment_load":  r.SedimentLoad,
		"flood_status":   r.FloodStatus,
		"warning_level":  r.WarningLevel,
		"affected_areas": len(r.AffectedAreas),
	})
}
