// Package social models households: flood-warning perception, the evacuation
// decision, movement toward shelters, and damage to household assets.
package social

import (
	"math/rand"

	"github.com/talgya/floodsim/internal/grid"
	"github.com/talgya/floodsim/internal/sim"
)

// EvacStatus is the household evacuation state machine. Transitions run
// forward only: home -> evacuating -> shelter, with shelter terminal.
type EvacStatus string

const (
	StatusHome       EvacStatus = "home"
	StatusEvacuating EvacStatus = "evacuating"
	StatusSheltered  EvacStatus = "shelter"
)

// HousingType categorizes construction quality, which drives both the
// evacuation risk multiplier and the damage factor.
type HousingType string

const (
	HousingKutcha    HousingType = "kutcha"
	HousingSemiPucca HousingType = "semi_pucca"
	HousingPucca     HousingType = "pucca"
)

// riskMultiplier amplifies or dampens the evacuation probability per housing
// type; fragile construction evacuates sooner.
var riskMultiplier = map[HousingType]float64{
	HousingKutcha:    1.2,
	HousingSemiPucca: 1.0,
	HousingPucca:     0.8,
}

// damageFactor scales flood exposure into asset damage per housing type.
var damageFactor = map[HousingType]float64{
	HousingKutcha:    0.8,
	HousingSemiPucca: 0.5,
	HousingPucca:     0.3,
}

// IncomeLevel fixes the household's asset valuation at creation.
type IncomeLevel string

const (
	IncomeLow    IncomeLevel = "low"
	IncomeMedium IncomeLevel = "medium"
	IncomeHigh   IncomeLevel = "high"
)

var baseAssetValue = map[IncomeLevel]float64{
	IncomeLow:    1000,
	IncomeMedium: 5000,
	IncomeHigh:   20000,
}

// Household is one household agent.
type Household struct {
	ID  string
	Pos grid.Point

	// Fixed draws at creation.
	Size          int
	Vulnerability float64 // 0..1
	Income        IncomeLevel
	Housing       HousingType
	Assets        map[string]float64

	// Per-step derived state.
	Status          EvacStatus
	WarningReceived bool
	WarningLevel    int
	FloodExposure   float64
	DamageLevel     float64
	AssetsAtRisk    float64
	ShelterID       string  // target or occupied shelter, empty when none
	EvacuationTime  float64 // last computed travel time, in steps

	target sim.ShelterSpace
	rng    *rand.Rand
	hist   sim.History
}

// New creates a household at pos. Income tier, housing type, and the asset
// valuation are drawn once from rng and never change.
func New(id string, pos grid.Point, size int, vulnerability float64, rng *rand.Rand) *Household {
	h := &Household{
		ID:            id,
		Pos:           pos,
		Size:          size,
		Vulnerability: vulnerability,
		Income:        drawIncome(rng),
		Housing:       drawHousing(rng),
		Status:        StatusHome,
		rng:           rng,
	}
	base := baseAssetValue[h.Income]
	h.Assets = map[string]float64{
		"house":                  base * 0.6,
		"livestock":              base * 0.2,
		"agricultural_equipment": base * 0.1,
		"personal_belongings":    base * 0.1,
	}
	return h
}

// drawIncome draws the income tier: 60% low, 30% medium, 10% high.
func drawIncome(rng *rand.Rand) IncomeLevel {
	switch u := rng.Float64(); {
	case u < 0.6:
		return IncomeLow
	case u < 0.9:
		return IncomeMedium
	default:
		return IncomeHigh
	}
}

// drawHousing draws the housing type from the census shares
// (0.845, 0.068, 0.078), normalized to sum to one.
func drawHousing(rng *rand.Rand) HousingType {
	const total = 0.845 + 0.068 + 0.078
	switch u := rng.Float64() * total; {
	case u < 0.845:
		return HousingKutcha
	case u < 0.845+0.068:
		return HousingSemiPucca
	default:
		return HousingPucca
	}
}

// AgentID implements grid.Occupant.
func (h *Household) AgentID() string { return h.ID }

// Position implements grid.Occupant.
func (h *Household) Position() grid.Point { return h.Pos }

// Step advances the household. Warning perception and exposure update every
// step; the evacuation decision only fires at home; damage assessment freezes
// as soon as the household leaves home.
func (h *Household) Step(env sim.Env) {
	h.scanWarnings(env)
	h.assessExposure(env)

	switch h.Status {
	case StatusHome:
		if h.decideEvacuation() {
			h.beginEvacuation(env)
		}
	case StatusEvacuating:
		h.continueEvacuation(env)
	}

	h.assessDamage()
}

// scanWarnings records the maximum warning level among rivers within
// radius 3.
func (h *Household) scanWarnings(env sim.Env) {
	maxLevel := 0
	for _, occ := range env.Neighbors(h.Pos, 3, false) {
		river, ok := occ.(sim.FloodWarningSource)
		if !ok {
			continue
		}
		if w := river.FloodWarning(); w.WarningLevel > maxLevel {
			maxLevel = w.WarningLevel
		}
	}
	h.WarningReceived = maxLevel > 0
	h.WarningLevel = maxLevel
	h.record()
}

// assessExposure sums the distance-weighted water levels of nearby rivers.
func (h *Household) assessExposure(env sim.Env) {
	exposure := 0.0
	for _, occ := range env.Neighbors(h.Pos, 3, false) {
		river, ok := occ.(sim.FloodWarningSource)
		if !ok {
			continue
		}
		dist := h.Pos.DistanceTo(occ.Position())
		exposure += river.FloodWarning().WaterLevel / (1 + dist)
	}
	h.FloodExposure = exposure
	h.record()
}

// decideEvacuation draws the Bernoulli evacuation decision. The probability
// clamps to 1, so a sufficiently exposed household always leaves.
func (h *Household) decideEvacuation() bool {
	p := (0.3*float64(h.WarningLevel) + 0.4*h.FloodExposure + 0.3*h.Vulnerability) *
		riskMultiplier[h.Housing]
	if p > 1 {
		p = 1
	}
	return h.rng.Float64() < p
}

// beginEvacuation transitions home -> evacuating. With no shelters in the
// simulation the household stays evacuating without a target and retries
// next step.
func (h *Household) beginEvacuation(env sim.Env) {
	h.Status = StatusEvacuating
	h.record()
	h.continueEvacuation(env)
}

// continueEvacuation resolves a target shelter and advances toward it.
// Arrival happens when the obstacle-adjusted travel time from the current
// position drops to one step or less.
func (h *Household) continueEvacuation(env sim.Env) {
	if h.target == nil {
		h.target = nearestShelter(h.Pos, env.Shelters())
		if h.target == nil {
			return
		}
		h.ShelterID = h.target.AgentID()
		h.record()
	}

	dist := h.Pos.DistanceTo(h.target.Position())
	h.EvacuationTime = dist * 100 * (1 + 0.2*h.rng.Float64())
	h.record()

	if h.EvacuationTime <= 1 {
		h.arrive(env)
		return
	}
	h.moveToward(env, h.target.Position())
}

// arrive registers with the target shelter. A full shelter rejects the
// admission; the household stays evacuating and re-resolves the nearest
// shelter on its next activation.
func (h *Household) arrive(env sim.Env) {
	if err := h.target.Admit(h.ID); err != nil {
		h.target = nil
		h.ShelterID = ""
		h.record()
		return
	}
	h.Status = StatusSheltered
	h.record()
}

// nearestShelter picks the shelter with the smallest straight-line distance,
// breaking ties on the lowest agent ID so the choice does not depend on
// iteration order.
func nearestShelter(pos grid.Point, shelters []sim.ShelterSpace) sim.ShelterSpace {
	var best sim.ShelterSpace
	bestDist := 0.0
	for _, s := range shelters {
		d := pos.DistanceTo(s.Position())
		if best == nil || d < bestDist || (d == bestDist && s.AgentID() < best.AgentID()) {
			best = s
			bestDist = d
		}
	}
	return best
}

// moveToward takes one fractional step of 0.1 units toward dest.
func (h *Household) moveToward(env sim.Env, dest grid.Point) {
	dx := dest.X - h.Pos.X
	dy := dest.Y - h.Pos.Y
	dist := h.Pos.DistanceTo(dest)
	if dist > 0 {
		dx = dx / dist * 0.1
		dy = dy / dist * 0.1
	}
	h.Pos = grid.Point{X: h.Pos.X + dx, Y: h.Pos.Y + dy}
	env.Moved(h)
	h.record()
}

// assessDamage recomputes damage while the household is still home. Damage
// assessment freezes once the household is evacuating or sheltered.
func (h *Household) assessDamage() {
	if h.Status != StatusHome {
		return
	}
	h.DamageLevel = h.FloodExposure * damageFactor[h.Housing]
	total := 0.0
	for _, value := range h.Assets {
		total += value * h.DamageLevel
	}
	h.AssetsAtRisk = total
	h.record()
}

// History returns the per-mutation state log.
func (h *Household) History() *sim.History { return &h.hist }

func (h *Household) record() {
	h.hist.Record(sim.Snapshot{
		"evacuation_status": string(h.Status),
		"warning_received":  h.WarningReceived,
		"warning_level":     h.WarningLevel,
		"flood_exposure":    h.FloodExposure,
		"damage_level":      h.DamageLevel,
		"assets_at_risk":    h.AssetsAtRisk,
		"nearest_shelter":   h.ShelterID,
		"evacuation_time":   h.EvacuationTime,
		"position":          h.Pos,
	})
}
