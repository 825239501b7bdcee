// Package econ models per-sector economic impact: flood-suppressed
// production, insured and uninsured damage, recovery, and market access.
package econ

import (
	"github.com/talgya/floodsim/internal/grid"
	"github.com/talgya/floodsim/internal/sim"
)

// Sector names with dedicated parameter sets. Unrecognized sectors fall back
// to defaultParams.
const (
	SectorAgriculture = "agriculture"
	SectorIndustry    = "industry"
	SectorServices    = "services"
)

// Params are the fixed per-sector characteristics.
type Params struct {
	Vulnerability   float64
	RecoveryTime    float64 // days to full recovery
	InsuranceRate   float64
	EmploymentRatio float64
	BaseAssets      float64
}

var sectorParams = map[string]Params{
	SectorAgriculture: {Vulnerability: 0.8, RecoveryTime: 180, InsuranceRate: 0.3, EmploymentRatio: 0.4, BaseAssets: 50000},
	SectorIndustry:    {Vulnerability: 0.6, RecoveryTime: 90, InsuranceRate: 0.7, EmploymentRatio: 0.3, BaseAssets: 200000},
	SectorServices:    {Vulnerability: 0.4, RecoveryTime: 30, InsuranceRate: 0.5, EmploymentRatio: 0.3, BaseAssets: 100000},
}

var defaultParams = Params{Vulnerability: 0.5, RecoveryTime: 60, InsuranceRate: 0.5, EmploymentRatio: 0.33, BaseAssets: 75000}

// ParamsFor returns the parameter set for a sector, falling back to defaults
// for unrecognized sector names.
func ParamsFor(sector string) Params {
	if p, ok := sectorParams[sector]; ok {
		return p
	}
	return defaultParams
}

// PolicyType enumerates the external policy interventions.
type PolicyType string

const (
	PolicySubsidy        PolicyType = "subsidy"
	PolicyInsurance      PolicyType = "insurance"
	PolicyRecovery       PolicyType = "recovery"
	PolicyInfrastructure PolicyType = "infrastructure"
)

// Agent is one economic sector agent.
type Agent struct {
	ID  string
	Pos grid.Point

	Sector string
	Params Params

	ProductionLevel float64 // 0..1
	FloodImpact     float64
	Damage          float64 // uninsured monetary loss
	InsuredDamage   float64
	RecoveryRate    float64 // capped at 1; severe floods can push it negative
	Employment      int     // fixed at creation
	Assets          float64
	MarketAccess    float64 // 0..1

	hist sim.History
}

// New creates a sector agent at pos. Employment scales the region's
// population by the sector's employment ratio, downscaled the same way the
// household population is.
func New(id, sector string, pos grid.Point, population int) *Agent {
	p := ParamsFor(sector)
	return &Agent{
		ID:              id,
		Pos:             pos,
		Sector:          sector,
		Params:          p,
		ProductionLevel: 1.0,
		Employment:      int(float64(population) * p.EmploymentRatio / 1000),
		Assets:          p.BaseAssets,
		MarketAccess:    1.0,
	}
}

// AgentID implements grid.Occupant.
func (a *Agent) AgentID() string { return a.ID }

// Position implements grid.Occupant.
func (a *Agent) Position() grid.Point { return a.Pos }

// Step advances the sector: flood impact, production, damage, recovery,
// market access — in that order.
func (a *Agent) Step(env sim.Env) {
	a.assessFloodImpact(env)
	a.updateProduction()
	a.calculateDamage()
	a.updateRecovery()
	a.updateMarketAccess()
}

// assessFloodImpact sums distance-weighted water levels of rivers within
// radius 3, scaled by the sector's vulnerability.
func (a *Agent) assessFloodImpact(env sim.Env) {
	impact := 0.0
	for _, occ := range env.Neighbors(a.Pos, 3, false) {
		river, ok := occ.(sim.FloodWarningSource)
		if !ok {
			continue
		}
		dist := a.Pos.DistanceTo(occ.Position())
		impact += river.FloodWarning().WaterLevel / (1 + dist)
	}
	a.FloodImpact = impact * a.Params.Vulnerability
	a.record()
}

func (a *Agent) updateProduction() {
	a.ProductionLevel = clamp01(a.ProductionLevel*(1-a.FloodImpact) + a.RecoveryRate)
	a.record()
}

// calculateDamage splits the base damage into insured and uninsured shares.
func (a *Agent) calculateDamage() {
	base := a.Assets * a.FloodImpact * (1 - a.ProductionLevel)
	a.InsuredDamage = base * a.Params.InsuranceRate
	a.Damage = base * (1 - a.Params.InsuranceRate)
	a.record()
}

// updateRecovery advances recovery toward saturation unless freshly
// suppressed by flood impact.
func (a *Agent) updateRecovery() {
	a.RecoveryRate = min1(a.RecoveryRate + (1/a.Params.RecoveryTime)*(1-a.FloodImpact))
	a.record()
}

func (a *Agent) updateMarketAccess() {
	// Flood impact is an unbounded sum, so the product is clamped to keep
	// market access a valid share.
	a.MarketAccess = clamp01((1 - a.FloodImpact) * (0.7 + 0.3*a.ProductionLevel))
	a.record()
}

// ApplyPolicy scales the state targeted by the intervention by
// (1 + magnitude), clamped to valid range. Unknown policy types are ignored.
func (a *Agent) ApplyPolicy(policy PolicyType, magnitude float64) {
	switch policy {
	case PolicySubsidy:
		a.ProductionLevel = min1(a.ProductionLevel * (1 + magnitude))
	case PolicyInsurance:
		a.Params.InsuranceRate = min1(a.Params.InsuranceRate * (1 + magnitude))
	case PolicyRecovery:
		a.RecoveryRate = min1(a.RecoveryRate * (1 + magnitude))
	case PolicyInfrastructure:
		a.MarketAccess = min1(a.MarketAccess * (1 + magnitude))
	}
	a.record()
}

// Report is the sector view consumed by the data collector.
type Report struct {
	Sector          string  `json:"sector"`
	ProductionLevel float64 `json:"production_level"`
	Damage          float64 `json:"damage"`
	InsuredDamage   float64 `json:"insured_damage"`
	RecoveryRate    float64 `json:"recovery_rate"`
	Employment      int     `json:"employment"`
	MarketAccess    float64 `json:"market_access"`
	FloodImpact     float64 `json:"flood_impact"`
	RecoveryStatus  string  `json:"recovery_status"`
}

// EconomicReport builds a point-in-time sector report.
func (a *Agent) EconomicReport() Report {
	status := "recovering"
	if a.RecoveryRate >= 1 {
		status = "recovered"
	}
	return Report{
		Sector:          a.Sector,
		ProductionLevel: a.ProductionLevel,
		Damage:          a.Damage,
		InsuredDamage:   a.InsuredDamage,
		RecoveryRate:    a.RecoveryRate,
		Employment:      a.Employment,
		MarketAccess:    a.MarketAccess,
		FloodImpact:     a.FloodImpact,
		RecoveryStatus:  status,
	}
}

// History returns the per-mutation state log.
func (a *Agent) History() *sim.History { return &a.hist }

func (a *Agent) record() {
	a.hist.Record(sim.Snapshot{
		"sector":           a.Sector,
		"production_level": a.ProductionLevel,
		"flood_impact":     a.FloodImpact,
		"damage":           a.Damage,
		"insured_damage":   a.InsuredDamage,
		"recovery_rate":    a.RecoveryRate,
		"market_access":    a.MarketAccess,
	})
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func min1(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}
