// Package model is the composition root of the simulation: it builds the
// spatial registry and every agent from configuration, drives the scheduler,
// and exposes the aggregate read accessors consumed by reporting and
// visualization collaborators.
package model

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/talgya/floodsim/internal/config"
	"github.com/talgya/floodsim/internal/econ"
	"github.com/talgya/floodsim/internal/grid"
	"github.com/talgya/floodsim/internal/hydro"
	"github.com/talgya/floodsim/internal/infra"
	"github.com/talgya/floodsim/internal/sched"
	"github.com/talgya/floodsim/internal/sim"
	"github.com/talgya/floodsim/internal/social"
)

// RainSource is the external rainfall collaborator. The kernel queries it
// once per river per step and makes no assumption about its internals.
type RainSource interface {
	At(p grid.Point) float64
	Advance(step uint64)
}

// CollectFunc is the optional per-step collection hook. It runs after every
// agent has been activated, so all per-step state is settled when it fires.
type CollectFunc func(step uint64)

// Model holds the complete simulation state and wires the agents together.
type Model struct {
	Registry *grid.Registry
	Schedule *sched.Scheduler

	Rivers     []*hydro.River
	Households []*social.Household
	ShelterSet []*infra.Shelter
	Sectors    []*econ.Agent

	rng     *rand.Rand
	rain    RainSource
	onStep  []CollectFunc
	shelter []sim.ShelterSpace // cached capability view for nearest-shelter search
}

// riverPositions maps known delta rivers to fractional grid positions.
// Unknown rivers land in the center of the region.
var riverPositions = map[string][2]float64{
	"Ganges":      {0.3, 0.5},
	"Brahmaputra": {0.5, 0.7},
	"Meghna":      {0.7, 0.3},
}

// New builds a model from validated configuration. All agents are created
// here, registered into the registry and scheduler, and live for the full
// run.
func New(cfg *config.Config, rain RainSource) (*Model, error) {
	width := cfg.Geography.GridWidth()
	height := cfg.Geography.GridHeight()

	m := &Model{
		Registry: grid.NewRegistry(width, height),
		rng:      sim.NewRand(cfg.Simulation.Seed),
		rain:     rain,
	}
	m.Schedule = sched.New(m.rng)

	limits := hydro.Thresholds{
		Danger: cfg.Hydrology.FloodThresholds.DangerLevel,
		Severe: cfg.Hydrology.FloodThresholds.SevereLevel,
	}
	for _, spec := range cfg.Hydrology.Rivers {
		frac, ok := riverPositions[spec.Name]
		if !ok {
			frac = [2]float64{0.5, 0.5}
		}
		pos := grid.Point{X: frac[0] * float64(width), Y: frac[1] * float64(height)}
		river := hydro.New(
			"river_"+spec.Name, spec.Name, pos,
			spec.Length, spec.BasinArea, spec.Source, limits, m.rng,
		)
		if err := m.register(river); err != nil {
			return nil, err
		}
		m.Rivers = append(m.Rivers, river)
	}

	for i := 0; i < cfg.Infrastructure.Shelters.Total; i++ {
		shelter := infra.New(
			fmt.Sprintf("shelter_%d", i),
			m.randomPosition(width, height),
			cfg.Infrastructure.Shelters.CapacityPerShelter,
		)
		if err := m.register(shelter); err != nil {
			return nil, err
		}
		m.ShelterSet = append(m.ShelterSet, shelter)
		m.shelter = append(m.shelter, shelter)
	}

	// One simulated household stands in for a thousand real ones.
	for i := 0; i < cfg.Social.Population/1000; i++ {
		household := social.New(
			fmt.Sprintf("household_%d", i),
			m.randomPosition(width, height),
			1+m.rng.Intn(6),
			m.rng.Float64(),
			m.rng,
		)
		if err := m.register(household); err != nil {
			return nil, err
		}
		m.Households = append(m.Households, household)
	}

	for _, sector := range cfg.Economics.Sectors {
		agent := econ.New(
			"economic_"+sector, sector,
			m.randomPosition(width, height),
			cfg.Social.Population,
		)
		if err := m.register(agent); err != nil {
			return nil, err
		}
		m.Sectors = append(m.Sectors, agent)
	}

	slog.Info("model initialized",
		"grid", fmt.Sprintf("%dx%d", width, height),
		"rivers", len(m.Rivers),
		"shelters", len(m.ShelterSet),
		"households", len(m.Households),
		"sectors", len(m.Sectors),
	)
	return m, nil
}

func (m *Model) register(a sim.Agent) error {
	if err := m.Registry.Place(a); err != nil {
		return fmt.Errorf("place agent: %w", err)
	}
	m.Schedule.Add(a)
	return nil
}

func (m *Model) randomPosition(width, height int) grid.Point {
	return grid.Point{
		X: m.rng.Float64() * float64(width),
		Y: m.rng.Float64() * float64(height),
	}
}

// OnStep registers a per-step collection hook.
func (m *Model) OnStep(fn CollectFunc) {
	m.onStep = append(m.onStep, fn)
}

// Step advances the simulation by one step: rainfall moves to the new step,
// every agent activates once in random order, then the collection hooks fire.
func (m *Model) Step() {
	m.rain.Advance(m.Schedule.Steps() + 1)
	m.Schedule.Step(m)
	for _, fn := range m.onStep {
		fn(m.Schedule.Steps())
	}
}

// Run advances the simulation by n steps.
func (m *Model) Run(n int) {
	for i := 0; i < n; i++ {
		m.Step()
	}
}

// CurrentStep returns the number of completed steps.
func (m *Model) CurrentStep() uint64 {
	return m.Schedule.Steps()
}

// Intervene applies a policy intervention to every economic agent, or only
// to the named sector when sector is non-empty.
func (m *Model) Intervene(policy econ.PolicyType, magnitude float64, sector string) int {
	applied := 0
	for _, a := range m.Sectors {
		if sector != "" && a.Sector != sector {
			continue
		}
		a.ApplyPolicy(policy, magnitude)
		applied++
	}
	slog.Info("policy intervention", "policy", string(policy), "magnitude", magnitude, "sector", sector, "applied", applied)
	return applied
}
