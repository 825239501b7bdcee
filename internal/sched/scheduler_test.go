package sched

import (
	"testing"

	"github.com/talgya/floodsim/internal/grid"
	"github.com/talgya/floodsim/internal/sim"
)

type nullEnv struct{}

func (nullEnv) Neighbors(grid.Point, int, bool) []grid.Occupant     { return nil }
func (nullEnv) Shelters() []sim.ShelterSpace                        { return nil }
func (nullEnv) Rainfall(grid.Point) float64                         { return 0 }
func (nullEnv) CellsWithin(grid.Cell, int) []grid.Cell              { return nil }
func (nullEnv) Moved(grid.Occupant)                                 {}

type countingAgent struct {
	id     string
	steps  int
	onStep func(env sim.Env)
}

func (a *countingAgent) AgentID() string      { return a.id }
func (a *countingAgent) Position() grid.Point { return grid.Point{} }
func (a *countingAgent) Step(env sim.Env) {
	a.steps++
	if a.onStep != nil {
		a.onStep(env)
	}
}

func TestScheduler_ActivatesEachAgentOncePerStep(t *testing.T) {
	s := New(sim.NewRand(1))
	agents := make([]*countingAgent, 10)
	for i := range agents {
		agents[i] = &countingAgent{id: string(rune('a' + i))}
		s.Add(agents[i])
	}

	for step := 1; step <= 5; step++ {
		s.Step(nullEnv{})
		for _, a := range agents {
			if a.steps != step {
				t.Fatalf("agent %s activated %d times after %d steps", a.id, a.steps, step)
			}
		}
	}
	if s.Steps() != 5 {
		t.Errorf("step counter = %d, want 5", s.Steps())
	}
}

func TestScheduler_AgentAddedMidStepWaitsForNextStep(t *testing.T) {
	s := New(sim.NewRand(1))
	late := &countingAgent{id: "late"}
	adder := &countingAgent{id: "adder"}
	adder.onStep = func(sim.Env) {
		if adder.steps == 1 {
			s.Add(late)
		}
	}
	s.Add(adder)

	s.Step(nullEnv{})
	if late.steps != 0 {
		t.Fatalf("late agent activated in the step it was added")
	}
	s.Step(nullEnv{})
	if late.steps != 1 {
		t.Fatalf("late agent steps = %d after second step, want 1", late.steps)
	}
}

func TestScheduler_PanicIsolatedToOneAgent(t *testing.T) {
	s := New(sim.NewRand(7))
	bad := &countingAgent{id: "bad"}
	bad.onStep = func(sim.Env) { panic("boom") }
	good1 := &countingAgent{id: "good1"}
	good2 := &countingAgent{id: "good2"}
	s.Add(good1)
	s.Add(bad)
	s.Add(good2)

	s.Step(nullEnv{})

	if good1.steps != 1 || good2.steps != 1 {
		t.Errorf("healthy agents skipped after panic: %d, %d", good1.steps, good2.steps)
	}
	if s.Steps() != 1 {
		t.Errorf("step counter = %d after panicking step, want 1", s.Steps())
	}
}

func TestScheduler_OrderVariesAcrossSteps(t *testing.T) {
	s := New(sim.NewRand(3))
	var order []string
	for i := 0; i < 8; i++ {
		a := &countingAgent{id: string(rune('a' + i))}
		a.onStep = func(sim.Env) { order = append(order, a.id) }
		s.Add(a)
	}

	s.Step(nullEnv{})
	first := append([]string(nil), order...)
	same := true
	// A fresh permutation each step: within 10 steps at least one differs.
	for i := 0; i < 10 && same; i++ {
		order = order[:0]
		s.Step(nullEnv{})
		for j := range first {
			if order[j] != first[j] {
				same = false
				break
			}
		}
	}
	if same {
		t.Error("activation order identical across 11 steps")
	}
}
