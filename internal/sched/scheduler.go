// Package sched runs one random-activation pass over all live agents per
// simulation step, the way Mesa-style agent models schedule their turns.
package sched

import (
	"log/slog"
	"math/rand"

	"github.com/talgya/floodsim/internal/sim"
)

// Scheduler activates every registered agent exactly once per Step call, in a
// freshly drawn random permutation each call. Single-threaded; agents mutate
// each other only through their explicit call surfaces.
type Scheduler struct {
	rng     *rand.Rand
	agents  []sim.Agent
	pending []sim.Agent
	steps   uint64
}

// New creates a scheduler drawing activation order from rng.
func New(rng *rand.Rand) *Scheduler {
	return &Scheduler{rng: rng}
}

// Add registers an agent. An agent added while a step is in flight is not
// activated until the following step.
func (s *Scheduler) Add(a sim.Agent) {
	s.pending = append(s.pending, a)
}

// Agents returns all registered agents, including ones still pending their
// first step. The slice is shared; callers must not reorder it.
func (s *Scheduler) Agents() []sim.Agent {
	if len(s.pending) == 0 {
		return s.agents
	}
	out := make([]sim.Agent, 0, len(s.agents)+len(s.pending))
	out = append(out, s.agents...)
	return append(out, s.pending...)
}

// Steps returns the number of completed steps.
func (s *Scheduler) Steps() uint64 {
	return s.steps
}

// Step activates every agent once in random order, then increments the step
// counter. A panicking agent is logged and skipped; mutations other agents
// already applied this step are not rolled back (best-effort isolation only).
func (s *Scheduler) Step(env sim.Env) {
	if len(s.pending) > 0 {
		s.agents = append(s.agents, s.pending...)
		s.pending = nil
	}

	order := s.rng.Perm(len(s.agents))
	for _, i := range order {
		s.activate(s.agents[i], env)
	}
	s.steps++
}

func (s *Scheduler) activate(a sim.Agent, env sim.Env) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("agent step panicked", "agent", a.AgentID(), "step", s.steps, "panic", r)
		}
	}()
	a.Step(env)
}
