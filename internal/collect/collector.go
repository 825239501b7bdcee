// Package collect gathers per-step simulation data: the aggregate metric
// series persisted to SQLite and full agent-state snapshots streamed to a
// compressed JSONL log.
package collect

import (
	"fmt"
	"log/slog"

	"github.com/talgya/floodsim/internal/hydro"
	"github.com/talgya/floodsim/internal/infra"
	"github.com/talgya/floodsim/internal/model"
	"github.com/talgya/floodsim/internal/persistence"
)

// flushEvery is the number of steps buffered before a database write.
const flushEvery = 25

// Collector records a run. Register its Collect method as the model's
// per-step hook.
type Collector struct {
	mdl   *model.Model
	db    *persistence.DB
	runID string
	log   *StateLog

	series []model.Metrics
	events []persistence.Event

	lastRiverStatus   map[string]string
	lastShelterStatus map[string]string
}

// New creates a collector for a run. The state log is optional; pass nil to
// skip agent-state logging.
func New(mdl *model.Model, db *persistence.DB, runID string, log *StateLog) *Collector {
	return &Collector{
		mdl:               mdl,
		db:                db,
		runID:             runID,
		log:               log,
		lastRiverStatus:   make(map[string]string),
		lastShelterStatus: make(map[string]string),
	}
}

// Pending returns the metric rows buffered since the last flush.
func (c *Collector) Pending() []model.Metrics {
	return c.series
}

// Collect records one completed step. All per-step state is settled when the
// model invokes this.
func (c *Collector) Collect(step uint64) {
	row := c.mdl.Snapshot()
	c.series = append(c.series, row)

	c.noteTransitions(step)

	if c.log != nil {
		if err := c.log.WriteStep(step, c.mdl); err != nil {
			slog.Warn("agent state log write failed", "step", step, "error", err)
		}
	}

	if len(c.series) >= flushEvery {
		c.Flush()
	}
}

// noteTransitions emits events for river and shelter status changes.
func (c *Collector) noteTransitions(step uint64) {
	for _, r := range c.mdl.Rivers {
		prev := c.lastRiverStatus[r.ID]
		if r.FloodStatus != prev {
			c.lastRiverStatus[r.ID] = r.FloodStatus
			if r.FloodStatus == hydro.StatusDanger || r.FloodStatus == hydro.StatusSevere {
				c.events = append(c.events, persistence.Event{
					Step:        step,
					Description: fmt.Sprintf("%s reached %s at %.2fm", r.Name, r.FloodStatus, r.WaterLevel),
					Category:    "flood",
				})
				slog.Info("flood status change", "river", r.Name, "status", r.FloodStatus, "water_level", r.WaterLevel)
			}
		}
	}

	for _, s := range c.mdl.ShelterSet {
		prev := c.lastShelterStatus[s.ID]
		if s.Status != prev {
			c.lastShelterStatus[s.ID] = s.Status
			if s.Status == infra.StatusAtCapacity || s.Status == infra.StatusResourceCritical {
				c.events = append(c.events, persistence.Event{
					Step:        step,
					Description: fmt.Sprintf("%s is %s (%d/%d occupants)", s.ID, s.Status, s.Occupancy(), s.Capacity()),
					Category:    "shelter",
				})
			}
		}
	}
}

// Flush writes buffered metrics and events to the database.
func (c *Collector) Flush() {
	if c.db == nil {
		c.series = c.series[:0]
		c.events = c.events[:0]
		return
	}
	if err := c.db.SaveMetrics(c.runID, c.series); err != nil {
		slog.Error("metrics flush failed", "error", err)
	} else {
		c.series = c.series[:0]
	}
	if err := c.db.SaveEvents(c.runID, c.events); err != nil {
		slog.Error("events flush failed", "error", err)
	} else {
		c.events = c.events[:0]
	}
}

// Close flushes remaining data and closes the state log.
func (c *Collector) Close() error {
	c.Flush()
	if c.log != nil {
		return c.log.Close()
	}
	return nil
}
