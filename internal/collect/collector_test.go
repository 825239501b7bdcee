package collect

import (
	"testing"

	"github.com/talgya/floodsim/internal/config"
	"github.com/talgya/floodsim/internal/model"
	"github.com/talgya/floodsim/internal/rainfall"
)

func testModel(t *testing.T) *model.Model {
	t.Helper()
	cfg := &config.Config{
		Simulation: config.Simulation{Steps: 10, TimeStep: 86400, Seed: 42},
		Geography: config.Geography{
			BoundingBox: config.BoundingBox{North: 26.6, South: 20.7, East: 92.7, West: 88.0},
			Resolution:  0.1,
		},
		Hydrology: config.Hydrology{
			Rivers:          []config.RiverSpec{{Name: "Ganges", Length: 2525, Source: "himalayas", BasinArea: 1016124}},
			FloodThresholds: config.FloodThresholds{DangerLevel: 5, SevereLevel: 7},
		},
		Social:         config.Social{Population: 3000},
		Infrastructure: config.Infrastructure{Shelters: config.Shelters{Total: 2, CapacityPerShelter: 10}},
		Economics:      config.Economics{Sectors: []string{"agriculture"}},
	}
	m, err := model.New(cfg, rainfall.Constant(0))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestCollector_BuffersMetricRows(t *testing.T) {
	m := testModel(t)
	c := New(m, nil, "run", nil)
	m.OnStep(c.Collect)

	m.Run(3)
	rows := c.Pending()
	if len(rows) != 3 {
		t.Fatalf("buffered rows = %d, want 3", len(rows))
	}
	for i, row := range rows {
		if row.Step != uint64(i+1) {
			t.Errorf("row %d step = %d, want %d", i, row.Step, i+1)
		}
	}
}

func TestCollector_EmitsFloodTransitionEvents(t *testing.T) {
	m := testModel(t)
	c := New(m, nil, "run", nil)

	// Force the river past the danger threshold and collect once.
	m.Rivers[0].WaterLevel = 6
	m.Rivers[0].Step(m)
	c.Collect(1)
	if len(c.events) != 1 || c.events[0].Category != "flood" {
		t.Fatalf("events = %+v, want one flood event", c.events)
	}

	// Same status next step: no duplicate event.
	c.Collect(2)
	if len(c.events) != 1 {
		t.Errorf("events after unchanged status = %d, want 1", len(c.events))
	}
}

func TestCollector_FlushWithoutDBDrainsBuffers(t *testing.T) {
	m := testModel(t)
	c := New(m, nil, "run", nil)
	c.Collect(1)
	c.Flush()
	if len(c.Pending()) != 0 {
		t.Errorf("pending rows after flush = %d, want 0", len(c.Pending()))
	}
	if err := c.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}

func TestCollector_AutoFlushThreshold(t *testing.T) {
	m := testModel(t)
	c := New(m, nil, "run", nil)
	m.OnStep(c.Collect)

	m.Run(flushEvery)
	if got := len(c.Pending()); got != 0 {
		t.Errorf("pending rows after %d steps = %d, want auto-flushed to 0", flushEvery, got)
	}
}
