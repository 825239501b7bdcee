package hydro

import (
	"math"
	"testing"

	"github.com/talgya/floodsim/internal/grid"
	"github.com/talgya/floodsim/internal/sim"
)

type stubEnv struct {
	rain  float64
	cells []grid.Cell
}

func (e stubEnv) Neighbors(grid.Point, int, bool) []grid.Occupant { return nil }
func (e stubEnv) Shelters() []sim.ShelterSpace                    { return nil }
func (e stubEnv) Rainfall(grid.Point) float64                     { return e.rain }
func (e stubEnv) CellsWithin(grid.Cell, int) []grid.Cell          { return e.cells }
func (e stubEnv) Moved(grid.Occupant)                             {}

func testRiver(t *testing.T) *River {
	t.Helper()
	limits := Thresholds{Danger: 5, Severe: 7}
	return New("river_Test", "Test", grid.Point{X: 10, Y: 10}, 100, 5000, "hills", limits, sim.NewRand(1))
}

func TestRiver_DryRiverStaysDry(t *testing.T) {
	r := testRiver(t)
	for i := 0; i < 10; i++ {
		r.Step(stubEnv{rain: 0})
	}
	if r.WaterLevel != 0 {
		t.Errorf("water level = %v after 10 dry steps, want 0", r.WaterLevel)
	}
	if r.FloodStatus != StatusNormal {
		t.Errorf("flood status = %q, want %q", r.FloodStatus, StatusNormal)
	}
	if r.FlowRate != 0 {
		t.Errorf("flow rate = %v for a dry channel, want 0", r.FlowRate)
	}
}

func TestRiver_WaterLevelBalance(t *testing.T) {
	r := testRiver(t)
	r.Step(stubEnv{rain: 10})
	// 0 + 10*0.1 - 0*0.01 = 1.
	if math.Abs(r.WaterLevel-1.0) > 1e-12 {
		t.Errorf("water level after one step of rain 10 = %v, want 1", r.WaterLevel)
	}
	r.Step(stubEnv{rain: 0})
	// 1 - 1*0.01 = 0.99.
	if math.Abs(r.WaterLevel-0.99) > 1e-12 {
		t.Errorf("water level after evaporation step = %v, want 0.99", r.WaterLevel)
	}
}

func TestThresholds_ClassifyBoundaries(t *testing.T) {
	limits := Thresholds{Danger: 5, Severe: 7}

	cases := []struct {
		level      float64
		wantStatus string
		wantLevel  int
	}{
		{0, StatusNormal, 0},
		{3.49, StatusNormal, 0},
		{3.5, StatusWarning, 1}, // 0.7 x danger, inclusive
		{4.99, StatusWarning, 1},
		{5.0, StatusDanger, 2}, // boundary inclusive
		{6.99, StatusDanger, 2},
		{7.0, StatusSevere, 3},
		{100, StatusSevere, 3},
	}
	for _, tc := range cases {
		status, level := limits.Classify(tc.level)
		if status != tc.wantStatus || level != tc.wantLevel {
			t.Errorf("Classify(%v) = (%q, %d), want (%q, %d)",
				tc.level, status, level, tc.wantStatus, tc.wantLevel)
		}
	}
}

func TestThresholds_WarningLevelMonotone(t *testing.T) {
	limits := Thresholds{Danger: 5, Severe: 7}
	prev := 0
	for level := 0.0; level <= 10; level += 0.01 {
		_, w := limits.Classify(level)
		if w < prev {
			t.Fatalf("warning level decreased from %d to %d at water level %v", prev, w, level)
		}
		prev = w
	}
}

func TestRiver_ManningFlowFormula(t *testing.T) {
	r := testRiver(t)
	r.WaterLevel = 2.0
	r.updateFlowRate()

	area := 1000.0 * 2.0
	radius := area / (2*2.0 + 1000.0)
	want := (1 / 0.03) * area * math.Pow(radius, 2.0/3.0) * math.Sqrt(0.0001)
	if math.Abs(r.FlowRate-want) > 1e-9 {
		t.Errorf("flow rate = %v, want %v", r.FlowRate, want)
	}
}

func TestRiver_SedimentLoad(t *testing.T) {
	r := testRiver(t)
	r.WaterLevel = 2.0
	r.FlowRate = 50000
	r.updateSedimentLoad()
	if math.Abs(r.SedimentLoad-100) > 1e-9 {
		t.Errorf("sediment load = %v, want 100", r.SedimentLoad)
	}
}

func TestRiver_AffectedAreasOnlyWhileFlooding(t *testing.T) {
	cells := []grid.Cell{
		{X: 10, Y: 11}, {X: 11, Y: 10}, {X: 9, Y: 10}, {X: 10, Y: 9},
		{X: 12, Y: 12}, // distance > 2, never affected
	}
	r := testRiver(t)

	// Severe flood: close cells are eligible, the far cell never is.
	r.WaterLevel = 8
	r.classify()
	r.updateAffectedAreas(stubEnv{cells: cells})
	for _, c := range r.AffectedAreas {
		if r.Pos.DistanceTo(c.Center()) >= 2 {
			t.Errorf("cell %v beyond distance 2 marked affected", c)
		}
	}

	// Back to normal: affected areas clear.
	r.WaterLevel = 0
	r.classify()
	r.updateAffectedAreas(stubEnv{cells: cells})
	if len(r.AffectedAreas) != 0 {
		t.Errorf("affected areas not cleared outside danger/severe: %v", r.AffectedAreas)
	}
}

func TestRiver_HistoryGrowsPerMutation(t *testing.T) {
	r := testRiver(t)
	before := r.History().Len()
	r.Step(stubEnv{rain: 5})
	// Five mutation phases per step: level, flow, sediment, classify, areas.
	if got := r.History().Len() - before; got != 5 {
		t.Errorf("history grew by %d in one step, want 5", got)
	}
}

func TestRiver_FloodWarningReflectsState(t *testing.T) {
	r := testRiver(t)
	r.WaterLevel = 6
	r.classify()

	w := r.FloodWarning()
	if w.WaterLevel != 6 || w.FloodStatus != StatusDanger || w.WarningLevel != 2 {
		t.Errorf("warning = %+v, want danger level 2 at 6m", w)
	}
	if w.RiverName != "Test" {
		t.Errorf("river name = %q", w.RiverName)
	}
}
