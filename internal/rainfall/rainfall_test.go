package rainfall

import (
	"testing"

	"github.com/talgya/floodsim/internal/grid"
)

func TestField_NeverNegative(t *testing.T) {
	f := NewField(42, 8.0, 0.6, 0.15)
	for step := uint64(0); step < 300; step += 7 {
		f.Advance(step)
		for x := 0.0; x < 50; x += 12.5 {
			for y := 0.0; y < 50; y += 12.5 {
				if got := f.At(grid.Point{X: x, Y: y}); got < 0 {
					t.Fatalf("rainfall at (%v,%v) step %d = %v, want >= 0", x, y, step, got)
				}
			}
		}
	}
}

func TestField_DryTroughAndWetPeak(t *testing.T) {
	f := NewField(42, 8.0, 0.6, 0.15)
	p := grid.Point{X: 10, Y: 10}

	// The seasonal envelope is zero at the start of the monsoon cycle.
	f.Advance(0)
	if got := f.At(p); got != 0 {
		t.Errorf("rainfall at the dry trough = %v, want 0", got)
	}

	f.Advance(MonsoonSteps / 2)
	if got := f.At(p); got <= 0 {
		t.Errorf("rainfall at the seasonal peak = %v, want > 0", got)
	}
}

func TestField_SameSeedSamePattern(t *testing.T) {
	a := NewField(7, 8.0, 0.6, 0.15)
	b := NewField(7, 8.0, 0.6, 0.15)
	p := grid.Point{X: 3.2, Y: 41.5}

	for step := uint64(0); step < 50; step++ {
		a.Advance(step)
		b.Advance(step)
		if a.At(p) != b.At(p) {
			t.Fatalf("step %d: same seed produced different rainfall", step)
		}
	}
}

func TestConstant(t *testing.T) {
	c := Constant(3.5)
	c.Advance(99)
	if got := c.At(grid.Point{X: 1, Y: 2}); got != 3.5 {
		t.Errorf("constant rainfall = %v, want 3.5", got)
	}
}
