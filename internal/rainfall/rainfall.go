// Package rainfall supplies the external rainfall input using layered
// simplex noise: a smooth spatial field drifting over time, modulated by a
// seasonal monsoon cycle. The kernel treats the output as an opaque
// non-negative quantity per unit time.
package rainfall

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/floodsim/internal/grid"
)

// MonsoonSteps is the length of one full wet/dry cycle in simulation steps.
const MonsoonSteps = 120

// Field is a time-varying spatial rainfall source.
type Field struct {
	noise       opensimplex.Noise
	baseRate    float64 // mm per time unit at the seasonal peak
	variability float64 // share of the rate driven by the noise field
	scale       float64 // spatial frequency
	step        uint64
}

// NewField creates a rainfall field. A fixed seed reproduces the full
// rainfall pattern of a run.
func NewField(seed int64, baseRate, variability, scale float64) *Field {
	return &Field{
		noise:       opensimplex.NewNormalized(seed),
		baseRate:    baseRate,
		variability: variability,
		scale:       scale,
	}
}

// Advance moves the field to the given simulation step. The model calls this
// once per step before agents are activated.
func (f *Field) Advance(step uint64) {
	f.step = step
}

// At returns the rainfall at a position for the current step. Never negative.
func (f *Field) At(p grid.Point) float64 {
	// Seasonal envelope: raised cosine over the monsoon cycle, zero at the
	// dry trough.
	phase := float64(f.step%MonsoonSteps) / MonsoonSteps
	seasonal := 0.5 * (1 - math.Cos(2*math.Pi*phase))

	local := f.noise.Eval3(p.X*f.scale, p.Y*f.scale, float64(f.step)*0.05)
	rate := f.baseRate * seasonal * (1 - f.variability + f.variability*local)
	return math.Max(0, rate)
}

// Constant is a fixed-rate rainfall source, used in tests and dry-run
// scenarios.
type Constant float64

// At returns the constant rate regardless of position.
func (c Constant) At(grid.Point) float64 { return float64(c) }

// Advance is a no-op; the rate does not vary with time.
func (c Constant) Advance(uint64) {}
