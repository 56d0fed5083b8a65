package classifier

import (
	"context"
	"math"

	"github.com/neurlang/tempocnn/feature"
	"github.com/neurlang/tempocnn/nn"
)

// DefaultMeterModel is the model used when none is named.
const DefaultMeterModel = "dc"

// MeterClassifier estimates the numerator of the time signature.
type MeterClassifier struct {
	classifier
}

// NewMeterClassifier wraps a meter model.
func NewMeterClassifier(m *nn.Model) (*MeterClassifier, error) {
	c, err := newClassifier(m, nn.KindMeter)
	if err != nil {
		return nil, err
	}
	return &MeterClassifier{classifier: c}, nil
}

// ToMeter maps a class index to its meter.
func (c *MeterClassifier) ToMeter(index int) int {
	return int(math.Round(c.model.Label(float64(index))))
}

// Meters returns the meter of every class.
func (c *MeterClassifier) Meters() []int {
	out := make([]int, c.Classes())
	for i := range out {
		out[i] = c.ToMeter(i)
	}
	return out
}

// EstimateMeter returns the meter with the highest average probability.
func (c *MeterClassifier) EstimateMeter(ctx context.Context, windows []feature.Window) (int, error) {
	avg, err := c.Average(ctx, windows)
	if err != nil {
		return 0, err
	}
	meter, _ := c.MeterOf(avg)
	return meter, nil
}

// MeterOf returns the most probable meter of an averaged distribution and
// its probability.
func (c *MeterClassifier) MeterOf(avg []float64) (int, float64) {
	if len(avg) == 0 {
		return 0, 0
	}
	i := argmax(avg)
	return c.ToMeter(i), avg[i]
}
