package classifier

import (
	"context"

	"github.com/neurlang/tempocnn/feature"
	"github.com/neurlang/tempocnn/nn"
)

// DefaultTempoModel is the model used when none is named.
const DefaultTempoModel = "fcn"

// TempoClassifier estimates global and local tempo.
type TempoClassifier struct {
	classifier
}

// NewTempoClassifier wraps a tempo model.
func NewTempoClassifier(m *nn.Model) (*TempoClassifier, error) {
	c, err := newClassifier(m, nn.KindTempo)
	if err != nil {
		return nil, err
	}
	return &TempoClassifier{classifier: c}, nil
}

// ToBPM maps a (possibly fractional) class index to beats per minute.
func (c *TempoClassifier) ToBPM(index float64) float64 {
	return c.model.Label(index)
}

// BPMs returns the tempo of every class.
func (c *TempoClassifier) BPMs() []float64 {
	out := make([]float64, c.Classes())
	for i := range out {
		out[i] = c.ToBPM(float64(i))
	}
	return out
}

// EstimateTempo returns the tempo of the class with the highest average
// probability. With interpolate, the peak is refined between classes.
func (c *TempoClassifier) EstimateTempo(ctx context.Context, windows []feature.Window, interpolate bool) (float64, error) {
	avg, err := c.Average(ctx, windows)
	if err != nil {
		return 0, err
	}
	return c.TempoOf(avg, interpolate), nil
}

// TempoOf returns the tempo at the maximum of an averaged distribution.
func (c *TempoClassifier) TempoOf(avg []float64, interpolate bool) float64 {
	return c.tempoAt(avg, argmax(avg), interpolate)
}

func (c *TempoClassifier) tempoAt(avg []float64, index int, interpolate bool) float64 {
	if interpolate {
		return c.ToBPM(refine(avg, index))
	}
	return c.ToBPM(float64(index))
}

// Mirex is a two-tempo estimate in the MIREX audio tempo format: T1 is the
// slower tempo, T2 the faster and S1 the relative strength of T1.
type Mirex struct {
	T1, T2 float64
	S1     float64
}

// EstimateMirex returns the two strongest tempo peaks. With fewer than two
// peaks both tempi are the overall maximum with strength 1.
func (c *TempoClassifier) EstimateMirex(ctx context.Context, windows []feature.Window, interpolate bool) (Mirex, error) {
	avg, err := c.Average(ctx, windows)
	if err != nil {
		return Mirex{}, err
	}
	return c.MirexOf(avg, interpolate), nil
}

// MirexOf derives a MIREX estimate from an averaged distribution.
func (c *TempoClassifier) MirexOf(avg []float64, interpolate bool) Mirex {
	ps := peaks(avg)
	if len(ps) < 2 {
		t := c.tempoAt(avg, argmax(avg), interpolate)
		return Mirex{T1: t, T2: t, S1: 1}
	}
	h1, h2 := avg[ps[0]], avg[ps[1]]
	m := Mirex{
		T1: c.tempoAt(avg, ps[0], interpolate),
		T2: c.tempoAt(avg, ps[1], interpolate),
		S1: 1,
	}
	if h1+h2 > 0 {
		m.S1 = h1 / (h1 + h2)
	}
	if m.T1 > m.T2 {
		m.T1, m.T2 = m.T2, m.T1
		m.S1 = 1 - m.S1
	}
	return m
}
