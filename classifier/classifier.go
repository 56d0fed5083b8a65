package classifier

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/neurlang/tempocnn/feature"
	"github.com/neurlang/tempocnn/nn"
)

var ErrNoWindows = errors.New("classifier: no feature windows")

// classifier holds what tempo and meter classifiers share.
type classifier struct {
	model *nn.Model
}

func newClassifier(m *nn.Model, kind nn.Kind) (classifier, error) {
	if m == nil {
		return classifier{}, fmt.Errorf("%w: nil model", ErrModelNotFound)
	}
	if m.Header.Kind != kind {
		return classifier{}, fmt.Errorf("%w: %q model, want %q", ErrWrongKind, m.Header.Kind, kind)
	}
	if len(m.Header.Input) != 3 || m.Header.Input[2] != 1 {
		return classifier{}, fmt.Errorf("%w: input %v is not a single-channel spectrogram", nn.ErrShapeMismatch, m.Header.Input)
	}
	return classifier{model: m}, nil
}

// Model returns the underlying network.
func (c *classifier) Model() *nn.Model { return c.model }

// Bands returns the number of mel bands the model expects.
func (c *classifier) Bands() int { return c.model.Header.Input[0] }

// Frames returns the number of spectrogram frames per window.
func (c *classifier) Frames() int { return c.model.Header.Input[1] }

// Classes returns the number of output classes.
func (c *classifier) Classes() int { return c.model.Classes() }

// Estimate standardises every window and returns one class distribution
// per window.
func (c *classifier) Estimate(ctx context.Context, windows []feature.Window) ([][]float64, error) {
	if len(windows) == 0 {
		return nil, ErrNoWindows
	}
	batch := make([]*nn.Tensor, len(windows))
	for i, w := range windows {
		batch[i] = toTensor(feature.StdNormalize(w))
	}
	return c.model.Predict(ctx, batch)
}

// Average returns the mean class distribution over all windows.
func (c *classifier) Average(ctx context.Context, windows []feature.Window) ([]float64, error) {
	preds, err := c.Estimate(ctx, windows)
	if err != nil {
		return nil, err
	}
	return average(preds), nil
}

// toTensor lays a [band][frame] window out as a [bands, frames, 1] tensor.
func toTensor(w feature.Window) *nn.Tensor {
	bands, frames := w.Bands(), w.Frames()
	t := nn.NewTensor(bands, frames, 1)
	for b, row := range w {
		copy(t.Data[b*frames:(b+1)*frames], row)
	}
	return t
}

func average(preds [][]float64) []float64 {
	if len(preds) == 0 {
		return nil
	}
	avg := make([]float64, len(preds[0]))
	for _, p := range preds {
		for i, v := range p {
			avg[i] += v
		}
	}
	for i := range avg {
		avg[i] /= float64(len(preds))
	}
	return avg
}

func argmax(v []float64) int {
	best := 0
	for i, x := range v {
		if x > v[best] {
			best = i
		}
	}
	return best
}

// refine places the peak at index i of v using parabolic interpolation
// through its neighbours. Edge peaks are returned unchanged.
func refine(v []float64, i int) float64 {
	if i <= 0 || i >= len(v)-1 {
		return float64(i)
	}
	alpha, beta, gamma := v[i-1], v[i], v[i+1]
	den := alpha - 2*beta + gamma
	if den == 0 {
		return float64(i)
	}
	return float64(i) + 0.5*(alpha-gamma)/den
}

// peaks returns the indices of the interior local maxima of v, highest
// first.
func peaks(v []float64) []int {
	var out []int
	for i := 1; i+1 < len(v); i++ {
		if v[i] > v[i-1] && v[i] >= v[i+1] {
			out = append(out, i)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return v[out[a]] > v[out[b]] })
	return out
}
