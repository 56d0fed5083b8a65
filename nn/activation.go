package nn

import (
	"fmt"
	"math"
)

type activation func(data []float64, channels int)

func lookupActivation(name string) (activation, error) {
	switch name {
	case "", "linear":
		return nil, nil
	case "relu":
		return pointwise(func(v float64) float64 { return math.Max(0, v) }), nil
	case "elu":
		return pointwise(func(v float64) float64 {
			if v > 0 {
				return v
			}
			return math.Exp(v) - 1
		}), nil
	case "sigmoid":
		return pointwise(func(v float64) float64 { return 1 / (1 + math.Exp(-v)) }), nil
	case "tanh":
		return pointwise(math.Tanh), nil
	case "softmax":
		return softmax, nil
	}
	return nil, fmt.Errorf("%w: activation %q", ErrUnknownLayer, name)
}

func pointwise(f func(float64) float64) activation {
	return func(data []float64, _ int) {
		for i, v := range data {
			data[i] = f(v)
		}
	}
}

// softmax normalises every run of channels values in place.
func softmax(data []float64, channels int) {
	for off := 0; off+channels <= len(data); off += channels {
		row := data[off : off+channels]
		peak := math.Inf(-1)
		for _, v := range row {
			peak = math.Max(peak, v)
		}
		var sum float64
		for i, v := range row {
			row[i] = math.Exp(v - peak)
			sum += row[i]
		}
		for i := range row {
			row[i] /= sum
		}
	}
}

// activationLayer applies an activation to its input.
type activationLayer struct {
	shape []int
	fn    activation
}

func (l *activationLayer) OutputShape() []int { return l.shape }
func (l *activationLayer) Params() []*Tensor { return nil }

func (l *activationLayer) Forward(x *Tensor) (*Tensor, error) {
	out := &Tensor{Shape: x.Shape, Data: append([]float64(nil), x.Data...)}
	if l.fn != nil {
		l.fn(out.Data, x.Shape[len(x.Shape)-1])
	}
	return out, nil
}
