package nn

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrBadMagic      = errors.New("nn: not a model file")
	ErrInvalidHeader = errors.New("nn: invalid model header")
	ErrUnknownLayer  = errors.New("nn: unknown layer")
	ErrShapeMismatch = errors.New("nn: shape mismatch")
)

// Kind tells which classifier a model was trained for.
type Kind string

const (
	KindTempo Kind = "tempo"
	KindMeter Kind = "meter"
)

// Labels maps a class index to its label: Offset + index*Step.
type Labels struct {
	Offset float64 `yaml:"offset"`
	Step   float64 `yaml:"step,omitempty"`
}

// Header describes a model. Input is the per-sample shape,
// [bands, frames, channels] for spectrogram models.
type Header struct {
	Name   string      `yaml:"name"`
	Kind   Kind        `yaml:"kind"`
	Input  []int       `yaml:"input"`
	Labels Labels      `yaml:"labels"`
	Layers []LayerSpec `yaml:"layers"`
}

// LayerSpec configures one layer. Which fields apply depends on Type.
type LayerSpec struct {
	Type       string        `yaml:"type"`
	Filters    int           `yaml:"filters,omitempty"`
	Units      int           `yaml:"units,omitempty"`
	Kernel     []int         `yaml:"kernel,omitempty,flow"`
	Pool       []int         `yaml:"pool,omitempty,flow"`
	Strides    []int         `yaml:"strides,omitempty,flow"`
	Padding    string        `yaml:"padding,omitempty"`
	NoBias     bool          `yaml:"no_bias,omitempty"`
	Epsilon    float64       `yaml:"epsilon,omitempty"`
	Activation string        `yaml:"activation,omitempty"`
	Branches   [][]LayerSpec `yaml:"branches,omitempty"`
}

// Model is a built layer stack ready for inference.
type Model struct {
	Header Header

	layers []Layer
	output []int
}

// New builds the layers described by h with all parameters set to zero.
func New(h Header) (*Model, error) {
	if len(h.Input) == 0 {
		return nil, fmt.Errorf("%w: missing input shape", ErrInvalidHeader)
	}
	for _, d := range h.Input {
		if d <= 0 {
			return nil, fmt.Errorf("%w: input shape %v", ErrInvalidHeader, h.Input)
		}
	}
	if len(h.Layers) == 0 {
		return nil, fmt.Errorf("%w: no layers", ErrInvalidHeader)
	}
	layers, out, err := buildStack(h.Layers, h.Input)
	if err != nil {
		return nil, err
	}
	return &Model{Header: h, layers: layers, output: out}, nil
}

func buildStack(specs []LayerSpec, in []int) ([]Layer, []int, error) {
	layers := make([]Layer, 0, len(specs))
	shape := in
	for i, spec := range specs {
		l, err := build(spec, shape)
		if err != nil {
			return nil, nil, fmt.Errorf("layer %d (%s): %w", i, spec.Type, err)
		}
		layers = append(layers, l)
		shape = l.OutputShape()
	}
	return layers, shape, nil
}

func build(spec LayerSpec, in []int) (Layer, error) {
	switch spec.Type {
	case "conv2d":
		return newConv2D(spec, in)
	case "batchnorm":
		return newBatchNorm(spec, in)
	case "activation":
		fn, err := lookupActivation(spec.Activation)
		if err != nil {
			return nil, err
		}
		return &activationLayer{shape: in, fn: fn}, nil
	case "maxpool2d":
		return newPool2D(spec, in, true)
	case "avgpool2d":
		return newPool2D(spec, in, false)
	case "globalavgpool2d":
		if _, _, _, err := dims3(in); err != nil {
			return nil, err
		}
		return &globalAvgPool2D{in: in}, nil
	case "flatten":
		return &flatten{in: in}, nil
	case "dropout":
		return &identity{shape: in}, nil
	case "dense":
		return newDense(spec, in)
	case "parallel":
		return newParallel(spec, in)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownLayer, spec.Type)
}

// Params returns all parameter tensors in storage order.
func (m *Model) Params() []*Tensor {
	var ps []*Tensor
	for _, l := range m.layers {
		ps = append(ps, l.Params()...)
	}
	return ps
}

// NumParams returns the number of scalar parameters.
func (m *Model) NumParams() int {
	n := 0
	for _, p := range m.Params() {
		n += p.Size()
	}
	return n
}

// Classes returns the number of values the model predicts per sample.
func (m *Model) Classes() int { return volume(m.output) }

// Label maps a (possibly fractional) class index to its label.
func (m *Model) Label(index float64) float64 {
	step := m.Header.Labels.Step
	if step == 0 {
		step = 1
	}
	return m.Header.Labels.Offset + index*step
}

// Forward runs a single sample through the model.
func (m *Model) Forward(x *Tensor) (*Tensor, error) {
	if !sameShape(x.Shape, m.Header.Input) {
		return nil, fmt.Errorf("%w: input %v, want %v", ErrShapeMismatch, x.Shape, m.Header.Input)
	}
	return forward(m.layers, x)
}

// Predict runs every sample of batch through the model and returns one
// prediction vector per sample.
func (m *Model) Predict(ctx context.Context, batch []*Tensor) ([][]float64, error) {
	out := make([][]float64, 0, len(batch))
	for i, x := range batch {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		y, err := m.Forward(x)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		out = append(out, y.Data)
	}
	return out, nil
}
