package nn

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tinyHeader() Header {
	return Header{
		Name:   "tiny",
		Kind:   KindTempo,
		Input:  []int{4, 8, 1},
		Labels: Labels{Offset: 30},
		Layers: []LayerSpec{
			{Type: "conv2d", Filters: 2, Kernel: []int{1, 3}, Padding: "same", Activation: "elu"},
			{Type: "batchnorm"},
			{Type: "maxpool2d", Pool: []int{2, 2}},
			{Type: "dropout"},
			{Type: "flatten"},
			{Type: "dense", Units: 5, Activation: "softmax"},
		},
	}
}

// tinyModel returns a model whose parameters are exactly representable in
// half precision.
func tinyModel(t *testing.T) *Model {
	t.Helper()
	m, err := New(tinyHeader())
	require.NoError(t, err)
	for pi, p := range m.Params() {
		for i := range p.Data {
			p.Data[i] = float64((i+pi)%7-3) * 0.25
		}
	}
	// keep the batchnorm variance positive
	fill(m.Params()[5], 1)
	return m
}

func sample(shape []int) *Tensor {
	x := NewTensor(shape...)
	for i := range x.Data {
		x.Data[i] = float64(i%5) - 2
	}
	return x
}

func TestNew(t *testing.T) {
	m := tinyModel(t)
	assert.Equal(t, 5, m.Classes())
	// conv 3*2+2, batchnorm 4*2, dense 16*5+5
	assert.Equal(t, 8+8+85, m.NumParams())
	assert.Equal(t, 30.0, m.Label(0))
	assert.Equal(t, 42.5, m.Label(12.5))
}

func TestNewErrors(t *testing.T) {
	h := tinyHeader()
	h.Layers = append(h.Layers, LayerSpec{Type: "lstm"})
	_, err := New(h)
	assert.ErrorIs(t, err, ErrUnknownLayer)

	h = tinyHeader()
	h.Input = nil
	_, err = New(h)
	assert.ErrorIs(t, err, ErrInvalidHeader)

	h = tinyHeader()
	h.Layers = []LayerSpec{{Type: "dense", Units: 3}}
	_, err = New(h)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestPredict(t *testing.T) {
	m := tinyModel(t)
	ys, err := m.Predict(context.Background(), []*Tensor{sample(m.Header.Input), NewTensor(m.Header.Input...)})
	require.NoError(t, err)
	require.Len(t, ys, 2)
	for _, y := range ys {
		require.Len(t, y, 5)
		var sum float64
		for _, v := range y {
			sum += v
		}
		assert.InDelta(t, 1, sum, 1e-9)
	}

	_, err = m.Predict(context.Background(), []*Tensor{NewTensor(4, 7, 1)})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Predict(ctx, []*Tensor{sample(m.Header.Input)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEncodeDecode(t *testing.T) {
	m := tinyModel(t)
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, m))

	got, err := Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, m.Header, got.Header)

	want := m.Params()
	for i, p := range got.Params() {
		assert.Equal(t, want[i].Shape, p.Shape)
		assert.Equal(t, want[i].Data, p.Data)
	}

	x := sample(m.Header.Input)
	y1, err := m.Forward(x)
	require.NoError(t, err)
	y2, err := got.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, y1.Data, y2.Data)
}

func TestDecodeErrors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, tinyModel(t)))
	raw := buf.Bytes()

	_, err := Decode(bytes.NewReader([]byte("RIFF\x01\x00\x00\x00\x00")))
	assert.ErrorIs(t, err, ErrBadMagic)

	_, err = Decode(bytes.NewReader(raw[:2]))
	assert.ErrorIs(t, err, ErrBadMagic)

	_, err = Decode(bytes.NewReader(raw[:len(raw)-2]))
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = Decode(bytes.NewReader(append(append([]byte(nil), raw...), 0, 0)))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestSaveLoad(t *testing.T) {
	name := filepath.Join(t.TempDir(), "tiny.tcnn")
	m := tinyModel(t)
	require.NoError(t, Save(name, m))

	got, err := Load(name)
	require.NoError(t, err)
	assert.Equal(t, m.NumParams(), got.NumParams())

	_, err = Load(filepath.Join(t.TempDir(), "missing.tcnn"))
	assert.Error(t, err)
}
