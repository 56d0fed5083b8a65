package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(t *Tensor, v float64) *Tensor {
	for i := range t.Data {
		t.Data[i] = v
	}
	return t
}

func TestConv2DSame(t *testing.T) {
	l, err := newConv2D(LayerSpec{Filters: 1, Kernel: []int{3, 3}, Padding: "same", NoBias: true}, []int{3, 3, 1})
	require.NoError(t, err)
	fill(l.kernel, 1)

	y, err := l.Forward(fill(NewTensor(3, 3, 1), 1))
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3, 1}, y.Shape)
	assert.Equal(t, []float64{4, 6, 4, 6, 9, 6, 4, 6, 4}, y.Data)
}

func TestConv2DValidStrided(t *testing.T) {
	l, err := newConv2D(LayerSpec{Filters: 2, Kernel: []int{1, 2}, Strides: []int{1, 2}, Activation: "relu"}, []int{1, 4, 1})
	require.NoError(t, err)
	// filter 0 sums the pair, filter 1 negates it
	copy(l.kernel.Data, []float64{1, -1, 1, -1})
	copy(l.bias.Data, []float64{0.5, 0})

	y, err := l.Forward(&Tensor{Shape: []int{1, 4, 1}, Data: []float64{1, 2, 3, 4}})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 2}, y.Shape)
	assert.Equal(t, []float64{3.5, 0, 7.5, 0}, y.Data)
}

func TestConv2DShapeErrors(t *testing.T) {
	_, err := newConv2D(LayerSpec{Filters: 1, Kernel: []int{5, 5}}, []int{3, 3, 1})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = newConv2D(LayerSpec{Kernel: []int{1, 1}}, []int{3, 3, 1})
	assert.ErrorIs(t, err, ErrInvalidHeader)

	l, err := newConv2D(LayerSpec{Filters: 1, Kernel: []int{1}}, []int{3, 3, 1})
	require.NoError(t, err)
	_, err = l.Forward(NewTensor(2, 3, 1))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestBatchNorm(t *testing.T) {
	l, err := newBatchNorm(LayerSpec{Epsilon: 1e-9}, []int{1, 1, 2})
	require.NoError(t, err)
	copy(l.gamma.Data, []float64{2, 1})
	copy(l.beta.Data, []float64{1, 0})
	copy(l.mean.Data, []float64{1, 0})
	copy(l.vari.Data, []float64{4, 1})

	y, err := l.Forward(&Tensor{Shape: []int{1, 1, 2}, Data: []float64{3, -2}})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{3, -2}, y.Data, 1e-6)
}

func TestPooling(t *testing.T) {
	x := &Tensor{Shape: []int{2, 4, 1}, Data: []float64{1, 5, 2, 8, 3, 1, 4, 0}}

	mp, err := newPool2D(LayerSpec{Pool: []int{2, 2}}, x.Shape, true)
	require.NoError(t, err)
	y, err := mp.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 1}, y.Shape)
	assert.Equal(t, []float64{5, 8}, y.Data)

	ap, err := newPool2D(LayerSpec{Pool: []int{1, 3}, Strides: []int{1, 3}, Padding: "same"}, x.Shape, false)
	require.NoError(t, err)
	y, err = ap.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, y.Shape)
	// padded columns are left out of the average
	assert.InDeltaSlice(t, []float64{3, 5, 2, 2}, y.Data, 1e-12)
}

func TestGlobalAvgPoolAndFlatten(t *testing.T) {
	x := &Tensor{Shape: []int{2, 1, 2}, Data: []float64{1, 10, 3, 20}}

	g := &globalAvgPool2D{in: x.Shape}
	y, err := g.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 15}, y.Data)

	f := &flatten{in: x.Shape}
	y, err = f.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, []int{4}, y.Shape)
}

func TestDense(t *testing.T) {
	l, err := newDense(LayerSpec{Units: 2}, []int{3})
	require.NoError(t, err)
	// kernel is [in, units]
	copy(l.kernel.Data, []float64{1, 0, 0, 1, 1, 1})
	copy(l.bias.Data, []float64{0, -1})

	y, err := l.Forward(&Tensor{Shape: []int{3}, Data: []float64{1, 2, 3}})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{4, 4}, y.Data, 1e-12)

	_, err = newDense(LayerSpec{Units: 2}, []int{2, 2, 1})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestSoftmax(t *testing.T) {
	data := []float64{1, 2, 3, 0, 0, 0}
	softmax(data, 3)
	assert.InDelta(t, 1, data[0]+data[1]+data[2], 1e-12)
	assert.Greater(t, data[2], data[1])
	assert.InDeltaSlice(t, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}, data[3:], 1e-12)
}

func TestActivations(t *testing.T) {
	for name, want := range map[string][]float64{
		"relu":   {0, 0, 2},
		"elu":    {-0.6321205588, 0, 2},
		"linear": {-1, 0, 2},
	} {
		fn, err := lookupActivation(name)
		require.NoError(t, err)
		got := []float64{-1, 0, 2}
		if fn != nil {
			fn(got, 3)
		}
		assert.InDeltaSlice(t, want, got, 1e-9, name)
	}
	_, err := lookupActivation("swish")
	assert.ErrorIs(t, err, ErrUnknownLayer)
}

func TestParallel(t *testing.T) {
	spec := LayerSpec{Type: "parallel", Branches: [][]LayerSpec{
		{{Type: "conv2d", Filters: 1, Kernel: []int{1, 1}, NoBias: true}},
		{{Type: "conv2d", Filters: 2, Kernel: []int{1, 3}, Padding: "same", NoBias: true}},
	}}
	l, err := newParallel(spec, []int{1, 3, 1})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 3}, l.OutputShape())

	ps := l.Params()
	require.Len(t, ps, 2)
	fill(ps[0], 2)
	fill(ps[1], 1)

	y, err := l.Forward(&Tensor{Shape: []int{1, 3, 1}, Data: []float64{1, 1, 1}})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2, 2, 2, 3, 3, 2, 2, 2}, y.Data)

	bad := LayerSpec{Type: "parallel", Branches: [][]LayerSpec{
		{{Type: "conv2d", Filters: 1, Kernel: []int{1, 1}}},
		{{Type: "maxpool2d", Pool: []int{1, 3}}},
	}}
	_, err = newParallel(bad, []int{1, 3, 1})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}
