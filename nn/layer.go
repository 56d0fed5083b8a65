package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Layer is one step of a model. Layers are built for a fixed input shape.
type Layer interface {
	OutputShape() []int
	// Params returns the trainable tensors in storage order.
	Params() []*Tensor
	Forward(x *Tensor) (*Tensor, error)
}

// window computes the output length and leading padding of a sliding
// window of size k and stride s over n positions.
func window(n, k, s int, same bool) (out, before int, err error) {
	if k <= 0 || s <= 0 {
		return 0, 0, fmt.Errorf("%w: window %d stride %d", ErrShapeMismatch, k, s)
	}
	if same {
		out = (n + s - 1) / s
		total := (out-1)*s + k - n
		if total < 0 {
			total = 0
		}
		return out, total / 2, nil
	}
	if n < k {
		return 0, 0, fmt.Errorf("%w: window %d larger than input %d", ErrShapeMismatch, k, n)
	}
	return (n-k)/s + 1, 0, nil
}

type conv2d struct {
	in, out         []int
	kh, kw, sy, sx  int
	padTop, padLeft int
	kernel, bias    *Tensor
	act             activation
}

func newConv2D(spec LayerSpec, in []int) (*conv2d, error) {
	h, w, c, err := dims3(in)
	if err != nil {
		return nil, err
	}
	if spec.Filters <= 0 {
		return nil, fmt.Errorf("%w: conv2d needs filters", ErrInvalidHeader)
	}
	kh, kw, err := pair(spec.Kernel, nil)
	if err != nil {
		return nil, err
	}
	sy, sx, err := pair(spec.Strides, []int{1, 1})
	if err != nil {
		return nil, err
	}
	same, err := isSame(spec.Padding)
	if err != nil {
		return nil, err
	}
	l := &conv2d{in: in, kh: kh, kw: kw, sy: sy, sx: sx}
	ho, top, err := window(h, kh, sy, same)
	if err != nil {
		return nil, err
	}
	wo, left, err := window(w, kw, sx, same)
	if err != nil {
		return nil, err
	}
	l.padTop, l.padLeft = top, left
	l.out = []int{ho, wo, spec.Filters}
	l.kernel = NewTensor(kh, kw, c, spec.Filters)
	if !spec.NoBias {
		l.bias = NewTensor(spec.Filters)
	}
	if l.act, err = lookupActivation(spec.Activation); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *conv2d) OutputShape() []int { return l.out }

func (l *conv2d) Params() []*Tensor {
	if l.bias == nil {
		return []*Tensor{l.kernel}
	}
	return []*Tensor{l.kernel, l.bias}
}

func (l *conv2d) Forward(x *Tensor) (*Tensor, error) {
	if !sameShape(x.Shape, l.in) {
		return nil, fmt.Errorf("%w: conv2d input %v, want %v", ErrShapeMismatch, x.Shape, l.in)
	}
	h, w, cin := l.in[0], l.in[1], l.in[2]
	ho, wo, cout := l.out[0], l.out[1], l.out[2]
	k := l.kernel.Data
	y := NewTensor(l.out...)

	for oy := 0; oy < ho; oy++ {
		for ox := 0; ox < wo; ox++ {
			acc := y.Data[(oy*wo+ox)*cout : (oy*wo+ox+1)*cout]
			if l.bias != nil {
				copy(acc, l.bias.Data)
			}
			for i := 0; i < l.kh; i++ {
				iy := oy*l.sy + i - l.padTop
				if iy < 0 || iy >= h {
					continue
				}
				for j := 0; j < l.kw; j++ {
					ix := ox*l.sx + j - l.padLeft
					if ix < 0 || ix >= w {
						continue
					}
					xs := x.Data[(iy*w+ix)*cin : (iy*w+ix+1)*cin]
					for ci, xv := range xs {
						if xv == 0 {
							continue
						}
						ks := k[((i*l.kw+j)*cin+ci)*cout : ((i*l.kw+j)*cin+ci+1)*cout]
						for co, kv := range ks {
							acc[co] += xv * kv
						}
					}
				}
			}
		}
	}
	if l.act != nil {
		l.act(y.Data, cout)
	}
	return y, nil
}

type batchNorm struct {
	shape                   []int
	gamma, beta, mean, vari *Tensor
	epsilon                 float64
}

func newBatchNorm(spec LayerSpec, in []int) (*batchNorm, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: batchnorm on scalar", ErrShapeMismatch)
	}
	c := in[len(in)-1]
	eps := spec.Epsilon
	if eps == 0 {
		eps = 1e-3
	}
	return &batchNorm{
		shape:   in,
		gamma:   NewTensor(c),
		beta:    NewTensor(c),
		mean:    NewTensor(c),
		vari:    NewTensor(c),
		epsilon: eps,
	}, nil
}

func (l *batchNorm) OutputShape() []int { return l.shape }

func (l *batchNorm) Params() []*Tensor {
	return []*Tensor{l.gamma, l.beta, l.mean, l.vari}
}

func (l *batchNorm) Forward(x *Tensor) (*Tensor, error) {
	if !sameShape(x.Shape, l.shape) {
		return nil, fmt.Errorf("%w: batchnorm input %v, want %v", ErrShapeMismatch, x.Shape, l.shape)
	}
	c := l.shape[len(l.shape)-1]
	scale := make([]float64, c)
	shift := make([]float64, c)
	for i := range scale {
		scale[i] = l.gamma.Data[i] / math.Sqrt(l.vari.Data[i]+l.epsilon)
		shift[i] = l.beta.Data[i] - l.mean.Data[i]*scale[i]
	}
	y := NewTensor(l.shape...)
	for i, v := range x.Data {
		y.Data[i] = v*scale[i%c] + shift[i%c]
	}
	return y, nil
}

type pool2d struct {
	in, out         []int
	ph, pw, sy, sx  int
	padTop, padLeft int
	max             bool
}

func newPool2D(spec LayerSpec, in []int, isMax bool) (*pool2d, error) {
	h, w, c, err := dims3(in)
	if err != nil {
		return nil, err
	}
	ph, pw, err := pair(spec.Pool, []int{2, 2})
	if err != nil {
		return nil, err
	}
	sy, sx, err := pair(spec.Strides, []int{ph, pw})
	if err != nil {
		return nil, err
	}
	same, err := isSame(spec.Padding)
	if err != nil {
		return nil, err
	}
	ho, top, err := window(h, ph, sy, same)
	if err != nil {
		return nil, err
	}
	wo, left, err := window(w, pw, sx, same)
	if err != nil {
		return nil, err
	}
	return &pool2d{
		in: in, out: []int{ho, wo, c},
		ph: ph, pw: pw, sy: sy, sx: sx,
		padTop: top, padLeft: left,
		max: isMax,
	}, nil
}

func (l *pool2d) OutputShape() []int { return l.out }
func (l *pool2d) Params() []*Tensor { return nil }

func (l *pool2d) Forward(x *Tensor) (*Tensor, error) {
	if !sameShape(x.Shape, l.in) {
		return nil, fmt.Errorf("%w: pool input %v, want %v", ErrShapeMismatch, x.Shape, l.in)
	}
	h, w, c := l.in[0], l.in[1], l.in[2]
	ho, wo := l.out[0], l.out[1]
	y := NewTensor(l.out...)
	for oy := 0; oy < ho; oy++ {
		for ox := 0; ox < wo; ox++ {
			for ch := 0; ch < c; ch++ {
				acc, n := math.Inf(-1), 0
				if !l.max {
					acc = 0
				}
				for i := 0; i < l.ph; i++ {
					iy := oy*l.sy + i - l.padTop
					if iy < 0 || iy >= h {
						continue
					}
					for j := 0; j < l.pw; j++ {
						ix := ox*l.sx + j - l.padLeft
						if ix < 0 || ix >= w {
							continue
						}
						v := x.Data[(iy*w+ix)*c+ch]
						if l.max {
							acc = math.Max(acc, v)
						} else {
							acc += v
						}
						n++
					}
				}
				if !l.max && n > 0 {
					acc /= float64(n)
				}
				y.Data[(oy*wo+ox)*c+ch] = acc
			}
		}
	}
	return y, nil
}

// globalAvgPool2D averages every channel over height and width.
type globalAvgPool2D struct {
	in []int
}

func (l *globalAvgPool2D) OutputShape() []int { return []int{l.in[2]} }
func (l *globalAvgPool2D) Params() []*Tensor { return nil }

func (l *globalAvgPool2D) Forward(x *Tensor) (*Tensor, error) {
	if !sameShape(x.Shape, l.in) {
		return nil, fmt.Errorf("%w: global pool input %v, want %v", ErrShapeMismatch, x.Shape, l.in)
	}
	c := l.in[2]
	y := NewTensor(c)
	for i, v := range x.Data {
		y.Data[i%c] += v
	}
	n := float64(l.in[0] * l.in[1])
	for i := range y.Data {
		y.Data[i] /= n
	}
	return y, nil
}

type flatten struct {
	in []int
}

func (l *flatten) OutputShape() []int { return []int{volume(l.in)} }
func (l *flatten) Params() []*Tensor { return nil }

func (l *flatten) Forward(x *Tensor) (*Tensor, error) {
	return &Tensor{Shape: l.OutputShape(), Data: x.Data}, nil
}

// identity is used for layers that only matter during training.
type identity struct {
	shape []int
}

func (l *identity) OutputShape() []int { return l.shape }
func (l *identity) Params() []*Tensor { return nil }
func (l *identity) Forward(x *Tensor) (*Tensor, error) { return x, nil }

type dense struct {
	in, units    int
	kernel, bias *Tensor
	act          activation
}

func newDense(spec LayerSpec, in []int) (*dense, error) {
	if len(in) != 1 {
		return nil, fmt.Errorf("%w: dense expects a flat input, got %v", ErrShapeMismatch, in)
	}
	if spec.Units <= 0 {
		return nil, fmt.Errorf("%w: dense needs units", ErrInvalidHeader)
	}
	l := &dense{in: in[0], units: spec.Units, kernel: NewTensor(in[0], spec.Units)}
	if !spec.NoBias {
		l.bias = NewTensor(spec.Units)
	}
	var err error
	if l.act, err = lookupActivation(spec.Activation); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *dense) OutputShape() []int { return []int{l.units} }

func (l *dense) Params() []*Tensor {
	if l.bias == nil {
		return []*Tensor{l.kernel}
	}
	return []*Tensor{l.kernel, l.bias}
}

func (l *dense) Forward(x *Tensor) (*Tensor, error) {
	if len(x.Data) != l.in {
		return nil, fmt.Errorf("%w: dense input %v, want [%d]", ErrShapeMismatch, x.Shape, l.in)
	}
	w := mat.NewDense(l.in, l.units, l.kernel.Data)
	var y mat.VecDense
	y.MulVec(w.T(), mat.NewVecDense(l.in, x.Data))
	if l.bias != nil {
		y.AddVec(&y, mat.NewVecDense(l.units, l.bias.Data))
	}
	out := &Tensor{Shape: []int{l.units}, Data: append([]float64(nil), y.RawVector().Data...)}
	if l.act != nil {
		l.act(out.Data, l.units)
	}
	return out, nil
}

// parallel runs several branches on the same input and concatenates their
// outputs along the channel axis.
type parallel struct {
	branches [][]Layer
	out      []int
}

func newParallel(spec LayerSpec, in []int) (*parallel, error) {
	if len(spec.Branches) == 0 {
		return nil, fmt.Errorf("%w: parallel needs branches", ErrInvalidHeader)
	}
	l := &parallel{}
	for i, branch := range spec.Branches {
		layers, shape, err := buildStack(branch, in)
		if err != nil {
			return nil, fmt.Errorf("branch %d: %w", i, err)
		}
		if l.out == nil {
			l.out = append([]int(nil), shape...)
		} else {
			if len(shape) != len(l.out) || !sameShape(shape[:len(shape)-1], l.out[:len(l.out)-1]) {
				return nil, fmt.Errorf("%w: branch %d output %v does not concatenate with %v", ErrShapeMismatch, i, shape, l.out)
			}
			l.out[len(l.out)-1] += shape[len(shape)-1]
		}
		l.branches = append(l.branches, layers)
	}
	return l, nil
}

func (l *parallel) OutputShape() []int { return l.out }

func (l *parallel) Params() []*Tensor {
	var ps []*Tensor
	for _, branch := range l.branches {
		for _, layer := range branch {
			ps = append(ps, layer.Params()...)
		}
	}
	return ps
}

func (l *parallel) Forward(x *Tensor) (*Tensor, error) {
	outs := make([]*Tensor, len(l.branches))
	for i, branch := range l.branches {
		y, err := forward(branch, x)
		if err != nil {
			return nil, err
		}
		outs[i] = y
	}
	c := l.out[len(l.out)-1]
	y := NewTensor(l.out...)
	positions := len(y.Data) / c
	offset := 0
	for _, o := range outs {
		oc := o.Shape[len(o.Shape)-1]
		for p := 0; p < positions; p++ {
			copy(y.Data[p*c+offset:p*c+offset+oc], o.Data[p*oc:(p+1)*oc])
		}
		offset += oc
	}
	return y, nil
}

func forward(layers []Layer, x *Tensor) (*Tensor, error) {
	var err error
	for _, l := range layers {
		if x, err = l.Forward(x); err != nil {
			return nil, err
		}
	}
	return x, nil
}

func pair(v, def []int) (int, int, error) {
	switch len(v) {
	case 0:
		if def == nil {
			return 0, 0, fmt.Errorf("%w: missing window size", ErrInvalidHeader)
		}
		return def[0], def[1], nil
	case 1:
		return v[0], v[0], nil
	case 2:
		return v[0], v[1], nil
	}
	return 0, 0, fmt.Errorf("%w: window %v", ErrInvalidHeader, v)
}

func isSame(padding string) (bool, error) {
	switch padding {
	case "", "valid":
		return false, nil
	case "same":
		return true, nil
	}
	return false, fmt.Errorf("%w: padding %q", ErrInvalidHeader, padding)
}
