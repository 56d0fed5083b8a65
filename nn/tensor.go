package nn

import "fmt"

// Tensor is a dense row-major array. Image tensors are laid out
// channels-last as [height, width, channels].
type Tensor struct {
	Shape []int
	Data  []float64
}

// NewTensor allocates a zero tensor of the given shape.
func NewTensor(shape ...int) *Tensor {
	return &Tensor{Shape: append([]int(nil), shape...), Data: make([]float64, volume(shape))}
}

// Size returns the number of elements in t.
func (t *Tensor) Size() int { return len(t.Data) }

func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor%v", t.Shape)
}

func volume(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// dims3 splits an image shape into height, width and channels.
func dims3(shape []int) (h, w, c int, err error) {
	if len(shape) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: want [h w c], got %v", ErrShapeMismatch, shape)
	}
	return shape[0], shape[1], shape[2], nil
}
