package classifier

import (
	"context"
	"fmt"

	"github.com/neurlang/tempocnn/feature"
)

// Norm selects how each tempogram frame is normalised.
type Norm string

const (
	NormNone     Norm = "none"
	NormMax      Norm = "max"
	NormIntegral Norm = "integral"
)

// ParseNorm parses a --norm-frame value. The empty string means none.
func ParseNorm(s string) (Norm, error) {
	switch Norm(s) {
	case "", NormNone:
		return NormNone, nil
	case NormMax, NormIntegral:
		return Norm(s), nil
	}
	return "", fmt.Errorf("unknown frame normalization %q (want none, max or integral)", s)
}

// Tempogram is a local tempo estimate: one class distribution per window.
type Tempogram struct {
	// Values is indexed [class][frame].
	Values [][]float64
	// BPM holds the tempo of each class.
	BPM []float64
	// Hop is the time between frames in seconds.
	Hop float64
}

// Frames returns the number of tempogram frames.
func (t *Tempogram) Frames() int {
	if len(t.Values) == 0 {
		return 0
	}
	return len(t.Values[0])
}

// Times returns the time of every frame in seconds.
func (t *Tempogram) Times() []float64 {
	out := make([]float64, t.Frames())
	for i := range out {
		out[i] = float64(i) * t.Hop
	}
	return out
}

// Normalize rescales every frame to a maximum of one (max) or a sum of one
// (integral). Silent frames are left untouched.
func (t *Tempogram) Normalize(norm Norm) {
	if norm == NormNone || norm == "" {
		return
	}
	for f := 0; f < t.Frames(); f++ {
		var d float64
		for c := range t.Values {
			v := t.Values[c][f]
			if norm == NormMax {
				if v > d {
					d = v
				}
			} else {
				d += v
			}
		}
		if d == 0 {
			continue
		}
		for c := range t.Values {
			t.Values[c][f] /= d
		}
	}
}

// Sharpen keeps only the strongest class of every frame, set to one.
func (t *Tempogram) Sharpen() {
	for f, c := range t.argmax() {
		for k := range t.Values {
			t.Values[k][f] = 0
		}
		t.Values[c][f] = 1
	}
}

// Local returns the tempo of the strongest class of every frame.
func (t *Tempogram) Local() []float64 {
	best := t.argmax()
	out := make([]float64, len(best))
	for f, c := range best {
		out[f] = t.BPM[c]
	}
	return out
}

func (t *Tempogram) argmax() []int {
	best := make([]int, t.Frames())
	for f := range best {
		for c := range t.Values {
			if t.Values[c][f] > t.Values[best[f]][f] {
				best[f] = c
			}
		}
	}
	return best
}

// Tempogram predicts a tempo distribution for every window. hop is the time
// between consecutive windows in seconds.
func (c *TempoClassifier) Tempogram(ctx context.Context, windows []feature.Window, hop float64, norm Norm) (*Tempogram, error) {
	preds, err := c.Estimate(ctx, windows)
	if err != nil {
		return nil, err
	}
	t := &Tempogram{
		Values: make([][]float64, c.Classes()),
		BPM:    c.BPMs(),
		Hop:    hop,
	}
	for k := range t.Values {
		t.Values[k] = make([]float64, len(preds))
		for f, p := range preds {
			t.Values[k][f] = p[k]
		}
	}
	t.Normalize(norm)
	return t, nil
}
