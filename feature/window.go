package feature

import (
	"errors"
	"fmt"
	"math"

	"github.com/neurlang/tempocnn/audio"
)

// Window is a fixed-size excerpt of a spectrogram, indexed [band][frame].
type Window [][]float64

// Bands returns the number of mel bands in w.
func (w Window) Bands() int { return len(w) }

// Frames returns the number of frames in w.
func (w Window) Frames() int {
	if len(w) == 0 {
		return 0
	}
	return len(w[0])
}

var ErrInvalidWindow = errors.New("feature: invalid window geometry")

// Windows cuts spec into windows of the given number of frames, advancing by
// hop frames. With zeroPad, frames/2 silent frames are added on both sides
// so that every window is centred on a frame of the original spectrogram.
// A spectrogram shorter than one window is padded up to one window.
func Windows(spec [][]float64, frames, hop int, zeroPad bool) ([]Window, error) {
	if frames <= 0 || hop <= 0 {
		return nil, fmt.Errorf("%w: frames=%d hop=%d", ErrInvalidWindow, frames, hop)
	}
	if len(spec) == 0 {
		return nil, fmt.Errorf("%w: empty spectrogram", ErrInvalidWindow)
	}

	n := len(spec[0])
	before := 0
	if zeroPad {
		before = frames / 2
		n += 2 * before
	}
	if n < frames {
		n = frames
	}

	padded := make([][]float64, len(spec))
	for b, row := range spec {
		padded[b] = make([]float64, n)
		copy(padded[b][before:], row)
	}

	count := (n-frames)/hop + 1
	out := make([]Window, 0, count)
	for i := 0; i < count; i++ {
		offset := i * hop
		w := make(Window, len(padded))
		for b := range padded {
			w[b] = padded[b][offset : offset+frames]
		}
		out = append(out, w)
	}
	return out, nil
}

// StdNormalize returns w scaled to zero mean and unit variance. A constant
// window is only shifted.
func StdNormalize(w Window) Window {
	var sum, count float64
	for _, row := range w {
		for _, v := range row {
			sum += v
			count++
		}
	}
	if count == 0 {
		return w
	}
	mean := sum / count
	var sq float64
	for _, row := range w {
		for _, v := range row {
			sq += (v - mean) * (v - mean)
		}
	}
	std := math.Sqrt(sq / count)
	return mapWindow(w, func(v float64) float64 {
		if std == 0 {
			return v - mean
		}
		return (v - mean) / std
	})
}

// MaxNormalize returns w divided by its maximum, unless that is zero.
func MaxNormalize(w Window) Window {
	peak := math.Inf(-1)
	for _, row := range w {
		for _, v := range row {
			peak = math.Max(peak, v)
		}
	}
	if peak == 0 || math.IsInf(peak, -1) {
		return w
	}
	return mapWindow(w, func(v float64) float64 { return v / peak })
}

func mapWindow(w Window, f func(float64) float64) Window {
	out := make(Window, len(w))
	for b, row := range w {
		out[b] = make([]float64, len(row))
		for i, v := range row {
			out[b][i] = f(v)
		}
	}
	return out
}

// Read loads an audio file, computes its mel spectrogram and cuts it into
// windows.
func (m *Mel) Read(name string, frames, hop int, zeroPad bool) ([]Window, error) {
	sig, err := audio.Load(name, m.SampleRate)
	if err != nil {
		return nil, err
	}
	spec, err := m.Spectrogram(sig.Samples)
	if err != nil {
		return nil, err
	}
	return Windows(spec, frames, hop, zeroPad)
}
