package feature

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/window"
	"github.com/r9y9/gossp/stft"
)

// Mel represents the configuration for generating mel spectrograms.
type Mel struct {
	SampleRate int
	NFFT       int
	Hop        int
	NumMels    int
	Fmin       float64
	Fmax       float64
	Power      float64
}

// NewMel creates a new Mel instance with the parameters of the tempo and
// meter models.
func NewMel() *Mel {
	return &Mel{
		SampleRate: 11025,
		NFFT:       1024,
		Hop:        512,
		NumMels:    40,
		Fmin:       20,
		Fmax:       5000,
		Power:      1,
	}
}

var ErrInvalidConfig = errors.New("feature: invalid mel configuration")

// FrameDuration returns the time between two spectrogram frames in seconds.
func (m *Mel) FrameDuration() float64 {
	return float64(m.Hop) / float64(m.SampleRate)
}

func (m *Mel) validate() error {
	if m.SampleRate <= 0 || m.NFFT <= 0 || m.Hop <= 0 || m.NumMels <= 0 {
		return ErrInvalidConfig
	}
	if m.Fmin < 0 || m.Fmax <= m.Fmin || m.Fmax > float64(m.SampleRate)/2 {
		return ErrInvalidConfig
	}
	return nil
}

// Spectrogram computes the mel spectrogram of buf, indexed [band][frame].
func (m *Mel) Spectrogram(buf []float64) ([][]float64, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}

	s := stft.New(m.Hop, m.NFFT)
	// periodic hann, as used by librosa
	s.Window = window.Hann(m.NFFT + 1)[:m.NFFT]

	spectrum := s.STFT(center(buf, m.NFFT/2))
	bins := m.NFFT/2 + 1
	filters := m.Filterbank()

	out := make([][]float64, m.NumMels)
	for b := range out {
		out[b] = make([]float64, len(spectrum))
	}
	mag := make([]float64, bins)
	for f, frame := range spectrum {
		for k := 0; k < bins; k++ {
			mag[k] = cmplx.Abs(frame[k])
			if m.Power != 1 {
				mag[k] = math.Pow(mag[k], m.Power)
			}
		}
		for b, filter := range filters {
			var total float64
			for k, w := range filter {
				if w != 0 {
					total += w * mag[k]
				}
			}
			out[b][f] = total
		}
	}
	return out, nil
}

// Filterbank returns NumMels Slaney-normalised triangular filters over the
// NFFT/2+1 FFT bins.
func (m *Mel) Filterbank() [][]float64 {
	bins := m.NFFT/2 + 1
	fftfreqs := make([]float64, bins)
	for k := range fftfreqs {
		fftfreqs[k] = float64(k) * float64(m.SampleRate) / float64(m.NFFT)
	}

	lo, hi := hzToMel(m.Fmin), hzToMel(m.Fmax)
	melf := make([]float64, m.NumMels+2)
	for i := range melf {
		melf[i] = melToHz(lo + (hi-lo)*float64(i)/float64(m.NumMels+1))
	}

	weights := make([][]float64, m.NumMels)
	for i := range weights {
		weights[i] = make([]float64, bins)
		lower, centre, upper := melf[i], melf[i+1], melf[i+2]
		enorm := 2 / (upper - lower)
		for k, f := range fftfreqs {
			down := (f - lower) / (centre - lower)
			up := (upper - f) / (upper - centre)
			w := math.Max(0, math.Min(down, up))
			weights[i][k] = w * enorm
		}
	}
	return weights
}

// center reflect-pads buf by pad samples on both sides.
func center(buf []float64, pad int) []float64 {
	out := make([]float64, len(buf)+2*pad)
	copy(out[pad:], buf)
	if len(buf) < 2 {
		return out
	}
	for i := 0; i < pad; i++ {
		out[pad-1-i] = buf[reflect(i+1, len(buf))]
		out[pad+len(buf)+i] = buf[reflect(len(buf)-2-i, len(buf))]
	}
	return out
}

// reflect folds index i into [0, n) by mirroring at the edges.
func reflect(i, n int) int {
	period := 2 * (n - 1)
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - i
	}
	return i
}

const (
	melFsp      = 200.0 / 3
	melMinLogHz = 1000.0
	melMinLog   = melMinLogHz / melFsp
)

var melLogStep = math.Log(6.4) / 27

func hzToMel(value float64) float64 {
	if value < melMinLogHz {
		return value / melFsp
	}
	return melMinLog + math.Log(value/melMinLogHz)/melLogStep
}

func melToHz(value float64) float64 {
	if value < melMinLog {
		return value * melFsp
	}
	return melMinLogHz * math.Exp(melLogStep*(value-melMinLog))
}
