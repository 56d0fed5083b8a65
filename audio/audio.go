package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
)

// ResampleQuality is the beep resampler quality used for rate conversion.
const ResampleQuality = 4

var (
	ErrFileNotLoaded     = errors.New("audio: file not loaded")
	ErrUnsupportedFormat = errors.New("audio: unsupported format")
	ErrInvalidSampleRate = errors.New("audio: invalid sample rate")
)

// Signal is a mono sample vector with its sample rate.
type Signal struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the length of the signal.
func (s *Signal) Duration() time.Duration {
	if s.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(s.Samples)) / float64(s.SampleRate) * float64(time.Second))
}

// Supported reports whether the file extension of name is decodable.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav", ".flac", ".mp3":
		return true
	}
	return false
}

// Load decodes the file at name into a mono signal. If sampleRate is
// positive the signal is resampled to it.
func Load(name string, sampleRate int) (*Signal, error) {
	if sampleRate < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}

	var (
		samples []float64
		sr      int
		err     error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav":
		samples, sr, err = loadwav(name)
	case ".flac":
		samples, sr, err = loadflac(name)
	case ".mp3":
		samples, sr, err = loadmp3(name)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	if len(samples) == 0 || sr <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrFileNotLoaded, name)
	}

	sig := &Signal{Samples: samples, SampleRate: sr}
	if sampleRate > 0 && sampleRate != sr {
		sig, err = Resample(sig, sampleRate)
		if err != nil {
			return nil, fmt.Errorf("resample %s: %w", name, err)
		}
	}
	return sig, nil
}

// Resample converts sig to the given sample rate.
func Resample(sig *Signal, sampleRate int) (*Signal, error) {
	if sampleRate <= 0 || sig.SampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if sig.SampleRate == sampleRate {
		return sig, nil
	}
	r := beep.Resample(ResampleQuality, beep.SampleRate(sig.SampleRate), beep.SampleRate(sampleRate), NewStreamer(sig.Samples))
	out, err := drain(r)
	if err != nil {
		return nil, err
	}
	return &Signal{Samples: out, SampleRate: sampleRate}, nil
}

// SaveWav writes mono samples as a 16-bit WAV file.
func SaveWav(name string, samples []float64, sampleRate int) error {
	if sampleRate <= 0 {
		return ErrInvalidSampleRate
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	format := beep.Format{SampleRate: beep.SampleRate(sampleRate), NumChannels: 1, Precision: 2}
	if err := wav.Encode(f, NewStreamer(samples), format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
