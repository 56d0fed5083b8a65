// Package testutil builds the audio files, models and config files the
// command tests run against.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/neurlang/tempocnn/audio"
	"github.com/neurlang/tempocnn/nn"
)

// WriteClicks writes a mono WAV click track at the given tempo.
func WriteClicks(t testing.TB, dir, name string, bpm, seconds float64, sampleRate int) string {
	t.Helper()
	n := int(seconds * float64(sampleRate))
	buf := make([]float64, n)
	period := int(60 / bpm * float64(sampleRate))
	for start := 0; start < n; start += period {
		for i := 0; i < 200 && start+i < n; i++ {
			buf[start+i] = 0.8 * math.Exp(-float64(i)/40) * math.Sin(float64(i)*0.9)
		}
	}
	path := filepath.Join(dir, name)
	require.NoError(t, audio.SaveWav(path, buf, sampleRate))
	return path
}

// WriteModel saves a small deterministic model of the given kind. The model
// takes 40-band windows of frames frames and predicts classes values.
func WriteModel(t testing.TB, dir string, kind nn.Kind, frames, classes int, offset float64) string {
	t.Helper()
	m, err := nn.New(nn.Header{
		Name:   "test-" + string(kind),
		Kind:   kind,
		Input:  []int{40, frames, 1},
		Labels: nn.Labels{Offset: offset},
		Layers: []nn.LayerSpec{
			{Type: "conv2d", Filters: 4, Kernel: []int{3, 3}, Padding: "same", Activation: "relu"},
			{Type: "maxpool2d", Pool: []int{2, 2}},
			{Type: "globalavgpool2d"},
			{Type: "dense", Units: classes, Activation: "softmax"},
		},
	})
	require.NoError(t, err)
	for pi, p := range m.Params() {
		for i := range p.Data {
			p.Data[i] = float64((i*7+pi*3)%11-5) / 8
		}
	}
	path := filepath.Join(dir, string(kind)+nn.ModelExt)
	require.NoError(t, nn.Save(path, m))
	return path
}

// WriteConfig writes a minimal config file so tests do not pick up the
// user's configuration.
func WriteConfig(t testing.TB, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o644))
	return path
}
