package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/tempocnn/internal/app"
	"github.com/neurlang/tempocnn/internal/testutil"
	"github.com/neurlang/tempocnn/nn"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := app.Run(context.Background(), newCommand(&stdout, &stderr), append([]string{"meter"}, args...))
	return code, stdout.String(), stderr.String()
}

func TestMeter(t *testing.T) {
	dir := t.TempDir()
	config := testutil.WriteConfig(t, dir)
	model := testutil.WriteModel(t, dir, nn.KindMeter, 32, 4, 2)
	a := testutil.WriteClicks(t, dir, "waltz.wav", 90, 4, 11025)
	b := testutil.WriteClicks(t, dir, "march.wav", 120, 4, 22050)

	code, stdout, stderr := runCLI(t, "--config", config, "-m", model, "-i", a, "-i", b)
	require.Equal(t, 0, code, stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		meter, err := strconv.Atoi(line)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, meter, 2)
		assert.LessOrEqual(t, meter, 5)
	}
}

func TestMeterOutputs(t *testing.T) {
	dir := t.TempDir()
	config := testutil.WriteConfig(t, dir)
	model := testutil.WriteModel(t, dir, nn.KindMeter, 32, 4, 2)
	song := testutil.WriteClicks(t, dir, "song.wav", 100, 3, 11025)
	out := filepath.Join(dir, "song.jams")

	code, _, stderr := runCLI(t, "--config", config, "-m", model, "--jams", "-p", "-i", song, "-o", out)
	require.Equal(t, 0, code, stderr)
	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"namespace": "tag_open"`)
	_, err = os.Stat(song + plotExt)
	assert.NoError(t, err)
}

func TestMeterUsage(t *testing.T) {
	code, _, stderr := runCLI(t, "-i", "a.wav", "-i", "b.wav", "-o", "a.txt")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "number of input files (2) does not match number of output files (1)")
}

func TestMeterWrongModelKind(t *testing.T) {
	dir := t.TempDir()
	config := testutil.WriteConfig(t, dir)
	model := testutil.WriteModel(t, dir, nn.KindTempo, 32, 256, 30)
	song := testutil.WriteClicks(t, dir, "song.wav", 100, 3, 11025)

	code, _, stderr := runCLI(t, "--config", config, "-m", model, song)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "kind mismatch")
}
