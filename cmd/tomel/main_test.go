package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/tempocnn/internal/app"
	"github.com/neurlang/tempocnn/internal/testutil"
)

func TestToMel(t *testing.T) {
	dir := t.TempDir()
	config := testutil.WriteConfig(t, dir)
	song := testutil.WriteClicks(t, dir, "song.wav", 120, 2, 11025)

	var stdout, stderr bytes.Buffer
	code := app.Run(context.Background(), newCommand(&stdout, &stderr), []string{"tomel", "--config", config, song})
	require.Equal(t, 0, code, stderr.String())

	f, err := os.Open(song + ".png")
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 22050/512+1, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())
}

func TestToMelUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := app.Run(context.Background(), newCommand(&stdout, &stderr), []string{"tomel"})
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "no input files")
}
