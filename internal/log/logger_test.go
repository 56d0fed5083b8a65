package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Output: &buf, Command: "tempo", JSON: true})

	l.Info().Msg("hidden")
	fl := WithFile(l, "a.wav")
	fl.Warn().Msg("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "tempo", entry["cmd"])
	assert.Equal(t, "a.wav", entry["file"])
}

func TestNewConsoleAndBadLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "loud", Output: &buf})
	l.Debug().Msg("hidden")
	l.Info().Msg("analyzing")
	assert.Contains(t, buf.String(), "analyzing")
	assert.NotContains(t, buf.String(), "hidden")
}
