package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sbinet/npyio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/neurlang/tempocnn/classifier"
)

func tempogram() *classifier.Tempogram {
	return &classifier.Tempogram{
		Values: [][]float64{{0.5, 0.1, 0}, {0.25, 0.9, 1}},
		BPM:    []float64{30, 31},
		Hop:    1.5,
	}
}

func TestFormatTempo(t *testing.T) {
	assert.Equal(t, "120", FormatTempo(120, false))
	assert.Equal(t, "120.50", FormatTempo(120.5, true))

	var buf bytes.Buffer
	require.NoError(t, WriteTempo(&buf, 97, false))
	require.NoError(t, WriteMeter(&buf, 3))
	require.NoError(t, WriteMirex(&buf, classifier.Mirex{T1: 60, T2: 120, S1: 0.25}))
	assert.Equal(t, "97\n3\n60.00\t120.00\t0.25\n", buf.String())
}

func TestTempoJAMS(t *testing.T) {
	var buf bytes.Buffer
	j := TempoJAMS("/music/song.wav", 90*time.Second, "fcn", classifier.Mirex{T1: 60, T2: 120, S1: 0.75})
	require.NoError(t, WriteJAMS(&buf, j))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	meta := got["file_metadata"].(map[string]any)
	assert.Equal(t, "song.wav", meta["title"])
	assert.Equal(t, 90.0, meta["duration"])

	ann := got["annotations"].([]any)[0].(map[string]any)
	assert.Equal(t, "tempo", ann["namespace"])
	data := ann["data"].([]any)
	require.Len(t, data, 2)
	first := data[0].(map[string]any)
	assert.Equal(t, 60.0, first["value"])
	assert.Equal(t, 0.75, first["confidence"])
	assert.Equal(t, 90.0, first["duration"])
}

func TestMeterJAMS(t *testing.T) {
	j := MeterJAMS("a.flac", time.Second, "dc", 3, 0.8)
	require.Len(t, j.Annotations, 1)
	assert.Equal(t, "tag_open", j.Annotations[0].Namespace)
	assert.Equal(t, "meter 3", j.Annotations[0].Data[0].Value)
}

func TestWriteTempogramCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTempogramCSV(&buf, tempogram()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"time", "30", "31"},
		{"0.000000", "0.5", "0.25"},
		{"1.500000", "0.1", "0.9"},
		{"3.000000", "0", "1"},
	}, rows)
}

func TestWriteTempogramNPY(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTempogramNPY(&buf, tempogram()))

	var m mat.Dense
	require.NoError(t, npyio.Read(&buf, &m))
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 0.9, m.At(1, 1))

	assert.ErrorIs(t, WriteTempogramNPY(io.Discard, &classifier.Tempogram{}), ErrEmpty)
}

func TestPlots(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PlotTempogram(&buf, tempogram(), "song.wav"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))

	buf.Reset()
	require.NoError(t, PlotDistribution(&buf, []float64{2, 3, 4}, []float64{0.1, 0.7, 0.2}, "song.wav", "Meter"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))

	flat := &classifier.Tempogram{Values: [][]float64{{0, 0}, {0, 0}}, BPM: []float64{30, 31}, Hop: 1}
	buf.Reset()
	require.NoError(t, PlotTempogram(&buf, flat, "silence"))

	assert.ErrorIs(t, PlotTempogram(io.Discard, &classifier.Tempogram{}, ""), ErrEmpty)
	assert.ErrorIs(t, PlotDistribution(io.Discard, []float64{1}, nil, "", ""), ErrEmpty)
}

func TestWriteFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "out.txt")
	assert.False(t, Exists(name))

	require.NoError(t, WriteFile(name, func(w io.Writer) error { return WriteTempo(w, 88, false) }))
	assert.True(t, Exists(name))
	raw, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "88\n", string(raw))

	boom := errors.New("boom")
	err = WriteFile(name, func(w io.Writer) error {
		io.WriteString(w, "partial")
		return boom
	})
	assert.ErrorIs(t, err, boom)
	raw, err = os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "88\n", string(raw))
}
