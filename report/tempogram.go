package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/neurlang/tempocnn/classifier"
)

// WriteTempogramCSV writes one row per frame: the frame time followed by
// the value of every tempo class. The header row names the classes by BPM.
func WriteTempogramCSV(w io.Writer, t *classifier.Tempogram) error {
	cw := csv.NewWriter(w)
	row := make([]string, 1+len(t.BPM))
	row[0] = "time"
	for i, bpm := range t.BPM {
		row[i+1] = strconv.FormatFloat(bpm, 'f', -1, 64)
	}
	if err := cw.Write(row); err != nil {
		return err
	}
	for f, ts := range t.Times() {
		row[0] = strconv.FormatFloat(ts, 'f', 6, 64)
		for c := range t.Values {
			row[c+1] = strconv.FormatFloat(t.Values[c][f], 'g', 6, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Matrix returns the tempogram as a classes x frames matrix.
func Matrix(t *classifier.Tempogram) *mat.Dense {
	rows, cols := len(t.Values), t.Frames()
	if rows == 0 || cols == 0 {
		return nil
	}
	data := make([]float64, 0, rows*cols)
	for _, row := range t.Values {
		data = append(data, row...)
	}
	return mat.NewDense(rows, cols, data)
}

// WriteTempogramNPY writes the classes x frames matrix in NumPy .npy format.
func WriteTempogramNPY(w io.Writer, t *classifier.Tempogram) error {
	m := Matrix(t)
	if m == nil {
		return ErrEmpty
	}
	return npyio.Write(w, m)
}
