package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/neurlang/tempocnn/classifier"
)

// FormatTempo renders a tempo. Interpolated tempi keep two decimals.
func FormatTempo(bpm float64, interpolate bool) string {
	if interpolate {
		return strconv.FormatFloat(bpm, 'f', 2, 64)
	}
	return strconv.FormatFloat(bpm, 'f', -1, 64)
}

// WriteTempo writes a single tempo on its own line.
func WriteTempo(w io.Writer, bpm float64, interpolate bool) error {
	_, err := fmt.Fprintln(w, FormatTempo(bpm, interpolate))
	return err
}

// WriteMirex writes "T1\tT2\tS1" as used by the MIREX tempo task.
func WriteMirex(w io.Writer, m classifier.Mirex) error {
	_, err := fmt.Fprintf(w, "%.2f\t%.2f\t%.2f\n", m.T1, m.T2, m.S1)
	return err
}

// WriteMeter writes a meter on its own line.
func WriteMeter(w io.Writer, meter int) error {
	_, err := fmt.Fprintln(w, meter)
	return err
}
