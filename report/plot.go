package report

import (
	"errors"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/neurlang/tempocnn/classifier"
)

var ErrEmpty = errors.New("report: nothing to write")

// Plot sizes.
var (
	PlotWidth  = 10 * vg.Inch
	PlotHeight = 4 * vg.Inch
)

// tempogramGrid adapts a tempogram to plotter.GridXYZ: columns are frames,
// rows are tempo classes.
type tempogramGrid struct {
	t *classifier.Tempogram
}

func (g tempogramGrid) Dims() (c, r int) { return g.t.Frames(), len(g.t.BPM) }
func (g tempogramGrid) Z(c, r int) float64 { return g.t.Values[r][c] }
func (g tempogramGrid) X(c int) float64 { return float64(c) * g.t.Hop }
func (g tempogramGrid) Y(r int) float64 { return g.t.BPM[r] }

// PlotTempogram renders a tempogram heat map as PNG.
func PlotTempogram(w io.Writer, t *classifier.Tempogram, title string) error {
	if t.Frames() == 0 || len(t.BPM) == 0 {
		return ErrEmpty
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Tempo (BPM)"

	h := plotter.NewHeatMap(tempogramGrid{t: t}, palette.Heat(64, 1))
	if h.Max <= h.Min {
		h.Max = h.Min + 1
	}
	p.Add(h)
	return writePNG(w, p)
}

// PlotDistribution renders a class distribution as a line plot.
func PlotDistribution(w io.Writer, labels, probs []float64, title, xlabel string) error {
	if len(labels) == 0 || len(labels) != len(probs) {
		return ErrEmpty
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = "Probability"

	pts := make(plotter.XYs, len(labels))
	for i := range labels {
		pts[i].X, pts[i].Y = labels[i], probs[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line, plotter.NewGrid())
	return writePNG(w, p)
}

func writePNG(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(PlotWidth, PlotHeight, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
