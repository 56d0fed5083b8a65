package report

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
)

// WriteSpectrogramPNG renders a [band][frame] spectrogram as a grayscale
// PNG, one pixel per bin, on a log scale. With reverse the lowest band is
// drawn at the bottom.
func WriteSpectrogramPNG(w io.Writer, spec [][]float64, reverse bool) error {
	if len(spec) == 0 || len(spec[0]) == 0 {
		return ErrEmpty
	}
	bands, frames := len(spec), len(spec[0])

	lo, hi := math.Inf(1), math.Inf(-1)
	logs := make([][]float64, bands)
	for b, row := range spec {
		logs[b] = make([]float64, frames)
		for f, v := range row {
			if v < 1e-5 {
				v = 1e-5
			}
			l := math.Log(v)
			logs[b][f] = l
			lo, hi = math.Min(lo, l), math.Max(hi, l)
		}
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	img := image.NewGray(image.Rect(0, 0, frames, bands))
	for b := range logs {
		y := b
		if reverse {
			y = bands - b - 1
		}
		for f, l := range logs[b] {
			img.SetGray(f, y, color.Gray{Y: uint8(255 * (l - lo) / span)})
		}
	}
	return png.Encode(w, img)
}
