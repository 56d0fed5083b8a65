package audio

import "github.com/faiface/beep"

// monoStreamer plays a mono sample vector on both beep channels.
type monoStreamer struct {
	samples []float64
	pos     int
}

// NewStreamer returns a beep.Streamer over mono samples.
func NewStreamer(samples []float64) beep.Streamer {
	return &monoStreamer{samples: samples}
}

func (s *monoStreamer) Stream(buf [][2]float64) (int, bool) {
	if s.pos >= len(s.samples) {
		return 0, false
	}
	n := 0
	for n < len(buf) && s.pos < len(s.samples) {
		buf[n][0] = s.samples[s.pos]
		buf[n][1] = s.samples[s.pos]
		n++
		s.pos++
	}
	return n, true
}

func (s *monoStreamer) Err() error { return nil }

// drain reads s to the end, averaging both channels.
func drain(s beep.Streamer) ([]float64, error) {
	var out []float64
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			out = append(out, (buf[i][0]+buf[i][1])/2)
		}
		if !ok {
			break
		}
	}
	return out, s.Err()
}
