package audio

import (
	"errors"
	"io"
	"os"

	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
	"github.com/mewkiz/flac"
)

func loadwav(name string) ([]float64, int, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	stream, format, err := wav.Decode(file)
	if err != nil {
		return nil, 0, err
	}
	out, err := drain(stream)
	if err != nil {
		return nil, 0, err
	}
	return out, int(format.SampleRate), nil
}

func loadmp3(name string) ([]float64, int, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, 0, err
	}

	// the decoder owns file from here on
	stream, format, err := mp3.Decode(file)
	if err != nil {
		file.Close()
		return nil, 0, err
	}
	defer stream.Close()

	out, err := drain(stream)
	if err != nil {
		return nil, 0, err
	}
	return out, int(format.SampleRate), nil
}

func loadflac(name string) ([]float64, int, error) {
	stream, err := flac.ParseFile(name)
	if err != nil {
		return nil, 0, err
	}
	defer stream.Close()

	bps := stream.Info.BitsPerSample
	if bps == 0 {
		return nil, 0, ErrFileNotLoaded
	}
	scale := float64(int64(1) << (bps - 1))

	var out []float64
	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		channels := len(frame.Subframes)
		if channels == 0 {
			continue
		}
		for i := 0; i < int(frame.BlockSize); i++ {
			var sum float64
			for _, sub := range frame.Subframes {
				sum += float64(sub.Samples[i])
			}
			out = append(out, sum/float64(channels)/scale)
		}
	}
	return out, int(stream.Info.SampleRate), nil
}
