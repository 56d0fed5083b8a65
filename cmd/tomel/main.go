package main

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/neurlang/tempocnn/audio"
	"github.com/neurlang/tempocnn/internal/app"
	"github.com/neurlang/tempocnn/report"
)

func main() {
	os.Exit(app.Run(context.Background(), newCommand(os.Stdout, os.Stderr), os.Args))
}

func newCommand(stdout, stderr io.Writer) *cli.Command {
	flags := append(app.InputFlags(),
		&cli.IntFlag{Name: "mels", Value: 40, Usage: "number of mel bands"},
	)
	flags = append(flags, app.CommonFlags()...)
	return &cli.Command{
		Name:      "tomel",
		Usage:     "write the model's mel spectrogram of audio files as PNG",
		ArgsUsage: "<audio_file...>",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     flags,
		Action:    run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	inputs := app.Inputs(cmd)
	if len(inputs) == 0 {
		return app.Usagef("no input files given")
	}
	env, err := app.Setup(cmd)
	if err != nil {
		return err
	}
	env.Mel.NumMels = int(cmd.Int("mels"))

	jobs := make([]app.Job, len(inputs))
	for i, in := range inputs {
		jobs[i] = app.Job{Input: in, Output: in + ".png"}
	}
	return env.Process(ctx, jobs, func(_ context.Context, job app.Job, l zerolog.Logger) error {
		sig, err := audio.Load(job.Input, env.Mel.SampleRate)
		if err != nil {
			return err
		}
		spec, err := env.Mel.Spectrogram(sig.Samples)
		if err != nil {
			return err
		}
		l.Debug().Int("frames", len(spec[0])).Msg("spectrogram")
		return env.Emit(job, func(w io.Writer) error {
			return report.WriteSpectrogramPNG(w, spec, true)
		})
	})
}
