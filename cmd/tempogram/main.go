package main

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/neurlang/tempocnn/classifier"
	"github.com/neurlang/tempocnn/internal/app"
	"github.com/neurlang/tempocnn/nn"
	"github.com/neurlang/tempocnn/report"
)

// DefaultHopLength is the prediction hop in spectrogram frames.
const DefaultHopLength = 32

type output struct {
	ext   string
	write func(io.Writer, *classifier.Tempogram, string) error
}

var outputs = map[string]output{
	"png": {ext: ".png", write: report.PlotTempogram},
	"csv": {ext: ".csv", write: func(w io.Writer, t *classifier.Tempogram, _ string) error { return report.WriteTempogramCSV(w, t) }},
	"npy": {ext: ".npy", write: func(w io.Writer, t *classifier.Tempogram, _ string) error { return report.WriteTempogramNPY(w, t) }},
}

func main() {
	os.Exit(app.Run(context.Background(), newCommand(os.Stdout, os.Stderr), os.Args))
}

func newCommand(stdout, stderr io.Writer) *cli.Command {
	flags := []cli.Flag{app.ModelFlag(classifier.DefaultTempoModel, "fcn|...")}
	flags = append(flags, app.InputFlags()...)
	flags = append(flags,
		&cli.StringFlag{Name: "norm-frame", Value: string(classifier.NormNone), Usage: "framewise normalization (none|max|integral)"},
		&cli.IntFlag{Name: "hop-length", Value: DefaultHopLength, Usage: "hop length between predictions in frames, 1 frame = 0.0464399s"},
		&cli.BoolFlag{Name: "sharpen", Aliases: []string{"s"}, Usage: "keep only the strongest tempo of every frame"},
		&cli.BoolFlag{Name: "png", Aliases: []string{"p"}, Usage: "write the tempogram image to <input>.png"},
		&cli.BoolFlag{Name: "csv", Usage: "write the tempogram data to <input>.csv"},
		&cli.BoolFlag{Name: "npy", Usage: "write the tempogram matrix to <input>.npy"},
		&cli.BoolFlag{Name: app.FlagContinue, Aliases: []string{"c"}, Usage: "skip inputs whose outputs already exist"},
	)
	flags = append(flags, app.CommonFlags()...)

	return &cli.Command{
		Name:      "tempogram",
		Usage:     "estimate local tempo and write it as a tempogram",
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
	norm, err := classifier.ParseNorm(cmd.String("norm-frame"))
	if err != nil {
		return app.Usagef("%v", err)
	}
	hop := int(cmd.Int("hop-length"))
	if hop <= 0 {
		return app.Usagef("--hop-length must be positive, got %d", hop)
	}
	var formats []string
	for _, f := range []string{"png", "csv", "npy"} {
		if cmd.Bool(f) {
			formats = append(formats, f)
		}
	}
	if len(formats) == 0 {
		formats = []string{"png"}
	}
	sharpen := cmd.Bool("sharpen")

	env, err := app.Setup(cmd)
	if err != nil {
		return err
	}

	var jobs []app.Job
	for _, in := range inputs {
		if cmd.Bool(app.FlagContinue) && allExist(in, formats) {
			env.Log.Info().Str("file", in).Msg("outputs exist, skipping")
			continue
		}
		jobs = append(jobs, app.Job{Input: in})
	}

	model, err := env.Resolver.Load(ctx, cmd.String(app.FlagModel), nn.KindTempo)
	if err != nil {
		return err
	}
	c, err := classifier.NewTempoClassifier(model)
	if err != nil {
		return err
	}
	hopSeconds := float64(hop) * env.Mel.FrameDuration()

	return env.Process(ctx, jobs, func(ctx context.Context, job app.Job, l zerolog.Logger) error {
		windows, _, err := env.Features(job.Input, c.Bands(), c.Frames(), hop, true)
		if err != nil {
			return err
		}
		tg, err := c.Tempogram(ctx, windows, hopSeconds, norm)
		if err != nil {
			return err
		}
		if sharpen {
			tg.Sharpen()
		}
		l.Debug().Int("frames", tg.Frames()).Msg("estimated")

		for _, f := range formats {
			out := outputs[f]
			name := job.Input + out.ext
			if err := report.WriteFile(name, func(w io.Writer) error { return out.write(w, tg, job.Input) }); err != nil {
				return err
			}
			l.Debug().Str("output", name).Msg("written")
		}
		return nil
	})
}

func allExist(input string, formats []string) bool {
	for _, f := range formats {
		if !report.Exists(input + outputs[f].ext) {
			return false
		}
	}
	return true
}
