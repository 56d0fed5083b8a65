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

const plotExt = ".tempo.png"

func main() {
	os.Exit(app.Run(context.Background(), newCommand(os.Stdout, os.Stderr), os.Args))
}

func newCommand(stdout, stderr io.Writer) *cli.Command {
	flags := []cli.Flag{app.ModelFlag(classifier.DefaultTempoModel, "fcn|cnn|ismir2018|fma2018|...")}
	flags = append(flags, app.InputFlags()...)
	flags = append(flags, app.OutputFlags()...)
	flags = append(flags,
		&cli.BoolFlag{Name: "interpolate", Usage: "interpolate between tempo classes"},
		&cli.BoolFlag{Name: "mirex", Usage: "use MIREX format for output (T1, T2, S1)"},
		&cli.BoolFlag{Name: "jams", Usage: "use JAMS format for output"},
		&cli.BoolFlag{Name: "plot", Aliases: []string{"p"}, Usage: "plot the class distribution to <input>" + plotExt},
	)
	flags = append(flags, app.CommonFlags()...)

	return &cli.Command{
		Name:      "tempo",
		Usage:     "estimate the global tempo of audio files with a convolutional neural network",
		ArgsUsage: "[audio_file...]",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     flags,
		Action:    run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	jobs, err := app.Pair(app.Inputs(cmd), cmd.StringSlice(app.FlagOutput), cmd.String(app.FlagExtension))
	if err != nil {
		return err
	}
	mirex, jams := cmd.Bool("mirex"), cmd.Bool("jams")
	if mirex && jams {
		return app.Usagef("--mirex and --jams are mutually exclusive")
	}
	interpolate, plotting := cmd.Bool("interpolate"), cmd.Bool("plot")

	env, err := app.Setup(cmd)
	if err != nil {
		return err
	}
	if cmd.Bool(app.FlagContinue) {
		jobs = app.SkipExisting(jobs, env.Log)
	}

	model, err := env.Resolver.Load(ctx, cmd.String(app.FlagModel), nn.KindTempo)
	if err != nil {
		return err
	}
	c, err := classifier.NewTempoClassifier(model)
	if err != nil {
		return err
	}

	return env.Process(ctx, jobs, func(ctx context.Context, job app.Job, l zerolog.Logger) error {
		windows, duration, err := env.Features(job.Input, c.Bands(), c.Frames(), c.Frames()/2, false)
		if err != nil {
			return err
		}
		avg, err := c.Average(ctx, windows)
		if err != nil {
			return err
		}

		switch {
		case mirex:
			m := c.MirexOf(avg, interpolate)
			l.Debug().Float64("t1", m.T1).Float64("t2", m.T2).Float64("s1", m.S1).Msg("estimated")
			err = env.Emit(job, func(w io.Writer) error { return report.WriteMirex(w, m) })
		case jams:
			m := c.MirexOf(avg, interpolate)
			j := report.TempoJAMS(job.Input, duration, model.Header.Name, m)
			err = env.Emit(job, func(w io.Writer) error { return report.WriteJAMS(w, j) })
		default:
			bpm := c.TempoOf(avg, interpolate)
			l.Debug().Float64("bpm", bpm).Msg("estimated")
			err = env.Emit(job, func(w io.Writer) error { return report.WriteTempo(w, bpm, interpolate) })
		}
		if err != nil {
			return err
		}

		if plotting {
			return report.WriteFile(job.Input+plotExt, func(w io.Writer) error {
				return report.PlotDistribution(w, c.BPMs(), avg, job.Input, "Tempo (BPM)")
			})
		}
		return nil
	})
}
