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

const plotExt = ".meter.png"

func main() {
	os.Exit(app.Run(context.Background(), newCommand(os.Stdout, os.Stderr), os.Args))
}

func newCommand(stdout, stderr io.Writer) *cli.Command {
	flags := []cli.Flag{app.ModelFlag(classifier.DefaultMeterModel, "dc|dd|dc_group|...")}
	flags = append(flags, app.InputFlags()...)
	flags = append(flags, app.OutputFlags()...)
	flags = append(flags,
		&cli.BoolFlag{Name: "jams", Usage: "use JAMS format for output"},
		&cli.BoolFlag{Name: "plot", Aliases: []string{"p"}, Usage: "plot the class distribution to <input>" + plotExt},
	)
	flags = append(flags, app.CommonFlags()...)

	return &cli.Command{
		Name:      "meter",
		Usage:     "estimate the meter of audio files with a convolutional neural network",
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
	jams, plotting := cmd.Bool("jams"), cmd.Bool("plot")

	env, err := app.Setup(cmd)
	if err != nil {
		return err
	}
	if cmd.Bool(app.FlagContinue) {
		jobs = app.SkipExisting(jobs, env.Log)
	}

	model, err := env.Resolver.Load(ctx, cmd.String(app.FlagModel), nn.KindMeter)
	if err != nil {
		return err
	}
	c, err := classifier.NewMeterClassifier(model)
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
		meter, confidence := c.MeterOf(avg)
		l.Debug().Int("meter", meter).Float64("confidence", confidence).Msg("estimated")

		if jams {
			j := report.MeterJAMS(job.Input, duration, model.Header.Name, meter, confidence)
			err = env.Emit(job, func(w io.Writer) error { return report.WriteJAMS(w, j) })
		} else {
			err = env.Emit(job, func(w io.Writer) error { return report.WriteMeter(w, meter) })
		}
		if err != nil {
			return err
		}

		if plotting {
			labels := make([]float64, c.Classes())
			for i, m := range c.Meters() {
				labels[i] = float64(m)
			}
			return report.WriteFile(job.Input+plotExt, func(w io.Writer) error {
				return report.PlotDistribution(w, labels, avg, job.Input, "Meter")
			})
		}
		return nil
	})
}
