// Package app holds the flag handling and per-file driver shared by the
// tempo, tempogram and meter commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/neurlang/tempocnn/audio"
	"github.com/neurlang/tempocnn/classifier"
	"github.com/neurlang/tempocnn/config"
	"github.com/neurlang/tempocnn/feature"
	"github.com/neurlang/tempocnn/internal/log"
	"github.com/neurlang/tempocnn/report"
)

// ErrUsage marks errors caused by bad command-line arguments.
var ErrUsage = errors.New("usage")

// Usagef returns an ErrUsage with a formatted explanation.
func Usagef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

// Flag names shared by the commands.
const (
	FlagModel     = "model"
	FlagInput     = "input"
	FlagOutput    = "output"
	FlagExtension = "extension"
	FlagContinue  = "continue"
	FlagConfig    = "config"
	FlagLogLevel  = "log-level"
)

// ModelFlag selects a model by name or path.
func ModelFlag(def, names string) cli.Flag {
	return &cli.StringFlag{
		Name:    FlagModel,
		Aliases: []string{"m"},
		Value:   def,
		Usage:   "model name [" + names + "] or path to a .tcnn file",
	}
}

// InputFlags returns -i, which may be repeated; positional arguments are
// inputs too.
func InputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: FlagInput, Aliases: []string{"i"}, Usage: "input audio file(s) to process"},
	}
}

// OutputFlags returns -o, -e and -c.
func OutputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: FlagOutput, Aliases: []string{"o"}, Usage: "output file(s), one per input"},
		&cli.StringFlag{Name: FlagExtension, Aliases: []string{"e"}, Usage: "append the given extension to the input file name for results"},
		&cli.BoolFlag{Name: FlagContinue, Aliases: []string{"c"}, Usage: "skip inputs whose output file already exists"},
	}
}

// CommonFlags returns --config and --log-level.
func CommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: FlagConfig, Usage: "config file (default $" + config.EnvConfig + " or the user config dir)"},
		&cli.StringFlag{Name: FlagLogLevel, Usage: "log level (debug, info, warn, error)"},
	}
}

// Inputs returns the -i values followed by the positional arguments.
func Inputs(cmd *cli.Command) []string {
	inputs := append([]string(nil), cmd.StringSlice(FlagInput)...)
	return append(inputs, cmd.Args().Slice()...)
}

// Env is what a command needs to process files.
type Env struct {
	Config   config.Config
	Log      zerolog.Logger
	Resolver *classifier.Resolver
	Mel      *feature.Mel
	Stdout   io.Writer
}

// Setup loads the configuration and builds the logger and model resolver.
func Setup(cmd *cli.Command) (*Env, error) {
	cfg, err := config.Load(cmd.String(FlagConfig))
	if err != nil {
		return nil, err
	}
	if lvl := cmd.String(FlagLogLevel); lvl != "" {
		cfg.LogLevel = lvl
	}
	l := log.New(log.Config{Level: cfg.LogLevel, Output: cmd.ErrWriter, Command: cmd.Name})
	return &Env{
		Config: cfg,
		Log:    l,
		Resolver: &classifier.Resolver{
			Dir: cfg.ModelDir,
			URL: cfg.ModelURL,
			Log: l,
		},
		Mel:    feature.NewMel(),
		Stdout: cmd.Writer,
	}, nil
}

// Features loads name and cuts its mel spectrogram into windows of the
// given geometry. It also returns the duration of the audio.
func (e *Env) Features(name string, bands, frames, hop int, zeroPad bool) ([]feature.Window, time.Duration, error) {
	mel := *e.Mel
	mel.NumMels = bands
	sig, err := audio.Load(name, mel.SampleRate)
	if err != nil {
		return nil, 0, err
	}
	spec, err := mel.Spectrogram(sig.Samples)
	if err != nil {
		return nil, 0, err
	}
	windows, err := feature.Windows(spec, frames, hop, zeroPad)
	if err != nil {
		return nil, 0, err
	}
	return windows, sig.Duration(), nil
}

// Emit writes a result to the job's output file, or to stdout when the job
// has none.
func (e *Env) Emit(job Job, write func(io.Writer) error) error {
	if job.Output == "" {
		return write(e.Stdout)
	}
	return report.WriteFile(job.Output, write)
}

// Process runs fn for every job. A failing job is logged and does not stop
// the others; Process then reports how many failed.
func (e *Env) Process(ctx context.Context, jobs []Job, fn func(context.Context, Job, zerolog.Logger) error) error {
	failed := 0
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		l := log.WithFile(e.Log, job.Input)
		l.Info().Msg("analyzing")
		if err := fn(ctx, job, l); err != nil {
			l.Error().Err(err).Msg("failed")
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(jobs))
	}
	return nil
}

// Run executes cmd and returns the process exit status. Usage errors are
// followed by the command's usage.
func Run(ctx context.Context, cmd *cli.Command, args []string) int {
	err := cmd.Run(ctx, args)
	if err == nil {
		return 0
	}
	stderr := cmd.ErrWriter
	if stderr == nil {
		stderr = os.Stderr
	}
	fmt.Fprintf(stderr, "%s: %v\n", cmd.Name, err)
	if errors.Is(err, ErrUsage) {
		PrintUsage(stderr, cmd)
	}
	return 1
}

// PrintUsage writes a short synopsis and the flag list.
func PrintUsage(w io.Writer, cmd *cli.Command) {
	fmt.Fprintf(w, "\nUsage: %s [options] %s\n", cmd.Name, cmd.ArgsUsage)
	if cmd.Usage != "" {
		fmt.Fprintf(w, "\n%s\n", cmd.Usage)
	}
	fmt.Fprintln(w, "\nOptions:")
	for _, f := range cmd.Flags {
		fmt.Fprintf(w, "  %s\n", f)
	}
}
