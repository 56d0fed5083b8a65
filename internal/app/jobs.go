package app

import (
	"github.com/rs/zerolog"

	"github.com/neurlang/tempocnn/report"
)

// Job pairs an input file with its output. An empty Output means stdout.
type Job struct {
	Input  string
	Output string
}

// Pair matches inputs to outputs. Outputs are either given one per input,
// derived by appending ext, or omitted.
func Pair(inputs, outputs []string, ext string) ([]Job, error) {
	if len(inputs) == 0 {
		return nil, Usagef("no input files given")
	}
	if len(outputs) > 0 && ext != "" {
		return nil, Usagef("--output and --extension are mutually exclusive")
	}
	if len(outputs) > 0 && len(outputs) != len(inputs) {
		return nil, Usagef("number of input files (%d) does not match number of output files (%d)", len(inputs), len(outputs))
	}
	jobs := make([]Job, len(inputs))
	for i, in := range inputs {
		jobs[i].Input = in
		switch {
		case len(outputs) > 0:
			jobs[i].Output = outputs[i]
		case ext != "":
			jobs[i].Output = in + ext
		}
	}
	return jobs, nil
}

// SkipExisting drops jobs whose output file is already there.
func SkipExisting(jobs []Job, l zerolog.Logger) []Job {
	out := jobs[:0:0]
	for _, job := range jobs {
		if job.Output != "" && report.Exists(job.Output) {
			l.Info().Str("file", job.Input).Str("output", job.Output).Msg("output exists, skipping")
			continue
		}
		out = append(out, job)
	}
	return out
}
