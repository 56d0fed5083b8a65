package report

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/neurlang/tempocnn/classifier"
)

const jamsVersion = "0.3.4"

// JAMS is the subset of the JSON Annotated Music Specification written by
// the commands.
type JAMS struct {
	Annotations  []Annotation   `json:"annotations"`
	FileMetadata FileMetadata   `json:"file_metadata"`
	Sandbox      map[string]any `json:"sandbox"`
}

type Annotation struct {
	Namespace string             `json:"namespace"`
	Metadata  AnnotationMetadata `json:"annotation_metadata"`
	Data      []Observation      `json:"data"`
	Sandbox   map[string]any     `json:"sandbox"`
	Time      float64            `json:"time"`
	Duration  float64            `json:"duration"`
}

type AnnotationMetadata struct {
	Tools    string `json:"annotation_tools"`
	Rules    string `json:"annotation_rules"`
	Source   string `json:"data_source"`
	Version  string `json:"version"`
	Validate string `json:"validation"`
}

type Observation struct {
	Time       float64 `json:"time"`
	Duration   float64 `json:"duration"`
	Value      any     `json:"value"`
	Confidence float64 `json:"confidence"`
}

type FileMetadata struct {
	Title       string         `json:"title"`
	Duration    float64        `json:"duration"`
	JAMSVersion string         `json:"jams_version"`
	Identifiers map[string]any `json:"identifiers"`
}

func newJAMS(file string, duration time.Duration, model string, a Annotation) *JAMS {
	secs := duration.Seconds()
	a.Metadata = AnnotationMetadata{
		Tools:   "tempocnn",
		Source:  "tempocnn",
		Version: model,
	}
	a.Duration = secs
	a.Sandbox = map[string]any{}
	for i := range a.Data {
		a.Data[i].Duration = secs
	}
	return &JAMS{
		Annotations: []Annotation{a},
		FileMetadata: FileMetadata{
			Title:       filepath.Base(file),
			Duration:    secs,
			JAMSVersion: jamsVersion,
			Identifiers: map[string]any{},
		},
		Sandbox: map[string]any{},
	}
}

// TempoJAMS describes a MIREX-style tempo estimate as a tempo annotation
// with two observations.
func TempoJAMS(file string, duration time.Duration, model string, m classifier.Mirex) *JAMS {
	return newJAMS(file, duration, model, Annotation{
		Namespace: "tempo",
		Data: []Observation{
			{Value: m.T1, Confidence: m.S1},
			{Value: m.T2, Confidence: 1 - m.S1},
		},
	})
}

// MeterJAMS describes a meter estimate as an open tag annotation.
func MeterJAMS(file string, duration time.Duration, model string, meter int, confidence float64) *JAMS {
	return newJAMS(file, duration, model, Annotation{
		Namespace: "tag_open",
		Data:      []Observation{{Value: meterTag(meter), Confidence: confidence}},
	})
}

func meterTag(meter int) string {
	return "meter " + strconv.Itoa(meter)
}

// WriteJAMS writes j as indented JSON.
func WriteJAMS(w io.Writer, j *JAMS) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(j)
}
