// Package classifier estimates tempo, local tempo and meter from mel
// spectrogram windows using pretrained convolutional networks.
//
// A TempoClassifier predicts a distribution over 256 tempo classes
// (30-285 BPM for the published models) per window; global estimates average
// the window predictions. A MeterClassifier does the same over meter classes
// starting at 2. Models are located by a Resolver, which looks up files,
// a local model directory and, optionally, a download URL.
package classifier
