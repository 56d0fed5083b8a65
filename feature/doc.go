// Package feature extracts the mel spectrogram features the tempo and meter
// networks consume.
//
// The spectrogram follows the librosa conventions the networks were trained
// with: a centred Hann STFT, Slaney mel scale and area-normalised triangular
// filters. Spectrograms are indexed [band][frame] and cut into fixed-size
// windows for inference.
package feature
