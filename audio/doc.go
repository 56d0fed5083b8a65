// Package audio decodes audio files into mono sample vectors.
//
// WAV and MP3 files are decoded with beep, FLAC files with mewkiz/flac.
// Multichannel input is averaged down to a single channel and, when a
// target rate is given, resampled so that feature extraction always sees
// the rate the models were trained on.
package audio
