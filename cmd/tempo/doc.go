// Command tempo estimates the global tempo of audio files (WAV/FLAC/MP3).
//
// The audio is resampled to 11025 Hz, converted to a 40-band mel
// spectrogram and classified window by window with a convolutional network;
// the window predictions are averaged into one tempo per file.
//
// Usage:
//
//	tempo [-m model] [--interpolate] [--mirex|--jams] [-p] [-o out]... [-e ext] [-c] -i <audio_file>...
//
// Without -o or -e the estimates are written to standard output. With
// --mirex the output line is "T1<TAB>T2<TAB>S1". With -p the averaged class
// distribution is plotted to <audio_file>.tempo.png.
package main
