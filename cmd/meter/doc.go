// Command meter estimates the meter (the numerator of the time signature)
// of audio files (WAV/FLAC/MP3) with a convolutional neural network.
//
// Usage:
//
//	meter [-m model] [--jams] [-p] [-o out]... [-e ext] [-c] -i <audio_file>...
//
// Without -o or -e the estimates are written to standard output. With -p the
// averaged class distribution is plotted to <audio_file>.meter.png.
package main
