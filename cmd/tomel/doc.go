// Command tomel converts audio files (WAV/FLAC/MP3) to images of the mel
// spectrogram the tempo and meter networks see.
//
// The spectrogram uses the model features: 11025 Hz, 1024-point FFT, hop of
// 512 samples, 40 mel bands between 20 and 5000 Hz. Each frame is one pixel
// column, low frequencies at the bottom.
//
// Usage:
//
//	tomel [--mels n] <audio_file>...
//
// The output PNG file will be named <audio_file>.png
package main
