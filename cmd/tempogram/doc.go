// Command tempogram estimates local tempo over time and writes it as a
// tempogram image (PNG), CSV table or NumPy array.
//
// A prediction is made every --hop-length spectrogram frames (one frame is
// 512/11025 s, about 46 ms). Frames may be normalised to a maximum of one
// (max) or a sum of one (integral), and sharpened to their strongest class.
//
// Usage:
//
//	tempogram [-m model] [--norm-frame none|max|integral] [--hop-length n] [-s] [-p] [--csv] [--npy] [-c] <audio_file>...
//
// The outputs are named <audio_file>.png, <audio_file>.csv and
// <audio_file>.npy. Without a format flag a PNG is written.
package main
