// Package seq provides the continuous side of the audio-code algebra: fixed
// width vector sequences (one vector per code step) and the length alignment
// strategies used to reconcile two sequences before they are combined.
//
// A Sequence is laid out time-major, [T][k], where k is the number of
// quantization dimensions (6 for the default ACE-Step levels). Functions in
// this package never modify their inputs; every result is a fresh sequence.
//
// Example usage:
//
//	a := seq.Sequence{{-1, 0}, {1, 0}}
//	b := seq.ResampleTo(a, 4)         // linear, PyTorch align_corners=False
//	a, b, err := seq.Align(a, b, seq.ScaleBToA, false)
package seq
