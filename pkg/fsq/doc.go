// Package fsq implements the mixed-radix codec between composite audio codes
// and points of the finite scalar quantization (FSQ) grid.
//
// A model's quantizer is described by its Levels, the per-dimension grid
// cardinalities. A composite code packs one digit per dimension using
// successive strides (the first dimension varies fastest). Each digit maps
// affinely onto [-1, 1]:
//
//	digit_i = (c / stride_i) mod L_i
//	value_i = 2*digit_i/(L_i-1) - 1      (0 when L_i == 1)
//
// Encoding rounds back to the nearest grid center with round-half-away-from-zero,
// so Encode(Decode(c)) == c for every code in [0, Levels.Size()).
//
// Example usage:
//
//	levels := fsq.DefaultLevels           // [8 8 8 5 5 5], 64000 codes
//	vecs, err := fsq.Decode([]int{0, 63999}, levels)
//	codes, err := fsq.Encode(vecs, levels)
package fsq
