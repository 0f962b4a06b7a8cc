// Package pipeline runs a full code composition: parse raw code input,
// decode it onto the quantizer grid, align lengths, resolve the mask, apply
// an operator, clamp and re-encode.
//
// Usage:
//
//	p := pipeline.New(pipeline.WithLevels(fsq.DefaultLevels))
//	out, err := p.Mix(ctx, pipeline.MixRequest{
//		A:      "<|audio_code_1|><|audio_code_2|>",
//		B:      [][]int{{5, 6, 7}},
//		Op:     compose.Blend,
//		Params: compose.DefaultParams(),
//		Mask:   pipeline.MaskInput{Spec: &mask.Spec{Mode: mask.ModeFraction, Fraction: 0.5, End: -1}},
//	})
//
// Batch elements are independent and run concurrently; the output keeps
// input order. Operators never mutate their inputs.
//
// Diagnostics about clamped codes, length fallbacks and broadcasting go to
// the logger given with WithLogger. Parsing code input still logs skipped
// numerals on the default logger.
package pipeline
