// Package compose applies mask-guided operators to decoded audio code
// sequences.
//
// Binary operators combine a background sequence A with a foreground B
// under a mask m (one weight per step, broadcast over dimensions):
//
//	blend                  m*A + (1-m)*B
//	lerp                   m*(α*A + (1-α)*B) + (1-m)*A
//	inject                 A + m*B
//	average                m*(A+B)/2 + (1-m)*A
//	difference_injection   A + m*w*(B-A)
//	dominant_recessive     A + m*ε*B
//	replace                m*B + (1-m)*A
//	concatenate            [A, B*m] along time
//	add/multiply/max/min   m*(A⊕B) + (1-m)*A
//
// Unary operators transform A alone:
//
//	gate          A*m
//	scale_masked  A*(1 + m*(s-1))
//	noise_masked  A + m*σ*N(seed)
//	fade_out      (1-m)*A + m*A*linspace(1, 0, T)
//
// Operators are pure: inputs are never modified. Results are not clamped;
// the pipeline clamps to [-1, 1] right before re-encoding.
package compose
