// Package mask builds per-step weights in [0, 1] that say how much of the
// foreground operand to take at each code step.
//
// Masks come from a declarative Spec (all, none, fraction, range, ramp,
// window) expressed in steps, from a TimeSpec expressed in audio time, or
// from an externally supplied numeric array that is resized with the same
// linear interpolation used for vector sequences.
//
// Reversal is always 1 - mask, applied after the mask is built. For the
// fraction and ramp modes this is the same as building the mask from the
// other end, so both readings of "reverse" agree.
package mask
