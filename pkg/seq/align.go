package seq

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
)

// ErrInvalidScaleMode is returned by ParseScaleMode for unknown names.
var ErrInvalidScaleMode = errors.New("seq: invalid scale mode")

// ScaleMode selects how two sequences of unequal length are reconciled
// before an element-wise operator runs.
type ScaleMode string

const (
	// ScaleBToA resamples B to the length of A.
	ScaleBToA ScaleMode = "scale_B_to_A"
	// ScaleAToB resamples A to the length of B.
	ScaleAToB ScaleMode = "scale_A_to_B"
	// PadToMatch appends zero vectors to the shorter operand.
	PadToMatch ScaleMode = "pad_to_match"
	// LoopMatch tiles both operands to the longer length.
	LoopMatch ScaleMode = "loop_match"
	// ScaleNone leaves lengths alone. Only concatenation honors it; every
	// other operator falls back to ScaleBToA.
	ScaleNone ScaleMode = "none"
)

// ScaleModes lists every supported mode in display order.
var ScaleModes = []ScaleMode{ScaleBToA, ScaleAToB, PadToMatch, LoopMatch, ScaleNone}

// ParseScaleMode converts a mode name. The empty string selects ScaleBToA.
func ParseScaleMode(s string) (ScaleMode, error) {
	if s == "" {
		return ScaleBToA, nil
	}
	for _, m := range ScaleModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidScaleMode, s)
}

// Interpolate resizes a scalar series to n samples with linear
// interpolation. Sample positions follow PyTorch's
// F.interpolate(mode="linear", align_corners=False) so that resized
// sequences and masks match the producing model bit for bit in float64.
//
// An empty input yields n zeros; n <= 0 yields an empty slice.
func Interpolate(xs []float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	out := make([]float64, n)
	in := len(xs)
	if in == 0 {
		return out
	}
	if in == n {
		copy(out, xs)
		return out
	}
	scale := float64(in) / float64(n)
	for i := range out {
		src := (float64(i)+0.5)*scale - 0.5
		if src < 0 {
			src = 0
		}
		i0 := int(math.Floor(src))
		if i0 > in-1 {
			i0 = in - 1
		}
		i1 := i0
		if i0 < in-1 {
			i1 = i0 + 1
		}
		l1 := src - float64(i0)
		l0 := 1 - l1
		out[i] = l0*xs[i0] + l1*xs[i1]
	}
	return out
}

// ResampleTo linearly resamples s along time to n steps. It returns a copy
// of s when the length already matches.
func ResampleTo(s Sequence, n int) Sequence {
	if len(s) == n {
		return s.Clone()
	}
	k := s.Dim()
	out := New(n, k)
	for d := 0; d < k; d++ {
		col := Interpolate(s.Column(d), n)
		for i, x := range col {
			out[i][d] = x
		}
	}
	return out
}

// PadTo appends zero vectors until s reaches n steps. Sequences already at
// or past n are returned unchanged (as a copy).
func PadTo(s Sequence, n int) Sequence {
	if len(s) >= n {
		return s.Clone()
	}
	out := New(n, s.Dim())
	for i, v := range s {
		copy(out[i], v)
	}
	return out
}

// TileTo repeats s until it covers n steps and truncates to exactly n.
// Longer inputs are truncated. An empty input has nothing to repeat and
// yields an empty sequence.
func TileTo(s Sequence, n int) Sequence {
	if len(s) == 0 || n <= 0 {
		return Sequence{}
	}
	out := New(n, s.Dim())
	for i := range out {
		copy(out[i], s[i%len(s)])
	}
	return out
}

// Align reconciles the lengths of a and b according to mode. When concat is
// true ScaleNone keeps both lengths as they are; otherwise ScaleNone falls
// back to ScaleBToA with a warning on the default logger. Equal lengths are
// returned unchanged.
func Align(a, b Sequence, mode ScaleMode, concat bool) (Sequence, Sequence, error) {
	la, lb := len(a), len(b)
	if la == lb {
		return a, b, nil
	}
	switch mode {
	case ScaleBToA:
		return a, ResampleTo(b, la), nil
	case ScaleAToB:
		return ResampleTo(a, lb), b, nil
	case PadToMatch:
		n := max(la, lb)
		return PadTo(a, n), PadTo(b, n), nil
	case LoopMatch:
		n := max(la, lb)
		return TileTo(a, n), TileTo(b, n), nil
	case ScaleNone:
		if concat {
			return a, b, nil
		}
		slog.Warn("seq: scale mode none needs equal lengths, resampling B to A", "len_a", la, "len_b", lb)
		return a, ResampleTo(b, la), nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidScaleMode, mode)
	}
}
