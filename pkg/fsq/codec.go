package fsq

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/haivivi/acecodes/pkg/seq"
)

// ErrOutOfRange is reported for composite codes outside [0, Levels.Size()).
var ErrOutOfRange = errors.New("fsq: code out of range")

// CheckRange returns ErrOutOfRange for the first code outside the grid.
func CheckRange(codes []int, levels Levels) error {
	size := levels.Size()
	for i, c := range codes {
		if c < 0 || c >= size {
			return fmt.Errorf("%w: codes[%d] = %d, grid size %d", ErrOutOfRange, i, c, size)
		}
	}
	return nil
}

// clampCode limits c to the grid.
func clampCode(c, size int) int {
	if c < 0 {
		return 0
	}
	if c >= size {
		return size - 1
	}
	return c
}

// DecodeCode writes the grid point of composite code c into dst, which must
// have len(levels) elements. c must already be within the grid.
func DecodeCode(dst seq.Vector, c int, levels Levels) {
	rem := c
	for i, n := range levels {
		d := rem % n
		rem /= n
		if n > 1 {
			dst[i] = 2*float64(d)/float64(n-1) - 1
		} else {
			dst[i] = 0
		}
	}
}

// EncodeVector returns the composite code of the grid point nearest to v.
// Components are clamped to [-1, 1] first.
func EncodeVector(v seq.Vector, levels Levels) int {
	code, stride := 0, 1
	for i, n := range levels {
		if n > 1 {
			x := min(max(v[i], -1), 1)
			d := int(math.Round((x + 1) / 2 * float64(n-1)))
			d = min(max(d, 0), n-1)
			code += d * stride
		}
		stride *= n
	}
	return code
}

// ClampCodes returns a copy of codes with every code outside the grid moved
// to the nearest valid code, and how many codes were moved.
func ClampCodes(codes []int, levels Levels) ([]int, int) {
	size := levels.Size()
	out := make([]int, len(codes))
	clamped := 0
	for i, c := range codes {
		out[i] = clampCode(c, size)
		if out[i] != c {
			clamped++
		}
	}
	return out, clamped
}

// Decode maps composite codes to grid points. Codes outside the grid are
// clamped to the nearest valid code with a warning on the default logger;
// callers that must reject them should run CheckRange first, and callers
// with their own logger can run ClampCodes first.
func Decode(codes []int, levels Levels) (seq.Sequence, error) {
	if err := levels.Validate(); err != nil {
		return nil, err
	}
	size := levels.Size()
	out := seq.New(len(codes), levels.Dim())
	clamped := 0
	for t, c := range codes {
		if cc := clampCode(c, size); cc != c {
			if clamped == 0 {
				slog.Warn("fsq: clamping out-of-range code", "index", t, "code", c, "size", size)
			}
			clamped++
			c = cc
		}
		DecodeCode(out[t], c, levels)
	}
	if clamped > 1 {
		slog.Warn("fsq: clamped out-of-range codes", "count", clamped, "size", size)
	}
	return out, nil
}

// Encode maps vectors back to composite codes. Every vector must have one
// component per level; non-finite components yield seq.ErrNumeric.
func Encode(vecs seq.Sequence, levels Levels) ([]int, error) {
	if err := levels.Validate(); err != nil {
		return nil, err
	}
	if err := vecs.CheckDim(levels.Dim()); err != nil {
		return nil, fmt.Errorf("fsq: encode: %w", err)
	}
	if err := vecs.CheckFinite(); err != nil {
		return nil, fmt.Errorf("fsq: encode: %w", err)
	}
	codes := make([]int, len(vecs))
	for t, v := range vecs {
		codes[t] = EncodeVector(v, levels)
	}
	return codes, nil
}
