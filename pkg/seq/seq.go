package seq

import (
	"errors"
	"fmt"
	"math"
)

// ErrNumeric is returned when a sequence holds NaN or infinite components.
// Such values must never be re-encoded as valid codes.
var ErrNumeric = errors.New("seq: non-finite value")

// Vector is one time step: a point in the k-dimensional code space.
type Vector []float64

// Sequence is an ordered list of vectors, all of the same width.
type Sequence []Vector

// New returns a zero-valued sequence of t steps and k dimensions.
func New(t, k int) Sequence {
	if t <= 0 {
		return Sequence{}
	}
	backing := make([]float64, t*k)
	s := make(Sequence, t)
	for i := range s {
		s[i] = backing[i*k : (i+1)*k : (i+1)*k]
	}
	return s
}

// Len returns the number of steps.
func (s Sequence) Len() int { return len(s) }

// Dim returns the vector width, or 0 for an empty sequence.
func (s Sequence) Dim() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// Clone returns a deep copy of s.
func (s Sequence) Clone() Sequence {
	out := New(len(s), s.Dim())
	for i, v := range s {
		copy(out[i], v)
	}
	return out
}

// Column returns dimension d of every step as a flat series.
func (s Sequence) Column(d int) []float64 {
	col := make([]float64, len(s))
	for i, v := range s {
		col[i] = v[d]
	}
	return col
}

// Clamp returns a copy of s with every component limited to [lo, hi].
// NaN components are left untouched; use CheckFinite first.
func (s Sequence) Clamp(lo, hi float64) Sequence {
	out := s.Clone()
	for _, v := range out {
		for j, x := range v {
			if x < lo {
				v[j] = lo
			} else if x > hi {
				v[j] = hi
			}
		}
	}
	return out
}

// CheckFinite reports the first NaN or infinite component as ErrNumeric.
func (s Sequence) CheckFinite() error {
	for i, v := range s {
		for j, x := range v {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return fmt.Errorf("%w: step %d dim %d = %v", ErrNumeric, i, j, x)
			}
		}
	}
	return nil
}

// CheckDim verifies that every vector in s has width k.
func (s Sequence) CheckDim(k int) error {
	for i, v := range s {
		if len(v) != k {
			return fmt.Errorf("seq: step %d has %d dims, want %d", i, len(v), k)
		}
	}
	return nil
}

// Concat joins a and b along time.
func Concat(a, b Sequence) Sequence {
	k := a.Dim()
	if k == 0 {
		k = b.Dim()
	}
	out := New(len(a)+len(b), k)
	for i, v := range a {
		copy(out[i], v)
	}
	for i, v := range b {
		copy(out[len(a)+i], v)
	}
	return out
}
