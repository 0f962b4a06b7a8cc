package compose

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/haivivi/acecodes/pkg/mask"
	"github.com/haivivi/acecodes/pkg/seq"
)

// pointFn combines one component of A and B under weight m.
type pointFn func(a, b, m float64, p Params) float64

// binaryTable maps every element-wise binary operator to its formula.
// Concatenate is structural and handled separately.
var binaryTable = [numBinaryOps]pointFn{
	Blend: func(a, b, m float64, _ Params) float64 {
		return m*a + (1-m)*b
	},
	Lerp: func(a, b, m float64, p Params) float64 {
		return m*(p.Alpha*a+(1-p.Alpha)*b) + (1-m)*a
	},
	Inject: func(a, b, m float64, _ Params) float64 {
		return a + m*b
	},
	Average: func(a, b, m float64, _ Params) float64 {
		return m*(0.5*(a+b)) + (1-m)*a
	},
	DifferenceInjection: func(a, b, m float64, p Params) float64 {
		return a + m*(p.Weight*(b-a))
	},
	DominantRecessive: func(a, b, m float64, p Params) float64 {
		return a + m*(p.Eps*b)
	},
	Replace: func(a, b, m float64, _ Params) float64 {
		return m*b + (1-m)*a
	},
	Concatenate: nil,
	Add:         gated(func(a, b float64) float64 { return a + b }),
	Multiply:    gated(func(a, b float64) float64 { return a * b }),
	Maximum:     gated(math.Max),
	Minimum:     gated(math.Min),
}

// gated lifts a plain combinator into m*(a⊕b) + (1-m)*a.
func gated(op func(a, b float64) float64) pointFn {
	return func(a, b, m float64, _ Params) float64 {
		return m*op(a, b) + (1-m)*a
	}
}

// Binary applies op to a and b under m.
//
// For element-wise operators a and b must already have the same length and
// m must have one weight per step. For Concatenate the lengths are free and
// m must match b, which it scales before being appended to a.
//
// A missing b (nil or empty) returns a copy of a unchanged with a warning on
// the default logger.
func Binary(op BinaryOp, a, b seq.Sequence, m mask.Mask, p Params) (seq.Sequence, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOp, op)
	}
	if len(b) == 0 {
		slog.Warn("compose: secondary operand missing, returning primary unchanged", "op", op.String())
		return a.Clone(), nil
	}
	if len(a) > 0 && a.Dim() != b.Dim() {
		return nil, fmt.Errorf("%w: A has %d dims, B has %d", ErrShapeMismatch, a.Dim(), b.Dim())
	}
	if err := b.CheckDim(b.Dim()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}
	if err := a.CheckDim(b.Dim()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}

	if op == Concatenate {
		if len(m) != len(b) {
			return nil, fmt.Errorf("%w: mask has %d steps, B has %d", ErrShapeMismatch, len(m), len(b))
		}
		return seq.Concat(a, scaleSteps(b, m)), nil
	}

	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: A has %d steps, B has %d", ErrShapeMismatch, len(a), len(b))
	}
	if len(m) != len(a) {
		return nil, fmt.Errorf("%w: mask has %d steps, A has %d", ErrShapeMismatch, len(m), len(a))
	}
	fn := binaryTable[op]
	out := seq.New(len(a), a.Dim())
	for t := range a {
		w := m[t]
		for d := range a[t] {
			out[t][d] = fn(a[t][d], b[t][d], w, p)
		}
	}
	return out, nil
}

// scaleSteps returns s with every step multiplied by its mask weight.
func scaleSteps(s seq.Sequence, m mask.Mask) seq.Sequence {
	out := seq.New(len(s), s.Dim())
	for t, v := range s {
		for d, x := range v {
			out[t][d] = x * m[t]
		}
	}
	return out
}
