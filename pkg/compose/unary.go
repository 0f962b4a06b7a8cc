package compose

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/haivivi/acecodes/pkg/mask"
	"github.com/haivivi/acecodes/pkg/seq"
)

// unaryFn transforms a whole sequence under mask m.
type unaryFn func(a seq.Sequence, m mask.Mask, p Params) seq.Sequence

var unaryTable = [numUnaryOps]unaryFn{
	Gate:        gate,
	ScaleMasked: scaleMasked,
	NoiseMasked: noiseMasked,
	FadeOut:     fadeOut,
}

// Unary applies op to a under m, which must have one weight per step.
func Unary(op UnaryOp, a seq.Sequence, m mask.Mask, p Params) (seq.Sequence, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOp, op)
	}
	if len(m) != len(a) {
		return nil, fmt.Errorf("%w: mask has %d steps, A has %d", ErrShapeMismatch, len(m), len(a))
	}
	if err := a.CheckDim(a.Dim()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}
	return unaryTable[op](a, m, p), nil
}

func gate(a seq.Sequence, m mask.Mask, _ Params) seq.Sequence {
	return scaleSteps(a, m)
}

func scaleMasked(a seq.Sequence, m mask.Mask, p Params) seq.Sequence {
	out := seq.New(len(a), a.Dim())
	for t, v := range a {
		k := 1 + m[t]*(p.Strength-1)
		for d, x := range v {
			out[t][d] = x * k
		}
	}
	return out
}

// Noise returns a t×k sequence of standard normal samples. The same seed
// always yields the same samples, drawn step by step, dimension by dimension.
func Noise(t, k int, seed uint64) seq.Sequence {
	n := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewPCG(seed, seed)}
	out := seq.New(t, k)
	for i := range out {
		for d := range out[i] {
			out[i][d] = n.Rand()
		}
	}
	return out
}

func noiseMasked(a seq.Sequence, m mask.Mask, p Params) seq.Sequence {
	noise := Noise(len(a), a.Dim(), p.Seed)
	out := seq.New(len(a), a.Dim())
	for t, v := range a {
		for d, x := range v {
			out[t][d] = x + m[t]*(noise[t][d]*p.Sigma)
		}
	}
	return out
}

// fadeOut ramps A down to silence over its full length, independent of the
// shape of m, which only selects where the faded version is used.
func fadeOut(a seq.Sequence, m mask.Mask, _ Params) seq.Sequence {
	fade := mask.Linspace(1, 0, len(a))
	out := seq.New(len(a), a.Dim())
	for t, v := range a {
		for d, x := range v {
			out[t][d] = x*(1-m[t]) + (x*fade[t])*m[t]
		}
	}
	return out
}
