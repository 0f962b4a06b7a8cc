package mask

import (
	"encoding/json"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"

	"github.com/haivivi/acecodes/pkg/seq"
)

// ErrInvalidSpec is returned for unknown modes or out-of-range parameters.
var ErrInvalidSpec = errors.New("mask: invalid spec")

// Mask is one weight per step, each in [0, 1].
type Mask []float64

// Mode selects how a mask is generated.
type Mode string

const (
	ModeAll      Mode = "all"
	ModeNone     Mode = "none"
	ModeFraction Mode = "fraction"
	ModeRange    Mode = "range"
	ModeRamp     Mode = "ramp"
	ModeWindow   Mode = "window"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeAll, ModeNone, ModeFraction, ModeRange, ModeRamp, ModeWindow}

// ParseMode converts a mode name. The empty string selects ModeAll.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeAll, nil
	}
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidSpec, s)
}

// Spec describes a mask in steps.
type Spec struct {
	Mode Mode `json:"mode" yaml:"mode"`

	// Start and End bound the range and window modes, [Start, End).
	// End < 0 means the end of the sequence.
	Start int `json:"start,omitempty" yaml:"start,omitempty"`
	End   int `json:"end" yaml:"end"`

	// Fraction is the leading share of steps set to 1 in fraction mode.
	Fraction float64 `json:"fraction,omitempty" yaml:"fraction,omitempty"`

	// RampWidth is the fade length in steps on each side of a window.
	RampWidth int `json:"ramp_width,omitempty" yaml:"ramp_width,omitempty"`

	Reverse bool `json:"reverse,omitempty" yaml:"reverse,omitempty"`
}

// DefaultSpec returns the spec used when a request leaves fields out: the
// whole sequence, half of it for fraction mode, 10-step window ramps.
func DefaultSpec() Spec {
	return Spec{Mode: ModeAll, End: -1, Fraction: 0.5, RampWidth: 10}
}

// UnmarshalJSON decodes a spec. Fields the document omits keep their
// DefaultSpec values, so a missing end means the end of the sequence.
func (s *Spec) UnmarshalJSON(b []byte) error {
	type plain Spec
	p := plain(DefaultSpec())
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*s = Spec(p)
	return nil
}

// UnmarshalYAML decodes a spec the same way as UnmarshalJSON.
func (s *Spec) UnmarshalYAML(node *yaml.Node) error {
	type plain Spec
	p := plain(DefaultSpec())
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = Spec(p)
	return nil
}

// Validate checks the mode and parameter ranges.
func (s Spec) Validate() error {
	if _, err := ParseMode(string(s.Mode)); err != nil {
		return err
	}
	if s.Fraction < 0 || s.Fraction > 1 {
		return fmt.Errorf("%w: fraction %v outside [0, 1]", ErrInvalidSpec, s.Fraction)
	}
	if s.RampWidth < 0 {
		return fmt.Errorf("%w: negative ramp width %d", ErrInvalidSpec, s.RampWidth)
	}
	return nil
}

// Build generates an n-step mask from spec.
func Build(spec Spec, n int) (Mask, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return Mask{}, nil
	}
	m := make(Mask, n)
	switch spec.Mode {
	case ModeAll, "":
		fill(m, 1)
	case ModeNone:
	case ModeFraction:
		cutoff := int(float64(n) * spec.Fraction)
		fill(m[:cutoff], 1)
	case ModeRange:
		s, e := spec.bounds(n)
		if s < e {
			fill(m[s:e], 1)
		}
	case ModeRamp:
		copy(m, Linspace(0, 1, n))
	case ModeWindow:
		s, e := spec.bounds(n)
		if s < e {
			fill(m[s:e], 1)
		}
		if r := spec.RampWidth; r > 0 {
			if l := max(0, s-r); s-l > 0 {
				copy(m[l:s], Linspace(0, 1, s-l))
			}
			if re := min(n, e+r); re-e > 0 {
				copy(m[e:re], Linspace(1, 0, re-e))
			}
		}
	}
	if spec.Reverse {
		m = m.Invert()
	}
	return m.Clamp(), nil
}

// bounds resolves Start/End against n, clamped to [0, n].
func (s Spec) bounds(n int) (int, int) {
	start := min(max(s.Start, 0), n)
	end := n
	if s.End >= 0 {
		end = min(s.End, n)
	}
	return start, end
}

// Ones returns an n-step mask of ones.
func Ones(n int) Mask {
	m := make(Mask, max(n, 0))
	fill(m, 1)
	return m
}

// Invert returns 1 - m.
func (m Mask) Invert() Mask {
	out := make(Mask, len(m))
	for i, v := range m {
		out[i] = 1 - v
	}
	return out
}

// Clamp returns a copy of m with every weight limited to [0, 1].
func (m Mask) Clamp() Mask {
	out := make(Mask, len(m))
	for i, v := range m {
		out[i] = min(max(v, 0), 1)
	}
	return out
}

// Resize resamples m to n steps with seq.Interpolate and clamps the result
// to [0, 1].
func Resize(m Mask, n int) Mask {
	return Mask(seq.Interpolate(m, n)).Clamp()
}

// Mean returns the average weight, 0 for an empty mask.
func (m Mask) Mean() float64 {
	if len(m) == 0 {
		return 0
	}
	return floats.Sum(m) / float64(len(m))
}

func fill(m []float64, v float64) {
	for i := range m {
		m[i] = v
	}
}

// Linspace returns n evenly spaced values from a to b inclusive, matching
// torch.linspace including the single-sample case, which yields [a].
func Linspace(a, b float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{a}
	}
	return floats.Span(make([]float64, n), a, b)
}
