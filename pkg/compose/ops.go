package compose

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// Sentinel errors.
var (
	// ErrShapeMismatch is returned when operands disagree on vector width or
	// when the mask does not match the operand length.
	ErrShapeMismatch = errors.New("compose: shape mismatch")

	// ErrUnknownOp is returned for operator names outside the closed set.
	ErrUnknownOp = errors.New("compose: unknown operator")

	// ErrInvalidParams is returned by Params.Validate.
	ErrInvalidParams = errors.New("compose: invalid parameters")
)

// BinaryOp identifies an operator over two sequences.
type BinaryOp uint8

const (
	Blend BinaryOp = iota
	Lerp
	Inject
	Average
	DifferenceInjection
	DominantRecessive
	Replace
	Concatenate
	Add
	Multiply
	Maximum
	Minimum

	numBinaryOps
)

var binaryNames = [numBinaryOps]string{
	Blend:               "blend",
	Lerp:                "lerp",
	Inject:              "inject",
	Average:             "average",
	DifferenceInjection: "difference_injection",
	DominantRecessive:   "dominant_recessive",
	Replace:             "replace",
	Concatenate:         "concatenate",
	Add:                 "add",
	Multiply:            "multiply",
	Maximum:             "maximum",
	Minimum:             "minimum",
}

// BinaryOps lists every binary operator in display order.
func BinaryOps() []BinaryOp {
	ops := make([]BinaryOp, numBinaryOps)
	for i := range ops {
		ops[i] = BinaryOp(i)
	}
	return ops
}

func (op BinaryOp) String() string {
	if op < numBinaryOps {
		return binaryNames[op]
	}
	return fmt.Sprintf("BinaryOp(%d)", op)
}

// Valid reports whether op is a known operator.
func (op BinaryOp) Valid() bool { return op < numBinaryOps }

// ParseBinaryOp converts an operator name. The empty string selects Blend.
func ParseBinaryOp(s string) (BinaryOp, error) {
	if s == "" {
		return Blend, nil
	}
	for op, name := range binaryNames {
		if name == s {
			return BinaryOp(op), nil
		}
	}
	return 0, fmt.Errorf("%w: binary %q", ErrUnknownOp, s)
}

// MarshalText implements encoding.TextMarshaler.
func (op BinaryOp) MarshalText() ([]byte, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOp, op)
	}
	return []byte(op.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (op *BinaryOp) UnmarshalText(b []byte) error {
	v, err := ParseBinaryOp(string(b))
	if err != nil {
		return err
	}
	*op = v
	return nil
}

// UnaryOp identifies an operator over a single sequence.
type UnaryOp uint8

const (
	Gate UnaryOp = iota
	ScaleMasked
	NoiseMasked
	FadeOut

	numUnaryOps
)

var unaryNames = [numUnaryOps]string{
	Gate:        "gate",
	ScaleMasked: "scale_masked",
	NoiseMasked: "noise_masked",
	FadeOut:     "fade_out",
}

// UnaryOps lists every unary operator in display order.
func UnaryOps() []UnaryOp {
	ops := make([]UnaryOp, numUnaryOps)
	for i := range ops {
		ops[i] = UnaryOp(i)
	}
	return ops
}

func (op UnaryOp) String() string {
	if op < numUnaryOps {
		return unaryNames[op]
	}
	return fmt.Sprintf("UnaryOp(%d)", op)
}

// Valid reports whether op is a known operator.
func (op UnaryOp) Valid() bool { return op < numUnaryOps }

// ParseUnaryOp converts an operator name. The empty string selects Gate.
func ParseUnaryOp(s string) (UnaryOp, error) {
	if s == "" {
		return Gate, nil
	}
	for op, name := range unaryNames {
		if name == s {
			return UnaryOp(op), nil
		}
	}
	return 0, fmt.Errorf("%w: unary %q", ErrUnknownOp, s)
}

// MarshalText implements encoding.TextMarshaler.
func (op UnaryOp) MarshalText() ([]byte, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOp, op)
	}
	return []byte(op.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (op *UnaryOp) UnmarshalText(b []byte) error {
	v, err := ParseUnaryOp(string(b))
	if err != nil {
		return err
	}
	*op = v
	return nil
}

// Params carries the scalar knobs of every operator. Each operator reads
// only the fields it needs.
type Params struct {
	Alpha    float64 `json:"alpha" yaml:"alpha"`       // lerp
	Weight   float64 `json:"weight" yaml:"weight"`     // difference_injection
	Eps      float64 `json:"eps" yaml:"eps"`           // dominant_recessive
	Strength float64 `json:"strength" yaml:"strength"` // scale_masked
	Sigma    float64 `json:"sigma" yaml:"sigma"`       // noise_masked
	Seed     uint64  `json:"seed" yaml:"seed"`         // noise_masked
}

// DefaultParams returns the defaults of the ACE-Step mixing tools.
func DefaultParams() Params {
	return Params{
		Alpha:    1.0,
		Weight:   1.0,
		Eps:      0.05,
		Strength: 1.0,
		Sigma:    0.01,
	}
}

// UnmarshalJSON decodes params, keeping DefaultParams values for omitted
// fields.
func (p *Params) UnmarshalJSON(b []byte) error {
	type plain Params
	v := plain(DefaultParams())
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = Params(v)
	return nil
}

// UnmarshalYAML decodes params the same way as UnmarshalJSON.
func (p *Params) UnmarshalYAML(node *yaml.Node) error {
	type plain Params
	v := plain(DefaultParams())
	if err := node.Decode(&v); err != nil {
		return err
	}
	*p = Params(v)
	return nil
}

// Validate checks every parameter against its accepted range.
func (p Params) Validate() error {
	check := func(name string, v, lo, hi float64) error {
		if math.IsNaN(v) || v < lo || v > hi {
			return fmt.Errorf("%w: %s = %v outside [%v, %v]", ErrInvalidParams, name, v, lo, hi)
		}
		return nil
	}
	return errors.Join(
		check("alpha", p.Alpha, 0, 1),
		check("weight", p.Weight, -2, 2),
		check("eps", p.Eps, 0, 1),
		check("strength", p.Strength, -10, 10),
		check("sigma", p.Sigma, 0, 1),
	)
}
