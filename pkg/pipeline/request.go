package pipeline

import (
	"errors"
	"fmt"

	"github.com/haivivi/acecodes/pkg/compose"
	"github.com/haivivi/acecodes/pkg/mask"
	"github.com/haivivi/acecodes/pkg/seq"
)

// ErrInvalidRequest is returned for requests that cannot run.
var ErrInvalidRequest = errors.New("pipeline: invalid request")

// MaskInput selects how the mask is produced. At most one field may be set;
// with none set every step gets weight 1.
type MaskInput struct {
	// Spec builds the mask from step indices.
	Spec *mask.Spec `json:"spec,omitempty" yaml:"spec,omitempty"`

	// Time builds the mask from audio time.
	Time *mask.TimeSpec `json:"time,omitempty" yaml:"time,omitempty"`

	// Rows is an external mask array shaped [T], [B][T] or [B][H][W].
	Rows any `json:"rows,omitempty" yaml:"rows,omitempty"`
}

func (m MaskInput) validate() error {
	n := 0
	if m.Spec != nil {
		n++
	}
	if m.Time != nil {
		n++
	}
	if m.Rows != nil {
		n++
	}
	if n > 1 {
		return fmt.Errorf("%w: mask has %d sources, want at most one", ErrInvalidRequest, n)
	}
	return nil
}

// MixRequest combines two code inputs with a binary operator.
type MixRequest struct {
	// A and B are raw code input in any shape codes.Parse accepts.
	A any `json:"a" yaml:"a"`
	B any `json:"b,omitempty" yaml:"b,omitempty"`

	Op        compose.BinaryOp `json:"op" yaml:"op"`
	Params    compose.Params   `json:"params" yaml:"params"`
	ScaleMode seq.ScaleMode    `json:"scale_mode,omitempty" yaml:"scale_mode,omitempty"`
	Mask      MaskInput        `json:"mask,omitempty" yaml:"mask,omitempty"`
}

// Validate checks the request before any code is parsed.
func (r MixRequest) Validate() error {
	if !r.Op.Valid() {
		return fmt.Errorf("%w: %v", compose.ErrUnknownOp, r.Op)
	}
	if err := r.Params.Validate(); err != nil {
		return err
	}
	if _, err := seq.ParseScaleMode(string(r.ScaleMode)); err != nil {
		return err
	}
	return r.Mask.validate()
}

// UnaryRequest transforms one code input with a unary operator.
type UnaryRequest struct {
	A any `json:"a" yaml:"a"`

	Op     compose.UnaryOp `json:"op" yaml:"op"`
	Params compose.Params  `json:"params" yaml:"params"`
	Mask   MaskInput       `json:"mask,omitempty" yaml:"mask,omitempty"`

	// LengthPercent resamples A to this share of its length before the
	// operator runs. Zero means 100.
	LengthPercent float64 `json:"length_percent,omitempty" yaml:"length_percent,omitempty"`
}

// Validate checks the request before any code is parsed.
func (r UnaryRequest) Validate() error {
	if !r.Op.Valid() {
		return fmt.Errorf("%w: %v", compose.ErrUnknownOp, r.Op)
	}
	if err := r.Params.Validate(); err != nil {
		return err
	}
	if r.LengthPercent < 0 || r.LengthPercent > 1000 {
		return fmt.Errorf("%w: length percent %v outside [0, 1000]", ErrInvalidRequest, r.LengthPercent)
	}
	return r.Mask.validate()
}

// targetLength truncates n*LengthPercent/100, tolerating the rounding error
// of percentages like 0.7 that have no exact binary form.
func (r UnaryRequest) targetLength(n int) int {
	if r.LengthPercent == 0 || r.LengthPercent == 100 {
		return n
	}
	return max(1, int(float64(n)*r.LengthPercent/100+1e-9))
}
