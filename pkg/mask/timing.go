package mask

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/haivivi/acecodes/pkg/jsontime"
)

// Timing relates code steps to audio time.
type Timing struct {
	// StepDuration is the audio time covered by one step.
	StepDuration time.Duration
}

// CodeTiming is the ACE-Step 1.5 audio code rate: 25 Hz semantic frames
// pooled five at a time, 5 codes per second.
var CodeTiming = Timing{StepDuration: 200 * time.Millisecond}

// LatentTiming is the ACE-Step latent rate: 44.1 kHz audio, 2048-sample hop,
// downscaled by 2 (about 10.77 steps per second).
var LatentTiming = Timing{StepDuration: time.Duration(float64(time.Second) * 2048 * 2 / 44100)}

// Rate returns steps per second.
func (t Timing) Rate() float64 {
	if t.StepDuration <= 0 {
		return 0
	}
	return float64(time.Second) / float64(t.StepDuration)
}

// Steps returns the number of steps covering total, rounded to an even count
// (half to even) the way the latent rate is derived from an audio clip.
func (t Timing) Steps(total time.Duration) int {
	if t.StepDuration <= 0 || total <= 0 {
		return 0
	}
	half := total.Seconds() * t.Rate() / 2
	return int(math.RoundToEven(half)) * 2
}

// Duration returns the audio time covered by n steps.
func (t Timing) Duration(n int) time.Duration {
	return time.Duration(n) * t.StepDuration
}

// Index converts a position to a step index in [0, n]. Negative positions
// mean the end of the sequence.
func (t Timing) Index(d time.Duration, n int) int {
	if d < 0 || t.StepDuration <= 0 {
		return n
	}
	return min(n, int(float64(d)/float64(t.StepDuration)))
}

// TimeSpec describes a mask in audio time. It is converted to a Spec once
// the sequence length is known. A nil or negative End means the end of the
// sequence.
type TimeSpec struct {
	Mode     Mode               `json:"mode" yaml:"mode"`
	Start    jsontime.Duration  `json:"start,omitempty" yaml:"start,omitempty"`
	End      *jsontime.Duration `json:"end,omitempty" yaml:"end,omitempty"`
	Fraction float64            `json:"fraction,omitempty" yaml:"fraction,omitempty"`
	Ramp     jsontime.Duration  `json:"ramp,omitempty" yaml:"ramp,omitempty"`
	Reverse  bool               `json:"reverse,omitempty" yaml:"reverse,omitempty"`
}

// DefaultTimeSpec mirrors DefaultSpec at the default code rate: the whole
// sequence, half of it for fraction mode, 2 s window ramps.
func DefaultTimeSpec() TimeSpec {
	return TimeSpec{Mode: ModeAll, Fraction: 0.5, Ramp: jsontime.FromSeconds(2)}
}

// UnmarshalJSON decodes a time spec, keeping DefaultTimeSpec values for
// omitted fields.
func (ts *TimeSpec) UnmarshalJSON(b []byte) error {
	type plain TimeSpec
	p := plain(DefaultTimeSpec())
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*ts = TimeSpec(p)
	return nil
}

// UnmarshalYAML decodes a time spec the same way as UnmarshalJSON.
func (ts *TimeSpec) UnmarshalYAML(node *yaml.Node) error {
	type plain TimeSpec
	p := plain(DefaultTimeSpec())
	if err := node.Decode(&p); err != nil {
		return err
	}
	*ts = TimeSpec(p)
	return nil
}

// Steps converts ts into a step-based Spec for an n-step sequence.
func (ts TimeSpec) Steps(t Timing, n int) (Spec, error) {
	if t.StepDuration <= 0 {
		return Spec{}, fmt.Errorf("%w: step duration must be positive", ErrInvalidSpec)
	}
	if ts.Ramp < 0 {
		return Spec{}, fmt.Errorf("%w: negative ramp %v", ErrInvalidSpec, time.Duration(ts.Ramp))
	}
	end := -1
	if ts.End != nil {
		end = t.Index(ts.End.Duration(), n)
	}
	spec := Spec{
		Mode:     ts.Mode,
		Start:    t.Index(time.Duration(ts.Start), n),
		End:      end,
		Fraction: ts.Fraction,
		Reverse:  ts.Reverse,
	}
	if ts.Ramp > 0 {
		spec.RampWidth = int(float64(ts.Ramp) / float64(t.StepDuration))
	}
	return spec, spec.Validate()
}

// BuildTime generates an n-step mask from a time-based spec.
func BuildTime(ts TimeSpec, t Timing, n int) (Mask, error) {
	spec, err := ts.Steps(t, n)
	if err != nil {
		return nil, err
	}
	return Build(spec, n)
}
