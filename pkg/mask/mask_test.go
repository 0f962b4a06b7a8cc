package mask

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/haivivi/acecodes/pkg/jsontime"
)

func equalMask(a, b Mask) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			return false
		}
	}
	return true
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		n    int
		want Mask
	}{
		{"all", Spec{Mode: ModeAll}, 3, Mask{1, 1, 1}},
		{"none", Spec{Mode: ModeNone}, 3, Mask{0, 0, 0}},
		{"fraction", Spec{Mode: ModeFraction, Fraction: 0.5}, 5, Mask{1, 1, 0, 0, 0}},
		{"fraction reversed", Spec{Mode: ModeFraction, Fraction: 0.5, Reverse: true}, 5, Mask{0, 0, 1, 1, 1}},
		{"range", Spec{Mode: ModeRange, Start: 1, End: 3}, 5, Mask{0, 1, 1, 0, 0}},
		{"range to end", Spec{Mode: ModeRange, Start: 3, End: -1}, 5, Mask{0, 0, 0, 1, 1}},
		{"range clipped", Spec{Mode: ModeRange, Start: -4, End: 99}, 3, Mask{1, 1, 1}},
		{"range reversed", Spec{Mode: ModeRange, Start: 1, End: 3, Reverse: true}, 4, Mask{1, 0, 0, 1}},
		{"ramp", Spec{Mode: ModeRamp}, 5, Mask{0, 0.25, 0.5, 0.75, 1}},
		{"ramp reversed", Spec{Mode: ModeRamp, Reverse: true}, 5, Mask{1, 0.75, 0.5, 0.25, 0}},
		{"ramp single", Spec{Mode: ModeRamp}, 1, Mask{0}},
		{
			"window",
			Spec{Mode: ModeWindow, Start: 3, End: 5, RampWidth: 3},
			10,
			Mask{0, 0.5, 1, 1, 1, 1, 0.5, 0, 0, 0},
		},
		{
			// Left ramp clipped to [0,2) keeps its full 0..1 span.
			"window clipped left",
			Spec{Mode: ModeWindow, Start: 2, End: 4, RampWidth: 4},
			6,
			Mask{0, 1, 1, 1, 1, 0},
		},
		{
			"window reversed",
			Spec{Mode: ModeWindow, Start: 1, End: 2, RampWidth: 0, Reverse: true},
			3,
			Mask{1, 0, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Build(tt.spec, tt.n)
			if err != nil {
				t.Fatal(err)
			}
			if !equalMask(got, tt.want) {
				t.Errorf("Build = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReverseIsComplement(t *testing.T) {
	for _, mode := range Modes {
		spec := Spec{Mode: mode, Start: 2, End: 7, Fraction: 0.3, RampWidth: 2}
		fwd, err := Build(spec, 12)
		if err != nil {
			t.Fatal(err)
		}
		spec.Reverse = true
		rev, err := Build(spec, 12)
		if err != nil {
			t.Fatal(err)
		}
		if !equalMask(rev, fwd.Invert()) {
			t.Errorf("%s: reversed %v is not 1-%v", mode, rev, fwd)
		}
	}
}

func TestBuildInvalid(t *testing.T) {
	for _, spec := range []Spec{
		{Mode: "spiral"},
		{Mode: ModeFraction, Fraction: 1.5},
		{Mode: ModeWindow, RampWidth: -1},
	} {
		if _, err := Build(spec, 4); !errors.Is(err, ErrInvalidSpec) {
			t.Errorf("Build(%+v) = %v, want ErrInvalidSpec", spec, err)
		}
	}
}

func TestBuildEmpty(t *testing.T) {
	m, err := Build(Spec{Mode: ModeAll}, 0)
	if err != nil || len(m) != 0 {
		t.Errorf("Build(n=0) = %v, %v", m, err)
	}
}

func TestResize(t *testing.T) {
	got := Resize(Mask{0, 1}, 4)
	if !equalMask(got, Mask{0, 0.25, 0.75, 1}) {
		t.Errorf("Resize = %v", got)
	}
	got = Resize(Mask{-1, 2}, 2)
	if !equalMask(got, Mask{0, 1}) {
		t.Errorf("Resize did not clamp: %v", got)
	}
}

func TestTimeSpec(t *testing.T) {
	timing := Timing{StepDuration: 200 * time.Millisecond}
	ts := TimeSpec{
		Mode:  ModeRange,
		Start: jsontime.FromSeconds(0.4),
		End:   jsontime.FromDuration(time.Second),
	}
	got, err := BuildTime(ts, timing, 8)
	if err != nil {
		t.Fatal(err)
	}
	if !equalMask(got, Mask{0, 0, 1, 1, 1, 0, 0, 0}) {
		t.Errorf("BuildTime range = %v", got)
	}

	ts = TimeSpec{Mode: ModeWindow, Start: jsontime.FromSeconds(0.6), End: jsontime.FromDuration(800 * time.Millisecond), Ramp: jsontime.FromSeconds(0.6)}
	got, err = BuildTime(ts, timing, 8)
	if err != nil {
		t.Fatal(err)
	}
	if !equalMask(got, Mask{0, 0.5, 1, 1, 1, 0.5, 0, 0}) {
		t.Errorf("BuildTime window = %v", got)
	}

	ts = TimeSpec{Mode: ModeRange, Start: jsontime.FromSeconds(1.2)}
	got, _ = BuildTime(ts, timing, 8)
	if !equalMask(got, Mask{0, 0, 0, 0, 0, 0, 1, 1}) {
		t.Errorf("BuildTime open end = %v", got)
	}

	if _, err := BuildTime(ts, Timing{}, 8); !errors.Is(err, ErrInvalidSpec) {
		t.Errorf("zero timing error = %v", err)
	}
}

func TestTiming(t *testing.T) {
	if r := CodeTiming.Rate(); math.Abs(r-5) > 1e-9 {
		t.Errorf("CodeTiming.Rate() = %v, want 5", r)
	}
	// 10 s at ~10.77 Hz = 107.67 steps, halved 53.83, rounded 54, doubled 108.
	if n := LatentTiming.Steps(10 * time.Second); n != 108 {
		t.Errorf("LatentTiming.Steps(10s) = %d, want 108", n)
	}
	if d := CodeTiming.Duration(25); d != 5*time.Second {
		t.Errorf("CodeTiming.Duration(25) = %v", d)
	}
	if i := CodeTiming.Index(-time.Second, 9); i != 9 {
		t.Errorf("Index(-1s) = %d, want 9", i)
	}
	if i := CodeTiming.Index(time.Hour, 9); i != 9 {
		t.Errorf("Index(1h) = %d, want 9", i)
	}
}

func TestFromAny(t *testing.T) {
	rows, err := FromAny([]any{0.0, 1.0, 0.5})
	if err != nil || len(rows) != 1 || !equalMask(rows[0], Mask{0, 1, 0.5}) {
		t.Errorf("FromAny(1-D) = %v, %v", rows, err)
	}

	rows, err = FromAny([]any{[]any{1.0, 0.0}, []any{0, 1}})
	if err != nil || len(rows) != 2 || !equalMask(rows[1], Mask{0, 1}) {
		t.Errorf("FromAny(2-D) = %v, %v", rows, err)
	}

	rows, err = FromAny([]any{[]any{[]any{1.0, 0.0}, []any{0.0, 0.0}}})
	if err != nil || len(rows) != 1 || !equalMask(rows[0], Mask{0.5, 0}) {
		t.Errorf("FromAny(3-D) = %v, %v", rows, err)
	}

	for _, bad := range []any{"x", 1.0, []any{[]any{[]any{[]any{1.0}}}}, []any{"a"}} {
		if _, err := FromAny(bad); !errors.Is(err, ErrInvalidSpec) {
			t.Errorf("FromAny(%v) error = %v", bad, err)
		}
	}
}

func TestForBatch(t *testing.T) {
	rows := []Mask{{1, 0}, {0, 1}}
	if got := ForBatch(rows, 1, 2); !equalMask(got, Mask{0, 1}) {
		t.Errorf("ForBatch(1) = %v", got)
	}
	if got := ForBatch(rows, 5, 2); !equalMask(got, Mask{1, 0}) {
		t.Errorf("ForBatch(5) = %v", got)
	}
	if got := ForBatch(nil, 0, 3); !equalMask(got, Mask{1, 1, 1}) {
		t.Errorf("ForBatch(nil) = %v", got)
	}
}

func TestSpecDecodingKeepsDefaults(t *testing.T) {
	var js Spec
	if err := json.Unmarshal([]byte(`{"mode": "range", "start": 2}`), &js); err != nil {
		t.Fatal(err)
	}
	if js.End != -1 || js.Fraction != 0.5 || js.RampWidth != 10 {
		t.Errorf("JSON spec = %+v, want defaults for omitted fields", js)
	}

	var ys Spec
	if err := yaml.Unmarshal([]byte("mode: window\nstart: 1\nend: 0\n"), &ys); err != nil {
		t.Fatal(err)
	}
	if ys.Mode != ModeWindow || ys.Start != 1 || ys.End != 0 || ys.RampWidth != 10 {
		t.Errorf("YAML spec = %+v", ys)
	}

	var ts TimeSpec
	if err := yaml.Unmarshal([]byte("mode: fraction\nreverse: true\n"), &ts); err != nil {
		t.Fatal(err)
	}
	if ts.End != nil || ts.Fraction != 0.5 || !ts.Reverse || ts.Ramp.Seconds() != 2 {
		t.Errorf("YAML time spec = %+v", ts)
	}
}
