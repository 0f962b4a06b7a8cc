package commands

import (
	"reflect"
	"strings"
	"testing"
)

func expectCodes(t *testing.T, got, want [][]int) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("codes = %v, want %v", got, want)
	}
}

func TestMixBlendWithStepMask(t *testing.T) {
	setupContext(t, "levels", "2")

	var out [][]int
	runJSON(t, &out, "mix",
		"--a", "[0,0,0,0]",
		"--b", "[1,1,1,1]",
		"--op", "blend",
		"--mask-end", "2")
	expectCodes(t, out, [][]int{{0, 0, 1, 1}})
}

func TestMixTimeMask(t *testing.T) {
	setupContext(t, "levels", "2", "step_duration", "1s")

	var out [][]int
	runJSON(t, &out, "mix",
		"--a", "[0,0,0,0]",
		"--b", "[1,1,1,1]",
		"--op", "replace",
		"--mask-start-time", "1s",
		"--mask-end-time", "3s")
	expectCodes(t, out, [][]int{{0, 1, 1, 0}})
}

func TestMixConcatenateTokens(t *testing.T) {
	setupContext(t, "levels", "2")

	var out [][]int
	runJSON(t, &out, "mix",
		"--a", "[0,1]",
		"--b", "<|audio_code_1|>",
		"--op", "concatenate",
		"--scale-mode", "none")
	expectCodes(t, out, [][]int{{0, 1, 1}})
}

func TestMixCodeFiles(t *testing.T) {
	setupContext(t, "levels", "2")

	a := writeTestFile(t, "a_codes.json", `{"audio_codes": [[1,1,1,1]], "bpm": 120}`)
	b := writeTestFile(t, "b_codes.yaml", "audio_codes:\n  - [0, 0, 0, 0]\n")

	var out [][]int
	runJSON(t, &out, "mix", "--a", a, "--b", b, "--query", ".audio_codes", "--op", "minimum")
	expectCodes(t, out, [][]int{{0, 0, 0, 0}})
}

func TestMixMissingCodeFile(t *testing.T) {
	setupContext(t)

	_, stderr, code := runCmd(t, "mix", "--a", "missing_codes.json", "--b", "[1]")
	if code == 0 {
		t.Fatal("missing code file should fail")
	}
	if !strings.Contains(stderr, "code file") {
		t.Fatalf("unexpected error: %s", stderr)
	}
}

func TestMixRequestFile(t *testing.T) {
	setupContext(t, "levels", "2")

	req := writeTestFile(t, "mix.yaml", `
a: [[0, 0, 0, 0], [1, 1, 1, 1]]
b: [[1, 1, 1, 1]]
op: blend
mask:
  spec:
    mode: range
    start: 2
`)

	var out [][]int
	runJSON(t, &out, "mix", "-f", req)
	expectCodes(t, out, [][]int{{1, 1, 0, 0}, {1, 1, 1, 1}})

	// Flags override the file.
	runJSON(t, &out, "mix", "-f", req, "--op", "replace")
	expectCodes(t, out, [][]int{{0, 0, 1, 1}, {1, 1, 1, 1}})
}

func TestMixRequestFileCodeReferences(t *testing.T) {
	setupContext(t, "levels", "2")

	a := writeTestFile(t, "a_codes.json", `[0, 0]`)
	req := writeTestFile(t, "mix.json", `{"a": "`+a+`", "b": "<|audio_code_1|><|audio_code_1|>", "op": "add"}`)

	var out [][]int
	runJSON(t, &out, "mix", "-f", req)
	expectCodes(t, out, [][]int{{1, 1}})
}

func TestMixErrors(t *testing.T) {
	setupContext(t)
	maskFile := writeTestFile(t, "mask.json", `[1, 0]`)

	tests := []struct {
		name string
		args []string
	}{
		{"no A", []string{"mix", "--b", "[1]"}},
		{"unknown op", []string{"mix", "--a", "[1]", "--op", "swirl"}},
		{"unknown scale mode", []string{"mix", "--a", "[1]", "--scale-mode", "stretch"}},
		{"mask file and flags", []string{"mix", "--a", "[1]", "--mask-file", maskFile, "--mask-mode", "all"}},
		{"step and time bounds", []string{"mix", "--a", "[1]", "--mask-end", "1", "--mask-end-time", "1s"}},
		{"bad alpha", []string{"mix", "--a", "[1]", "--op", "lerp", "--alpha", "2"}},
		{"nothing to parse", []string{"mix", "--a", "no codes", "--b", "none either"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, code := runCmd(t, tt.args...); code == 0 {
				t.Fatalf("%v should fail", tt.args)
			}
		})
	}
}

func TestMixRawOutput(t *testing.T) {
	setupContext(t, "levels", "2")

	stdout, stderr, code := runCmd(t, "mix", "--a", "[0,1]", "--b", "[1,0]", "--op", "blend", "-o", "raw")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if strings.TrimSpace(stdout) != "<|audio_code_0|><|audio_code_1|>" {
		t.Fatalf("raw output = %q", stdout)
	}
}

func TestUnaryGate(t *testing.T) {
	setupContext(t, "levels", "3")

	var out [][]int
	runJSON(t, &out, "unary", "--a", "[2,2,2,2]", "--op", "gate", "--mask-end", "2")
	expectCodes(t, out, [][]int{{2, 2, 1, 1}})
}

func TestUnaryLengthPercent(t *testing.T) {
	setupContext(t, "levels", "2")

	var out [][]int
	runJSON(t, &out, "unary", "--a", "[1,1,1,1]", "--op", "gate", "--length-percent", "50")
	expectCodes(t, out, [][]int{{1, 1}})
}

func TestUnaryNoiseSeeded(t *testing.T) {
	setupContext(t)

	args := []string{"unary", "--a", "[100,200,300,400,500,600]", "--op", "noise_masked", "--sigma", "0.5", "--seed", "9"}
	var first, second [][]int
	runJSON(t, &first, args...)
	runJSON(t, &second, args...)
	expectCodes(t, second, first)
}

func TestUnaryRequiresA(t *testing.T) {
	setupContext(t)

	if _, _, code := runCmd(t, "unary", "--op", "fade_out"); code == 0 {
		t.Fatal("unary without A should fail")
	}
	if _, _, code := runCmd(t, "unary", "--a", "[1]", "--length-percent", "2000"); code == 0 {
		t.Fatal("length percent above 1000 should fail")
	}
}

func TestMaskValues(t *testing.T) {
	setupContext(t)

	var m []float64
	runJSON(t, &m, "mask", "--steps", "4", "--mask-end", "2")
	if !reflect.DeepEqual(m, []float64{1, 1, 0, 0}) {
		t.Fatalf("mask = %v", m)
	}

	runJSON(t, &m, "mask", "--steps", "4", "--mask-end", "2", "--mask-reverse")
	if !reflect.DeepEqual(m, []float64{0, 0, 1, 1}) {
		t.Fatalf("reversed mask = %v", m)
	}
}

func TestMaskFromCodesAndTime(t *testing.T) {
	setupContext(t)

	var m []float64
	runJSON(t, &m, "mask", "--a", "[1,2,3,4,5,6,7,8,9,10]", "--mask-start-time", "400ms", "--mask-end-time", "1s")
	want := []float64{0, 0, 1, 1, 1, 0, 0, 0, 0, 0}
	if !reflect.DeepEqual(m, want) {
		t.Fatalf("mask = %v, want %v", m, want)
	}
}

func TestMaskFile(t *testing.T) {
	setupContext(t)
	rows := writeTestFile(t, "mask.yaml", "- [1, 0]\n- [0, 1]\n")

	var m []float64
	runJSON(t, &m, "mask", "--steps", "2", "--mask-file", rows, "--element", "1")
	if !reflect.DeepEqual(m, []float64{0, 1}) {
		t.Fatalf("mask = %v", m)
	}
}

func TestMaskPreview(t *testing.T) {
	setupContext(t)

	stdout, stderr, code := runCmd(t, "mask", "--steps", "10", "--mask-mode", "window", "--mask-start", "3", "--mask-end", "6", "--mask-ramp", "2", "--preview")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	for _, want := range []string{"weight", "reverse", "10 steps", "█"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("preview missing %q:\n%s", want, stdout)
		}
	}
}

func TestMaskRequiresLength(t *testing.T) {
	setupContext(t)

	if _, _, code := runCmd(t, "mask", "--mask-mode", "all"); code == 0 {
		t.Fatal("mask without length should fail")
	}
}
