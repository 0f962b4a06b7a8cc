package commands

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestDecodeEncode(t *testing.T) {
	setupTestEnv(t)

	var vecs [][][]float64
	runJSON(t, &vecs, "decode", "[0, 3]", "--levels", "2,2")
	want := [][][]float64{{{-1, -1}, {1, 1}}}
	if !reflect.DeepEqual(vecs, want) {
		t.Fatalf("decode = %v, want %v", vecs, want)
	}

	var out [][]int
	runJSON(t, &out, "encode", "[[-1, -1], [1, 1]]", "--levels", "2,2")
	expectCodes(t, out, [][]int{{0, 3}})

	runJSON(t, &out, "encode", "[[[0.9, -0.9]], [[-1, 1]]]", "--levels", "2,2")
	expectCodes(t, out, [][]int{{1}, {2}})
}

func TestEncodeFile(t *testing.T) {
	setupContext(t, "levels", "3")
	path := writeTestFile(t, "vectors.yaml", "- [-1]\n- [0]\n- [5]\n")

	var out [][]int
	runJSON(t, &out, "encode", path)
	expectCodes(t, out, [][]int{{0, 1, 2}})
}

func TestDecodeStrict(t *testing.T) {
	setupTestEnv(t)

	_, stderr, code := runCmd(t, "decode", "[9]", "--levels", "2,2", "--strict")
	if code == 0 {
		t.Fatal("out-of-range code should fail in strict mode")
	}
	if !strings.Contains(stderr, "out of range") {
		t.Fatalf("unexpected error: %s", stderr)
	}

	var vecs [][][]float64
	runJSON(t, &vecs, "decode", "[9]", "--levels", "2,2")
	if !reflect.DeepEqual(vecs, [][][]float64{{{1, 1}}}) {
		t.Fatalf("clamped decode = %v", vecs)
	}
}

func TestLevels(t *testing.T) {
	setupContext(t, "levels", "8,8", "step_duration", "40ms")

	var info levelsInfo
	runJSON(t, &info, "levels")
	if info.Size != 64 || info.Dim != 2 || info.StepDuration != "40ms" || info.Rate != 25 {
		t.Fatalf("levels info = %+v", info)
	}
	if !reflect.DeepEqual(info.Strides, []int{1, 8}) {
		t.Fatalf("strides = %v", info.Strides)
	}

	runJSON(t, &info, "levels", "--levels", "5")
	if info.Size != 5 {
		t.Fatalf("--levels override ignored: %+v", info)
	}
}

func TestSchema(t *testing.T) {
	setupTestEnv(t)

	for _, kind := range []string{"mix", "unary", "mask"} {
		stdout, stderr, code := runCmd(t, "schema", kind)
		if code != 0 {
			t.Fatalf("schema %s: exit %d: %s", kind, code, stderr)
		}
		var doc map[string]any
		if err := json.Unmarshal([]byte(stdout), &doc); err != nil {
			t.Fatalf("schema %s is not JSON: %v", kind, err)
		}
	}

	stdout, _, _ := runCmd(t, "schema", "mix")
	for _, want := range []string{`"blend"`, `"scale_B_to_A"`, `"window"`, `"alpha"`} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("mix schema missing %s", want)
		}
	}

	if _, _, code := runCmd(t, "schema", "podcast"); code == 0 {
		t.Fatal("unknown schema kind should fail")
	}
}
