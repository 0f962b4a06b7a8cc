package codes_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/haivivi/acecodes/pkg/codes"
)

func TestParseShapes(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want [][]int
	}{
		{"flat ints", []any{1, 2, 3}, [][]int{{1, 2, 3}}},
		{"batch", []any{[]any{1, 2}, []any{3}}, [][]int{{1, 2}, {3}}},
		{"scalar", 7, [][]int{{7}}},
		{"float truncates", []any{1.9, -2.7}, [][]int{{1, -2}}},
		{"numeral string", "<|audio_code_12|><|audio_code_345|>", [][]int{{12, 345}}},
		{"mixed", []any{"a1b22", 3, []any{4, "x5"}}, [][]int{{1, 22, 3, 4, 5}}},
		{"skips unknown", []any{1, true, nil, map[string]any{"k": 2}, 3}, [][]int{{1, 3}}},
		{"go slices", [][]int{{5, 6}, {7}}, [][]int{{5, 6}, {7}}},
		{"typed slice", []int64{9, 10}, [][]int{{9, 10}}},
		{"string without numerals", "none", [][]int{{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := codes.Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	for _, in := range []any{nil, []any{}} {
		if _, err := codes.Parse(in); !errors.Is(err, codes.ErrInputParse) {
			t.Errorf("Parse(%v) = %v, want ErrInputParse", in, err)
		}
	}
}

func nested(depth int) codes.Value {
	v := codes.IntValue(1)
	for range depth {
		v = codes.ListValue(v)
	}
	return v
}

func TestFlattenDepthLimit(t *testing.T) {
	if _, err := nested(codes.MaxDepth).Flatten(); err != nil {
		t.Errorf("depth %d: %v", codes.MaxDepth, err)
	}
	if _, err := nested(codes.MaxDepth + 1).Flatten(); !errors.Is(err, codes.ErrInputParse) {
		t.Errorf("depth %d: %v, want ErrInputParse", codes.MaxDepth+1, err)
	}
}

func TestFromAnyCutsDeepInput(t *testing.T) {
	var x any = 1
	for range codes.MaxDepth + 5 {
		x = []any{x}
	}
	if _, err := codes.FromAny(x).Flatten(); !errors.Is(err, codes.ErrInputParse) {
		t.Errorf("Flatten = %v, want ErrInputParse", err)
	}
}

func TestParseBatchDropsBadElement(t *testing.T) {
	v := codes.ListValue(
		codes.ListValue(codes.IntValue(1)),
		nested(codes.MaxDepth+2),
		codes.ListValue(codes.IntValue(3)),
	)
	got, err := codes.ParseBatch(v)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]int{{1}, {}, {3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseBatch = %v, want %v", got, want)
	}
}

func TestEmpty(t *testing.T) {
	if !codes.Empty([][]int{{}, {}}) {
		t.Error("Empty(all empty) = false")
	}
	if codes.Empty([][]int{{}, {1}}) {
		t.Error("Empty(one code) = true")
	}
}

func TestParseInline(t *testing.T) {
	tests := []struct {
		in   string
		want [][]int
	}{
		{"[1, 2, 3]", [][]int{{1, 2, 3}}},
		{"[[1],[2]]", [][]int{{1}, {2}}},
		{"1 2 3", [][]int{{1, 2, 3}}},
		{"[1, 2, 3", [][]int{{1, 2, 3}}},
	}
	for _, tt := range tests {
		got, err := codes.ParseInline(tt.in)
		if err != nil {
			t.Fatalf("ParseInline(%q): %v", tt.in, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseInline(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := codes.ParseInline("  "); !errors.Is(err, codes.ErrInputParse) {
		t.Errorf("ParseInline(blank) = %v", err)
	}
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	batch := [][]int{{0, 1, 63999}, {42}}
	for _, ext := range []string{".json", ".yaml", ".yml", ".msgpack"} {
		path := filepath.Join(dir, "song_codes"+ext)
		if err := codes.SaveFile(path, batch); err != nil {
			t.Fatalf("SaveFile(%s): %v", ext, err)
		}
		got, err := codes.LoadFile(path, nil)
		if err != nil {
			t.Fatalf("LoadFile(%s): %v", ext, err)
		}
		if !reflect.DeepEqual(got, batch) {
			t.Errorf("%s round trip = %v, want %v", ext, got, batch)
		}
	}
}

func TestLoadRepairsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken_codes.json")
	if err := os.WriteFile(path, []byte("[1, 2, 3,]"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := codes.LoadFile(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := [][]int{{1, 2, 3}}; !reflect.DeepEqual(got, want) {
		t.Errorf("LoadFile = %v, want %v", got, want)
	}
}

func TestLoadUnknownExtension(t *testing.T) {
	if _, err := codes.LoadFile("codes.txt", nil); !errors.Is(err, codes.ErrUnknownFormat) {
		t.Errorf("LoadFile(.txt) = %v", err)
	}
}

func TestQuery(t *testing.T) {
	doc := []byte(`{"meta": {"bpm": 120}, "audio_codes": "<|audio_code_3|><|audio_code_4|>"}`)
	q, err := codes.NewQuery(".audio_codes")
	if err != nil {
		t.Fatal(err)
	}
	got, err := codes.Decode(doc, codes.FormatJSON, q)
	if err != nil {
		t.Fatal(err)
	}
	if want := [][]int{{3, 4}}; !reflect.DeepEqual(got, want) {
		t.Errorf("Decode = %v, want %v", got, want)
	}

	items := []byte("items:\n  - codes: [1, 2]\n  - codes: [3]\n")
	q, err = codes.NewQuery(".items[].codes")
	if err != nil {
		t.Fatal(err)
	}
	got, err = codes.Decode(items, codes.FormatYAML, q)
	if err != nil {
		t.Fatal(err)
	}
	if want := [][]int{{1, 2}, {3}}; !reflect.DeepEqual(got, want) {
		t.Errorf("Decode = %v, want %v", got, want)
	}

	q, _ = codes.NewQuery(".missing[]")
	if _, err := codes.Decode([]byte(`{"missing": []}`), codes.FormatJSON, q); !errors.Is(err, codes.ErrInputParse) {
		t.Errorf("empty query result = %v", err)
	}
}

func TestNewQuery(t *testing.T) {
	q, err := codes.NewQuery("")
	if err != nil || q != nil {
		t.Errorf("NewQuery(\"\") = %v, %v", q, err)
	}
	if _, err := codes.NewQuery(".[ "); err == nil {
		t.Error("NewQuery accepted an invalid expression")
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]codes.Format{
		"":     codes.FormatJSON,
		"YAML": codes.FormatYAML,
		"yml":  codes.FormatYAML,
		"mp":   codes.FormatMsgpack,
	} {
		got, err := codes.ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
}
