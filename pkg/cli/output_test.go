package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/haivivi/acecodes/pkg/codes"
)

func TestOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	batch := [][]int{{1, 2}, {3}}
	if err := Output(batch, OutputOptions{Format: FormatJSON, Writer: &buf}); err != nil {
		t.Fatalf("Output error: %v", err)
	}
	var got [][]int
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Invalid JSON output: %v", err)
	}
	if !reflect.DeepEqual(got, batch) {
		t.Errorf("JSON round trip = %v", got)
	}
}

func TestOutput_YAML(t *testing.T) {
	var buf bytes.Buffer
	data := map[string]any{"context": "studio", "size": 64000}
	if err := Output(data, OutputOptions{Writer: &buf}); err != nil {
		t.Fatalf("Output error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "size: 64000") || !strings.Contains(out, "context: studio") {
		t.Errorf("YAML output = %q", out)
	}
}

func TestOutput_RawCodes(t *testing.T) {
	var buf bytes.Buffer
	batch := [][]int{{1, 22}, {333}}
	if err := Output(batch, OutputOptions{Format: FormatRaw, Writer: &buf}); err != nil {
		t.Fatal(err)
	}
	want := "<|audio_code_1|><|audio_code_22|>\n<|audio_code_333|>\n"
	if buf.String() != want {
		t.Errorf("raw output = %q, want %q", buf.String(), want)
	}

	// Each line parses back to its element.
	for i, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		got, err := codes.Parse(line)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got[0], batch[i]) {
			t.Errorf("line %d parses to %v", i, got)
		}
	}
}

func TestOutput_RawString(t *testing.T) {
	var buf bytes.Buffer
	Output("plain", OutputOptions{Format: FormatRaw, Writer: &buf})
	if buf.String() != "plain" {
		t.Errorf("raw string = %q", buf.String())
	}
}

func TestOutput_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := Output([]int{1}, OutputOptions{Format: FormatJSON, File: path}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != "[\n  1\n]" {
		t.Errorf("file content = %q", data)
	}
}

func TestOutput_Unsupported(t *testing.T) {
	if err := Output(1, OutputOptions{Format: "xml", Writer: &bytes.Buffer{}}); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestParseOutputFormat(t *testing.T) {
	for in, want := range map[string]OutputFormat{"": FormatYAML, "JSON": FormatJSON, "raw": FormatRaw} {
		got, err := ParseOutputFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseOutputFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseOutputFormat("table"); err == nil {
		t.Error("ParseOutputFormat(table) succeeded")
	}
}
