package codes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format is the serialization of a code file.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

// ErrUnknownFormat is returned for unrecognized file formats.
var ErrUnknownFormat = errors.New("codes: unknown file format")

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatYAML, FormatMsgpack}

// Ext returns the canonical file extension, including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatYAML:
		return ".yaml"
	case FormatMsgpack:
		return ".msgpack"
	default:
		return ".json"
	}
}

// ParseFormat converts a format name. The empty string selects JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatOf infers the format from a file extension.
func FormatOf(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// Unmarshal decodes a document in format f into a generic tree.
func Unmarshal(data []byte, f Format) (any, error) {
	var v any
	switch f {
	case FormatJSON:
		if err := unmarshalJSON(data, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInputParse, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInputParse, err)
		}
	case FormatMsgpack:
		if err := msgpack.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInputParse, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	return v, nil
}

// unmarshalJSON decodes JSON keeping numbers exact. Input rejected with a
// syntax error or truncated is passed through jsonrepair once before
// giving up.
func unmarshalJSON(data []byte, v any) error {
	err := decodeJSON(data, v)
	if err == nil {
		return nil
	}
	var syntax *json.SyntaxError
	if !errors.As(err, &syntax) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return err
	}
	fixed, rerr := jsonrepair.JSONRepair(string(data))
	if rerr != nil {
		return err
	}
	return decodeJSON([]byte(fixed), v)
}

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// Marshal encodes a batch in format f.
func Marshal(batch [][]int, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return json.Marshal(batch)
	case FormatYAML:
		return yaml.Marshal(batch)
	case FormatMsgpack:
		return msgpack.Marshal(batch)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Decode unmarshals data, optionally narrows it with q, and parses the
// result into a batch.
func Decode(data []byte, f Format, q *Query) ([][]int, error) {
	doc, err := Unmarshal(data, f)
	if err != nil {
		return nil, err
	}
	if q != nil {
		if doc, err = q.Select(doc); err != nil {
			return nil, err
		}
	}
	return Parse(doc)
}

// LoadFile reads a code file, inferring its format from the extension.
func LoadFile(path string, q *Query) ([][]int, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("codes: read %s: %w", path, err)
	}
	batch, err := Decode(data, f, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return batch, nil
}

// SaveFile writes batch to path in the format its extension names.
func SaveFile(path string, batch [][]int) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Marshal(batch, f)
	if err != nil {
		return fmt.Errorf("codes: encode %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("codes: create directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ParseInline parses codes given directly on a command line or in a request
// field: a JSON or YAML document when it looks like one, otherwise a string
// of embedded numerals.
func ParseInline(s string) ([][]int, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return nil, fmt.Errorf("%w: empty code string", ErrInputParse)
	}
	if strings.HasPrefix(t, "[") {
		if doc, err := Unmarshal([]byte(t), FormatJSON); err == nil {
			return Parse(doc)
		}
	}
	return Parse(t)
}
