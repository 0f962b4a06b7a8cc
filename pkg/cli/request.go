package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadRequest loads a request from a YAML or JSON file into v. The path "-"
// reads stdin.
func LoadRequest(path string, v any) error {
	if path == "-" {
		return LoadRequestFromStdin(v)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	return ParseRequest(data, path, v)
}

// ParseRequest parses request data based on file extension or content
func ParseRequest(data []byte, filename string, v any) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		// YAML is a superset of JSON for request documents.
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to parse request (tried YAML and JSON): %w", err)
		}
	}
	return nil
}

// LoadRequestFromStdin loads a request from stdin
func LoadRequestFromStdin(v any) error {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	return ParseRequest(data, "", v)
}
