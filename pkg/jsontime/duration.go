// Package jsontime provides a time.Duration that reads naturally from request
// files: either a Go duration string ("1.5s", "200ms") or a plain number of
// seconds (1.5), the unit used by audio editing tools. Negative values are
// kept as is; mask positions use -1 to mean "until the end".
package jsontime

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that serializes to a duration string and
// accepts a duration string or a number of seconds when decoding.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		return d.parse(s)
	}
	var secs float64
	if err := json.Unmarshal(b, &secs); err != nil {
		return err
	}
	return d.setSeconds(secs)
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("jsontime: expected scalar duration, got YAML kind %d", node.Kind)
	}
	if node.Tag == "!!int" || node.Tag == "!!float" {
		secs, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return fmt.Errorf("jsontime: %w", err)
		}
		return d.setSeconds(secs)
	}
	return d.parse(node.Value)
}

func (d *Duration) parse(s string) error {
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return d.setSeconds(secs)
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("jsontime: %w", err)
	}
	*d = Duration(dur)
	return nil
}

func (d *Duration) setSeconds(secs float64) error {
	if math.IsNaN(secs) || math.IsInf(secs, 0) {
		return fmt.Errorf("jsontime: invalid seconds %v", secs)
	}
	*d = Duration(time.Duration(math.Round(secs * float64(time.Second))))
	return nil
}

// Duration returns the underlying time.Duration value.
// Returns 0 if d is nil.
func (d *Duration) Duration() time.Duration {
	if d == nil {
		return 0
	}
	return time.Duration(*d)
}

// String returns the duration formatted as a string.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// FromDuration creates a Duration pointer from a time.Duration.
func FromDuration(d time.Duration) *Duration {
	v := Duration(d)
	return &v
}

// FromSeconds creates a Duration from a number of seconds.
func FromSeconds(secs float64) Duration {
	return Duration(time.Duration(math.Round(secs * float64(time.Second))))
}

// Seconds returns the duration as a floating point number of seconds.
func (d Duration) Seconds() float64 {
	return time.Duration(d).Seconds()
}
