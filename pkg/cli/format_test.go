package cli

import (
	"testing"
	"time"

	"github.com/haivivi/acecodes/pkg/mask"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0ms"},
		{200 * time.Millisecond, "200ms"},
		{1500 * time.Millisecond, "1.5s"},
		{59900 * time.Millisecond, "59.9s"},
		{90 * time.Second, "1m30.0s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatSteps(t *testing.T) {
	if got := FormatSteps(75, mask.CodeTiming); got != "75 steps (15.0s)" {
		t.Errorf("FormatSteps(75) = %q", got)
	}
	if got := FormatSteps(1, mask.CodeTiming); got != "1 step (200ms)" {
		t.Errorf("FormatSteps(1) = %q", got)
	}
}
