package cli

import (
	"fmt"
	"time"

	"github.com/haivivi/acecodes/pkg/mask"
)

// FormatDuration formats a duration to a short human readable string
func FormatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	secs := float64(ms) / 1000
	if secs < 60 {
		return fmt.Sprintf("%.1fs", secs)
	}
	mins := int(secs / 60)
	secs = secs - float64(mins*60)
	return fmt.Sprintf("%dm%.1fs", mins, secs)
}

// FormatSteps formats a step count with the audio time it covers,
// e.g. "75 steps (15.0s)".
func FormatSteps(n int, t mask.Timing) string {
	unit := "steps"
	if n == 1 {
		unit = "step"
	}
	return fmt.Sprintf("%d %s (%s)", n, unit, FormatDuration(t.Duration(n)))
}
