package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/haivivi/acecodes/pkg/mask"
)

// Theme defines the color scheme for terminal previews.
type Theme struct {
	Primary lipgloss.Color // Main accent color
	Dim     lipgloss.Color // Dimmed/help text color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Bar    lipgloss.Style
	Border lipgloss.Style
	Help   lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Bar:    lipgloss.NewStyle().Foreground(t.Primary),
		Border: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Primary).Padding(0, 1),
		Help:   lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// barGlyphs shade a cell by weight, from 0 to 1 in eighths.
var barGlyphs = []rune(" ▁▂▃▄▅▆▇█")

// MaskBar renders one glyph per step. Masks longer than width are resampled
// down to width cells first; width <= 0 disables resampling.
func MaskBar(m mask.Mask, width int) string {
	if width > 0 && len(m) > width {
		m = mask.Resize(m, width)
	}
	var b strings.Builder
	top := len(barGlyphs) - 1
	for _, w := range m {
		i := int(math.Round(min(max(w, 0), 1) * float64(top)))
		b.WriteRune(barGlyphs[i])
	}
	return b.String()
}

// PreviewRow is one labeled mask in a Preview.
type PreviewRow struct {
	Label string
	Mask  mask.Mask
}

// Preview renders labeled masks in a bordered box.
type Preview struct {
	Styles Styles
	Title  string
	Status string
	Rows   []PreviewRow
	Help   string
}

// Render renders the preview with bars at most width cells wide.
func (p Preview) Render(width int) string {
	labelWidth := 0
	for _, r := range p.Rows {
		labelWidth = max(labelWidth, lipgloss.Width(r.Label))
	}

	lines := []string{p.Styles.Title.Render(p.Title) + " " + p.Styles.Help.Render("["+p.Status+"]")}
	for _, r := range p.Rows {
		label := p.Styles.Label.Render(r.Label + strings.Repeat(" ", labelWidth-lipgloss.Width(r.Label)))
		bar := p.Styles.Bar.Render("▕" + MaskBar(r.Mask, width) + "▏")
		mean := p.Styles.Help.Render(fmt.Sprintf("mean %.2f", r.Mask.Mean()))
		lines = append(lines, label+" "+bar+" "+mean)
	}
	box := p.Styles.Border.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	if p.Help == "" {
		return box
	}
	return lipgloss.JoinVertical(lipgloss.Left, box, p.Styles.Help.Render(p.Help))
}
