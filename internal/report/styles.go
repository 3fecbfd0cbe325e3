// Package report renders planning results for the terminal and as JSON.
package report

import "github.com/charmbracelet/lipgloss"

// Palette follows the significance-band legend: red for conservative,
// amber for standard and blue for liberal alphas.
var (
	ColorIndigo  = lipgloss.Color("#4F46E5")
	ColorMuted   = lipgloss.Color("#6B7280")
	ColorRed     = lipgloss.Color("#DC2626")
	ColorAmber   = lipgloss.Color("#D97706")
	ColorBlue    = lipgloss.Color("#2563EB")
	ColorSuccess = lipgloss.Color("#059669")
	ColorWarning = lipgloss.Color("#F59E0B")
)

type styles struct {
	Title    lipgloss.Style
	Section  lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Emphasis lipgloss.Style
	Muted    lipgloss.Style
	Warning  lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Card     lipgloss.Style
	Header   lipgloss.Style
	Cell     lipgloss.Style
	Border   lipgloss.Style

	Conservative lipgloss.Style
	Standard     lipgloss.Style
	Liberal      lipgloss.Style
}

func newStyles(plain bool) styles {
	if plain {
		base := lipgloss.NewStyle()
		cell := base.Padding(0, 1)
		return styles{
			Title: base, Section: base, Label: base, Value: base, Emphasis: base,
			Muted: base, Warning: base, Success: base, Error: base,
			Card:   cell,
			Header: cell,
			Cell:   cell,
			Border: base,

			Conservative: cell, Standard: cell, Liberal: cell,
		}
	}

	cell := lipgloss.NewStyle().Padding(0, 1)
	return styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(ColorIndigo),
		Section:  lipgloss.NewStyle().Bold(true).Underline(true),
		Label:    lipgloss.NewStyle().Foreground(ColorMuted),
		Value:    lipgloss.NewStyle(),
		Emphasis: lipgloss.NewStyle().Bold(true).Foreground(ColorIndigo),
		Muted:    lipgloss.NewStyle().Foreground(ColorMuted),
		Warning:  lipgloss.NewStyle().Foreground(ColorWarning),
		Success:  lipgloss.NewStyle().Foreground(ColorSuccess),
		Error:    lipgloss.NewStyle().Foreground(ColorRed),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorIndigo).
			Padding(0, 1),
		Header: cell.Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(ColorIndigo),
		Cell:   cell,
		Border: lipgloss.NewStyle().Foreground(ColorMuted),

		Conservative: cell.Foreground(ColorRed),
		Standard:     cell.Foreground(ColorAmber),
		Liberal:      cell.Foreground(ColorBlue),
	}
}
