package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var (
	accent = lipgloss.AdaptiveColor{Light: "4", Dark: "12"}
	dim    = lipgloss.AdaptiveColor{Light: "240", Dark: "245"}
	danger = lipgloss.AdaptiveColor{Light: "1", Dark: "9"}
	good   = lipgloss.AdaptiveColor{Light: "2", Dark: "10"}
)

// TitleStyle renders the browser header.
func TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(accent)
}

// StatusStyle renders informational status lines.
func StatusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(good)
}

// ErrorStyle renders error lines.
func ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(danger)
}

// DimStyle renders secondary text such as indexes and empty emails.
func DimStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(dim)
}

// BorderStyle returns the rounded border drawn around tables.
func BorderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim)
}

// tableStyles returns the bubbles table styles for the browser.
func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dim).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	return s
}

// columnWidths splits the available width between the index, name, phone and
// email columns. Phone is fixed; name and email share what is left.
func columnWidths(total int) (idx, name, phone, email int) {
	idx, phone = 5, 12
	// Each of the four cells carries one cell of padding on either side.
	rest := total - idx - phone - 8
	if rest < 20 {
		rest = 20
	}
	name = rest * 2 / 5
	email = rest - name
	return idx, name, phone, email
}
