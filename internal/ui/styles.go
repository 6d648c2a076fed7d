package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are the lipgloss styles used for boxed and tabular output.
type Styles struct {
	Title  lipgloss.Style
	Header lipgloss.Style
	Cell   lipgloss.Style
	Ok     lipgloss.Style
	Bad    lipgloss.Style
	Dim    lipgloss.Style
	Box    lipgloss.Style
}

var (
	colorStyles = Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF8C00")),
		Header: lipgloss.NewStyle().Bold(true).Underline(true),
		Cell:   lipgloss.NewStyle(),
		Ok:     lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a")),
		Bad:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444")),
		Dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
		Box: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF6600")).Padding(0, 1),
	}

	plainStyles = Styles{
		Title:  lipgloss.NewStyle(),
		Header: lipgloss.NewStyle(),
		Cell:   lipgloss.NewStyle(),
		Ok:     lipgloss.NewStyle(),
		Bad:    lipgloss.NewStyle(),
		Dim:    lipgloss.NewStyle(),
		Box:    lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1),
	}
)

// CurrentStyles returns the styles matching the active theme. The no-color
// theme gets unstyled text with a plain border.
func CurrentStyles() Styles {
	if GetCurrentTheme().Name == NoColorTheme.Name {
		return plainStyles
	}
	return colorStyles
}

// Table renders rows as left-aligned columns padded to the widest cell,
// with the header line styled by Header.
func Table(header []string, rows [][]string) string {
	s := CurrentStyles()
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, c := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(c))
			}
		}
	}

	line := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			w := 0
			if i < len(widths) {
				w = widths[i]
			}
			parts[i] = style.Render(c + strings.Repeat(" ", max(0, w-lipgloss.Width(c))))
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	var b strings.Builder
	b.WriteString(line(header, s.Header))
	for _, row := range rows {
		b.WriteByte('\n')
		b.WriteString(line(row, s.Cell))
	}
	return b.String()
}
