// Package ui provides the color themes and lipgloss styles shared by the
// terminal presentation code. Themes honor --no-color and NO_COLOR.
package ui
