// Package ui is the Bubble Tea front end: a server list, the terminal panes
// driven by the session multiplexer, and the notification toast line.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/opswatch/console/internal/terminal"
)

// Session status colors.
var (
	colorConnected  = lipgloss.Color("#22c55e")
	colorConnecting = lipgloss.Color("#d97706")
	colorError      = lipgloss.Color("#dc2626")
	colorIdle       = lipgloss.Color("#4b5563")
)

// UI chrome colors.
var (
	colorBorder = lipgloss.Color("#4b5563")
	colorDimmed = lipgloss.Color("#6b7280")
	colorBright = lipgloss.Color("#f9fafb")
	colorAccent = lipgloss.Color("#3b82f6")
	colorToast  = lipgloss.Color("#06b6d4")
)

var (
	styleHeader = lipgloss.NewStyle().Foreground(colorBright).Bold(true)
	styleDimmed = lipgloss.NewStyle().Foreground(colorDimmed)
	styleToast  = lipgloss.NewStyle().Foreground(colorToast)
	styleError  = lipgloss.NewStyle().Foreground(colorError)

	stylePane = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)
	stylePaneActive = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent)
)

// statusColor maps a session status to its display color.
func statusColor(s terminal.Status) lipgloss.Color {
	switch s {
	case terminal.StatusConnected:
		return colorConnected
	case terminal.StatusConnecting:
		return colorConnecting
	case terminal.StatusError:
		return colorError
	default:
		return colorIdle
	}
}

// statusGlyph maps a session status to a one-cell indicator.
func statusGlyph(s terminal.Status) string {
	switch s {
	case terminal.StatusConnected:
		return "●"
	case terminal.StatusConnecting:
		return "◌"
	case terminal.StatusError:
		return "✗"
	default:
		return "○"
	}
}
