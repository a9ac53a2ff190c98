// Package ui renders the terminal surface: banner, live scan progress,
// and the end-of-run summary. Everything degrades to plain text when the
// output is not a color terminal.
package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Color palette.
var (
	Primary   = lipgloss.Color("#7D56F4") // Purple
	Secondary = lipgloss.Color("#00D4AA") // Teal

	// Severity colors for diff results
	Critical = lipgloss.Color("#FF0000")
	High     = lipgloss.Color("#FF6B6B")
	Medium   = lipgloss.Color("#FFD93D")
	Low      = lipgloss.Color("#6BCB77")
	NewColor = lipgloss.Color("#4D96FF")

	// Status colors
	Success = lipgloss.Color("#00D26A")
	Warning = lipgloss.Color("#FFB800")
	Error   = lipgloss.Color("#FF3838")
	Muted   = lipgloss.Color("#6B7280")

	// HTTP status code colors
	Status2xx = lipgloss.Color("#00D26A")
	Status3xx = lipgloss.Color("#4D96FF")
	Status4xx = lipgloss.Color("#FFD93D")
	Status5xx = lipgloss.Color("#FF3838")
)

// Pre-configured styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(Primary).
			Padding(0, 1)

	BannerStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	VersionStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	SectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true).
			MarginTop(1)

	ConfigLabelStyle = lipgloss.NewStyle().
				Foreground(Muted).
				Width(14)

	ConfigValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FAFAFA"))

	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	WarnStyle    = lipgloss.NewStyle().Foreground(Warning)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Error)
	MutedStyle   = lipgloss.NewStyle().Foreground(Muted)
)

// SeverityStyle picks the style for a diff severity label.
func SeverityStyle(severity string) lipgloss.Style {
	switch severity {
	case "critical":
		return lipgloss.NewStyle().Foreground(Critical).Bold(true)
	case "high":
		return lipgloss.NewStyle().Foreground(High)
	case "medium":
		return lipgloss.NewStyle().Foreground(Medium)
	case "low":
		return lipgloss.NewStyle().Foreground(Low)
	case "new":
		return lipgloss.NewStyle().Foreground(NewColor)
	default:
		return MutedStyle
	}
}

// StatusStyle picks the style for an HTTP status code.
func StatusStyle(status int) lipgloss.Style {
	switch {
	case status >= 200 && status < 300:
		return lipgloss.NewStyle().Foreground(Status2xx)
	case status >= 300 && status < 400:
		return lipgloss.NewStyle().Foreground(Status3xx)
	case status >= 400 && status < 500:
		return lipgloss.NewStyle().Foreground(Status4xx)
	case status >= 500:
		return lipgloss.NewStyle().Foreground(Status5xx)
	default:
		return MutedStyle
	}
}

// DisableColor forces monochrome output for pipes and -no-color.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
