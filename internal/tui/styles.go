package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nguyentantai21042004/sonote/internal/domain"
)

var (
	colorRed     = lipgloss.Color("#FF5F5F")
	colorGreen   = lipgloss.Color("#5FD75F")
	colorYellow  = lipgloss.Color("#FFD75F")
	colorCyan    = lipgloss.Color("#5FD7FF")
	colorGray    = lipgloss.Color("#808080")
	colorDimGray = lipgloss.Color("#4E4E4E")
	colorWhite   = lipgloss.Color("#FFFFFF")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	selectedStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true)

	errorTextStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	footerKeyStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)

	footerDescStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	dividerStyle = lipgloss.NewStyle().
			Foreground(colorDimGray)

	barFullStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	barEmptyStyle = lipgloss.NewStyle().
			Foreground(colorDimGray)
)

// badgeStyle colors a status badge.
func badgeStyle(s domain.ProcessStatus) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch s {
	case domain.StatusCompleted:
		return base.Foreground(colorGreen)
	case domain.StatusError:
		return base.Foreground(colorRed)
	case domain.StatusUploading, domain.StatusTranscribing, domain.StatusPolishing:
		return base.Foreground(colorYellow)
	default:
		return base.Foreground(colorGray)
	}
}
