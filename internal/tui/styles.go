package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/msto63/diktat/internal/session"
)

// Phosphor terminal palette
var (
	phosphor = lipgloss.Color("#33FF66")
	dimGreen = lipgloss.Color("#1E7F3A")
	amber    = lipgloss.Color("#FFB000")
	alarm    = lipgloss.Color("#FF4040")
	panel    = lipgloss.Color("#0F2416")
	ink      = lipgloss.Color("#D8FFE0")
)

func frame(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
}

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

var (
	TitleStyle    = fg(phosphor).Bold(true)
	SubtitleStyle = fg(dimGreen)

	BoxStyle          = frame(dimGreen)
	RecordingBoxStyle = frame(alarm)
	FocusedInputStyle = frame(amber)

	StatusBarStyle   = lipgloss.NewStyle().Background(panel).Foreground(ink).Padding(0, 1)
	StatusOKStyle    = fg(phosphor)
	StatusBusyStyle  = fg(amber)
	StatusLiveStyle  = fg(alarm).Bold(true)
	StatusErrorStyle = fg(alarm)

	MenuItemStyle         = lipgloss.NewStyle().PaddingLeft(2)
	SelectedMenuItemStyle = fg(phosphor).Bold(true).PaddingLeft(1).
				Border(lipgloss.ThickBorder(), false, false, false, true).
				BorderForeground(phosphor)
	SummaryTagStyle = fg(amber).Bold(true)

	TabStyle       = fg(dimGreen).Padding(0, 2)
	ActiveTabStyle = fg(phosphor).Padding(0, 2).Bold(true).Underline(true)

	HelpStyle = fg(dimGreen).MarginTop(1)
)

// RenderStatus colors a status line by its content
func RenderStatus(text string) string {
	switch {
	case strings.HasPrefix(text, "ERROR:"), strings.HasPrefix(text, "// "):
		return StatusErrorStyle.Render(text)
	case strings.HasPrefix(text, "STATUS: ACTIVE LISTENING"):
		return StatusLiveStyle.Render(text)
	case text == session.StatusReady, strings.HasSuffix(text, "history."), text == session.StatusComplete:
		return StatusOKStyle.Render(text)
	default:
		return StatusBusyStyle.Render(text)
	}
}

// RenderHelp renders the key help line
func RenderHelp(help string) string {
	return HelpStyle.Render(help)
}
