package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/notehub/internal/model"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(1, 2)
	buttonStyle       = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder(), false, true)
	activeButtonStyle = buttonStyle.Reverse(true)

	toastStyle      = successStyle.Bold(true)
	toastErrorStyle = errorStyle
)

var tagColors = map[model.Tag]lipgloss.Color{
	model.TagTodo:     lipgloss.Color("14"),
	model.TagWork:     lipgloss.Color("12"),
	model.TagPersonal: lipgloss.Color("13"),
	model.TagMeeting:  lipgloss.Color("214"),
	model.TagShopping: lipgloss.Color("42"),
}

func tagStyle(t model.Tag) lipgloss.Style {
	c, ok := tagColors[t]
	if !ok {
		c = lipgloss.Color("8")
	}
	return lipgloss.NewStyle().Foreground(c)
}
