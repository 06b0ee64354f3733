package gate

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	createStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	grantStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	updateStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("178"))
	revokeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	noopStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	summaryStyle = lipgloss.NewStyle().MarginTop(1)
)
