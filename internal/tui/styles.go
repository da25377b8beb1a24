package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/waabox/cplog/internal/domain"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

const separator = "────────────────────────────────────────────────────────────\n"

// RenderResult returns the run result colored for a terminal.
func RenderResult(r domain.RunResult) string {
	switch r {
	case domain.ResultSuccess:
		return successStyle.Render(string(r))
	case domain.ResultFailure:
		return failureStyle.Render(string(r))
	default:
		return pendingStyle.Render(string(r))
	}
}

// RenderStageStatus returns a stage execution status with its icon, colored.
func RenderStageStatus(status string) string {
	label := statusIcon(status) + " " + status
	switch status {
	case "Succeeded":
		return successStyle.Render(label)
	case domain.StatusFailed:
		return failureStyle.Render(label)
	case "":
		return dimStyle.Render(label)
	default:
		return pendingStyle.Render(label)
	}
}

func statusIcon(status string) string {
	switch status {
	case "Succeeded":
		return "✓"
	case domain.StatusFailed:
		return "✗"
	case "InProgress":
		return "●"
	case "Stopping", "Stopped", "Cancelled":
		return "○"
	case "Superseded":
		return "↷"
	default:
		return "?"
	}
}

// truncate shortens s to at most max runes, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
