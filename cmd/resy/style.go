package main

import (
	"github.com/brizzai/resy-client/internal/models"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#15202b")).
			Background(lipgloss.Color("#f56a96")).
			Padding(0, 1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#6c6c6c", Dark: "#9e9e9e"})

	statusStyles = map[models.ReservationStatus]lipgloss.Style{
		models.StatusConfirmed: lipgloss.NewStyle().Foreground(lipgloss.Color("#56FF4E")),
		models.StatusPending:   lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#b58900", Dark: "#ffd75f"}),
		models.StatusCancelled: lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#f56a96", Dark: "#f23a74"}),
		models.StatusCompleted: mutedStyle,
	}
)

func renderStatus(s models.ReservationStatus) string {
	style, ok := statusStyles[s]
	if !ok {
		style = mutedStyle
	}
	return style.Render(string(s))
}
