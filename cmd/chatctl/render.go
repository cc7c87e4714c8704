package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"pitchtalk-backend/internal/models"
)

var (
	userLabel      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	assistantLabel = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func printTurns(w io.Writer, turns []models.Turn) {
	for _, t := range turns {
		printTurn(w, t)
	}
}

func printTurn(w io.Writer, t models.Turn) {
	label := userLabel.Render("you")
	if t.Role == models.RoleAssistant {
		label = assistantLabel.Render("ai ")
	}
	fmt.Fprintf(w, "%s %s\n", label, t.Content)
}
