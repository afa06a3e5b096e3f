// ABOUTME: Shared lipgloss styles and small render helpers for the terminal UI.
// ABOUTME: Phase colours come from the models so the TUI matches the API mirror.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

var (
	white  = lipgloss.Color("#FFFFFF")
	gray   = lipgloss.Color("#9CA3AF")
	dim    = lipgloss.Color("#6B7280")
	green  = lipgloss.Color("#22C55E")
	amber  = lipgloss.Color("#F59E0B")
	danger = lipgloss.Color("#EF4444")

	mutedStyle  = lipgloss.NewStyle().Foreground(gray)
	helpStyle   = lipgloss.NewStyle().Foreground(dim)
	helpKey     = lipgloss.NewStyle().Foreground(white).Bold(true)
	noticeStyle = lipgloss.NewStyle().Foreground(green)
	warnStyle   = lipgloss.NewStyle().Foreground(amber)
	errorStyle  = lipgloss.NewStyle().Foreground(danger)
	frameStyle  = lipgloss.NewStyle().Padding(1, 2)
)

const barWidth = 40

func titleStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color))
}

func clockStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).MarginTop(1).MarginBottom(1)
}

func newBar(color string) progress.Model {
	return progress.New(
		progress.WithSolidFill(color),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
}

type binding struct {
	key  string
	desc string
}

func renderHelp(bindings []binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		parts = append(parts, helpKey.Render(b.key)+" "+helpStyle.Render(b.desc))
	}
	return strings.Join(parts, helpStyle.Render(" • "))
}
