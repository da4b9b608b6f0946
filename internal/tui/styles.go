package tui

import (
	"github.com/charmbracelet/lipgloss"

	"chainwatch-sim/internal/view"
)

const (
	cellWidth  = 12 // including border
	cellHeight = 3
	tileWidth  = 20
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	faintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	valueStyle   = lipgloss.NewStyle().Bold(true)
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
)

var accents = map[string]lipgloss.Color{
	"green":  lipgloss.Color("2"),
	"blue":   lipgloss.Color("4"),
	"purple": lipgloss.Color("5"),
	"orange": lipgloss.Color("208"),
	"yellow": lipgloss.Color("3"),
	"red":    lipgloss.Color("1"),
}

func accentColor(name string) lipgloss.Color {
	if c, ok := accents[name]; ok {
		return c
	}
	return lipgloss.Color("8")
}

func toneColor(t view.Tone) lipgloss.Color {
	switch t {
	case view.ToneOK:
		return lipgloss.Color("2")
	case view.ToneWarn:
		return lipgloss.Color("3")
	case view.ToneDanger:
		return lipgloss.Color("1")
	case view.ToneInfo:
		return lipgloss.Color("6")
	case view.ToneMuted:
		return lipgloss.Color("8")
	}
	return lipgloss.Color("7")
}
