package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/bedside/internal/domain"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorDim    = lipgloss.Color("#928374")
	ColorNight  = lipgloss.Color("#665c54")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// PhaseStyle returns the style used for the ringing phase badge.
func PhaseStyle(phase domain.RingPhase) lipgloss.Style {
	switch phase {
	case domain.PhaseRinging:
		return StyleRed.Bold(true)
	case domain.PhaseSnoozed:
		return StyleYellow
	default:
		return StyleDim
	}
}

// PhaseBadge renders the phase as "● RINGING", "◐ SNOOZED" or "○ IDLE".
func PhaseBadge(phase domain.RingPhase) string {
	switch phase {
	case domain.PhaseRinging:
		return PhaseStyle(phase).Render("● RINGING")
	case domain.PhaseSnoozed:
		return PhaseStyle(phase).Render("◐ SNOOZED")
	default:
		return PhaseStyle(phase).Render("○ IDLE")
	}
}

// EnabledPill renders an alarm's enabled flag.
func EnabledPill(enabled bool) string {
	if enabled {
		return StyleGreen.Render("● on")
	}
	return StyleDim.Render("○ off")
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
