package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		Padding(1, 2)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// Countdown renders a remaining duration the way the clock face shows it:
// "1h 05m" above an hour, "3m 09s" above a minute, otherwise "42s".
// Negative durations render as "0s".
func Countdown(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// RelativeDay names the calendar day of t as seen from now: "Today",
// "Tomorrow", the weekday within a week, else the date.
func RelativeDay(t, now time.Time) string {
	ty, tm, td := t.Date()
	ny, nm, nd := now.In(t.Location()).Date()
	tDay := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	nDay := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	days := int(tDay.Sub(nDay).Hours() / 24)

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days > 1 && days < 7:
		return t.Format("Monday")
	default:
		return t.Format("Mon Jan 2")
	}
}
