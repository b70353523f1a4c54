package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/bedside/internal/cli/formatter"
	"github.com/alexanderramin/bedside/internal/domain"
)

const (
	kindWeekly  = "weekly"
	kindOneShot = "once"
)

func bedsideHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.MultiSelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func validateTimeOfDay(s string) error {
	if _, _, err := domain.ParseTimeOfDay(s); err != nil {
		return errors.New("use HH:MM, 24h")
	}
	return nil
}

func validateDate(s string) error {
	if _, err := time.Parse(domain.DateLayout, strings.TrimSpace(s)); err != nil {
		return errors.New("use YYYY-MM-DD format")
	}
	return nil
}

func weekdayOptions() []huh.Option[domain.Weekday] {
	opts := make([]huh.Option[domain.Weekday], 0, 7)
	for d := domain.Monday; d <= domain.Sunday; d++ {
		opts = append(opts, huh.NewOption(d.String(), d).Selected(d < domain.Saturday))
	}
	return opts
}

// runAlarmForm asks for a new alarm and returns it as the equivalent flags.
func runAlarmForm(now time.Time) (scheduleFlags, error) {
	var (
		label    = "Alarm"
		timeText = "07:00"
		kind     = kindWeekly
		days     []domain.Weekday
		date     = now.AddDate(0, 0, 1).Format(domain.DateLayout)
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Label").Value(&label),
			huh.NewInput().Title("Time (HH:MM)").Placeholder("07:00").Value(&timeText).Validate(validateTimeOfDay),
			huh.NewSelect[string]().
				Title("Repeats").
				Options(
					huh.NewOption("Weekly", kindWeekly),
					huh.NewOption("Once", kindOneShot),
				).
				Value(&kind),
		),
		huh.NewGroup(
			huh.NewMultiSelect[domain.Weekday]().
				Title("Days").
				Options(weekdayOptions()...).
				Value(&days),
		).WithHideFunc(func() bool { return kind != kindWeekly }),
		huh.NewGroup(
			huh.NewInput().Title("Date (YYYY-MM-DD)").Value(&date).Validate(validateDate),
		).WithHideFunc(func() bool { return kind != kindOneShot }),
	).WithTheme(bedsideHuhTheme()).WithShowHelp(false)

	if err := form.Run(); err != nil {
		return scheduleFlags{}, err
	}

	out := scheduleFlags{label: label, timeText: timeText}
	if kind == kindOneShot {
		out.date = date
		return out, nil
	}
	if len(days) == 0 {
		return scheduleFlags{}, fmt.Errorf("pick at least one day: %w", domain.ErrInvalidWeekday)
	}
	mask, err := domain.WeekdaysToMask(days)
	if err != nil {
		return scheduleFlags{}, err
	}
	out.days = daysFlag(mask)
	return out, nil
}

// daysFlag renders mask in the syntax ParseWeekdays accepts.
func daysFlag(mask domain.WeekdayMask) string {
	names := make([]string, 0, 7)
	for _, d := range mask.Days() {
		names = append(names, strings.ToLower(d.String()))
	}
	return strings.Join(names, ",")
}
