package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/bedside/internal/cli/formatter"
	"github.com/alexanderramin/bedside/internal/domain"
	"github.com/alexanderramin/bedside/internal/service"
)

// ringer is the part of service.RingingMachine the clock face drives.
type ringer interface {
	Tick(ctx context.Context, now time.Time) error
	Snooze(ctx context.Context, now time.Time, minutes int) (domain.RingingState, error)
	Stop(ctx context.Context, now time.Time) error
	View(now time.Time) service.View
}

type clockTickMsg time.Time

type clockKeyMap struct {
	Snooze key.Binding
	Stop   key.Binding
	Quit   key.Binding
}

func newClockKeyMap() clockKeyMap {
	return clockKeyMap{
		Snooze: key.NewBinding(key.WithKeys("s", " ", "space"), key.WithHelp("s/space", "snooze")),
		Stop:   key.NewBinding(key.WithKeys("x", "enter"), key.WithHelp("x/enter", "stop")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// clockModel is the full-screen clock face. Every tick advances the ringing
// machine and re-renders from its View.
type clockModel struct {
	ctx      context.Context
	machine  ringer
	now      func() time.Time
	interval time.Duration

	keys   clockKeyMap
	volume progress.Model
	view   service.View
	err    error
	width  int
}

func newClockModel(ctx context.Context, machine ringer, now func() time.Time, interval time.Duration) clockModel {
	return clockModel{
		ctx:      ctx,
		machine:  machine,
		now:      now,
		interval: interval,
		keys:     newClockKeyMap(),
		volume: progress.New(
			progress.WithSolidFill(string(formatter.ColorHeader)),
			progress.WithoutPercentage(),
			progress.WithWidth(30),
		),
	}
}

func (m clockModel) Init() tea.Cmd {
	now := m.now()
	return func() tea.Msg { return clockTickMsg(now) }
}

func (m clockModel) scheduleTick() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return clockTickMsg(m.now()) })
}

func (m clockModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.volume.Width = min(max(msg.Width/2, 10), 60)
		return m, nil

	case clockTickMsg:
		now := time.Time(msg)
		m.err = m.machine.Tick(m.ctx, now)
		m.view = m.machine.View(now)
		return m, m.scheduleTick()

	case tea.KeyMsg:
		now := m.now()
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Snooze):
			_, m.err = m.machine.Snooze(m.ctx, now, 0)
		case key.Matches(msg, m.keys.Stop):
			m.err = m.machine.Stop(m.ctx, now)
		default:
			return m, nil
		}
		m.view = m.machine.View(now)
		return m, nil
	}
	return m, nil
}

func (m clockModel) View() string {
	v := m.view
	if v.At.IsZero() {
		return formatter.Dim("Starting…")
	}

	face := lipgloss.NewStyle().Foreground(formatter.ColorFg).Bold(true)
	if v.Night {
		face = lipgloss.NewStyle().Foreground(formatter.ColorNight)
	}

	var b strings.Builder
	b.WriteString(face.Render(v.At.Format("15:04:05")))
	b.WriteString("\n")
	b.WriteString(formatter.Dim(v.At.Format("Monday, January 2")))
	b.WriteString("\n\n")

	switch v.Phase {
	case domain.PhaseRinging:
		fmt.Fprintf(&b, "%s  %s\n", formatter.PhaseBadge(v.Phase), formatter.Bold(v.Label))
		if v.Audio.Playing {
			fmt.Fprintf(&b, "%s %s\n", m.volume.ViewAs(v.Audio.Volume), formatter.Dim(fmt.Sprintf("%3.0f%%", v.Audio.Volume*100)))
		} else {
			b.WriteString(formatter.Dim("(no sound)") + "\n")
		}
	case domain.PhaseSnoozed:
		until := ""
		if v.SnoozeUntil != nil {
			until = " until " + v.SnoozeUntil.Format("15:04") + " " + formatter.Dim("in "+formatter.Countdown(v.SnoozeUntil.Sub(v.At)))
		}
		fmt.Fprintf(&b, "%s%s\n", formatter.PhaseBadge(v.Phase), until)
	default:
		b.WriteString(formatter.PhaseBadge(v.Phase) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(formatter.FormatNext(v.Next, v.At))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString("\n" + formatter.StyleRed.Render("Error: "+m.err.Error()) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(formatter.Dim(helpLine(m.keys.Snooze, m.keys.Stop, m.keys.Quit)))
	return b.String()
}

func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
