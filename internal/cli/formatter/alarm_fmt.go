package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/bedside/internal/domain"
	"github.com/alexanderramin/bedside/internal/service"
)

// FormatAlarmList renders alarms as a table. next maps alarm id to its next
// trigger; alarms without an entry show "never".
func FormatAlarmList(alarms []domain.Alarm, next map[int64]time.Time, now time.Time) string {
	headers := []string{"ID", "TIME", "LABEL", "REPEATS", "STATE", "NEXT RING"}
	rows := make([][]string, 0, len(alarms))
	for _, a := range alarms {
		nextCol := Dim("never")
		if at, ok := next[a.ID]; ok {
			nextCol = fmt.Sprintf("%s %s %s", RelativeDay(at, now), at.Format("15:04"), Dim("in "+Countdown(at.Sub(now))))
		}
		rows = append(rows, []string{
			Dim(strconv.FormatInt(a.ID, 10)),
			Bold(a.TimeText()),
			a.Label,
			a.Schedule(),
			EnabledPill(a.Enabled),
			nextCol,
		})
	}
	return RenderTable(headers, rows)
}

// FormatAlarm renders a single alarm on one line, for command confirmations.
func FormatAlarm(a domain.Alarm) string {
	return fmt.Sprintf("#%d %s %q (%s, %s)", a.ID, a.TimeText(), a.Label, a.Schedule(), enabledWord(a.Enabled))
}

func enabledWord(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

// FormatNext renders the next-alarm line: label, trigger time and countdown.
func FormatNext(next *domain.NextAlarm, now time.Time) string {
	if next == nil {
		return Dim("No alarms scheduled.")
	}
	return fmt.Sprintf("Next: %s %s %s  %s",
		Bold(next.Alarm.Label),
		RelativeDay(next.TriggerAt, now),
		next.TriggerAt.Format("15:04"),
		StyleBlue.Render("in "+Countdown(next.Until(now))),
	)
}

// FormatStateLine is the one-line summary the headless run loop prints on
// every state change.
func FormatStateLine(v service.View) string {
	var b strings.Builder
	b.WriteString(v.At.Format("15:04:05"))
	b.WriteString("  ")
	b.WriteString(PhaseBadge(v.Phase))
	switch v.Phase {
	case domain.PhaseRinging:
		fmt.Fprintf(&b, "  %s", v.Label)
		if v.Audio.Playing {
			fmt.Fprintf(&b, "  vol %3.0f%%", v.Audio.Volume*100)
		}
	case domain.PhaseSnoozed:
		if v.SnoozeUntil != nil {
			fmt.Fprintf(&b, "  until %s", v.SnoozeUntil.Format("15:04"))
		}
	}
	if v.Next != nil {
		fmt.Fprintf(&b, "  %s", FormatNext(v.Next, v.At))
	}
	return b.String()
}
