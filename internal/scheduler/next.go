package scheduler

import (
	"sort"
	"time"

	"github.com/alexanderramin/bedside/internal/domain"
)

// scanDays covers today plus a full week, so a weekly alarm whose time has
// already passed today rolls forward to the same weekday next week.
const scanDays = 8

// NextTrigger returns the first instant strictly after now at which a would
// ring, evaluated in now's location. Disabled alarms never trigger.
func NextTrigger(a domain.Alarm, now time.Time) (time.Time, bool) {
	if !a.Enabled {
		return time.Time{}, false
	}
	if a.IsOneShot() {
		return oneShotTrigger(a, now)
	}
	return weeklyTrigger(a, now)
}

func oneShotTrigger(a domain.Alarm, now time.Time) (time.Time, bool) {
	y, m, d := a.OneShotDate.Date()
	at := a.At(time.Date(y, m, d, 0, 0, 0, 0, now.Location()))
	if !at.After(now) {
		return time.Time{}, false
	}
	return at, true
}

func weeklyTrigger(a domain.Alarm, now time.Time) (time.Time, bool) {
	if a.WeekdaysMask == 0 {
		return time.Time{}, false
	}
	y, m, d := now.Date()
	for offset := 0; offset < scanDays; offset++ {
		// time.Date normalizes day overflow; At keeps wall-clock time across DST changes.
		at := a.At(time.Date(y, m, d+offset, 0, 0, 0, 0, now.Location()))
		if !domain.MaskHasDay(a.WeekdaysMask, domain.WeekdayOf(at)) {
			continue
		}
		if at.After(now) {
			return at, true
		}
	}
	return time.Time{}, false
}

// ComputeNext returns the alarm that rings soonest after now, or nil when no
// enabled alarm has an upcoming trigger. Identical trigger instants resolve to
// the lowest alarm id.
func ComputeNext(alarms []domain.Alarm, now time.Time) *domain.NextAlarm {
	var best *domain.NextAlarm
	for _, a := range alarms {
		at, ok := NextTrigger(a, now)
		if !ok {
			continue
		}
		if best == nil || before(at, a.ID, best.TriggerAt, best.Alarm.ID) {
			best = &domain.NextAlarm{Alarm: a, TriggerAt: at}
		}
	}
	return best
}

// Upcoming returns every enabled alarm with a trigger after now, soonest
// first, using the same ordering as ComputeNext.
func Upcoming(alarms []domain.Alarm, now time.Time) []domain.NextAlarm {
	var out []domain.NextAlarm
	for _, a := range alarms {
		if at, ok := NextTrigger(a, now); ok {
			out = append(out, domain.NextAlarm{Alarm: a, TriggerAt: at})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return before(out[i].TriggerAt, out[i].Alarm.ID, out[j].TriggerAt, out[j].Alarm.ID)
	})
	return out
}

func before(atA time.Time, idA int64, atB time.Time, idB int64) bool {
	if !atA.Equal(atB) {
		return atA.Before(atB)
	}
	return idA < idB
}
