package domain

import (
	"fmt"
	"time"
)

// Alarm is either weekly-repeating (OneShotDate nil) or one-shot on a single
// calendar date, in which case WeekdaysMask is ignored and stored as 0.
type Alarm struct {
	ID           int64
	Label        string
	Hour         int
	Minute       int
	WeekdaysMask WeekdayMask
	Enabled      bool
	OneShotDate  *time.Time
}

func (a Alarm) IsOneShot() bool {
	return a.OneShotDate != nil
}

// TimeText formats the alarm's time of day as HH:MM.
func (a Alarm) TimeText() string {
	return fmt.Sprintf("%02d:%02d", a.Hour, a.Minute)
}

// At combines the calendar date of day with the alarm's time of day, in day's location.
func (a Alarm) At(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, a.Hour, a.Minute, 0, 0, day.Location())
}

// Schedule describes when the alarm repeats, for listings.
func (a Alarm) Schedule() string {
	if a.OneShotDate != nil {
		return "once " + a.OneShotDate.Format(DateLayout)
	}
	return a.WeekdaysMask.String()
}

// NextAlarm is the computed next trigger among a set of alarms. It is never
// persisted; recompute it whenever the alarm set or the clock moves.
type NextAlarm struct {
	Alarm     Alarm
	TriggerAt time.Time
}

// Until returns the time remaining from now to the trigger, floored at zero.
func (n NextAlarm) Until(now time.Time) time.Duration {
	d := n.TriggerAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
