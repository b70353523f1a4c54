package domain

import "time"

type RingPhase string

const (
	PhaseIdle    RingPhase = "idle"
	PhaseRinging RingPhase = "ringing"
	PhaseSnoozed RingPhase = "snoozed"
)

// SnoozeSlot is the persisted snooze record. AlarmID is nil when the snooze
// was requested with no alarm configured.
type SnoozeSlot struct {
	Until   time.Time
	AlarmID *int64
}

// RingingState holds exactly one of Idle, Ringing or Snoozed.
// AlarmID and Label are set while Ringing; SnoozeUntil and AlarmID while Snoozed.
type RingingState struct {
	Phase       RingPhase
	AlarmID     *int64
	Label       string
	SnoozeUntil *time.Time
}

func IdleState() RingingState {
	return RingingState{Phase: PhaseIdle}
}

func RingingFor(alarmID *int64, label string) RingingState {
	return RingingState{Phase: PhaseRinging, AlarmID: copyID(alarmID), Label: label}
}

func SnoozedUntil(until time.Time, alarmID *int64) RingingState {
	u := until
	return RingingState{Phase: PhaseSnoozed, AlarmID: copyID(alarmID), SnoozeUntil: &u}
}

// Refers reports whether the state is linked to alarm id.
func (s RingingState) Refers(id int64) bool {
	return s.Phase != PhaseIdle && s.AlarmID != nil && *s.AlarmID == id
}

// SnoozeDue reports whether a snooze has expired at now. Both sides are
// truncated to the minute before comparing.
func (s RingingState) SnoozeDue(now time.Time) bool {
	if s.Phase != PhaseSnoozed || s.SnoozeUntil == nil {
		return false
	}
	return !now.Truncate(time.Minute).Before(s.SnoozeUntil.Truncate(time.Minute))
}

// SameAlarm compares two optional alarm ids.
func SameAlarm(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
