package service

import (
	"context"
	"time"

	"github.com/alexanderramin/bedside/internal/audio"
	"github.com/alexanderramin/bedside/internal/domain"
)

// AlarmEdit lists the fields to change on an alarm; nil fields are kept.
// Setting Date turns the alarm into a one-shot, setting Days into a weekly alarm.
type AlarmEdit struct {
	Label    *string
	TimeText *string
	Days     *domain.WeekdayMask
	Date     *time.Time
}

type AlarmService interface {
	List(ctx context.Context) ([]domain.Alarm, error)
	Get(ctx context.Context, id int64) (*domain.Alarm, error)
	AddWeekly(ctx context.Context, label, timeText string, days domain.WeekdayMask, enabled bool) (*domain.Alarm, error)
	AddOneShot(ctx context.Context, label, timeText string, date time.Time, enabled bool) (*domain.Alarm, error)
	Edit(ctx context.Context, id int64, edit AlarmEdit) (*domain.Alarm, error)
	SetEnabled(ctx context.Context, id int64, enabled bool) error
	Delete(ctx context.Context, id int64) error
	Next(ctx context.Context, now time.Time) (*domain.NextAlarm, error)
	SnoozeSlot(ctx context.Context) (*domain.SnoozeSlot, error)
}

// AudioPlayer is the part of audio.Engine the ringing machine drives.
type AudioPlayer interface {
	PlayLoopWithRamp(path string, ramp audio.Ramp) error
	Stop()
	Status() audio.Status
}
