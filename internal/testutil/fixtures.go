package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/bedside/internal/domain"
	"github.com/alexanderramin/bedside/internal/repository"
	"github.com/stretchr/testify/require"
)

// Monday 2025-06-16 07:00 UTC; a stable reference for clock-dependent tests.
var RefMonday = time.Date(2025, 6, 16, 7, 0, 0, 0, time.UTC)

// At returns RefMonday shifted by days at the given time of day.
func At(days, hour, minute int) time.Time {
	d := RefMonday.AddDate(0, 0, days)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.UTC)
}

type AlarmOption func(*domain.Alarm)

func WithID(id int64) AlarmOption {
	return func(a *domain.Alarm) { a.ID = id }
}

func WithLabel(label string) AlarmOption {
	return func(a *domain.Alarm) { a.Label = label }
}

func Disabled() AlarmOption {
	return func(a *domain.Alarm) { a.Enabled = false }
}

// NewWeeklyAlarm builds an enabled weekly alarm value (id 1 unless overridden).
func NewWeeklyAlarm(hour, minute int, mask domain.WeekdayMask, opts ...AlarmOption) domain.Alarm {
	a := domain.Alarm{
		ID:           1,
		Label:        "Alarm",
		Hour:         hour,
		Minute:       minute,
		WeekdaysMask: mask,
		Enabled:      true,
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// NewOneShotAlarm builds an enabled one-shot alarm value for the date of day.
func NewOneShotAlarm(hour, minute int, day time.Time, opts ...AlarmOption) domain.Alarm {
	y, m, d := day.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	a := domain.Alarm{
		ID:          1,
		Label:       "Once",
		Hour:        hour,
		Minute:      minute,
		Enabled:     true,
		OneShotDate: &date,
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// SeedWeekly inserts a weekly alarm through repo and returns its id.
func SeedWeekly(t *testing.T, repo repository.AlarmRepo, label string, hour, minute int, mask domain.WeekdayMask) int64 {
	t.Helper()
	id, err := repo.InsertWeekly(context.Background(), label, hour, minute, mask, true)
	require.NoError(t, err)
	return id
}

// SeedOneShot inserts a one-shot alarm through repo and returns its id.
func SeedOneShot(t *testing.T, repo repository.AlarmRepo, label string, hour, minute int, date time.Time) int64 {
	t.Helper()
	id, err := repo.InsertOneShot(context.Background(), label, hour, minute, date, true)
	require.NoError(t, err)
	return id
}
