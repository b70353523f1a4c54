package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/bedside/internal/domain"
)

// AlarmRepo is the persistence boundary of the scheduler and the ringing
// machine: CRUD over alarms plus the single mutable snooze slot.
type AlarmRepo interface {
	List(ctx context.Context) ([]domain.Alarm, error)
	GetByID(ctx context.Context, id int64) (*domain.Alarm, error)
	InsertWeekly(ctx context.Context, label string, hour, minute int, mask domain.WeekdayMask, enabled bool) (int64, error)
	InsertOneShot(ctx context.Context, label string, hour, minute int, date time.Time, enabled bool) (int64, error)
	SetEnabled(ctx context.Context, id int64, enabled bool) error
	Delete(ctx context.Context, id int64) error

	// GetSnooze returns nil when no snooze is persisted.
	GetSnooze(ctx context.Context) (*domain.SnoozeSlot, error)
	// SetSnooze with nil clears the slot.
	SetSnooze(ctx context.Context, slot *domain.SnoozeSlot) error
}
