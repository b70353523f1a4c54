package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/bedside/internal/db"
	"github.com/alexanderramin/bedside/internal/domain"
	"github.com/alexanderramin/bedside/internal/repository"
	"github.com/alexanderramin/bedside/internal/scheduler"
)

var ErrConflictingSchedule = errors.New("alarm cannot repeat weekly and be one-shot at the same time")

const defaultLabel = "Alarm"

type alarmService struct {
	alarms   repository.AlarmRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewAlarmService(alarms repository.AlarmRepo, uow db.UnitOfWork, observers ...UseCaseObserver) AlarmService {
	return &alarmService{
		alarms:   alarms,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *alarmService) List(ctx context.Context) ([]domain.Alarm, error) {
	return s.alarms.List(ctx)
}

func (s *alarmService) Get(ctx context.Context, id int64) (*domain.Alarm, error) {
	return s.alarms.GetByID(ctx, id)
}

func (s *alarmService) AddWeekly(ctx context.Context, label, timeText string, days domain.WeekdayMask, enabled bool) (a *domain.Alarm, err error) {
	startedAt := time.Now()
	fields := map[string]any{"time": timeText, "days": days.String()}
	defer func() { observe(ctx, s.observer, "add-weekly", startedAt, err, fields) }()

	hour, minute, err := domain.ParseTimeOfDay(timeText)
	if err != nil {
		return nil, err
	}
	if days > domain.MaskEveryDay {
		return nil, fmt.Errorf("mask %#x: %w", uint8(days), domain.ErrInvalidWeekday)
	}
	id, err := s.alarms.InsertWeekly(ctx, labelOrDefault(label), hour, minute, days, enabled)
	if err != nil {
		return nil, err
	}
	fields["id"] = id
	return s.alarms.GetByID(ctx, id)
}

func (s *alarmService) AddOneShot(ctx context.Context, label, timeText string, date time.Time, enabled bool) (a *domain.Alarm, err error) {
	startedAt := time.Now()
	fields := map[string]any{"time": timeText, "date": date.Format(domain.DateLayout)}
	defer func() { observe(ctx, s.observer, "add-one-shot", startedAt, err, fields) }()

	hour, minute, err := domain.ParseTimeOfDay(timeText)
	if err != nil {
		return nil, err
	}
	id, err := s.alarms.InsertOneShot(ctx, labelOrDefault(label), hour, minute, date, enabled)
	if err != nil {
		return nil, err
	}
	fields["id"] = id
	return s.alarms.GetByID(ctx, id)
}

// Edit replaces the alarm with an edited copy inside one transaction. The
// replacement gets a new id; a snooze slot pointing at the old id follows it.
func (s *alarmService) Edit(ctx context.Context, id int64, edit AlarmEdit) (a *domain.Alarm, err error) {
	startedAt := time.Now()
	fields := map[string]any{"id": id}
	defer func() { observe(ctx, s.observer, "edit", startedAt, err, fields) }()

	if edit.Days != nil && edit.Date != nil {
		return nil, ErrConflictingSchedule
	}
	var newID int64
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txAlarms := repository.NewSQLiteAlarmRepo(tx)

		cur, err := txAlarms.GetByID(ctx, id)
		if err != nil {
			return err
		}
		next, err := applyEdit(*cur, edit)
		if err != nil {
			return err
		}

		if err := txAlarms.Delete(ctx, id); err != nil {
			return err
		}
		if next.IsOneShot() {
			newID, err = txAlarms.InsertOneShot(ctx, next.Label, next.Hour, next.Minute, *next.OneShotDate, next.Enabled)
		} else {
			newID, err = txAlarms.InsertWeekly(ctx, next.Label, next.Hour, next.Minute, next.WeekdaysMask, next.Enabled)
		}
		if err != nil {
			return err
		}

		slot, err := txAlarms.GetSnooze(ctx)
		if err != nil {
			return err
		}
		if slot != nil && slot.AlarmID != nil && *slot.AlarmID == id {
			slot.AlarmID = &newID
			return txAlarms.SetSnooze(ctx, slot)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("editing alarm %d: %w", id, err)
	}
	fields["new_id"] = newID
	return s.alarms.GetByID(ctx, newID)
}

func applyEdit(a domain.Alarm, edit AlarmEdit) (domain.Alarm, error) {
	if edit.Label != nil {
		a.Label = labelOrDefault(*edit.Label)
	}
	if edit.TimeText != nil {
		hour, minute, err := domain.ParseTimeOfDay(*edit.TimeText)
		if err != nil {
			return a, err
		}
		a.Hour, a.Minute = hour, minute
	}
	if edit.Days != nil {
		if *edit.Days > domain.MaskEveryDay {
			return a, fmt.Errorf("mask %#x: %w", uint8(*edit.Days), domain.ErrInvalidWeekday)
		}
		a.WeekdaysMask = *edit.Days
		a.OneShotDate = nil
	}
	if edit.Date != nil {
		d := *edit.Date
		a.OneShotDate = &d
		a.WeekdaysMask = 0
	}
	return a, nil
}

func (s *alarmService) SetEnabled(ctx context.Context, id int64, enabled bool) (err error) {
	startedAt := time.Now()
	defer func() {
		observe(ctx, s.observer, "set-enabled", startedAt, err, map[string]any{"id": id, "enabled": enabled})
	}()
	return s.alarms.SetEnabled(ctx, id, enabled)
}

// Delete removes the alarm and clears a persisted snooze that points at it.
func (s *alarmService) Delete(ctx context.Context, id int64) (err error) {
	startedAt := time.Now()
	defer func() { observe(ctx, s.observer, "delete", startedAt, err, map[string]any{"id": id}) }()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txAlarms := repository.NewSQLiteAlarmRepo(tx)
		if err := txAlarms.Delete(ctx, id); err != nil {
			return err
		}
		slot, err := txAlarms.GetSnooze(ctx)
		if err != nil {
			return err
		}
		if slot != nil && slot.AlarmID != nil && *slot.AlarmID == id {
			return txAlarms.SetSnooze(ctx, nil)
		}
		return nil
	})
}

func (s *alarmService) Next(ctx context.Context, now time.Time) (*domain.NextAlarm, error) {
	alarms, err := s.alarms.List(ctx)
	if err != nil {
		return nil, err
	}
	return scheduler.ComputeNext(alarms, now), nil
}

func (s *alarmService) SnoozeSlot(ctx context.Context) (*domain.SnoozeSlot, error) {
	return s.alarms.GetSnooze(ctx)
}

func labelOrDefault(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return defaultLabel
	}
	return label
}
