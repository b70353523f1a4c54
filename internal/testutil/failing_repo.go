package testutil

import (
	"context"
	"sync"

	"github.com/alexanderramin/bedside/internal/domain"
	"github.com/alexanderramin/bedside/internal/repository"
)

// FlakyAlarmRepo wraps an AlarmRepo and returns the configured error from
// the named operations until the error is cleared.
type FlakyAlarmRepo struct {
	repository.AlarmRepo

	mu         sync.Mutex
	listErr    error
	getSnzErr  error
	snoozeErr  error
	enabledErr error
}

func NewFlakyAlarmRepo(inner repository.AlarmRepo) *FlakyAlarmRepo {
	return &FlakyAlarmRepo{AlarmRepo: inner}
}

func (f *FlakyAlarmRepo) FailList(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

func (f *FlakyAlarmRepo) FailGetSnooze(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getSnzErr = err
}

func (f *FlakyAlarmRepo) FailSetSnooze(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snoozeErr = err
}

func (f *FlakyAlarmRepo) FailSetEnabled(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabledErr = err
}

func (f *FlakyAlarmRepo) List(ctx context.Context) ([]domain.Alarm, error) {
	f.mu.Lock()
	err := f.listErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.AlarmRepo.List(ctx)
}

func (f *FlakyAlarmRepo) GetSnooze(ctx context.Context) (*domain.SnoozeSlot, error) {
	f.mu.Lock()
	err := f.getSnzErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.AlarmRepo.GetSnooze(ctx)
}

func (f *FlakyAlarmRepo) SetSnooze(ctx context.Context, slot *domain.SnoozeSlot) error {
	f.mu.Lock()
	err := f.snoozeErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.AlarmRepo.SetSnooze(ctx, slot)
}

func (f *FlakyAlarmRepo) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	f.mu.Lock()
	err := f.enabledErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.AlarmRepo.SetEnabled(ctx, id, enabled)
}
