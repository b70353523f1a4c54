package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alexanderramin/bedside/internal/domain"
	"github.com/alexanderramin/bedside/internal/repository"
	"github.com/alexanderramin/bedside/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAlarmService(t *testing.T) (AlarmService, *repository.SQLiteAlarmRepo, *recordingObserver) {
	t.Helper()
	repo, database := testutil.NewTestAlarmRepo(t)
	obs := &recordingObserver{}
	return NewAlarmService(repo, testutil.NewTestUoW(database), obs), repo, obs
}

func TestAlarmService_AddWeekly(t *testing.T) {
	svc, _, obs := newAlarmService(t)
	ctx := context.Background()

	a, err := svc.AddWeekly(ctx, "  Wake up ", "07:00", domain.MaskWeekdays, true)
	require.NoError(t, err)
	assert.Equal(t, "Wake up", a.Label)
	assert.Equal(t, 7, a.Hour)
	assert.Equal(t, domain.MaskWeekdays, a.WeekdaysMask)
	assert.True(t, a.Enabled)
	assert.Equal(t, []string{"add-weekly"}, obs.names())
}

func TestAlarmService_AddWeekly_DefaultLabel(t *testing.T) {
	svc, _, _ := newAlarmService(t)

	a, err := svc.AddWeekly(context.Background(), "", "6:30", domain.MaskWeekend, false)
	require.NoError(t, err)
	assert.Equal(t, "Alarm", a.Label)
	assert.False(t, a.Enabled)
}

func TestAlarmService_AddWeekly_RejectsBadInput(t *testing.T) {
	svc, repo, obs := newAlarmService(t)
	ctx := context.Background()

	_, err := svc.AddWeekly(ctx, "x", "25:00", domain.MaskWeekdays, true)
	assert.ErrorIs(t, err, domain.ErrInvalidTimeFormat)

	_, err = svc.AddWeekly(ctx, "x", "07:00", domain.WeekdayMask(0x80), true)
	assert.ErrorIs(t, err, domain.ErrInvalidWeekday)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.Len(t, obs.events, 2)
	assert.False(t, obs.events[0].Success)
	assert.Error(t, obs.events[0].Err)
}

func TestAlarmService_AddOneShot(t *testing.T) {
	svc, _, _ := newAlarmService(t)

	date := time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC)
	a, err := svc.AddOneShot(context.Background(), "Flight", "05:15", date, true)
	require.NoError(t, err)
	require.True(t, a.IsOneShot())
	assert.Equal(t, "2025-06-21", a.OneShotDate.Format(domain.DateLayout))
	assert.Equal(t, 5, a.Hour)
	assert.Equal(t, 15, a.Minute)
}

func TestAlarmService_Next(t *testing.T) {
	svc, _, _ := newAlarmService(t)
	ctx := context.Background()

	next, err := svc.Next(ctx, testutil.RefMonday)
	require.NoError(t, err)
	assert.Nil(t, next)

	_, err = svc.AddWeekly(ctx, "Wake up", "07:00", domain.MaskWeekdays, true)
	require.NoError(t, err)

	saturday := testutil.At(5, 8, 0)
	next, err = svc.Next(ctx, saturday)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, testutil.At(7, 7, 0), next.TriggerAt)
}

func TestAlarmService_SetEnabled(t *testing.T) {
	svc, repo, _ := newAlarmService(t)
	ctx := context.Background()
	a, err := svc.AddWeekly(ctx, "x", "07:00", domain.MaskWeekdays, true)
	require.NoError(t, err)

	require.NoError(t, svc.SetEnabled(ctx, a.ID, false))
	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, got.Enabled)

	assert.ErrorIs(t, svc.SetEnabled(ctx, 999, true), repository.ErrNotFound)
}

func TestAlarmService_Delete_ClearsReferencingSnooze(t *testing.T) {
	svc, repo, _ := newAlarmService(t)
	ctx := context.Background()
	a, err := svc.AddWeekly(ctx, "x", "07:00", domain.MaskWeekdays, true)
	require.NoError(t, err)
	require.NoError(t, repo.SetSnooze(ctx, &domain.SnoozeSlot{Until: testutil.At(0, 7, 9), AlarmID: &a.ID}))

	require.NoError(t, svc.Delete(ctx, a.ID))

	slot, err := svc.SnoozeSlot(ctx)
	require.NoError(t, err)
	assert.Nil(t, slot)
	_, err = repo.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAlarmService_Delete_KeepsUnrelatedSnooze(t *testing.T) {
	svc, repo, _ := newAlarmService(t)
	ctx := context.Background()
	a, err := svc.AddWeekly(ctx, "a", "07:00", domain.MaskWeekdays, true)
	require.NoError(t, err)
	b, err := svc.AddWeekly(ctx, "b", "08:00", domain.MaskWeekdays, true)
	require.NoError(t, err)
	require.NoError(t, repo.SetSnooze(ctx, &domain.SnoozeSlot{Until: testutil.At(0, 7, 9), AlarmID: &b.ID}))

	require.NoError(t, svc.Delete(ctx, a.ID))

	slot, err := svc.SnoozeSlot(ctx)
	require.NoError(t, err)
	require.NotNil(t, slot)
	assert.Equal(t, b.ID, *slot.AlarmID)
}

func TestAlarmService_Delete_NotFound(t *testing.T) {
	svc, _, _ := newAlarmService(t)
	assert.ErrorIs(t, svc.Delete(context.Background(), 12), repository.ErrNotFound)
}

func TestAlarmService_Delete_RollbackWhenSnoozeClearFails(t *testing.T) {
	repo, database := testutil.NewTestAlarmRepo(t)
	ctx := context.Background()
	id := testutil.SeedWeekly(t, repo, "x", 7, 0, domain.MaskWeekdays)
	require.NoError(t, repo.SetSnooze(ctx, &domain.SnoozeSlot{Until: testutil.At(0, 7, 9), AlarmID: &id}))

	// write #1 = delete, #2 = snooze clear
	failUoW := &testutil.FailingWriteUoW{
		UoW:    testutil.NewTestUoW(database),
		FailOn: 2,
		Err:    fmt.Errorf("injected snooze clear failure"),
	}
	svc := NewAlarmService(repo, failUoW)

	err := svc.Delete(ctx, id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected snooze clear failure")

	_, err = repo.GetByID(ctx, id)
	require.NoError(t, err, "alarm must survive the rolled back delete")
	slot, err := repo.GetSnooze(ctx)
	require.NoError(t, err)
	require.NotNil(t, slot)
}

func TestAlarmService_Edit(t *testing.T) {
	svc, repo, _ := newAlarmService(t)
	ctx := context.Background()
	a, err := svc.AddWeekly(ctx, "Wake up", "07:00", domain.MaskWeekdays, false)
	require.NoError(t, err)
	require.NoError(t, repo.SetSnooze(ctx, &domain.SnoozeSlot{Until: testutil.At(0, 7, 9), AlarmID: &a.ID}))

	label, at := "Gym", "06:15"
	days := domain.MaskWeekend
	edited, err := svc.Edit(ctx, a.ID, AlarmEdit{Label: &label, TimeText: &at, Days: &days})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, edited.ID)
	assert.Equal(t, "Gym", edited.Label)
	assert.Equal(t, 6, edited.Hour)
	assert.Equal(t, 15, edited.Minute)
	assert.Equal(t, domain.MaskWeekend, edited.WeekdaysMask)
	assert.False(t, edited.Enabled, "edit preserves the enabled flag")

	_, err = repo.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	slot, err := repo.GetSnooze(ctx)
	require.NoError(t, err)
	require.NotNil(t, slot)
	assert.Equal(t, edited.ID, *slot.AlarmID, "snooze follows the edited alarm")
}

func TestAlarmService_Edit_WeeklyToOneShotAndBack(t *testing.T) {
	svc, _, _ := newAlarmService(t)
	ctx := context.Background()
	a, err := svc.AddWeekly(ctx, "x", "07:00", domain.MaskWeekdays, true)
	require.NoError(t, err)

	date := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	once, err := svc.Edit(ctx, a.ID, AlarmEdit{Date: &date})
	require.NoError(t, err)
	require.True(t, once.IsOneShot())
	assert.Equal(t, domain.WeekdayMask(0), once.WeekdaysMask)
	assert.Equal(t, 7, once.Hour)

	days := domain.MaskEveryDay
	weekly, err := svc.Edit(ctx, once.ID, AlarmEdit{Days: &days})
	require.NoError(t, err)
	assert.False(t, weekly.IsOneShot())
	assert.Equal(t, domain.MaskEveryDay, weekly.WeekdaysMask)
}

func TestAlarmService_Edit_Errors(t *testing.T) {
	svc, repo, _ := newAlarmService(t)
	ctx := context.Background()
	a, err := svc.AddWeekly(ctx, "x", "07:00", domain.MaskWeekdays, true)
	require.NoError(t, err)

	days := domain.MaskWeekend
	date := testutil.RefMonday
	_, err = svc.Edit(ctx, a.ID, AlarmEdit{Days: &days, Date: &date})
	assert.ErrorIs(t, err, ErrConflictingSchedule)

	bad := "7am"
	_, err = svc.Edit(ctx, a.ID, AlarmEdit{TimeText: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidTimeFormat)

	_, err = svc.Edit(ctx, 999, AlarmEdit{TimeText: &bad})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err, "failed edits leave the alarm in place")
	assert.Equal(t, 7, got.Hour)
}

func TestAlarmService_Edit_RollbackOnInsertFailure(t *testing.T) {
	repo, database := testutil.NewTestAlarmRepo(t)
	ctx := context.Background()
	id := testutil.SeedWeekly(t, repo, "keep", 7, 0, domain.MaskWeekdays)

	// write #1 = delete, #2 = insert
	failUoW := &testutil.FailingWriteUoW{UoW: testutil.NewTestUoW(database), FailOn: 2, Err: fmt.Errorf("injected insert failure")}
	svc := NewAlarmService(repo, failUoW)

	at := "08:00"
	_, err := svc.Edit(ctx, id, AlarmEdit{TimeText: &at})
	require.Error(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.Equal(t, 7, list[0].Hour)
}
