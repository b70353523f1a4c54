package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/bedside/internal/db"
	"github.com/alexanderramin/bedside/internal/domain"
)

// SQLiteAlarmRepo implements AlarmRepo on the alarms and alarm_state tables.
type SQLiteAlarmRepo struct {
	db  db.DBTX
	loc *time.Location
}

// NewSQLiteAlarmRepo creates a repo whose dates and snooze instants are
// returned in the local time zone.
func NewSQLiteAlarmRepo(conn db.DBTX) *SQLiteAlarmRepo {
	return &SQLiteAlarmRepo{db: conn, loc: time.Local}
}

// InLocation returns a copy of the repo that returns times in loc.
func (r *SQLiteAlarmRepo) InLocation(loc *time.Location) *SQLiteAlarmRepo {
	return &SQLiteAlarmRepo{db: r.db, loc: loc}
}

const alarmColumns = `id, label, hour, minute, weekdays_mask, enabled, one_shot_date`

func (r *SQLiteAlarmRepo) List(ctx context.Context) ([]domain.Alarm, error) {
	query := `SELECT ` + alarmColumns + ` FROM alarms ORDER BY hour, minute, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing alarms: %w", err)
	}
	defer rows.Close()

	var alarms []domain.Alarm
	for rows.Next() {
		a, err := r.scanAlarm(rows)
		if err != nil {
			return nil, err
		}
		alarms = append(alarms, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating alarms: %w", err)
	}
	return alarms, nil
}

func (r *SQLiteAlarmRepo) GetByID(ctx context.Context, id int64) (*domain.Alarm, error) {
	query := `SELECT ` + alarmColumns + ` FROM alarms WHERE id = ?`
	a, err := r.scanAlarm(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("alarm %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return a, nil
}

func (r *SQLiteAlarmRepo) InsertWeekly(ctx context.Context, label string, hour, minute int, mask domain.WeekdayMask, enabled bool) (int64, error) {
	return r.insert(ctx, label, hour, minute, mask, enabled, nil)
}

func (r *SQLiteAlarmRepo) InsertOneShot(ctx context.Context, label string, hour, minute int, date time.Time, enabled bool) (int64, error) {
	return r.insert(ctx, label, hour, minute, 0, enabled, &date)
}

func (r *SQLiteAlarmRepo) insert(ctx context.Context, label string, hour, minute int, mask domain.WeekdayMask, enabled bool, date *time.Time) (int64, error) {
	query := `INSERT INTO alarms (label, hour, minute, weekdays_mask, enabled, one_shot_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		label,
		hour,
		minute,
		int(mask),
		flagColumn(enabled),
		timeColumn(date, domain.DateLayout),
		time.Now().UTC().Format(instantLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting alarm: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading alarm id: %w", err)
	}
	return id, nil
}

func (r *SQLiteAlarmRepo) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE alarms SET enabled = ? WHERE id = ?`, flagColumn(enabled), id)
	if err != nil {
		return fmt.Errorf("updating alarm enabled: %w", err)
	}
	return expectOneRow(res, id)
}

func (r *SQLiteAlarmRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM alarms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting alarm: %w", err)
	}
	return expectOneRow(res, id)
}

func (r *SQLiteAlarmRepo) GetSnooze(ctx context.Context) (*domain.SnoozeSlot, error) {
	var until sql.NullString
	var alarmID sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT snooze_until, snooze_alarm_id FROM alarm_state WHERE id = 1`).Scan(&until, &alarmID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("reading snooze state: %w", err)
	}

	t := storedTime(until, instantLayout, r.loc)
	if t == nil {
		return nil, nil
	}
	slot := &domain.SnoozeSlot{Until: *t}
	if alarmID.Valid {
		id := alarmID.Int64
		slot.AlarmID = &id
	}
	return slot, nil
}

func (r *SQLiteAlarmRepo) SetSnooze(ctx context.Context, slot *domain.SnoozeSlot) error {
	var until *time.Time
	var alarmID *int64
	if slot != nil {
		u := slot.Until
		until = &u
		alarmID = slot.AlarmID
	}
	query := `INSERT INTO alarm_state (id, snooze_until, snooze_alarm_id) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET snooze_until = excluded.snooze_until, snooze_alarm_id = excluded.snooze_alarm_id`
	_, err := r.db.ExecContext(ctx, query,
		timeColumn(until, instantLayout),
		idColumn(alarmID),
	)
	if err != nil {
		return fmt.Errorf("writing snooze state: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteAlarmRepo) scanAlarm(row rowScanner) (*domain.Alarm, error) {
	var a domain.Alarm
	var mask, enabled int
	var oneShot sql.NullString

	err := row.Scan(&a.ID, &a.Label, &a.Hour, &a.Minute, &mask, &enabled, &oneShot)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning alarm: %w", err)
	}

	a.WeekdaysMask = domain.WeekdayMask(mask)
	a.Enabled = enabled != 0
	a.OneShotDate = storedTime(oneShot, domain.DateLayout, r.loc)
	if oneShot.Valid && oneShot.String != "" && a.OneShotDate == nil {
		return nil, fmt.Errorf("alarm %d: malformed one_shot_date %q", a.ID, oneShot.String)
	}
	return &a, nil
}

func expectOneRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("alarm %d: %w", id, ErrNotFound)
	}
	return nil
}
