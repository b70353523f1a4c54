package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate applies the schema. Every statement is idempotent so it runs on
// each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN is re-run on every open.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS alarms (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		label         TEXT NOT NULL,
		hour          INTEGER NOT NULL CHECK(hour BETWEEN 0 AND 23),
		minute        INTEGER NOT NULL CHECK(minute BETWEEN 0 AND 59),
		weekdays_mask INTEGER NOT NULL DEFAULT 0 CHECK(weekdays_mask BETWEEN 0 AND 127),
		enabled       INTEGER NOT NULL DEFAULT 1,
		one_shot_date TEXT,
		CHECK(one_shot_date IS NULL OR weekdays_mask = 0)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alarms_enabled ON alarms(enabled)`,
	`CREATE TABLE IF NOT EXISTS alarm_state (
		id              INTEGER PRIMARY KEY CHECK(id = 1),
		snooze_until    TEXT,
		snooze_alarm_id INTEGER
	)`,
	`INSERT OR IGNORE INTO alarm_state (id, snooze_until, snooze_alarm_id) VALUES (1, NULL, NULL)`,
	`ALTER TABLE alarms ADD COLUMN created_at TEXT NOT NULL DEFAULT ''`,
}
