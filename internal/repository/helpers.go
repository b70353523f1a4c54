package repository

import (
	"database/sql"
	"time"
)

// Column encodings shared by alarms and alarm_state: calendar dates as
// domain.DateLayout, snooze instants as RFC 3339, booleans as 0/1.

const instantLayout = time.RFC3339

// storedTime decodes a nullable TEXT column written with layout. NULL, empty
// and unparsable values all read as no time at all.
func storedTime(col sql.NullString, layout string, loc *time.Location) *time.Time {
	if !col.Valid || col.String == "" {
		return nil
	}
	t, err := time.ParseInLocation(layout, col.String, loc)
	if err != nil {
		return nil
	}
	return &t
}

func timeColumn(t *time.Time, layout string) any {
	if t == nil {
		return nil
	}
	return t.Format(layout)
}

func idColumn(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func flagColumn(b bool) int {
	if b {
		return 1
	}
	return 0
}
