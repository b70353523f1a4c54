package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/alexanderramin/bedside/internal/db"
	"github.com/alexanderramin/bedside/internal/repository"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The database is closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewTestAlarmRepo returns an alarm repo on a fresh in-memory database that
// reports times in UTC, matching the fixed test clocks.
func NewTestAlarmRepo(t *testing.T) (*repository.SQLiteAlarmRepo, *sql.DB) {
	t.Helper()
	database := NewTestDB(t)
	return repository.NewSQLiteAlarmRepo(database).InLocation(time.UTC), database
}

// NewTestUoW creates a UnitOfWork backed by the given test database.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}
