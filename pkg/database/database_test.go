package database

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"

	"github.com/onurcolak/digest-scheduler/environments"
)

func TestRunMigrationsCreatesTablesOnSQLite(t *testing.T) {
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// second run is a no-op
	if err := RunMigrations(db); err != nil {
		t.Fatalf("migrate again: %v", err)
	}

	for _, table := range []string{"messages", "chats", "schedules", "commands", "system_status", "reports"} {
		var n int
		if err := db.Get(&n, "SELECT COUNT(*) FROM "+table); err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestIsMissingTable(t *testing.T) {
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "empty.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	var n int
	err = db.Get(&n, "SELECT COUNT(*) FROM system_status")
	if !IsMissingTable(err) {
		t.Errorf("expected missing table for sqlite error %v", err)
	}

	mysqlErr := fmt.Errorf("query: %w", &mysql.MySQLError{Number: 1146, Message: "Table 'x.reports' doesn't exist"})
	if !IsMissingTable(mysqlErr) {
		t.Error("expected missing table for mysql 1146")
	}

	if IsMissingTable(&mysql.MySQLError{Number: 1062}) {
		t.Error("duplicate key is not a missing table")
	}
	if IsMissingTable(errors.New("connection refused")) {
		t.Error("unrelated error reported as missing table")
	}
	if IsMissingTable(nil) {
		t.Error("nil is not a missing table")
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(environments.DatabaseConfig{Driver: "postgres"}); err == nil {
		t.Error("expected error for unsupported driver")
	}
}
