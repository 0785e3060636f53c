package repository

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/digest-scheduler/pkg/database"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "repo.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return db
}

func strPtr(s string) *string { return &s }
