package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/onurcolak/digest-scheduler/pkg/logger"
)

// NewSQLiteDB opens a single-file database for single-node deployments and
// tests.
func NewSQLiteDB(path string) (*sqlx.DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite"

	db, err := sqlx.Connect(DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// One writer at a time; the tick loop is serial anyway.
	db.SetMaxOpenConns(1)

	logger.Infof("Opened SQLite database at %s", path)
	return db, nil
}
