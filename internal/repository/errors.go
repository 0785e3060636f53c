package repository

import (
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/digest-scheduler/pkg/database"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrAlreadyClaimed = errors.New("command is no longer pending")
)

// onSQLite reports whether upserts need the ON CONFLICT form.
func onSQLite(db *sqlx.DB) bool {
	return db.DriverName() == database.DriverSQLite
}

func offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}
