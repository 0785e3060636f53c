package database

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

const mysqlErrNoSuchTable = 1146

// IsMissingTable reports whether err comes from querying a table that has not
// been created yet.
func IsMissingTable(err error) bool {
	if err == nil {
		return false
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlErrNoSuchTable
	}

	// modernc.org/sqlite reports this as SQLITE_ERROR with a text message only.
	return strings.Contains(err.Error(), "no such table")
}
