package database

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const mysqlDuplicateEntry = 1062

// IsDuplicateKey reports whether err is a unique-constraint violation from
// either supported driver.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return false
}

// DuplicateKeyName returns the key or column a unique violation hit, such as
// "users.uq_users_email" on MySQL or "users.email" on SQLite. It returns ""
// when err is not a duplicate or the driver message has no key.
func DuplicateKeyName(err error) string {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		if myErr.Number != mysqlDuplicateEntry {
			return ""
		}
		const marker = "for key '"
		if i := strings.LastIndex(myErr.Message, marker); i >= 0 {
			return strings.TrimSuffix(myErr.Message[i+len(marker):], "'")
		}
		return ""
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) && IsDuplicateKey(liteErr) {
		const marker = "constraint failed: "
		msg := liteErr.Error()
		i := strings.LastIndex(msg, marker)
		if i < 0 {
			return ""
		}
		key := msg[i+len(marker):]
		if j := strings.Index(key, " ("); j >= 0 {
			key = key[:j]
		}
		return strings.TrimSpace(key)
	}
	return ""
}
