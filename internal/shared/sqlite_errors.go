// Package shared holds small cross-cutting helpers for the wizard
// service.
//
//nolint:revive // "shared" is an intentional package name for cross-cutting helpers.
package shared

import "strings"

// IsSQLiteConflictError reports whether err is a SQLite concurrency
// failure: either SQLITE_BUSY or "database is locked". The session
// store retries writes once on these.
func IsSQLiteConflictError(err error) bool {
	if err == nil {
		return false
	}
	return isBusy(err) || isLocked(err)
}

// isBusy matches SQLITE_BUSY, raised when another connection holds
// the write lock.
func isBusy(err error) bool {
	return strings.Contains(err.Error(), "SQLITE_BUSY")
}

// isLocked matches the "database is locked" form of the same
// condition.
func isLocked(err error) bool {
	return strings.Contains(err.Error(), "database is locked")
}
