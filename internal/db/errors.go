package db

import (
	"errors"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("db: not found")

// ErrWinnerExists is returned by InsertWinner when the winner slot is taken.
var ErrWinnerExists = errors.New("db: winner already recorded")

// Constraint names the unique key a write collided with.
type Constraint string

const (
	ConstraintPhone   Constraint = "phone"
	ConstraintHandle  Constraint = "handle"
	ConstraintUnknown Constraint = "unknown"
)

// ConstraintError reports a uniqueness violation on participants.
type ConstraintError struct {
	Constraint Constraint
	Err        error
}

func (e *ConstraintError) Error() string {
	return "db: unique constraint violated: " + string(e.Constraint)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// uniqueViolation inspects err and returns the violated "table.column", or
// ok=false when err is not a uniqueness failure.
//
// The embedded driver reports an extended result code; the remote driver
// only forwards the server message, so both paths end up reading the column
// list SQLite puts after "UNIQUE constraint failed:".
func uniqueViolation(err error) (column string, ok bool) {
	if err == nil {
		return "", false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
		default:
			return "", false
		}
	}

	const marker = "unique constraint failed:"
	msg := strings.ToLower(err.Error())
	idx := strings.Index(msg, marker)
	if idx == -1 {
		return "", false
	}
	rest := strings.TrimSpace(msg[idx+len(marker):])
	if end := strings.IndexAny(rest, " ,()\n"); end != -1 {
		rest = rest[:end]
	}
	return rest, true
}

func participantConstraint(column string) Constraint {
	switch column {
	case "participants.phone":
		return ConstraintPhone
	case "participants.handle":
		return ConstraintHandle
	default:
		return ConstraintUnknown
	}
}
