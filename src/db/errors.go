package db

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// ConnectionError reports a failed session establishment. The message
// names the driver but never echoes the DSN or credentials, which may
// contain a password.
type ConnectionError struct {
	Driver  string
	Wrapped error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect via driver %q: %v", e.Driver, e.Wrapped)
}

func (e *ConnectionError) Unwrap() error {
	return e.Wrapped
}

// StatementError reports a failed prepare or execute: malformed SQL,
// constraint violation, type mismatch, or connectivity loss
// mid-statement. Code carries the driver's native error code (SQLSTATE
// for postgres, numeric result code for sqlite) when one is available.
type StatementError struct {
	SQL     string
	Code    string
	Wrapped error
}

func (e *StatementError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("statement failed (%s): %v", e.Code, e.Wrapped)
	}
	return fmt.Sprintf("statement failed: %v", e.Wrapped)
}

func (e *StatementError) Unwrap() error {
	return e.Wrapped
}

// UnsupportedOperationError reports that the underlying driver does not
// implement the requested capability, e.g. last-insert-id on postgres.
// Callers may catch this and treat it as non-fatal.
type UnsupportedOperationError struct {
	Op      string
	Driver  string
	Wrapped error
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("driver %q does not support %s", e.Driver, e.Op)
}

func (e *UnsupportedOperationError) Unwrap() error {
	return e.Wrapped
}

// TransactionStateError reports begin with a transaction already
// active, or commit/rollback with none active.
type TransactionStateError struct {
	Op     string
	Active bool
}

func (e *TransactionStateError) Error() string {
	if e.Active {
		return fmt.Sprintf("cannot %s: a transaction is already active", e.Op)
	}
	return fmt.Sprintf("cannot %s: no transaction is active", e.Op)
}

func statementError(sql string, err error) error {
	return &StatementError{
		SQL:     sql,
		Code:    driverErrorCode(err),
		Wrapped: err,
	}
}

func driverErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return strconv.Itoa(int(liteErr.Code))
	}
	return ""
}
