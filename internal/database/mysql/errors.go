package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/koustreak/ChunkRi/internal/errs"
)

// MySQL server error numbers (read-relevant only)
// Full list: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	myErrDBAccessDenied    = 1044
	myErrAccessDenied      = 1045
	myErrNoDatabase        = 1046
	myErrUnknownDatabase   = 1049
	myErrTooManyConns      = 1040
	myErrBadFieldError     = 1054
	myErrParseError        = 1064
	myErrTableAccessDenied = 1142
	myErrNoSuchTable       = 1146
	myErrLockWaitTimeout   = 1205
	myErrTooManyUserConns  = 1203
	myErrQueryInterrupted  = 1317
)

// mapError translates go-sql-driver native errors into *errs.Error.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	// Context cancellation / deadline exceeded
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	// No rows
	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	// MySQL server-side error (numbered)
	var myErr *gomysql.MySQLError
	if errors.As(err, &myErr) {
		return errs.Wrap(
			classifyMySQLCode(myErr.Number),
			fmt.Sprintf("%s: %s", msg, myErr.Message),
			err,
		)
	}

	// Fallthrough: connection-level errors (handshake, network, TLS)
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

// classifyMySQLCode maps a server error number to an error kind.
func classifyMySQLCode(code uint16) errs.ErrKind {
	switch code {
	case myErrQueryInterrupted, myErrLockWaitTimeout:
		return errs.ErrKindTimeout
	case myErrDBAccessDenied, myErrTableAccessDenied:
		return errs.ErrKindPermissionDenied
	case myErrAccessDenied, myErrNoDatabase, myErrUnknownDatabase,
		myErrTooManyConns, myErrTooManyUserConns:
		return errs.ErrKindConnectionFailed
	case myErrBadFieldError, myErrParseError, myErrNoSuchTable:
		return errs.ErrKindQueryFailed
	}
	return errs.ErrKindQueryFailed
}
