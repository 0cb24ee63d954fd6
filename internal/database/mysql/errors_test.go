package mysql

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/koustreak/ChunkRi/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{
			name:  "deadline exceeded",
			err:   context.DeadlineExceeded,
			check: errs.IsTimeout,
		},
		{
			name:  "context cancelled",
			err:   context.Canceled,
			check: errs.IsTimeout,
		},
		{
			name:  "no rows",
			err:   sql.ErrNoRows,
			check: errs.IsNotFound,
		},
		{
			name:  "query interrupted",
			err:   &gomysql.MySQLError{Number: myErrQueryInterrupted, Message: "Query execution was interrupted"},
			check: errs.IsTimeout,
		},
		{
			name:  "lock wait timeout",
			err:   &gomysql.MySQLError{Number: myErrLockWaitTimeout, Message: "Lock wait timeout exceeded"},
			check: errs.IsTimeout,
		},
		{
			name:  "table access denied",
			err:   &gomysql.MySQLError{Number: myErrTableAccessDenied, Message: "SELECT command denied"},
			check: errs.IsPermissionDenied,
		},
		{
			name:  "database access denied",
			err:   &gomysql.MySQLError{Number: myErrDBAccessDenied, Message: "Access denied for user"},
			check: errs.IsPermissionDenied,
		},
		{
			name:  "bad credentials",
			err:   &gomysql.MySQLError{Number: myErrAccessDenied, Message: "Access denied for user 'x'"},
			check: errs.IsConnectionFailed,
		},
		{
			name:  "unknown database",
			err:   &gomysql.MySQLError{Number: myErrUnknownDatabase, Message: "Unknown database 'nope'"},
			check: errs.IsConnectionFailed,
		},
		{
			name:  "too many connections",
			err:   &gomysql.MySQLError{Number: myErrTooManyConns, Message: "Too many connections"},
			check: errs.IsConnectionFailed,
		},
		{
			name:  "unknown column",
			err:   &gomysql.MySQLError{Number: myErrBadFieldError, Message: "Unknown column 'nope'"},
			check: errs.IsQueryFailed,
		},
		{
			name:  "syntax error",
			err:   &gomysql.MySQLError{Number: myErrParseError, Message: "You have an error in your SQL syntax"},
			check: errs.IsQueryFailed,
		},
		{
			name:  "missing table",
			err:   &gomysql.MySQLError{Number: myErrNoSuchTable, Message: "Table 'db.nope' doesn't exist"},
			check: errs.IsQueryFailed,
		},
		{
			name:  "unknown errno falls back to query",
			err:   &gomysql.MySQLError{Number: 1105, Message: "Unknown error"},
			check: errs.IsQueryFailed,
		},
		{
			name:  "plain network error",
			err:   errors.New("dial tcp: connection refused"),
			check: errs.IsConnectionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := mapError(tt.err, "op failed")
			require.Error(t, mapped)
			assert.True(t, tt.check(mapped))
			assert.ErrorIs(t, mapped, tt.err, "the cause must stay in the chain")
		})
	}
}

func TestMapErrorNil(t *testing.T) {
	assert.Nil(t, mapError(nil, "ignored"))
}

func TestMapErrorKeepsServerMessage(t *testing.T) {
	err := mapError(&gomysql.MySQLError{Number: myErrNoSuchTable, Message: "Table 'app.users' doesn't exist"}, "query failed")
	assert.Contains(t, err.Error(), "query failed")
	assert.Contains(t, err.Error(), "Table 'app.users' doesn't exist")
}
