package database

import "context"

// Cursor is the read-side handle over a live server-side result set. It
// starts positioned before the first row; Advance moves it forward one row
// at a time and it never moves backwards. Rows consumed through a cursor
// stay consumed even when a later step fails.
type Cursor interface {
	// ID returns an opaque identifier for diagnostics and logging.
	ID() string

	// Advance moves to the next row. It returns false with a nil error
	// once the result set is exhausted.
	Advance(ctx context.Context) (bool, error)

	// Scan copies the current row's columns into the provided destinations.
	// Valid only after a successful Advance.
	Scan(dest ...any) error

	// SetFetchSize hints how many rows the driver should pull per server
	// round trip. Drivers that cannot change the size mid-iteration return
	// an invalid-input error once the first row has been read.
	SetFetchSize(n int) error
}

// QueryCursor is a Cursor the caller owns and must Close. DB.OpenCursor
// returns one; the chunk operations themselves never close cursors.
type QueryCursor interface {
	Cursor

	// Close releases the server-side cursor and any connection pinned by it.
	Close(ctx context.Context) error
}

// ResultSet couples a cursor with the access scope that serializes its
// consumers. Everything holding the same ResultSet shares the same scope,
// so two chunk fetches never interleave their row reads.
type ResultSet struct {
	cur   Cursor
	scope AccessScope
}

// NewResultSet wraps cur with a fresh exclusive scope.
func NewResultSet(cur Cursor) *ResultSet {
	return &ResultSet{cur: cur, scope: NewAccessScope()}
}

// NewResultSetWithScope wraps cur with a caller-provided scope, for callers
// that serialize cursor access together with other work.
func NewResultSetWithScope(cur Cursor, scope AccessScope) *ResultSet {
	return &ResultSet{cur: cur, scope: scope}
}

// Cursor returns the underlying cursor.
func (rs *ResultSet) Cursor() Cursor { return rs.cur }
