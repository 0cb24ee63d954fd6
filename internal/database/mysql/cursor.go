package mysql

import (
	"context"
	"fmt"

	"github.com/koustreak/ChunkRi/internal/database"
	"github.com/koustreak/ChunkRi/internal/errs"
	"github.com/rs/xid"
)

// streamCursor implements database.QueryCursor over the incremental row
// stream of database/sql. The MySQL protocol delivers rows as the driver
// reads them, so there is no server batch size to renegotiate mid-query:
// SetFetchSize is recorded as a hint before the first row and rejected
// once rows have been read.
type streamCursor struct {
	id        string
	rows      rowIter
	started   bool
	fetchSize int
}

// rowIter is the part of the *sql.Rows surface the cursor needs.
type rowIter interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// OpenCursor starts streaming the statement's result set. The caller owns
// the returned cursor and must Close it; until then it pins a pooled
// connection.
func (d *Driver) OpenCursor(ctx context.Context, query string, args ...any) (database.QueryCursor, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "failed to open cursor")
	}
	return &streamCursor{id: xid.New().String(), rows: rows}, nil
}

func (c *streamCursor) ID() string { return c.id }

func (c *streamCursor) SetFetchSize(n int) error {
	if n < 1 {
		return errs.New(errs.ErrKindInvalidInput,
			fmt.Sprintf("fetch size must be positive, got %d", n))
	}
	if c.started {
		return errs.New(errs.ErrKindInvalidInput,
			"fetch size cannot change once rows have been read")
	}
	c.fetchSize = n
	return nil
}

func (c *streamCursor) Advance(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, mapError(err, "cursor advance cancelled")
	}
	c.started = true
	if c.rows.Next() {
		return true, nil
	}
	if err := c.rows.Err(); err != nil {
		return false, mapError(err, "cursor advance failed")
	}
	return false, nil
}

func (c *streamCursor) Scan(dest ...any) error {
	if err := c.rows.Scan(dest...); err != nil {
		return errs.Wrap(errs.ErrKindDecodeFailed, "failed to scan row", err)
	}
	return nil
}

// Close drains and releases the underlying rows. Close is idempotent
// because sql.Rows.Close is.
func (c *streamCursor) Close(_ context.Context) error {
	if err := c.rows.Close(); err != nil {
		return mapError(err, "failed to close cursor")
	}
	return nil
}
