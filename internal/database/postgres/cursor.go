package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/koustreak/ChunkRi/internal/database"
	"github.com/koustreak/ChunkRi/internal/errs"
	"github.com/rs/xid"
)

// cursor implements database.QueryCursor over a real server-side cursor:
// DECLARE inside a read-only transaction, batched FETCH refills, CLOSE on
// release. The pooled connection stays pinned until Close.
type cursor struct {
	id   string
	name string
	conn *pgxpool.Conn
	tx   pgx.Tx

	fetch     fetchFunc
	fetchSize int

	buf    [][]any // rows fetched but not yet consumed
	cur    []any   // values of the current row
	done   bool    // the server returned a short batch
	closed bool
}

// fetchFunc pulls up to n rows from the server-side cursor.
type fetchFunc func(ctx context.Context, n int) ([][]any, error)

// OpenCursor declares a server-side cursor over the statement's result set.
// Rows are pulled in batches of Config.FetchSize until SetFetchSize
// overrides it. The caller owns the returned cursor and must Close it.
func (d *Driver) OpenCursor(ctx context.Context, sql string, args ...any) (database.QueryCursor, error) {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return nil, mapError(err, "failed to acquire connection for cursor")
	}

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		conn.Release()
		return nil, mapError(err, "failed to begin cursor transaction")
	}

	id := xid.New().String()
	c := &cursor{
		id:        id,
		name:      "chunkri_" + id,
		conn:      conn,
		tx:        tx,
		fetchSize: d.fetchSize,
	}
	c.fetch = c.fetchBatch

	declare := fmt.Sprintf("DECLARE %s NO SCROLL CURSOR FOR %s", c.name, sql)
	if _, err := tx.Exec(ctx, declare, args...); err != nil {
		_ = tx.Rollback(ctx)
		conn.Release()
		return nil, mapError(err, "failed to declare cursor")
	}

	return c, nil
}

func (c *cursor) ID() string { return c.id }

// SetFetchSize changes the batch size used from the next server fetch on.
// The server-side cursor does not care when the size changes, so any
// positive size is accepted at any point in the iteration.
func (c *cursor) SetFetchSize(n int) error {
	if n < 1 {
		return errs.New(errs.ErrKindInvalidInput,
			fmt.Sprintf("fetch size must be positive, got %d", n))
	}
	c.fetchSize = n
	return nil
}

func (c *cursor) Advance(ctx context.Context) (bool, error) {
	if c.closed {
		return false, errs.New(errs.ErrKindInvalidInput, "cursor is closed")
	}
	if len(c.buf) == 0 {
		if c.done {
			return false, nil
		}
		batch, err := c.fetch(ctx, c.fetchSize)
		if err != nil {
			return false, err
		}
		if len(batch) < c.fetchSize {
			// A short batch is the server saying nothing is left after it.
			c.done = true
		}
		if len(batch) == 0 {
			return false, nil
		}
		c.buf = batch
	}
	c.cur = c.buf[0]
	c.buf = c.buf[1:]
	return true, nil
}

func (c *cursor) Scan(dest ...any) error {
	if c.cur == nil {
		return errs.New(errs.ErrKindInvalidInput, "Scan called before Advance")
	}
	if len(dest) != len(c.cur) {
		return errs.New(errs.ErrKindDecodeFailed,
			fmt.Sprintf("row has %d columns, Scan got %d destinations", len(c.cur), len(dest)))
	}
	for i, d := range dest {
		if err := assignValue(d, c.cur[i]); err != nil {
			return errs.Wrap(errs.ErrKindDecodeFailed,
				fmt.Sprintf("column %d", i), err)
		}
	}
	return nil
}

// fetchBatch pulls the next n rows with FETCH and materializes their values.
func (c *cursor) fetchBatch(ctx context.Context, n int) ([][]any, error) {
	rows, err := c.tx.Query(ctx, fmt.Sprintf("FETCH %d FROM %s", n, c.name))
	if err != nil {
		return nil, mapError(err, "cursor fetch failed")
	}
	defer rows.Close()

	batch := make([][]any, 0, n)
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, mapError(err, "failed to read fetched row")
		}
		batch = append(batch, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "cursor fetch failed")
	}
	return batch, nil
}

// Close releases the server-side cursor, ends its transaction, and returns
// the pinned connection to the pool. Close is idempotent.
func (c *cursor) Close(ctx context.Context) error {
	if c.closed {
		return nil
	}
	c.closed = true

	_, closeErr := c.tx.Exec(ctx, "CLOSE "+c.name)
	rbErr := c.tx.Rollback(ctx)
	c.conn.Release()

	if closeErr != nil {
		return mapError(closeErr, "failed to close cursor")
	}
	if rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
		return mapError(rbErr, "failed to end cursor transaction")
	}
	return nil
}
