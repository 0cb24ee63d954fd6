package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/koustreak/ChunkRi/internal/logger"
)

// FetchChunk reads up to size rows from the result set and returns them as
// a slice in cursor order. A chunk shorter than size means the cursor is
// exhausted. It is the plain-slice form of FetchChunkInto.
func FetchChunk[T any](ctx context.Context, rs *ResultSet, size int, dec RowDecoder[T]) ([]T, error) {
	return FetchChunkInto(ctx, rs, size, dec, identity[T], &SliceBuilder[T]{})
}

// FetchChunkMapped reads up to size rows, applying fn to each decoded row.
func FetchChunkMapped[T, U any](ctx context.Context, rs *ResultSet, size int, dec RowDecoder[T], fn func(T) U) ([]U, error) {
	return FetchChunkInto(ctx, rs, size, dec, fn, &SliceBuilder[U]{})
}

// FetchChunkInto reads up to size rows into the given builder, mapping each
// decoded row through fn. The entire fetch runs under the result set's
// exclusive scope, so concurrent callers serialize and every row lands in
// exactly one caller's chunk.
//
// A negative size is an invalid-input error and size 0 returns an empty
// container; neither touches the cursor or the scope. On any failure the
// partially built chunk is abandoned and only the error is returned. A
// decode failure is reported as a decode error carrying the cursor ID and
// the decoder's expected column types; the rows consumed before it stay
// consumed, because the cursor cannot move backwards.
func FetchChunkInto[C, T, U any](ctx context.Context, rs *ResultSet, size int, dec RowDecoder[T], fn func(T) U, b ChunkBuilder[C, U]) (C, error) {
	var zero C
	if size < 0 {
		return zero, errInvalidInput(fmt.Sprintf("chunk size must not be negative, got %d", size))
	}
	if size == 0 {
		return b.Build(), nil
	}

	traceFetch(ctx, rs.cur, size, dec)

	b.Grow(size)
	err := rs.scope.WithExclusive(ctx, func() error {
		for i := 0; i < size; i++ {
			ok, err := rs.cur.Advance(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			row, err := dec.DecodeCurrent(rs.cur)
			if err != nil {
				return errDecode(decodeFailMsg(rs.cur, dec), err)
			}
			b.Append(fn(row))
		}
		return nil
	})
	if err != nil {
		return zero, err
	}
	return b.Build(), nil
}

// FetchChunkCombining reads up to size rows like FetchChunkInto but folds
// them through a Combiner instead of a builder, for container types that
// cannot be appended to. Both paths produce the same row sequence.
func FetchChunkCombining[C, T, U any](ctx context.Context, rs *ResultSet, size int, dec RowDecoder[T], fn func(T) U, m Combiner[C, U]) (C, error) {
	var zero C
	if size < 0 {
		return zero, errInvalidInput(fmt.Sprintf("chunk size must not be negative, got %d", size))
	}
	acc := m.Empty()
	if size == 0 {
		return acc, nil
	}

	traceFetch(ctx, rs.cur, size, dec)

	err := rs.scope.WithExclusive(ctx, func() error {
		for i := 0; i < size; i++ {
			ok, err := rs.cur.Advance(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			row, err := dec.DecodeCurrent(rs.cur)
			if err != nil {
				return errDecode(decodeFailMsg(rs.cur, dec), err)
			}
			acc = m.Combine(acc, m.Single(fn(row)))
		}
		return nil
	})
	if err != nil {
		return zero, err
	}
	return acc, nil
}

// traceFetch emits the pre-fetch diagnostic line. Guarded so field building
// costs nothing unless trace logging is on.
func traceFetch[T any](ctx context.Context, cur Cursor, size int, dec RowDecoder[T]) {
	log := logger.FromContext(ctx)
	if !log.TraceEnabled() {
		return
	}
	log.With().
		Str("cursor_id", cur.ID()).
		Int("chunk_size", size).
		Strs("column_types", dec.ColumnTypes()).
		Logger().
		Trace("fetching chunk")
}

func decodeFailMsg[T any](cur Cursor, dec RowDecoder[T]) string {
	return fmt.Sprintf("decoding row from cursor %s (expected columns: %s)",
		cur.ID(), strings.Join(dec.ColumnTypes(), ", "))
}

func identity[T any](v T) T { return v }
