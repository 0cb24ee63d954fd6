package database

import (
	"context"
	"errors"
	"testing"

	"github.com/koustreak/ChunkRi/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collect drains a stream into values and the terminal error, if any.
func collect[T any](t *testing.T, rs *ResultSet, size int, dec RowDecoder[T]) ([]T, error) {
	t.Helper()
	var got []T
	for v, err := range Stream(context.Background(), rs, size, dec) {
		if err != nil {
			return got, err
		}
		got = append(got, v)
	}
	return got, nil
}

func TestStreamChunkPattern(t *testing.T) {
	// Five rows streamed in chunks of two: the server sees three fetches
	// of 2, 2, and 1 rows, and the short final chunk ends the stream.
	cur := newFakeCursor(5)
	scope := newCountingScope()
	rs := NewResultSetWithScope(cur, scope)

	got, err := collect(t, rs, 2, intDecoder())
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30, 40, 50}, got)
	assert.Equal(t, 3, scope.calls)
	assert.Equal(t, 6, cur.advances)
}

func TestStreamExactMultiple(t *testing.T) {
	// Four rows in chunks of two: the second chunk is full-size, so one
	// extra fetch is needed to observe exhaustion.
	cur := newFakeCursor(4)
	scope := newCountingScope()
	rs := NewResultSetWithScope(cur, scope)

	got, err := collect(t, rs, 2, intDecoder())
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30, 40}, got)
	assert.Equal(t, 3, scope.calls)
}

func TestStreamEmptyCursor(t *testing.T) {
	cur := newFakeCursor(0)
	scope := newCountingScope()
	rs := NewResultSetWithScope(cur, scope)

	got, err := collect(t, rs, 3, intDecoder())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 1, scope.calls)
}

func TestStreamSetsFetchSizeFirst(t *testing.T) {
	cur := newFakeCursor(3)
	rs := NewResultSet(cur)

	_, err := collect(t, rs, 2, intDecoder())
	require.NoError(t, err)
	assert.Equal(t, 1, cur.setCalls)
	assert.Equal(t, 2, cur.fetchSize)
	assert.Zero(t, cur.advancesAtSet, "fetch size must be set before the first row is read")
}

func TestStreamFetchSizeRejected(t *testing.T) {
	cur := newFakeCursor(3)
	cur.setFetchErr = errs.New(errs.ErrKindInvalidInput, "fetch size cannot change mid-iteration")
	scope := newCountingScope()
	rs := NewResultSetWithScope(cur, scope)

	got, err := collect(t, rs, 2, intDecoder())
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
	assert.Empty(t, got)
	assert.Zero(t, scope.calls, "a rejected fetch size must not start fetching")
}

func TestStreamInvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		cur := newFakeCursor(3)
		rs := NewResultSet(cur)

		got, err := collect(t, rs, size, intDecoder())
		require.Error(t, err, "size %d", size)
		assert.True(t, errs.IsInvalidInput(err))
		assert.Empty(t, got)
		assert.Zero(t, cur.advances)
	}
}

func TestStreamEarlyBreak(t *testing.T) {
	// Breaking after the first chunk's rows must not trigger another fetch.
	cur := newFakeCursor(10)
	scope := newCountingScope()
	rs := NewResultSetWithScope(cur, scope)

	var got []int
	for v, err := range Stream(context.Background(), rs, 2, intDecoder()) {
		require.NoError(t, err)
		got = append(got, v)
		if len(got) == 2 {
			break
		}
	}

	assert.Equal(t, []int{10, 20}, got)
	assert.Equal(t, 1, scope.calls)
	assert.Equal(t, 2, cur.advances)
}

func TestStreamDriverFailureMidway(t *testing.T) {
	cur := newFakeCursor(10)
	cause := errs.Wrap(errs.ErrKindQueryFailed, "fetch failed", errors.New("connection reset"))
	cur.advErrAt = 4
	cur.advErr = cause
	rs := NewResultSet(cur)

	got, err := collect(t, rs, 2, intDecoder())
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, []int{10, 20}, got, "rows yielded before the failure stay delivered")
}

func TestStreamDecodeFailureMidway(t *testing.T) {
	cur := newFakeCursor(10)
	rs := NewResultSet(cur)

	got, err := collect(t, rs, 2, failingDecoder(30))
	require.Error(t, err)
	assert.True(t, errs.IsDecodeFailed(err))
	assert.Equal(t, []int{10, 20}, got)
}

func TestStreamResumesAfterManualFetch(t *testing.T) {
	// A stream opened on a partially consumed cursor covers the remainder.
	cur := newFakeCursor(7)
	rs := NewResultSet(cur)

	head, err := FetchChunk(context.Background(), rs, 3, intDecoder())
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30}, head)

	rest, err := collect(t, rs, 2, intDecoder())
	require.NoError(t, err)
	assert.Equal(t, []int{40, 50, 60, 70}, rest)
}
