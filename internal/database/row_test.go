package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/koustreak/ChunkRi/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRows implements Rows over in-memory data.
type fakeRows struct {
	columns []string
	rows    [][]any
	pos     int
	iterErr error
	closed  bool
}

func (f *fakeRows) Next() bool {
	if f.iterErr != nil {
		return false
	}
	if f.pos >= len(f.rows) {
		return false
	}
	f.pos++
	return true
}

func (f *fakeRows) Scan(dest ...any) error {
	row := f.rows[f.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("expected %d destinations, got %d", len(row), len(dest))
	}
	for i, d := range dest {
		*(d.(*any)) = row[i]
	}
	return nil
}

func (f *fakeRows) Columns() ([]string, error) { return f.columns, nil }
func (f *fakeRows) Close()                     { f.closed = true }
func (f *fakeRows) Err() error                 { return f.iterErr }

func TestScanRows(t *testing.T) {
	rows := &fakeRows{
		columns: []string{"id", "name"},
		rows: [][]any{
			{int64(1), "ada"},
			{int64(2), "grace"},
		},
	}

	got, err := ScanRows(rows)
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{
		{"id": int64(1), "name": "ada"},
		{"id": int64(2), "name": "grace"},
	}, got)
	assert.True(t, rows.closed, "ScanRows owns the Rows and must close them")
}

func TestScanRowsEmpty(t *testing.T) {
	rows := &fakeRows{columns: []string{"id"}}

	got, err := ScanRows(rows)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.True(t, rows.closed)
}

func TestScanRowsIterationError(t *testing.T) {
	rows := &fakeRows{
		columns: []string{"id"},
		iterErr: errors.New("connection reset"),
	}

	_, err := ScanRows(rows)
	require.Error(t, err)
	assert.True(t, errs.IsQueryFailed(err))
	assert.True(t, rows.closed)
}

// fakeRow implements Row returning a fixed record or error.
type fakeRow struct {
	values []any
	err    error
}

func (f *fakeRow) Scan(dest ...any) error {
	if f.err != nil {
		return f.err
	}
	for i, d := range dest {
		*(d.(*any)) = f.values[i]
	}
	return nil
}

func TestScanRow(t *testing.T) {
	row := &fakeRow{values: []any{int64(9), "hopper"}}

	got, err := ScanRow(row, []string{"id", "name"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": int64(9), "name": "hopper"}, got)
}

func TestScanRowKeepsDriverClassification(t *testing.T) {
	row := &fakeRow{err: errs.New(errs.ErrKindNotFound, "record not found")}

	_, err := ScanRow(row, []string{"id"})
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err), "classified driver errors pass through unchanged")
}
