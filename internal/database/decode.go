package database

import "context"

// RowDecoder turns the cursor's current row into a value of type T.
// ColumnTypes describes the shape the decoder expects; it appears in
// decode failure messages and trace diagnostics so a mismatch between a
// query's projection and its decoder is easy to spot.
type RowDecoder[T any] interface {
	DecodeCurrent(c Cursor) (T, error)
	ColumnTypes() []string
}

// NewRowDecoder builds a RowDecoder from a scan function. columnTypes is
// free-form ("bigint", "text", …) and used only for diagnostics.
func NewRowDecoder[T any](columnTypes []string, scan func(c Cursor) (T, error)) RowDecoder[T] {
	return &funcDecoder[T]{types: columnTypes, scan: scan}
}

type funcDecoder[T any] struct {
	types []string
	scan  func(Cursor) (T, error)
}

func (d *funcDecoder[T]) DecodeCurrent(c Cursor) (T, error) { return d.scan(c) }
func (d *funcDecoder[T]) ColumnTypes() []string             { return d.types }

// NewMapDecoder builds a decoder that produces one map per row, keyed by
// column name, from column metadata (usually introspected). The query's
// projection must match the given columns in order.
func NewMapDecoder(columns []*ColumnInfo) RowDecoder[map[string]any] {
	d := &mapDecoder{
		names: make([]string, len(columns)),
		types: make([]string, len(columns)),
	}
	for i, c := range columns {
		d.names[i] = c.Name
		d.types[i] = c.DataType
	}
	return d
}

type mapDecoder struct {
	names []string
	types []string
}

func (d *mapDecoder) DecodeCurrent(c Cursor) (map[string]any, error) {
	// Scan targets are *any so the driver can write any column type.
	dest := make([]any, len(d.names))
	destPtrs := make([]any, len(d.names))
	for i := range dest {
		destPtrs[i] = &dest[i]
	}

	if err := c.Scan(destPtrs...); err != nil {
		return nil, err
	}

	row := make(map[string]any, len(d.names))
	for i, name := range d.names {
		row[name] = dest[i]
	}
	return row, nil
}

func (d *mapDecoder) ColumnTypes() []string { return d.types }

// TableDecoder introspects table and returns a map decoder covering all of
// its columns in ordinal order. Pair it with a SELECT * cursor over the
// same table.
func TableDecoder(ctx context.Context, db DB, table string) (RowDecoder[map[string]any], error) {
	info, err := db.InspectTable(ctx, table)
	if err != nil {
		return nil, err
	}
	return NewMapDecoder(info.Columns), nil
}
