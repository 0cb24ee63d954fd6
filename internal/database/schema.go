package database

// ColumnInfo describes a single column in a table.
type ColumnInfo struct {
	Name      string  `json:"name"`
	DataType  string  `json:"data_type"`
	Nullable  bool    `json:"nullable"`
	Default   *string `json:"default,omitempty"`
	MaxLength *int    `json:"max_length,omitempty"`
	IsPrimary bool    `json:"is_primary"`
	IsUnique  bool    `json:"is_unique"`
}

// TableInfo describes a table and its columns, in ordinal order.
type TableInfo struct {
	Name        string        `json:"name"`
	Columns     []*ColumnInfo `json:"columns"`
	PrimaryKey  []string      `json:"primary_key,omitempty"`
	ForeignKeys []*ForeignKey `json:"foreign_keys,omitempty"`
}

// Column returns the column with the given name, or nil if the table has
// no such column.
func (t *TableInfo) Column(name string) *ColumnInfo {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ForeignKey describes an outgoing reference from one column to another table.
type ForeignKey struct {
	Column    string `json:"column"`
	RefTable  string `json:"ref_table"`
	RefColumn string `json:"ref_column"`
}

// Schema is the full introspected database schema, keyed by table name.
type Schema struct {
	Tables map[string]*TableInfo `json:"tables"`
}
