package schema

// TableRef identifies a base table within one database.
type TableRef struct {
	Schema string
	Name   string
}

// Qualified returns the schema-qualified name, e.g. "dbo.Orders".
func (t TableRef) Qualified() string {
	return t.Schema + "." + t.Name
}

// Column is one column of a source table as reported by the catalog.
// MaxLength, Precision and Scale are nil when the catalog reports no value
// for the type; MaxLength carries the engine's unbounded sentinel as-is.
type Column struct {
	Name      string
	DataType  string
	MaxLength *int64
	Precision *int64
	Scale     *int64
	Position  int
}

// Table is a source table with the metadata one replication pass needs.
type Table struct {
	Ref      TableRef
	Columns  []Column
	RowCount int64
}
