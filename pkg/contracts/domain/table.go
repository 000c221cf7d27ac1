package domain

import "strings"

// Canonical column names understood by the cleaning and aggregation stages.
const (
	ColTransactionID = "transaction_id"
	ColDate          = "date"
	ColTime          = "time"
	ColQty           = "qty"
	ColUnitPrice     = "unit_price"
	ColStoreID       = "store_id"
	ColStoreLocation = "store_location"
	ColProductID     = "product_id"
	ColProductDetail = "product_detail"
	ColCategory      = "category"
	ColSubcategory   = "subcategory"
	ColProduct       = "product"

	// ColSourceFile records the input file a row was read from
	ColSourceFile = "__source_file"

	ColSaleAmount = "sale_amt"
	ColDay        = "day"
	ColMonth      = "month"
	ColWeekday    = "weekday"
)

// Table is an ordered set of rows sharing one column list.
// Every row holds exactly one cell per column; absent data is a missing Value.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// NewTable creates an empty table with the given columns.
// Duplicate names keep their first position.
func NewTable(columns []string) *Table {
	t := &Table{index: make(map[string]int, len(columns))}
	for _, c := range columns {
		if _, ok := t.index[c]; ok {
			continue
		}
		t.index[c] = len(t.columns)
		t.columns = append(t.columns, c)
	}
	return t
}

// Columns returns a copy of the column names in order
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the row count
func (t *Table) Len() int { return len(t.rows) }

// Width returns the column count
func (t *Table) Width() int { return len(t.columns) }

// Has reports whether the column exists
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Index returns the position of a column
func (t *Table) Index(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// AppendRow adds a row. Short rows are padded with missing cells and long
// rows are truncated to the table width.
func (t *Table) AppendRow(cells []Value) {
	row := make([]Value, len(t.columns))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Row returns the cells of row i. The slice is shared with the table.
func (t *Table) Row(i int) []Value { return t.rows[i] }

// Get returns the cell at row i in the named column, or missing when the
// column does not exist.
func (t *Table) Get(i int, name string) Value {
	c, ok := t.index[name]
	if !ok {
		return MissingValue()
	}
	return t.rows[i][c]
}

// Set replaces the cell at row i in the named column. Unknown columns are ignored.
func (t *Table) Set(i int, name string, v Value) {
	if c, ok := t.index[name]; ok {
		t.rows[i][c] = v
	}
}

// Column returns a copy of all cells in the named column
func (t *Table) Column(name string) ([]Value, bool) {
	c, ok := t.index[name]
	if !ok {
		return nil, false
	}
	out := make([]Value, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[c]
	}
	return out, true
}

// SetColumn adds the column at the end, or overwrites it when it already
// exists. values must hold one cell per row.
func (t *Table) SetColumn(name string, values []Value) {
	c, ok := t.index[name]
	if !ok {
		c = len(t.columns)
		t.index[name] = c
		t.columns = append(t.columns, name)
		for i := range t.rows {
			t.rows[i] = append(t.rows[i], MissingValue())
		}
	}
	for i := range t.rows {
		if i < len(values) {
			t.rows[i][c] = values[i]
		} else {
			t.rows[i][c] = MissingValue()
		}
	}
}

// Clone returns a deep copy
func (t *Table) Clone() *Table {
	out := NewTable(t.columns)
	out.rows = make([][]Value, len(t.rows))
	for i, row := range t.rows {
		r := make([]Value, len(row))
		copy(r, row)
		out.rows[i] = r
	}
	return out
}

// Schema returns the column presence set, queried once per stage.
func (t *Table) Schema() Schema {
	s := make(Schema, len(t.columns))
	for _, c := range t.columns {
		s[c] = struct{}{}
	}
	return s
}

// RowKey encodes a full row for identity comparison
func (t *Table) RowKey(i int) string {
	var b strings.Builder
	for j, v := range t.rows[i] {
		if j > 0 {
			b.WriteByte(0x1f)
		}
		b.WriteString(v.Key())
	}
	return b.String()
}

// Filter keeps the rows for which keep returns true, preserving order
func (t *Table) Filter(keep func(i int) bool) *Table {
	out := NewTable(t.columns)
	for i, row := range t.rows {
		if keep(i) {
			r := make([]Value, len(row))
			copy(r, row)
			out.rows = append(out.rows, r)
		}
	}
	return out
}

// Schema is the set of columns present in a table
type Schema map[string]struct{}

// Has reports whether the column is present
func (s Schema) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Missing returns the names not present in the schema, in argument order
func (s Schema) Missing(names ...string) []string {
	var out []string
	for _, n := range names {
		if !s.Has(n) {
			out = append(out, n)
		}
	}
	return out
}
