package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_EqualAndCompare(t *testing.T) {
	d1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		a, b    Value
		equal   bool
		compare int
	}{
		{"missing vs missing", MissingValue(), MissingValue(), true, 0},
		{"strings", StringValue("a"), StringValue("b"), false, -1},
		{"numbers", NumberValue(3), NumberValue(2), false, 1},
		{"dates", DateValue(d1), DateValue(d2), false, -1},
		{"missing sorts last", MissingValue(), StringValue("z"), false, 1},
		{"string vs number by kind", NumberValue(1), StringValue("1"), false, 1},
		{"zero is not missing", NumberValue(0), MissingValue(), false, -1},
		{"empty string is not missing", StringValue(""), MissingValue(), false, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
			assert.Equal(t, tt.compare, tt.a.Compare(tt.b))
		})
	}
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "", MissingValue().String())
	assert.Equal(t, "3.5", NumberValue(3.5).String())
	assert.Equal(t, "7", NumberValue(7).String())
	assert.Equal(t, "2024-01-15", DateValue(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)).String())
	assert.Equal(t, "2024-01-15 08:30:00", DateValue(time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC)).String())
	assert.Equal(t, "07:05:09", TimeValue(time.Date(2020, 5, 5, 7, 5, 9, 0, time.UTC)).String())
}

func TestTable_Basics(t *testing.T) {
	tbl := NewTable([]string{"a", "b", "a"})
	require.Equal(t, []string{"a", "b"}, tbl.Columns())

	tbl.AppendRow([]Value{StringValue("x")})
	tbl.AppendRow([]Value{StringValue("y"), NumberValue(2), NumberValue(99)})

	assert.Equal(t, 2, tbl.Len())
	assert.True(t, tbl.Get(0, "b").IsMissing(), "short rows are padded with missing")
	assert.True(t, tbl.Get(0, "nope").IsMissing())

	tbl.SetColumn("c", []Value{NumberValue(1), NumberValue(2)})
	assert.Equal(t, []string{"a", "b", "c"}, tbl.Columns())
	assert.Equal(t, NumberValue(2), tbl.Get(1, "c"))

	clone := tbl.Clone()
	clone.Set(0, "a", StringValue("changed"))
	assert.Equal(t, StringValue("x"), tbl.Get(0, "a"))

	schema := tbl.Schema()
	assert.True(t, schema.Has("c"))
	assert.Equal(t, []string{"qty"}, schema.Missing("a", "qty"))
}

func TestTable_RowKeyDistinguishesKinds(t *testing.T) {
	tbl := NewTable([]string{"v"})
	tbl.AppendRow([]Value{StringValue("1")})
	tbl.AppendRow([]Value{NumberValue(1)})
	tbl.AppendRow([]Value{StringValue("1")})

	assert.NotEqual(t, tbl.RowKey(0), tbl.RowKey(1))
	assert.Equal(t, tbl.RowKey(0), tbl.RowKey(2))
}

func TestKPISet_Entries(t *testing.T) {
	k := KPISet{TotalSales: 11, TotalTransactions: 2, AvgTicket: 5.5, UniqueProducts: 2, TopProduct: "Latte", TotalUnits: 3}
	entries := k.Entries()
	require.Len(t, entries, 6)

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	assert.Equal(t, []string{"total_sales", "total_transactions", "avg_ticket", "unique_products", "top_product", "total_units"}, names)
	assert.Equal(t, "Latte", entries[4].Value)
}
