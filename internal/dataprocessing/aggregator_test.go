package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesetl/pkg/contracts/domain"
)

func keys(tbl domain.AggregateTable) []string {
	out := make([]string, len(tbl.Rows))
	for i, r := range tbl.Rows {
		out[i] = r.Key.String()
	}
	return out
}

func cleaned(t *testing.T, columns []string, rows ...[]string) *domain.Table {
	t.Helper()
	out, _ := Clean(newStringTable(columns, rows...), nil)
	return out
}

func TestAggregate_CategoryRankedByRevenue(t *testing.T) {
	tbl := cleaned(t,
		[]string{"category", "qty", "unit_price"},
		[]string{"A", "1", "100"},
		[]string{"B", "1", "300"},
		[]string{"C", "2", "100"},
	)

	report := Aggregate(tbl)

	assert.Equal(t, []string{"B", "C", "A"}, keys(report.Category))
	assert.Equal(t, []float64{300, 200, 100}, []float64{
		report.Category.Rows[0].TotalSales,
		report.Category.Rows[1].TotalSales,
		report.Category.Rows[2].TotalSales,
	})
	assert.Equal(t, []string{"category", "total_sales"}, report.Category.Headers())
}

func TestAggregate_TiesKeepKeyOrder(t *testing.T) {
	tbl := cleaned(t,
		[]string{"store_location", "qty", "unit_price"},
		[]string{"Zeta", "1", "50"},
		[]string{"Alpha", "1", "50"},
		[]string{"Mid", "1", "80"},
	)

	report := Aggregate(tbl)

	assert.Equal(t, []string{"Mid", "Alpha", "Zeta"}, keys(report.Location))
}

func TestAggregate_MonthlyAndDailyChronological(t *testing.T) {
	tbl := cleaned(t,
		[]string{"date", "qty", "unit_price"},
		[]string{"2024-03-02", "1", "10"},
		[]string{"15/01/2024", "2", "5"},
		[]string{"2024-03-01", "1", "1"},
		[]string{"2024-01-15", "1", "1"},
		[]string{"bad", "1", "1"},
	)

	report := Aggregate(tbl)

	assert.Equal(t, []string{"2024-01", "2024-03"}, keys(report.Monthly))
	assert.Equal(t, 11.0, report.Monthly.Rows[0].TotalSales)
	assert.Equal(t, 3.0, report.Monthly.Rows[0].Units)
	assert.Equal(t, []string{"month", "total_sales", "units"}, report.Monthly.Headers())

	assert.Equal(t, []string{"2024-01-15", "2024-03-01", "2024-03-02"}, keys(report.Daily))
	assert.Equal(t, 5, report.KPIs.TotalTransactions, "rows with a bad date still count")
}

func TestAggregate_MissingDimensionColumn(t *testing.T) {
	tbl := cleaned(t,
		[]string{"product", "qty", "unit_price", "category"},
		[]string{"Latte", "2", "3.5", "Coffee"},
	)

	report := Aggregate(tbl)

	assert.True(t, report.Location.Empty())
	assert.Equal(t, domain.GroupMissingColumns, report.Location.Outcome)
	assert.Equal(t, []string{"store_location"}, report.Location.MissingColumns)
	assert.True(t, report.Monthly.Empty())
	assert.True(t, report.Daily.Empty())

	assert.Equal(t, domain.GroupOK, report.Category.Outcome)
	assert.Equal(t, 7.0, report.KPIs.TotalSales)
	assert.Equal(t, "Latte", report.KPIs.TopProduct)
}

func TestAggregate_WithoutSaleAmount(t *testing.T) {
	tbl := cleaned(t,
		[]string{"product", "qty"},
		[]string{"Latte", "2"},
		[]string{"Mocha", "1.5"},
	)

	report := Aggregate(tbl)

	for _, a := range report.Tables() {
		assert.True(t, a.Empty(), string(a.Name))
		assert.Equal(t, domain.GroupMissingColumns, a.Outcome)
	}
	assert.Equal(t, 0.0, report.KPIs.TotalSales)
	assert.Equal(t, 0.0, report.KPIs.AvgTicket)
	assert.Equal(t, int64(3), report.KPIs.TotalUnits, "units are truncated toward zero")
	assert.Equal(t, 2, report.KPIs.UniqueProducts)
	assert.Equal(t, domain.NotAvailable, report.KPIs.TopProduct)
}

func TestAggregate_EmptyTable(t *testing.T) {
	tbl := domain.NewTable([]string{"product", "qty", "unit_price", "sale_amt"})

	report := Aggregate(tbl)

	assert.Equal(t, 0, report.KPIs.TotalTransactions)
	assert.Equal(t, 0.0, report.KPIs.AvgTicket)
	assert.Equal(t, domain.NotAvailable, report.KPIs.TopProduct)
	assert.True(t, report.Product.Empty())
	assert.Equal(t, domain.GroupOK, report.Product.Outcome)
}

func TestAggregate_MissingValuesAreSkipped(t *testing.T) {
	tbl := cleaned(t,
		[]string{"product", "qty", "unit_price"},
		[]string{"Latte", "2", "3"},
		[]string{"Latte", "x", "3"},
		[]string{"Mocha", "1", ""},
	)

	report := Aggregate(tbl)

	require.Len(t, report.Product.Rows, 2)
	assert.Equal(t, "Latte", report.Product.Rows[0].Key.String())
	assert.Equal(t, 6.0, report.Product.Rows[0].TotalSales)
	assert.Equal(t, 2.0, report.Product.Rows[0].Units)
	assert.Equal(t, 0.0, report.Product.Rows[1].TotalSales, "a group of missing amounts sums to zero")
	assert.Equal(t, int64(3), report.KPIs.TotalUnits)
	assert.InDelta(t, 2.0, report.KPIs.AvgTicket, 1e-9)
}
