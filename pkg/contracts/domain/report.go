package domain

// NotAvailable is reported as the top product when no product ranking exists
const NotAvailable = "N/A"

// KPISet holds the six headline figures of a run
type KPISet struct {
	TotalSales        float64 `json:"total_sales"`
	TotalTransactions int     `json:"total_transactions"`
	AvgTicket         float64 `json:"avg_ticket"`
	UniqueProducts    int     `json:"unique_products"`
	TopProduct        string  `json:"top_product"`
	TotalUnits        int64   `json:"total_units"`
}

// KPIEntry is one named KPI scalar
type KPIEntry struct {
	Name  string
	Value interface{}
}

// Entries returns the KPIs by name in their fixed order
func (k KPISet) Entries() []KPIEntry {
	return []KPIEntry{
		{Name: "total_sales", Value: k.TotalSales},
		{Name: "total_transactions", Value: k.TotalTransactions},
		{Name: "avg_ticket", Value: k.AvgTicket},
		{Name: "unique_products", Value: k.UniqueProducts},
		{Name: "top_product", Value: k.TopProduct},
		{Name: "total_units", Value: k.TotalUnits},
	}
}

// AggregateName identifies one of the grouped summary tables
type AggregateName string

const (
	AggregateMonthly  AggregateName = "Monthly"
	AggregateDaily    AggregateName = "Daily"
	AggregateProduct  AggregateName = "Product"
	AggregateCategory AggregateName = "Category"
	AggregateLocation AggregateName = "Location"
)

// GroupOutcome tells whether a dimension could be grouped
type GroupOutcome int

const (
	// GroupOK means the table was computed (it may still have zero rows)
	GroupOK GroupOutcome = iota
	// GroupMissingColumns means a required column was absent and the table is empty
	GroupMissingColumns
)

// Output column names of aggregate tables
const (
	AggTotalSales = "total_sales"
	AggUnits      = "units"
)

// AggregateRow is one group of an aggregate table
type AggregateRow struct {
	Key        Value
	TotalSales float64
	Units      float64
}

// AggregateTable is a grouped-and-summed view along one dimension
type AggregateTable struct {
	Name           AggregateName
	KeyColumn      string
	HasUnits       bool
	Rows           []AggregateRow
	Outcome        GroupOutcome
	MissingColumns []string
}

// Empty reports whether the table has no rows
func (a AggregateTable) Empty() bool { return len(a.Rows) == 0 }

// Headers returns the output column names
func (a AggregateTable) Headers() []string {
	h := []string{a.KeyColumn, AggTotalSales}
	if a.HasUnits {
		h = append(h, AggUnits)
	}
	return h
}

// Report is the aggregator output handed to the rendering sink
type Report struct {
	KPIs     KPISet
	Monthly  AggregateTable
	Daily    AggregateTable
	Product  AggregateTable
	Category AggregateTable
	Location AggregateTable
}

// Tables returns the five aggregate tables in fixed order
func (r *Report) Tables() []AggregateTable {
	return []AggregateTable{r.Monthly, r.Daily, r.Product, r.Category, r.Location}
}
