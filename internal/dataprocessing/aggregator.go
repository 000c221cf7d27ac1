package dataprocessing

import (
	"sort"

	"github.com/shopspring/decimal"

	"salesetl/pkg/contracts/domain"
)

// dimension describes one grouped summary table
type dimension struct {
	name      domain.AggregateName
	key       string
	withUnits bool
	// byRevenue ranks groups by descending sales instead of ascending key
	byRevenue bool
}

var dimensions = []dimension{
	{name: domain.AggregateMonthly, key: domain.ColMonth, withUnits: true},
	{name: domain.AggregateDaily, key: domain.ColDay},
	{name: domain.AggregateProduct, key: domain.ColProduct, withUnits: true, byRevenue: true},
	{name: domain.AggregateCategory, key: domain.ColCategory, byRevenue: true},
	{name: domain.AggregateLocation, key: domain.ColStoreLocation, byRevenue: true},
}

// required lists the columns the dimension cannot be grouped without
func (d dimension) required() []string {
	cols := []string{d.key, domain.ColSaleAmount}
	if d.withUnits {
		cols = append(cols, domain.ColQty)
	}
	return cols
}

// Aggregate computes the KPI set and the five summary tables from a cleaned
// table. It has no side effects and never fails; a dimension whose columns
// are absent yields an empty table marked GroupMissingColumns.
func Aggregate(t *domain.Table) *domain.Report {
	schema := t.Schema()
	tables := make(map[domain.AggregateName]domain.AggregateTable, len(dimensions))
	for _, d := range dimensions {
		tables[d.name] = groupDimension(t, schema, d)
	}

	report := &domain.Report{
		Monthly:  tables[domain.AggregateMonthly],
		Daily:    tables[domain.AggregateDaily],
		Product:  tables[domain.AggregateProduct],
		Category: tables[domain.AggregateCategory],
		Location: tables[domain.AggregateLocation],
	}
	report.KPIs = computeKPIs(t, schema, report.Product)
	return report
}

type group struct {
	key   domain.Value
	sales decimal.Decimal
	units decimal.Decimal
}

func groupDimension(t *domain.Table, schema domain.Schema, d dimension) domain.AggregateTable {
	out := domain.AggregateTable{
		Name:      d.name,
		KeyColumn: d.key,
		HasUnits:  d.withUnits,
	}
	if missing := schema.Missing(d.required()...); len(missing) > 0 {
		out.Outcome = domain.GroupMissingColumns
		out.MissingColumns = missing
		return out
	}

	keyIdx, _ := t.Index(d.key)
	salesIdx, _ := t.Index(domain.ColSaleAmount)
	qtyIdx, hasQty := t.Index(domain.ColQty)

	byKey := make(map[string]*group)
	var groups []*group
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		key := row[keyIdx]
		if key.IsMissing() {
			continue
		}
		g, ok := byKey[key.Key()]
		if !ok {
			g = &group{key: key}
			byKey[key.Key()] = g
			groups = append(groups, g)
		}
		if f, ok := row[salesIdx].Num(); ok {
			g.sales = g.sales.Add(decimal.NewFromFloat(f))
		}
		if d.withUnits && hasQty {
			if f, ok := row[qtyIdx].Num(); ok {
				g.units = g.units.Add(decimal.NewFromFloat(f))
			}
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].key.Compare(groups[j].key) < 0
	})
	if d.byRevenue {
		sort.SliceStable(groups, func(i, j int) bool {
			return groups[i].sales.GreaterThan(groups[j].sales)
		})
	}

	out.Rows = make([]domain.AggregateRow, len(groups))
	for i, g := range groups {
		sales, _ := g.sales.Float64()
		units, _ := g.units.Float64()
		out.Rows[i] = domain.AggregateRow{Key: g.key, TotalSales: sales, Units: units}
	}
	return out
}

func computeKPIs(t *domain.Table, schema domain.Schema, product domain.AggregateTable) domain.KPISet {
	kpis := domain.KPISet{
		TotalTransactions: t.Len(),
		TopProduct:        domain.NotAvailable,
	}

	if schema.Has(domain.ColSaleAmount) {
		kpis.TotalSales = sumColumn(t, domain.ColSaleAmount).InexactFloat64()
	}
	if kpis.TotalTransactions > 0 {
		kpis.AvgTicket = kpis.TotalSales / float64(kpis.TotalTransactions)
	}
	if schema.Has(domain.ColQty) {
		kpis.TotalUnits = sumColumn(t, domain.ColQty).IntPart()
	}
	if schema.Has(domain.ColProduct) {
		distinct := make(map[string]struct{})
		values, _ := t.Column(domain.ColProduct)
		for _, v := range values {
			if !v.IsMissing() {
				distinct[v.Key()] = struct{}{}
			}
		}
		kpis.UniqueProducts = len(distinct)
	}
	if !product.Empty() {
		kpis.TopProduct = product.Rows[0].Key.String()
	}
	return kpis
}

// sumColumn adds the numeric cells of a column, skipping missing ones
func sumColumn(t *domain.Table, col string) decimal.Decimal {
	total := decimal.Zero
	values, _ := t.Column(col)
	for _, v := range values {
		if f, ok := v.Num(); ok {
			total = total.Add(decimal.NewFromFloat(f))
		}
	}
	return total
}
