package dataprocessing

import (
	"time"

	"github.com/shopspring/decimal"

	"salesetl/pkg/contracts/domain"
)

// UnknownProduct fills product cells that have no usable value
const UnknownProduct = "UNKNOWN_PRODUCT"

// CleanStats counts what cleaning changed
type CleanStats struct {
	InputRows         int
	OutputRows        int
	DuplicatesRemoved int
	// Cells that held a value but could not be coerced
	UnparsedDates   int
	UnparsedTimes   int
	UnparsedNumbers int
	// Product cells filled with UnknownProduct
	ProductsFilled     int
	CategoriesRemapped int
}

// Clean coerces a normalized table into typed, trimmed values, derives the
// computed columns and drops exact duplicate rows. It never fails: cells
// that cannot be coerced become missing and their rows are kept.
func Clean(normalized *domain.Table, categoryMap map[string]string) (*domain.Table, CleanStats) {
	t := normalized.Clone()
	stats := CleanStats{InputRows: t.Len()}
	schema := t.Schema()

	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		for j := range row {
			row[j] = TrimText(row[j])
		}
	}

	if schema.Has(domain.ColDate) {
		stats.UnparsedDates = coerceColumn(t, domain.ColDate, ParseDate)
	}
	if schema.Has(domain.ColTime) {
		stats.UnparsedTimes = coerceColumn(t, domain.ColTime, ParseTime)
	}
	for _, col := range []string{domain.ColQty, domain.ColUnitPrice} {
		if schema.Has(col) {
			stats.UnparsedNumbers += coerceColumn(t, col, ParseNumber)
		}
	}

	Enrich(t)
	stats.ProductsFilled = fillProduct(t, schema)

	if schema.Has(domain.ColCategory) && len(categoryMap) > 0 {
		stats.CategoriesRemapped = remapCategories(t, categoryMap)
	}

	deduped := DropDuplicates(t)
	stats.OutputRows = deduped.Len()
	stats.DuplicatesRemoved = stats.InputRows - stats.OutputRows
	return deduped, stats
}

// coerceColumn applies fn to every cell of col and returns how many
// non-missing cells came out missing
func coerceColumn(t *domain.Table, col string, fn func(domain.Value) domain.Value) int {
	idx, _ := t.Index(col)
	failed := 0
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		before := row[idx]
		after := fn(before)
		if !before.IsMissing() && after.IsMissing() {
			failed++
		}
		row[idx] = after
	}
	return failed
}

// Enrich adds the derived columns. sale_amt needs both qty and unit_price;
// day, month and weekday need date. A missing input gives a missing result.
func Enrich(t *domain.Table) {
	schema := t.Schema()
	n := t.Len()

	if schema.Has(domain.ColQty) && schema.Has(domain.ColUnitPrice) {
		amounts := make([]domain.Value, n)
		for i := 0; i < n; i++ {
			q, qok := t.Get(i, domain.ColQty).Num()
			p, pok := t.Get(i, domain.ColUnitPrice).Num()
			if qok && pok {
				amounts[i] = domain.NumberValue(lineAmount(q, p))
			}
		}
		t.SetColumn(domain.ColSaleAmount, amounts)
	}

	if schema.Has(domain.ColDate) {
		days := make([]domain.Value, n)
		months := make([]domain.Value, n)
		weekdays := make([]domain.Value, n)
		for i := 0; i < n; i++ {
			d, ok := t.Get(i, domain.ColDate).Date()
			if !ok {
				continue
			}
			days[i] = domain.DateValue(time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location()))
			months[i] = domain.StringValue(d.Format("2006-01"))
			weekdays[i] = domain.StringValue(d.Weekday().String())
		}
		t.SetColumn(domain.ColDay, days)
		t.SetColumn(domain.ColMonth, months)
		t.SetColumn(domain.ColWeekday, weekdays)
	}
}

// lineAmount multiplies in decimal so 3 x 1.1 is 3.3, not 3.3000000000000003
func lineAmount(qty, price float64) float64 {
	f, _ := decimal.NewFromFloat(qty).Mul(decimal.NewFromFloat(price)).Float64()
	return f
}

// fillProduct makes sure a product column exists. It uses the schema from
// before enrichment, which never adds product.
func fillProduct(t *domain.Table, schema domain.Schema) int {
	filled := 0
	switch {
	case schema.Has(domain.ColProduct):
		for i := 0; i < t.Len(); i++ {
			if t.Get(i, domain.ColProduct).IsMissing() {
				t.Set(i, domain.ColProduct, domain.StringValue(UnknownProduct))
				filled++
			}
		}
	case schema.Has(domain.ColProductDetail):
		values, _ := t.Column(domain.ColProductDetail)
		t.SetColumn(domain.ColProduct, values)
	case schema.Has(domain.ColProductID):
		values, _ := t.Column(domain.ColProductID)
		t.SetColumn(domain.ColProduct, values)
	default:
		values := make([]domain.Value, t.Len())
		for i := range values {
			values[i] = domain.StringValue(UnknownProduct)
		}
		t.SetColumn(domain.ColProduct, values)
		filled = len(values)
	}
	return filled
}

// remapCategories replaces mapped category values; unmapped values are kept
func remapCategories(t *domain.Table, categoryMap map[string]string) int {
	changed := 0
	for i := 0; i < t.Len(); i++ {
		v := t.Get(i, domain.ColCategory)
		if v.IsMissing() {
			continue
		}
		if mapped, ok := categoryMap[v.String()]; ok {
			t.Set(i, domain.ColCategory, domain.StringValue(mapped))
			changed++
		}
	}
	return changed
}

// DropDuplicates removes rows equal in every column to an earlier row,
// keeping first occurrences in their original order
func DropDuplicates(t *domain.Table) *domain.Table {
	seen := make(map[string]struct{}, t.Len())
	return t.Filter(func(i int) bool {
		key := t.RowKey(i)
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		return true
	})
}
