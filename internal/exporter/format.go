package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"salesetl/pkg/contracts/domain"
)

// Number formats used in exported workbooks
const (
	numFmtDate    = "yyyy-mm-dd"
	numFmtInteger = "#,##0"
	numFmtDecimal = "#,##0.00"
)

// moneyFormat prefixes the two-decimal format with a currency symbol
func moneyFormat(symbol string) string {
	if symbol == "" {
		return numFmtDecimal
	}
	return fmt.Sprintf(`"%s"%s`, symbol, numFmtDecimal)
}

// formatRecord renders one table row for CSV output. Missing cells are empty.
func formatRecord(row []domain.Value) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = v.String()
	}
	return out
}

// columnRange returns an absolute reference to rows first..last of column
// col (1-based) on sheet, e.g. Monthly!$A$2:$A$13
func columnRange(sheet string, col, first, last int) string {
	from, _ := excelize.CoordinatesToCellName(col, first, true)
	to, _ := excelize.CoordinatesToCellName(col, last, true)
	return fmt.Sprintf("%s!%s:%s", sheet, from, to)
}

// cellRef returns an absolute reference to one cell, e.g. Monthly!$B$1
func cellRef(sheet string, col, row int) string {
	ref, _ := excelize.CoordinatesToCellName(col, row, true)
	return fmt.Sprintf("%s!%s", sheet, ref)
}
