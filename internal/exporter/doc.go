// Package exporter renders ETL output to disk.
//
// WriteCleaned writes the cleaned table as a single-sheet workbook, or as a
// BOM-prefixed CSV when the target ends in .csv. WriteDashboard writes a
// workbook whose visible Dashboard sheet carries KPI tiles and native charts.
// The charts read from hidden helper sheets holding the cleaned rows and
// each aggregate table, so the workbook stays self-contained.
package exporter
