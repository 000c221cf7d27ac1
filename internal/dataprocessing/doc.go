// Package dataprocessing turns a raw sales table into a cleaned table and a
// set of summary aggregates.
//
// # Architecture
//
// The package is organized into four stages, run in order by Pipeline:
//
// 1. Normalizer: renames source columns to canonical names via a configurable,
// case-insensitive mapping (NormalizeColumns)
// 2. Cleaner: trims text, coerces dates, times and numbers, remaps categories
// and fills product names (Clean)
// 3. Enricher: derives sale_amt, day, month and weekday (Enrich), after which
// exact duplicate rows are dropped
// 4. Aggregator: computes the KPI set and the Monthly, Daily, Product,
// Category and Location tables (Aggregate)
//
// # Usage
//
//	cfg := dataprocessing.DefaultConfig().WithOverrides(colMap, categoryMap)
//	result, err := dataprocessing.NewPipeline(cfg, dataprocessing.WithLogger(logger)).Run(ctx, raw)
//	if errors.Is(err, dataprocessing.ErrEmptyInput) {
//	    return nil // nothing to do
//	}
//
// # Data Flow
//
//	Raw Table → Normalizer → Cleaner/Enricher → Cleaned Table → Aggregator → Report
//
// # Error Handling
//
// Dirty data never fails a run. A cell that cannot be coerced becomes a
// missing value and is skipped by sums and counts. The only signal returned
// to callers is ErrEmptyInput.
//
// The package does no I/O; reading inputs and writing outputs belong to the
// ingest and exporter packages.
package dataprocessing
