package dataprocessing

// Layered is a string mapping built from built-in defaults plus caller
// overrides. Overrides win key by key; defaults not overridden survive.
type Layered struct {
	Defaults  map[string]string
	Overrides map[string]string
}

// Resolve merges both layers into a fresh map
func (l Layered) Resolve() map[string]string {
	out := make(map[string]string, len(l.Defaults)+len(l.Overrides))
	for k, v := range l.Defaults {
		out[k] = v
	}
	for k, v := range l.Overrides {
		out[k] = v
	}
	return out
}

// Layers returns the defaults then the overrides, lowest precedence first
func (l Layered) Layers() []map[string]string {
	return []map[string]string{l.Defaults, l.Overrides}
}

// With returns a copy of l with extra overrides merged in
func (l Layered) With(overrides map[string]string) Layered {
	merged := make(map[string]string, len(l.Overrides)+len(overrides))
	for k, v := range l.Overrides {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return Layered{Defaults: l.Defaults, Overrides: merged}
}

// Config holds the mappings used by the cleaning pipeline
type Config struct {
	// ColumnMap maps source column names to canonical names (case-insensitive lookup)
	ColumnMap Layered
	// CategoryMap maps raw category values to normalized ones
	CategoryMap Layered
}

// DefaultColumnMap returns the built-in source-name to canonical-name mapping
func DefaultColumnMap() map[string]string {
	return map[string]string{
		"transaction_id":   "transaction_id",
		"transaction_date": "date",
		"transaction_time": "time",
		"transaction_qty":  "qty",
		"store_id":         "store_id",
		"store_location":   "store_location",
		"product_id":       "product_id",
		"unit_price":       "unit_price",
		"product_category": "category",
		"product_type":     "subcategory",
		"product_detail":   "product",
		"quantity":         "qty",
		"price":            "unit_price",
	}
}

// DefaultConfig returns the built-in mappings with no overrides.
// The category mapping has no defaults.
func DefaultConfig() Config {
	return Config{
		ColumnMap:   Layered{Defaults: DefaultColumnMap()},
		CategoryMap: Layered{Defaults: map[string]string{}},
	}
}

// WithOverrides returns a copy of c with caller mappings merged over it
func (c Config) WithOverrides(columnMap, categoryMap map[string]string) Config {
	return Config{
		ColumnMap:   c.ColumnMap.With(columnMap),
		CategoryMap: c.CategoryMap.With(categoryMap),
	}
}
