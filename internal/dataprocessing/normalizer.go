package dataprocessing

import (
	"sort"
	"strings"

	"salesetl/pkg/contracts/domain"
)

// ColumnResolver maps raw column names to canonical names
type ColumnResolver struct {
	exact map[string]string
	lower map[string]string
}

// NewColumnResolver builds a resolver over one or more mappings. Later
// layers win, both for exact and case-insensitive matches, so callers pass
// defaults first and overrides last.
func NewColumnResolver(layers ...map[string]string) *ColumnResolver {
	r := &ColumnResolver{
		exact: make(map[string]string),
		lower: make(map[string]string),
	}

	// Within a layer, keys that collide once lower-cased resolve to the last
	// one in sorted order so the result never depends on map iteration.
	for _, layer := range layers {
		keys := make([]string, 0, len(layer))
		for k := range layer {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			r.exact[k] = layer[k]
			r.lower[strings.ToLower(k)] = layer[k]
		}
	}
	return r
}

// Resolve returns the canonical name for a raw column name
func (r *ColumnResolver) Resolve(raw string) string {
	name := strings.TrimSpace(raw)
	if v, ok := r.exact[name]; ok {
		return v
	}
	lowered := strings.ToLower(name)
	if v, ok := r.lower[lowered]; ok {
		return v
	}
	return strings.ReplaceAll(lowered, " ", "_")
}

// NormalizeColumns renames the columns of raw to canonical names. Row count
// and cell values are unchanged. When several source columns resolve to the
// same name they are coalesced into the first one's position, taking the
// first non-missing cell of each row.
func NormalizeColumns(raw *domain.Table, colMap map[string]string) *domain.Table {
	return NormalizeWith(raw, NewColumnResolver(colMap))
}

// NormalizeWith is NormalizeColumns over a prepared resolver
func NormalizeWith(raw *domain.Table, resolver *ColumnResolver) *domain.Table {
	src := raw.Columns()
	target := make([]int, len(src))
	var names []string
	seen := make(map[string]int, len(src))
	for i, c := range src {
		name := resolver.Resolve(c)
		pos, ok := seen[name]
		if !ok {
			pos = len(names)
			seen[name] = pos
			names = append(names, name)
		}
		target[i] = pos
	}

	out := domain.NewTable(names)
	for i := 0; i < raw.Len(); i++ {
		cells := make([]domain.Value, len(names))
		for j, v := range raw.Row(i) {
			if dst := target[j]; cells[dst].IsMissing() {
				cells[dst] = v
			}
		}
		out.AppendRow(cells)
	}
	return out
}
