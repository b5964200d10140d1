package dataprocessing

import (
	"sort"

	"ugbmonitor/internal/dataset"
	"ugbmonitor/internal/schema"
)

// Aggregate combines accepted sheet tables into one dataset: concatenated in
// sheet order, identifier-filtered, sorted newest install date first and
// numbered 1..N. SOURCE_SHEET stays the last column even when later sheets
// bring extra columns. Rows are never deduplicated here.
func Aggregate(tables []*dataset.Table) *dataset.Table {
	combined := dataset.Concat(tables...).MoveToEnd(schema.ColumnSourceSheet)
	combined = FilterIdentified(combined)
	combined = SortByInstallDate(combined)
	return combined.Renumber(schema.ColumnNO)
}

// SortByInstallDate stable-sorts rows by install date, newest first, with
// unparseable or missing dates last. The table is returned as is when the
// column is absent or no value parses.
func SortByInstallDate(t *dataset.Table) *dataset.Table {
	idx := t.Index(schema.ColumnInstallDate)
	if idx < 0 {
		return t
	}

	type key struct {
		row    int
		unix   int64
		parsed bool
	}
	keys := make([]key, t.Len())
	anyParsed := false
	for i, r := range t.Rows {
		keys[i].row = i
		if idx >= len(r) {
			continue
		}
		if ts, ok := ParseDate(r[idx]); ok {
			keys[i].unix = ts.Unix()
			keys[i].parsed = true
			anyParsed = true
		}
	}
	if !anyParsed {
		return t
	}

	sort.SliceStable(keys, func(a, b int) bool {
		ka, kb := keys[a], keys[b]
		if ka.parsed != kb.parsed {
			return ka.parsed
		}
		return ka.parsed && ka.unix > kb.unix
	})

	order := make([]int, len(keys))
	for i, k := range keys {
		order[i] = k.row
	}
	return t.Reorder(order)
}
