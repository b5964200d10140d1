package storage

import (
	"strings"

	"ugbmonitor/internal/dataset"
	"ugbmonitor/internal/normalize"
	"ugbmonitor/internal/schema"
)

// MergeStrategy combines freshly ingested rows with the stored table.
// Incoming rows are placed above existing ones.
type MergeStrategy interface {
	Merge(incoming, existing *dataset.Table) *dataset.Table
}

// AppendAll keeps every row of both tables. SOURCE_SHEET is kept last.
type AppendAll struct{}

// Merge implements MergeStrategy.
func (AppendAll) Merge(incoming, existing *dataset.Table) *dataset.Table {
	return dataset.Concat(incoming.DropColumns(schema.ColumnNO), existing.DropColumns(schema.ColumnNO)).
		MoveToEnd(schema.ColumnSourceSheet)
}

// AppendDedupeByKey keeps the first row of every normalized key over
// Columns, so incoming rows win over stored ones. Rows whose key is blank
// in every column are always kept.
type AppendDedupeByKey struct {
	Columns    []string
	Normalizer *normalize.Normalizer
}

// Merge implements MergeStrategy.
func (s AppendDedupeByKey) Merge(incoming, existing *dataset.Table) *dataset.Table {
	all := AppendAll{}.Merge(incoming, existing)

	n := s.Normalizer
	if n == nil {
		n = normalize.Default()
	}
	keys := n.DedupeKeys(all, s.Columns)
	if len(keys) == 0 {
		return all
	}

	seen := make(map[string]bool, len(keys))
	keep := make([]int, 0, len(keys))
	for i, k := range keys {
		if strings.Trim(k, "|") == "" {
			keep = append(keep, i)
			continue
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		keep = append(keep, i)
	}
	return all.Reorder(keep)
}
