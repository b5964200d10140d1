package services

import (
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"ugbmonitor/internal/dataset"
	"ugbmonitor/internal/exporter"
	"ugbmonitor/internal/geo"
	"ugbmonitor/internal/schema"
	"ugbmonitor/internal/validation"
)

// Filter keys stored in the session.
const (
	FilterUP3    = "up3"
	FilterULP    = "ulp"
	FilterStatus = "status"
)

// FilterOptions lists the values offered by the filter controls.
type FilterOptions struct {
	UP3    []string `json:"up3"`
	ULP    []string `json:"ulp"`
	Status []string `json:"status"`
}

// Summary holds the KPI figures of a filtered view.
type Summary struct {
	Total   int `json:"total"`
	Rows    int `json:"rows"`
	Counted int `json:"counted"`
	// Percentages are over rows whose normalized status is a domain status,
	// rounded to one decimal.
	PercentRusak     float64 `json:"percent_rusak"`
	PercentStandBy   float64 `json:"percent_stand_by"`
	PercentTerpasang float64 `json:"percent_terpasang"`
}

// View is a filtered dataset with the normalized status column attached.
type View struct {
	Table *dataset.Table `json:"table"`
	// Of is the row count before filtering.
	Of int `json:"of"`
}

// QueryFromFilters converts a stored filter map into a query.
func QueryFromFilters(filters map[string][]string) validation.FilterQuery {
	return validation.FilterQuery{
		UP3:    filters[FilterUP3],
		ULP:    filters[FilterULP],
		Status: filters[FilterStatus],
	}
}

// FiltersFromQuery is the inverse of QueryFromFilters.
func FiltersFromQuery(q validation.FilterQuery) map[string][]string {
	return map[string][]string{
		FilterUP3:    q.UP3,
		FilterULP:    q.ULP,
		FilterStatus: q.Status,
	}
}

// Options returns the filter choices for t. UP3 and ULP are the sorted
// distinct non-empty values; ULP is limited to rows of the selected UP3
// values when any are selected.
func Options(t *dataset.Table, selectedUP3 []string) FilterOptions {
	up3 := selection(selectedUP3, nil)
	return FilterOptions{
		UP3: distinct(t, schema.ColumnUP3, nil),
		ULP: distinct(t, schema.ColumnULP, func(row int) bool {
			return len(up3) == 0 || up3[t.Value(row, schema.ColumnUP3)]
		}),
		Status: geo.StatusOptions(),
	}
}

func distinct(t *dataset.Table, column string, keep func(row int) bool) []string {
	if !t.Has(column) {
		return []string{}
	}
	seen := make(map[string]bool)
	out := []string{}
	for i := 0; i < t.Len(); i++ {
		if keep != nil && !keep(i) {
			continue
		}
		v := t.Value(i, column)
		if strings.TrimSpace(v) == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// selection turns a filter list into a set. AllValues anywhere in the
// list, or an empty list, selects everything and yields an empty set.
func selection(values []string, norm func(string) string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), validation.AllValues) {
			return nil
		}
		if norm != nil {
			v = norm(v)
		}
		set[v] = true
	}
	return set
}

// Apply adds STATUS_NORM to t and keeps the rows matching q. UP3 and ULP
// match exactly; STATUS matches on the normalized status. A filter on a
// column the table lacks is ignored.
func Apply(t *dataset.Table, q validation.FilterQuery) View {
	withNorm := geo.WithStatusNorm(t)
	up3 := selection(q.UP3, nil)
	ulp := selection(q.ULP, nil)
	status := selection(q.Status, geo.NormalizeStatus)

	match := func(set map[string]bool, column string, row []string) bool {
		if len(set) == 0 {
			return true
		}
		idx := withNorm.Index(column)
		if idx < 0 {
			return true
		}
		v := ""
		if idx < len(row) {
			v = row[idx]
		}
		return set[v]
	}

	filtered := withNorm.Filter(func(row []string) bool {
		return match(up3, schema.ColumnUP3, row) &&
			match(ulp, schema.ColumnULP, row) &&
			match(status, schema.ColumnStatusNorm, row)
	})
	return View{Table: filtered, Of: t.Len()}
}

// Summarize computes the KPI figures of t. Total counts non-empty
// identifiers, or rows when the identifier column is absent.
func Summarize(t *dataset.Table) Summary {
	s := Summary{Rows: t.Len()}
	hasID := t.Has(schema.ColumnIdentifier)
	counts := make(map[string]int)
	for i := 0; i < t.Len(); i++ {
		if !hasID || strings.TrimSpace(t.Value(i, schema.ColumnIdentifier)) != "" {
			s.Total++
		}
		status := geo.NormalizeStatus(t.Value(i, schema.ColumnStatus))
		if geo.IsDomainStatus(status) {
			counts[status]++
			s.Counted++
		}
	}

	pct := func(n int) float64 {
		if s.Counted == 0 {
			return 0
		}
		return decimal.NewFromInt(int64(n)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(s.Counted))).
			Round(1).
			InexactFloat64()
	}
	s.PercentRusak = pct(counts[geo.StatusRusak])
	s.PercentStandBy = pct(counts[geo.StatusStandBy])
	s.PercentTerpasang = pct(counts[geo.StatusTerpasang])
	return s
}

// MapView returns the map data of t.
func MapView(t *dataset.Table) geo.MapView {
	return geo.BuildMapView(t)
}

// Cluster returns the cabinets located at the given point.
func Cluster(t *dataset.Table, lat, lon float64) []geo.Item {
	return geo.FindCluster(t, geo.Coordinate{Lat: lat, Lon: lon})
}

// Export writes t as the recap workbook.
func Export(w io.Writer, t *dataset.Table) error {
	return exporter.WriteWorkbook(w, t)
}
