package geo

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"ugbmonitor/internal/dataprocessing"
	"ugbmonitor/internal/dataset"
	"ugbmonitor/internal/schema"
)

// Map defaults for the Lampung service area.
var DefaultCenter = Coordinate{Lat: -5.3971, Lon: 105.2663}

const (
	DefaultZoom = 9
	// GroupPrecision is the number of decimals coordinates are rounded to
	// before grouping.
	GroupPrecision = 6
	// ClusterEpsilon is the tolerance used to match a clicked point.
	ClusterEpsilon = 1e-6
)

// Marker colors.
const (
	ColorRed    = "red"
	ColorOrange = "orange"
	ColorGreen  = "green"
)

var dotColors = map[string]string{
	StatusStandBy:   "#28a745",
	StatusRusak:     "#dc3545",
	StatusTerpasang: "#ffc107",
}

// DotColor returns the hex color shown next to a cabinet with the given
// normalized status.
func DotColor(status string) string {
	if c, ok := dotColors[status]; ok {
		return c
	}
	return "#6c757d"
}

// Trend directions of capacity between consecutive items of a group.
const (
	TrendUp   = "up"
	TrendDown = "down"
)

// Item is one cabinet record placed at a map point.
type Item struct {
	NO         int               `json:"no"`
	Identifier string            `json:"identifier"`
	Capacity   string            `json:"capacity"`
	Serial     string            `json:"serial"`
	ULP        string            `json:"ulp"`
	Status     string            `json:"status"`
	DotColor   string            `json:"dot_color"`
	Installed  string            `json:"installed"`
	Trend      string            `json:"trend,omitempty"`
	Previous   map[string]string `json:"previous,omitempty"`
}

// Group is every record sharing one rounded coordinate.
type Group struct {
	Coordinate
	Color string `json:"color"`
	// Items are ordered by install date, identifier key and NO.
	Items []Item `json:"items"`
	// Latest is the item with the highest NO.
	Latest Item `json:"latest"`
}

// MapView is the data needed to draw the cabinet map.
type MapView struct {
	Center  Coordinate `json:"center"`
	Zoom    int        `json:"zoom"`
	Markers int        `json:"markers"`
	Groups  []Group    `json:"groups"`
}

// BuildMapView groups t and wraps the result with the map defaults.
func BuildMapView(t *dataset.Table) MapView {
	groups := GroupByCoordinate(t)
	return MapView{Center: DefaultCenter, Zoom: DefaultZoom, Markers: len(groups), Groups: groups}
}

// GroupByCoordinate groups rows by coordinate rounded to GroupPrecision
// decimals. Rows without a parseable coordinate are skipped. Groups come
// out in first-seen order.
func GroupByCoordinate(t *dataset.Table) []Group {
	type bucket struct {
		coord Coordinate
		rows  []int
	}
	var order []string
	buckets := make(map[string]*bucket)

	for i := 0; i < t.Len(); i++ {
		c, ok := Parse(t.Value(i, schema.ColumnCoordinate))
		if !ok || math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
			continue
		}
		lat := decimal.NewFromFloat(c.Lat).Round(GroupPrecision)
		lon := decimal.NewFromFloat(c.Lon).Round(GroupPrecision)
		key := lat.String() + "," + lon.String()
		b, ok := buckets[key]
		if !ok {
			b = &bucket{coord: Coordinate{Lat: lat.InexactFloat64(), Lon: lon.InexactFloat64()}}
			buckets[key] = b
			order = append(order, key)
		}
		b.rows = append(b.rows, i)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		items := buildItems(t, b.rows)
		groups = append(groups, Group{
			Coordinate: b.coord,
			Color:      groupColor(items),
			Items:      items,
			Latest:     latest(items),
		})
	}
	return groups
}

// FindCluster returns the rows whose coordinate lies within ClusterEpsilon
// of c, ordered like group items.
func FindCluster(t *dataset.Table, c Coordinate) []Item {
	var rows []int
	for i := 0; i < t.Len(); i++ {
		rc, ok := Parse(t.Value(i, schema.ColumnCoordinate))
		if !ok {
			continue
		}
		if math.Abs(rc.Lat-c.Lat) < ClusterEpsilon && math.Abs(rc.Lon-c.Lon) < ClusterEpsilon {
			rows = append(rows, i)
		}
	}
	return buildItems(t, rows)
}

func buildItems(t *dataset.Table, rows []int) []Item {
	type keyed struct {
		item   Item
		ts     int64
		parsed bool
		idKey  int
	}
	ks := make([]keyed, 0, len(rows))
	for _, i := range rows {
		no, err := strconv.Atoi(strings.TrimSpace(t.Value(i, schema.ColumnNO)))
		if err != nil || !t.Has(schema.ColumnNO) {
			no = i + 1
		}
		status := NormalizeStatus(t.Value(i, schema.ColumnStatus))
		it := Item{
			NO:         no,
			Identifier: t.Value(i, schema.ColumnIdentifier),
			Capacity:   t.Value(i, schema.ColumnCapacity),
			Serial:     t.Value(i, schema.ColumnSerial),
			ULP:        t.Value(i, schema.ColumnULP),
			Status:     status,
			DotColor:   DotColor(status),
			Installed:  t.Value(i, schema.ColumnInstallDate),
		}
		k := keyed{item: it, idKey: IdentifierOrderKey(it.Identifier)}
		if ts, ok := dataprocessing.ParseDate(it.Installed); ok {
			k.ts, k.parsed = ts.Unix(), true
		}
		ks = append(ks, k)
	}

	sort.SliceStable(ks, func(a, b int) bool {
		x, y := ks[a], ks[b]
		if x.parsed != y.parsed {
			return x.parsed
		}
		if x.parsed && x.ts != y.ts {
			return x.ts < y.ts
		}
		if x.idKey != y.idKey {
			return x.idKey < y.idKey
		}
		return x.item.NO < y.item.NO
	})

	items := make([]Item, len(ks))
	for i, k := range ks {
		items[i] = k.item
		if i > 0 {
			annotate(&items[i], items[i-1])
		}
	}
	return items
}

// annotate records how it differs from the item before it.
func annotate(it *Item, prev Item) {
	if now, ok := parseCapacity(it.Capacity); ok {
		if before, ok := parseCapacity(prev.Capacity); ok {
			switch {
			case now > before:
				it.Trend = TrendUp
			case now < before:
				it.Trend = TrendDown
			}
		}
	}
	changes := map[string]string{}
	if it.Identifier != prev.Identifier {
		changes[schema.ColumnIdentifier] = prev.Identifier
	}
	if it.Capacity != prev.Capacity {
		changes[schema.ColumnCapacity] = prev.Capacity
	}
	if it.Serial != prev.Serial {
		changes[schema.ColumnSerial] = prev.Serial
	}
	if len(changes) > 0 {
		it.Previous = changes
	}
}

func parseCapacity(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// groupColor picks the marker color: RUSAK beats TERPASANG, anything else
// is drawn as STAND BY.
func groupColor(items []Item) string {
	var terpasang bool
	for _, it := range items {
		switch it.Status {
		case StatusRusak:
			return ColorRed
		case StatusTerpasang:
			terpasang = true
		}
	}
	if terpasang {
		return ColorOrange
	}
	return ColorGreen
}

func latest(items []Item) Item {
	var best Item
	for i, it := range items {
		if i == 0 || it.NO >= best.NO {
			best = it
		}
	}
	return best
}
