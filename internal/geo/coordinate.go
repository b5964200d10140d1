package geo

import (
	"strconv"
	"strings"
)

// Coordinate is a latitude/longitude pair. No range check is applied.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

var minusSigns = strings.NewReplacer("−", "-", "‒", "-", "–", "-")

// ParseCoordinate reads "lat, lon", "lat,lon" or "lat lon". Only the first
// two parts are used. Both results are nil when the text is empty, has
// fewer than two parts or either part is not a number.
func ParseCoordinate(s string) (lat, lon *float64) {
	c, ok := Parse(s)
	if !ok {
		return nil, nil
	}
	return &c.Lat, &c.Lon
}

// Parse is ParseCoordinate returning a value and an ok flag.
func Parse(s string) (Coordinate, bool) {
	s = strings.TrimSpace(minusSigns.Replace(s))
	if s == "" {
		return Coordinate{}, false
	}

	var parts []string
	if strings.Contains(s, ",") {
		parts = strings.Split(s, ",")
	} else {
		parts = strings.Fields(s)
	}
	if len(parts) < 2 {
		return Coordinate{}, false
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinate{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinate{}, false
	}
	return Coordinate{Lat: lat, Lon: lon}, true
}
