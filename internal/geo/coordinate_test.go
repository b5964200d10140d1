package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantOK  bool
		wantLat float64
		wantLon float64
	}{
		{"comma and space", "-5.39, 105.26", true, -5.39, 105.26},
		{"unicode minus", "−5.39, 105.26", true, -5.39, 105.26},
		{"en dash", "–5.1,105.2", true, -5.1, 105.2},
		{"no space", "-5.1,105.2", true, -5.1, 105.2},
		{"whitespace separated", "-5.1 105.2", true, -5.1, 105.2},
		{"extra parts ignored", "1 2 3", true, 1, 2},
		{"extra comma parts ignored", "1,2,3", true, 1, 2},
		{"out of range accepted", "95, 200", true, 95, 200},
		{"text", "abc", false, 0, 0},
		{"empty", "", false, 0, 0},
		{"blank", "   ", false, 0, 0},
		{"single number", "-5.1", false, 0, 0},
		{"bad longitude", "-5.1, east", false, 0, 0},
		{"empty part", "-5.1,", false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lon := ParseCoordinate(tt.in)
			if !tt.wantOK {
				assert.Nil(t, lat)
				assert.Nil(t, lon)
				return
			}
			require.NotNil(t, lat)
			require.NotNil(t, lon)
			assert.InDelta(t, tt.wantLat, *lat, 1e-12)
			assert.InDelta(t, tt.wantLon, *lon, 1e-12)
		})
	}
}
