package validation

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterQuery(t *testing.T) {
	v := New()
	tests := []struct {
		name  string
		query FilterQuery
		field string
	}{
		{name: "empty"},
		{name: "all", query: FilterQuery{UP3: []string{"Semua"}, Status: []string{"semua"}}},
		{name: "status spellings", query: FilterQuery{Status: []string{"standby", "Stand By", "RUSAK", "terpasang"}}},
		{name: "unknown status", query: FilterQuery{Status: []string{"DICABUT"}}, field: "status[0]"},
		{name: "too many statuses", query: FilterQuery{Status: []string{"RUSAK", "RUSAK", "RUSAK", "RUSAK", "RUSAK"}}, field: "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.query)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verrs validator.ValidationErrors
			require.True(t, errors.As(err, &verrs), "got %v", err)
			assert.Equal(t, tt.field, verrs[0].Field())
		})
	}
}

func TestClusterQuery(t *testing.T) {
	v := New()
	zero := 0.0
	assert.NoError(t, v.Struct(ClusterQuery{Lat: &zero, Lon: &zero}))

	err := v.Struct(ClusterQuery{Lat: &zero})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "lon", verrs[0].Field())
}
