package geo

import (
	"regexp"
	"strconv"
	"strings"

	"ugbmonitor/internal/dataset"
	"ugbmonitor/internal/schema"
)

// Normalized status values.
const (
	StatusRusak     = "RUSAK"
	StatusStandBy   = "STAND BY"
	StatusTerpasang = "TERPASANG"
)

// StatusOptions returns the closed status domain in display order.
func StatusOptions() []string {
	return []string{StatusRusak, StatusStandBy, StatusTerpasang}
}

// IsDomainStatus reports whether s is one of StatusOptions.
func IsDomainStatus(s string) bool {
	switch s {
	case StatusRusak, StatusStandBy, StatusTerpasang:
		return true
	}
	return false
}

// NormalizeStatus uppercases and trims s and folds every whitespace
// spelling of STANDBY to "STAND BY". Other values pass through uppercased.
func NormalizeStatus(s string) string {
	x := strings.ToUpper(strings.TrimSpace(s))
	if strings.Join(strings.Fields(x), "") == "STANDBY" {
		return StatusStandBy
	}
	return x
}

// WithStatusNorm returns a copy of t with a STATUS_NORM column derived
// from STATUS. An existing STATUS_NORM column is recomputed.
func WithStatusNorm(t *dataset.Table) *dataset.Table {
	base := t.DropColumns(schema.ColumnStatusNorm)
	return base.InsertColumn(len(base.Columns), schema.ColumnStatusNorm, func(row int) string {
		return NormalizeStatus(base.Value(row, schema.ColumnStatus))
	})
}

var trailingDigits = regexp.MustCompile(`(\d+)$`)

// IdentifierOrderKey returns the trailing run of digits of an identifier as
// an integer, or 0 when there is none.
func IdentifierOrderKey(s string) int {
	m := trailingDigits.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
