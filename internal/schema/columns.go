package schema

import "strings"

// Canonical column names.
const (
	ColumnUP3         = "UP3"
	ColumnULP         = "ULP"
	ColumnNote        = "KETERANGAN"
	ColumnCapacity    = "KAPASITAS"
	ColumnStatus      = "STATUS"
	ColumnSerial      = "NO SERI"
	ColumnAddress     = "ALAMAT TERPASANG"
	ColumnIdentifier  = "PENOMORAN UGB BARU"
	ColumnCoordinate  = "KOORDINAT TAGGING"
	ColumnRetrofit    = "MENGGUNAKAN TRAFO RETROFIT/NIAGA"
	ColumnInstallDate = "TANGGAL TERPASANG"
	ColumnRemovalDate = "TANGGAL TERBONGKAR"
)

// Derived columns.
const (
	// ColumnNO is the dense 1..N sequence regenerated on every persist.
	ColumnNO = "NO"
	// ColumnSourceSheet records the sheet a row came from.
	ColumnSourceSheet = "SOURCE_SHEET"
	// ColumnStatusNorm is a view-only column holding the normalized status.
	ColumnStatusNorm = "STATUS_NORM"
)

var canonicalColumns = []string{
	ColumnUP3,
	ColumnULP,
	ColumnNote,
	ColumnCapacity,
	ColumnStatus,
	ColumnSerial,
	ColumnAddress,
	ColumnIdentifier,
	ColumnCoordinate,
	ColumnRetrofit,
	ColumnInstallDate,
	ColumnRemovalDate,
}

var optionalColumns = map[string]bool{
	ColumnRetrofit: true,
}

// CanonicalColumns returns the canonical columns in their fixed order.
func CanonicalColumns() []string {
	return append([]string(nil), canonicalColumns...)
}

// IsCanonical reports whether name is one of the canonical columns.
func IsCanonical(name string) bool {
	for _, c := range canonicalColumns {
		if c == name {
			return true
		}
	}
	return false
}

// IsOptional reports whether a canonical column may be absent from a sheet.
func IsOptional(name string) bool {
	return optionalColumns[name]
}

// OptionalColumns lists the optional canonical columns in canonical order.
func OptionalColumns() []string {
	var out []string
	for _, c := range canonicalColumns {
		if optionalColumns[c] {
			out = append(out, c)
		}
	}
	return out
}

// Sheet names accepted for ingestion.
var validSheets = []string{
	"UGB UP3 KARANG",
	"UGB UP3 METRO",
	"UGB UP3 KOTABUMI",
	"UGB UP3 PRINGSEWU",
}

// ValidSheets returns the sheet allow-list.
func ValidSheets() []string {
	return append([]string(nil), validSheets...)
}

// IsValidSheet reports whether name matches the allow-list, ignoring case and
// surrounding whitespace.
func IsValidSheet(name string) bool {
	n := strings.ToUpper(strings.TrimSpace(name))
	if n == "" {
		return false
	}
	for _, s := range validSheets {
		if n == strings.ToUpper(s) {
			return true
		}
	}
	return false
}
