package schema

import (
	"regexp"
	"strings"
)

var headerNoise = regexp.MustCompile(`[^\p{L}\p{N}_\s/]`)

// HeaderVariants lists the accepted spellings of one canonical column.
type HeaderVariants struct {
	Canonical string
	Variants  []string
}

// HeaderTable is an ordered set of header variants. The first entry listing
// a spelling wins.
type HeaderTable []HeaderVariants

// DefaultHeaderVariants returns the spellings seen in field workbooks.
func DefaultHeaderVariants() HeaderTable {
	return HeaderTable{
		{ColumnUP3, []string{"UP3", "UP 3", "UNIT PELAKSANA PELAYANAN PELANGGAN"}},
		{ColumnULP, []string{"ULP", "UL P", "UNIT LAYANAN PELANGGAN"}},
		{ColumnNote, []string{"KETERANGAN", "KETERANGN", "KETERANAGN", "KET"}},
		{ColumnCapacity, []string{"KAPASITAS", "KAPASTAS", "KAPASITS", "CAPACITY"}},
		{ColumnStatus, []string{"STATUS", "STATS", "STATE"}},
		{ColumnSerial, []string{"NO SERI", "NOMOR SERI", "SERIAL NUMBER", "SN"}},
		{ColumnAddress, []string{"ALAMAT TERPASANG", "ALAMAT PASANG", "LOKASI PASANG"}},
		{ColumnIdentifier, []string{"PENOMORAN UGB BARU", "NOMOR UGB BARU", "NO UGB BARU"}},
		{ColumnCoordinate, []string{"KOORDINAT TAGGING", "KOORDINAT TAG", "COORD TAGGING", "KOORDINAT"}},
		{ColumnRetrofit, []string{
			"MENGGUNAKAN TRAFO RETROFIT/NIAGA",
			"MENGGUNAKAN TRAFO RETROFIT / NIAGA",
			"MENGUNAKAN TRAFO RETROFIT/NIAGA",
			"MENGUNAKAN TRAFO RETROFIT / NIAGA",
			"MENGUNAKAKAN TRAFO RETROFIT/NIAGA",
			"MENGUNAKAKAN TRAFO RETROFIT / NIAGA",
			"MENGGUNAKAKAN TRAFO RETROFIT/NIAGA",
			"MENGGUNAKAKAN TRAFO RETROFIT / NIAGA",
			"TRAFO RETROFIT NIAGA",
			"TRAFO RETROFIT/NIAGA",
			"TRAFO RETROFIT / NIAGA",
			"RETROFIT NIAGA",
			"RETROFIT/NIAGA",
			"RETROFIT / NIAGA",
		}},
		{ColumnInstallDate, []string{"TANGGAL TERPASANG", "TGL TERPASANG", "DATE INSTALLED"}},
		{ColumnRemovalDate, []string{"TANGGAL TERBONGKAR", "TGL TERBONGKAR", "DATE REMOVED"}},
	}
}

// CleanHeader uppercases and trims a header, turns every character other
// than letters, digits, underscore, whitespace and slash into a space and
// collapses runs of whitespace.
func CleanHeader(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = headerNoise.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Reconciler maps raw header text onto canonical column names.
type Reconciler struct {
	lookup map[string]string
}

// NewReconciler builds a reconciler for table.
func NewReconciler(table HeaderTable) *Reconciler {
	r := &Reconciler{lookup: make(map[string]string)}
	for _, hv := range table {
		for _, v := range hv.Variants {
			if _, ok := r.lookup[v]; !ok {
				r.lookup[v] = hv.Canonical
			}
		}
	}
	return r
}

// DefaultReconciler builds a reconciler for DefaultHeaderVariants.
func DefaultReconciler() *Reconciler {
	return NewReconciler(DefaultHeaderVariants())
}

// Reconcile returns the canonical name for raw, or the cleaned header when
// no variant matches exactly.
func (r *Reconciler) Reconcile(raw string) string {
	h := CleanHeader(raw)
	if h == "" {
		return ""
	}
	if canonical, ok := r.lookup[h]; ok {
		return canonical
	}
	return h
}

// ColumnName decides the column name used for a raw sheet header: the
// reconciled name when it is canonical or the sequence column, otherwise the
// raw header unchanged.
func (r *Reconciler) ColumnName(raw string) string {
	rec := r.Reconcile(raw)
	if IsCanonical(rec) || rec == ColumnNO {
		return rec
	}
	return raw
}
