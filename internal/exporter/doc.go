// Package exporter writes cabinet tables out of the application.
//
// WriteCSV and ReadCSV are the text codec of the local durable store.
// WriteWorkbook produces the downloadable recap: one "Rekap UGB" sheet with
// a bold header row, the internal STATUS_NORM column removed and a NO
// column guaranteed.
//
//	w.Header().Set("Content-Disposition", "attachment; filename="+exporter.FileName(time.Now()))
//	err := exporter.WriteWorkbook(w, table)
package exporter
