// Package dataprocessing turns uploaded UGB workbooks into the cabinet
// dataset.
//
// # Pipeline
//
// Every sheet whose name is on the allow-list goes through the Extractor:
//
//	header reconciliation → duplicate column merge → required column check
//	→ canonical reordering → cell trimming → blank and unidentified row removal
//
// Accepted sheet tables are combined by Aggregate: concatenated in sheet
// order, filtered on PENOMORAN UGB BARU, sorted newest TANGGAL TERPASANG
// first and numbered 1..N in the NO column. Rows are not deduplicated.
//
// # Usage
//
//	p := dataprocessing.NewProcessor(logger)
//	res := p.Process(ctx, file, nil)
//	if !res.Success {
//	    return res.Err
//	}
//
// # Error Handling
//
// A single rejected sheet fails the whole workbook. Result.Err carries an
// *errors.AppError whose type tells file format, missing sheet, missing
// column and empty result failures apart; Result.Message carries the
// operator-facing text.
package dataprocessing
