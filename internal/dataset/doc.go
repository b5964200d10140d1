// Package dataset holds the in-memory tabular representation shared by the
// ingestion pipeline, the persistence layer and the HTTP API.
//
// A Table is a plain value: stages never mutate a table they received, they
// return a modified copy. All cells are strings so leading zeros, date
// spellings and serial numbers survive a load/save cycle unchanged.
package dataset
