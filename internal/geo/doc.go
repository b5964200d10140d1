// Package geo derives map data from cabinet records: coordinate parsing,
// status normalization, identifier ordering keys and grouping of records
// that share a tagged coordinate.
package geo
