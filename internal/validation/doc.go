// Package validation checks input at the edges of the application:
// uploaded and on-disk workbooks (FileValidator) and API query parameters
// (FilterQuery, ClusterQuery with the validator returned by New).
package validation
