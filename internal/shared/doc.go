// Package shared holds helpers used by more than one package. Its testutil
// subpackage provides a capturing slog handler and in-memory workbook
// fixtures for pipeline and HTTP tests.
package shared
