// Package normalize collapses spelling variants of field vocabulary
// (statuses, yes/no answers, region names) onto canonical forms.
//
// Two entry points exist. NormalizeText cleans free text and rewrites known
// variants, including whole-word replacements inside longer phrases.
// NormalizeKey is a lighter exact-match form used to compare rows, for
// example when building duplicate-detection keys during a merge. Neither is
// applied to stored cell content during ingestion.
package normalize
