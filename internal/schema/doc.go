// Package schema defines the canonical column layout of the cabinet
// database and reconciles the header spellings found in field workbooks onto
// it.
package schema
