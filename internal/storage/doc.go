// Package storage persists the processed cabinet table.
//
// A Backend holds exactly one table: LocalBackend writes a CSV file with a
// timestamped backup of the previous version, SheetsBackend writes a
// worksheet through the Google Sheets API. Manager applies the save policy
// on top of a backend:
//
//   - replace (default): the new table becomes the whole store
//   - merge: new rows go above the stored ones and a MergeStrategy decides
//     which rows survive (AppendAll keeps everything)
//
// Either way the NO column is regenerated as a dense 1..N sequence.
//
// Backup failures never abort a save; they are reported through
// SaveReport.BackupErr and match ErrBackupFailed with errors.Is.
package storage
