// Package files provides file system operations and discovery utilities.
//
// Manager resolves paths against the configured data, logs and backup
// directories and offers the two write primitives the durable store is
// built on: WriteFileAtomic (temp file and rename) and Backup (timestamped
// copy named "<stem>_<YYYYMMDD_HHMMSS><ext>").
//
// Discovery helpers list workbooks waiting to be ingested and the backups
// kept for a store file.
//
//	manager := files.NewManager(paths, logger)
//	backup, err := manager.Backup("ugb_database.csv", "backup/", time.Now())
package files
