package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"ugbmonitor/internal/config"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// WorkbookExtensions are the spreadsheet formats the ingest pipeline reads.
var WorkbookExtensions = []string{".xlsx", ".xlsm"}

// IsWorkbook reports whether name has a readable workbook extension.
func IsWorkbook(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range WorkbookExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// FindWorkbooks lists the workbooks in dir, oldest first. Office lock files
// ("~$name.xlsx") are skipped.
func FindWorkbooks(dir string) ([]FileInfo, error) {
	files, err := list(dir, func(name string) bool {
		return IsWorkbook(name) && !strings.HasPrefix(name, "~$")
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}

// FindBackups lists the backups of store held in dir, newest first.
func FindBackups(dir, store string) ([]FileInfo, error) {
	base := filepath.Base(store)
	ext := filepath.Ext(base)
	prefix := strings.TrimSuffix(base, ext) + "_"

	files, err := list(dir, func(name string) bool {
		if !strings.HasPrefix(name, prefix) || filepath.Ext(name) != ext {
			return false
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ext)
		_, err := time.Parse(config.TimestampLayout, stamp)
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	// Names sort chronologically.
	sort.Slice(files, func(i, j int) bool { return files[i].Name > files[j].Name })
	return files, nil
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}
	return latest, true
}

func list(dir string, match func(name string) bool) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !match(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(dir, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}
