package dataprocessing

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// CellDateLayout is how date-formatted workbook cells are rendered to text.
const CellDateLayout = "2006-01-02 15:04:05"

var dateLayouts = []string{
	CellDateLayout,
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006/01/02",
	"2006/1/2",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2/1/2006 15:04",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2 January 2006",
	"2 Jan 2006",
	"2-Jan-2006",
	"2-Jan-06",
	"January 2, 2006",
	"Jan 2, 2006",
}

// Indonesian month spellings rewritten to the English names time.Parse knows.
var monthReplacer = strings.NewReplacer(
	"januari", "january",
	"februari", "february",
	"maret", "march",
	"mei", "may",
	"juni", "june",
	"juli", "july",
	"agustus", "august",
	"oktober", "october",
	"desember", "december",
	"agt", "aug",
	"ags", "aug",
	"agu", "aug",
	"okt", "oct",
	"des", "dec",
)

// Excel serials accepted as dates: 1950-01-01 through 2099-12-31.
const (
	minDateSerial = 18264
	maxDateSerial = 73050
)

// ParseDate parses the date formats found in field workbooks. Slash and dash
// dates are read day first. Bare numbers in the Excel serial range are
// treated as serial dates.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < minDateSerial || serial > maxDateSerial {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	candidate := strings.Join(strings.Fields(s), " ")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, candidate); err == nil {
			return t, true
		}
	}

	translated := monthReplacer.Replace(strings.ToLower(candidate))
	if translated != strings.ToLower(candidate) {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, translated); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
