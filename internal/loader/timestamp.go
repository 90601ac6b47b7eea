package loader

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04 PM",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"2 Jan 2006 15:04:05",
	"2 Jan 2006",
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006",
}

// Spreadsheet exports often deliver dates as raw serial numbers. Anything
// between these bounds (1954..2118) is treated as a serial date; smaller
// values would shadow plain integers such as years.
const (
	minDateSerial = 20000
	maxDateSerial = 80000
)

// parseTimestamp converts a cell into a time, best effort. Unparseable
// values yield nil rather than an error so a few bad rows never abort the
// upload.
func parseTimestamp(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if serial >= minDateSerial && serial <= maxDateSerial {
			if parsed, err := excelize.ExcelDateToTime(serial, false); err == nil {
				parsed = parsed.UTC()
				return &parsed
			}
		}
		return nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			parsed = parsed.UTC()
			return &parsed
		}
	}
	return nil
}
