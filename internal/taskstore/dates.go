package taskstore

import (
	"fmt"
	"strings"
	"time"

	"taskbot/internal/service"
)

// ISODate is the canonical layout used for storage and comparison.
const ISODate = "2006-01-02"

// Accepted input layouts, tried in order. Single-digit days and months are
// accepted; years must have four digits.
var inputLayouts = []string{
	"2006-1-2", // ISO
	"2.1.2006", // day-first
}

// NormalizeDate converts an ISO or day-first date to YYYY-MM-DD.
// Returns ErrInvalidDateFormat for anything else, including impossible
// calendar dates such as 2024-02-30.
func NormalizeDate(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(ISODate), nil
		}
	}
	return "", fmt.Errorf("%w: %q", service.ErrInvalidDateFormat, raw)
}

// comparableDate normalizes a stored due date for comparison.
// Cells that do not parse are compared as-is.
func comparableDate(cell string) string {
	if d, err := NormalizeDate(cell); err == nil {
		return d
	}
	return cell
}
