package report

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Spreadsheet serials count days from 1899-12-30 (the codec's epoch,
// which absorbs the 1900 leap-year quirk).
var spreadsheetEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	"2006/1/2",
	"2006-1-2",
	"1/2/2006",
}

var fallbackDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	time.RFC3339,
	"2006.1.2",
	"2006年1月2日",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// NormalizeDate coerces a raw cell into a calendar date. It tries the
// known exact layouts, then an all-digit spreadsheet serial, then a set
// of looser fallbacks. It never fails hard: the second return is false
// when nothing matched.
func NormalizeDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateToDay(t), true
		}
	}
	if isAllDigits(s) {
		serial, err := strconv.Atoi(s)
		if err == nil && serial > 1000 {
			return spreadsheetEpoch.AddDate(0, 0, serial), true
		}
		return time.Time{}, false
	}
	// Datetime-typed cells read raw come through as fractional serials
	// ("45123.75"); the fraction is the time of day and is dropped.
	if serial, ok := fractionalSerial(s); ok {
		return spreadsheetEpoch.AddDate(0, 0, serial), true
	}
	for _, layout := range fallbackDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateToDay(t), true
		}
	}
	return time.Time{}, false
}

// NormalizeAmount coerces a raw cell into a finite decimal amount.
// Currency symbols, thousands separators and surrounding text are
// stripped; anything still unparseable becomes 0. The result is never
// NaN or infinite.
func NormalizeAmount(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

func fractionalSerial(s string) (int, bool) {
	dot := strings.IndexByte(s, '.')
	if dot <= 0 || dot == len(s)-1 {
		return 0, false
	}
	if !isAllDigits(s[:dot]) || !isAllDigits(s[dot+1:]) {
		return 0, false
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil || value <= 1000 {
		return 0, false
	}
	return int(value), true
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
