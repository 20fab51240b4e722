package report

import (
	"math"
	"time"
)

// RawRow maps a column header to the raw cell text for one decoded row.
type RawRow map[string]string

// Dataset is the decoded form of one uploaded workbook sheet.
type Dataset struct {
	Headers []string
	Rows    []RawRow
}

// FieldMapping names the columns that carry each semantic slot.
// DateField and AmountField are required; SKUField and QuantityField
// are optional (quantity defaults to 1 when unmapped).
type FieldMapping struct {
	DateField     string `json:"date_field"`
	AmountField   string `json:"amount_field"`
	SKUField      string `json:"sku_field,omitempty"`
	QuantityField string `json:"quantity_field,omitempty"`
}

// Validate checks that every mapped field names a real column.
func (m FieldMapping) Validate(headers []string) error {
	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[h] = struct{}{}
	}
	if m.DateField == "" || m.AmountField == "" {
		return ErrUnresolvedMapping
	}
	if _, ok := present[m.DateField]; !ok {
		return ErrUnresolvedMapping
	}
	if _, ok := present[m.AmountField]; !ok {
		return ErrUnresolvedMapping
	}
	if m.SKUField != "" {
		if _, ok := present[m.SKUField]; !ok {
			return ErrUnresolvedMapping
		}
	}
	if m.QuantityField != "" {
		if _, ok := present[m.QuantityField]; !ok {
			return ErrUnresolvedMapping
		}
	}
	return nil
}

// NormalizedRecord is one revenue row after value coercion.
// Dated is false when the date cell could not be normalized.
type NormalizedRecord struct {
	Date     time.Time `json:"date"`
	Dated    bool      `json:"dated"`
	Amount   float64   `json:"amount"`
	SKU      string    `json:"sku,omitempty"`
	Quantity float64   `json:"quantity"`
	Raw      RawRow    `json:"-"`
}

// NormalizeStats counts soft anomalies seen while coercing rows.
type NormalizeStats struct {
	UndatedRows    int `json:"undated_rows"`
	ZeroAmountRows int `json:"zero_amount_rows"`
}

// NormalizeRows coerces raw rows through the value normalizer using the
// resolved mapping. It never fails: unparseable dates leave Dated false
// and unparseable amounts become 0, both tallied in the stats.
func NormalizeRows(rows []RawRow, mapping FieldMapping) ([]NormalizedRecord, NormalizeStats) {
	records := make([]NormalizedRecord, 0, len(rows))
	var stats NormalizeStats
	for _, row := range rows {
		record := NormalizedRecord{Raw: row, Quantity: 1}
		record.Date, record.Dated = NormalizeDate(row[mapping.DateField])
		if !record.Dated {
			stats.UndatedRows++
		}
		record.Amount = NormalizeAmount(row[mapping.AmountField])
		if record.Amount == 0 {
			stats.ZeroAmountRows++
		}
		if mapping.SKUField != "" {
			record.SKU = row[mapping.SKUField]
		}
		if mapping.QuantityField != "" {
			if qty := NormalizeAmount(row[mapping.QuantityField]); qty > 0 {
				record.Quantity = qty
			}
		}
		records = append(records, record)
	}
	return records, stats
}

// DateRange is an inclusive [Start, End] calendar window.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange builds a validated range. Both bounds are truncated to
// midnight UTC; Start after End is rejected.
func NewDateRange(start, end time.Time) (DateRange, error) {
	start = truncateToDay(start)
	end = truncateToDay(end)
	if start.After(end) {
		return DateRange{}, ErrInvalidRange
	}
	return DateRange{Start: start, End: end}, nil
}

// Contains reports whether d falls inside the inclusive window.
func (r DateRange) Contains(d time.Time) bool {
	d = truncateToDay(d)
	return !d.Before(r.Start) && !d.After(r.End)
}

// DayCount returns the number of elapsed days counted inclusively on
// both ends, used to amortize period-based costs over the window.
func (r DateRange) DayCount() int {
	days := int(math.Ceil(r.End.Sub(r.Start).Hours() / 24))
	return days + 1
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
