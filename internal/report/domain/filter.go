package report

// FilterByRange selects the records whose normalized date falls inside
// the inclusive window, preserving input order. Undated records cannot
// be placed in the window; they are dropped unless keepUndated is set,
// and counted either way so the caller can surface the degradation.
func FilterByRange(records []NormalizedRecord, r DateRange, keepUndated bool) ([]NormalizedRecord, int) {
	kept := make([]NormalizedRecord, 0, len(records))
	undated := 0
	for _, record := range records {
		if !record.Dated {
			undated++
			if keepUndated {
				kept = append(kept, record)
			}
			continue
		}
		if r.Contains(record.Date) {
			kept = append(kept, record)
		}
	}
	return kept, undated
}
