package report

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat indicates the uploaded buffer is not a decodable workbook.
	ErrFormat = errors.New("report: upload is not a decodable spreadsheet")
	// ErrDuplicateHeader indicates the header row names a column twice.
	ErrDuplicateHeader = errors.New("report: duplicate column header")
	// ErrUnresolvedMapping indicates the date or amount column is unknown.
	ErrUnresolvedMapping = errors.New("report: date/amount column mapping unresolved")
	// ErrInvalidRange indicates the requested range has start after end.
	ErrInvalidRange = errors.New("report: range start is after range end")
	// ErrRunInFlight indicates a reconciliation is already running for the dataset.
	ErrRunInFlight = errors.New("report: a run is already in flight for this dataset")
	// ErrDatasetNotFound indicates the referenced upload expired or never existed.
	ErrDatasetNotFound = errors.New("report: dataset not found")
)

// LedgerFetchError wraps a failed cost-ledger read. It is fatal to the
// reconciliation step; the decoded dataset stays available for a retry.
type LedgerFetchError struct {
	Source string
	Err    error
}

func (e *LedgerFetchError) Error() string {
	return fmt.Sprintf("report: ledger fetch failed (%s): %v", e.Source, e.Err)
}

func (e *LedgerFetchError) Unwrap() error { return e.Err }
