package xlsx

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	report "profitdesk/internal/report/domain"
)

// Decoder turns an uploaded XLSX byte buffer into an ordered row set,
// reading the first sheet only and using row 0 as the header names.
type Decoder struct {
	allowDuplicateHeaders bool
}

// NewDecoder constructs a decoder.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Option configures the decoder.
type Option func(*Decoder)

// WithDuplicateHeaderOverwrite switches duplicate header names from a
// hard reject to the legacy overwrite-last-wins behavior.
func WithDuplicateHeaderOverwrite() Option {
	return func(d *Decoder) {
		d.allowDuplicateHeaders = true
	}
}

// Decode parses the buffer. An undecodable buffer is ErrFormat; a sheet
// with a header row but no data rows decodes to an empty dataset.
func (d *Decoder) Decode(buf []byte) (*report.Dataset, error) {
	file, err := excelize.OpenReader(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", report.ErrFormat, err)
	}
	defer func() { _ = file.Close() }()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", report.ErrFormat)
	}
	rows, err := file.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", report.ErrFormat, err)
	}
	if len(rows) == 0 {
		return &report.Dataset{}, nil
	}

	headers := make([]string, len(rows[0]))
	seen := make(map[string]struct{}, len(rows[0]))
	for i, header := range rows[0] {
		header = strings.TrimSpace(header)
		headers[i] = header
		if header == "" {
			continue
		}
		if _, dup := seen[header]; dup && !d.allowDuplicateHeaders {
			return nil, fmt.Errorf("%w: %q", report.ErrDuplicateHeader, header)
		}
		seen[header] = struct{}{}
	}

	dataset := &report.Dataset{Headers: dedupeHeaders(headers)}
	for _, row := range rows[1:] {
		if rowEmpty(row) {
			continue
		}
		record := make(report.RawRow, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			// With duplicates allowed the later column wins.
			if i < len(row) {
				record[header] = row[i]
			} else if _, ok := record[header]; !ok {
				record[header] = ""
			}
		}
		dataset.Rows = append(dataset.Rows, record)
	}
	return dataset, nil
}

func dedupeHeaders(headers []string) []string {
	out := make([]string, 0, len(headers))
	seen := make(map[string]struct{}, len(headers))
	for _, header := range headers {
		if header == "" {
			continue
		}
		if _, ok := seen[header]; ok {
			continue
		}
		seen[header] = struct{}{}
		out = append(out, header)
	}
	return out
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
