package interfaces

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	report "profitdesk/internal/report/domain"
)

func sampleSummary() *report.ProfitSummary {
	return &report.ProfitSummary{
		ID:       "rpt-abcd1234",
		Title:    "January",
		Range:    report.DateRange{Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)},
		DayCount: 31,
		RowCount: 2,
		Breakdown: report.CostBreakdown{
			Product: 30,
			Fixed:   10,
			Payroll: 5,
		},
		TotalRevenue: 155.5,
		TotalCost:    45,
		TotalProfit:  110.5,
		ProfitMargin: 71.06,
		Rows: []report.ReconciledRow{
			{
				NormalizedRecord: report.NormalizedRecord{
					Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Dated: true,
					Amount: 100.5, SKU: "SKU-1", Quantity: 2,
				},
				ProductCost: 20, TotalCost: 27.5, Profit: 73, ProfitMargin: 72.64,
			},
			{
				NormalizedRecord: report.NormalizedRecord{
					Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Dated: true,
					Amount: 55, SKU: "SKU-2", Quantity: 1,
				},
				CostMissing: true, TotalCost: 17.5, Profit: 37.5, ProfitMargin: 68.18,
			},
		},
		MissingCosts: report.MissingCosts{Quantity: 1, SKUs: []string{"SKU-2"}},
		GeneratedAt:  time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestBuildReportXLSX(t *testing.T) {
	payload, err := BuildReportXLSX(sampleSummary())
	if err != nil {
		t.Fatalf("build xlsx: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("reopen xlsx: %v", err)
	}
	defer f.Close()

	title, err := f.GetCellValue("summary", "B3")
	if err != nil {
		t.Fatalf("read summary cell: %v", err)
	}
	if title != "January" {
		t.Fatalf("expected title January, got %q", title)
	}

	sku, err := f.GetCellValue("rows", "B2")
	if err != nil {
		t.Fatalf("read rows cell: %v", err)
	}
	if sku != "SKU-1" {
		t.Fatalf("expected SKU-1 in first detail row, got %q", sku)
	}

	product, err := f.GetCellValue("breakdown", "B2")
	if err != nil {
		t.Fatalf("read breakdown cell: %v", err)
	}
	if product != "30" {
		t.Fatalf("expected product cost 30, got %q", product)
	}
}

func TestBuildReportPDF(t *testing.T) {
	payload, err := BuildReportPDF(sampleSummary())
	if err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	if !bytes.HasPrefix(payload, []byte("%PDF")) {
		t.Fatal("expected PDF header")
	}
}

func TestWriteReportsCSV(t *testing.T) {
	var buf bytes.Buffer
	summaries := []report.ProfitSummary{*sampleSummary()}
	if err := WriteReportsCSV(&buf, summaries); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 record, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], "rpt-abcd1234,January,2024-01-01,2024-01-31,31,2,") {
		t.Fatalf("unexpected record: %s", lines[1])
	}
}
