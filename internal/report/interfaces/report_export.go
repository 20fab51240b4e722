package interfaces

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	report "profitdesk/internal/report/domain"
)

// BuildReportXLSX renders a profit report workbook with summary,
// breakdown and row detail sheets.
func BuildReportXLSX(summary *report.ProfitSummary) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	breakdownSheet := "breakdown"
	rowsSheet := "rows"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(breakdownSheet)
	f.NewSheet(rowsSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Profit Report")
	_ = f.SetCellValue(summarySheet, "A3", "Title")
	_ = f.SetCellValue(summarySheet, "B3", summary.Title)
	_ = f.SetCellValue(summarySheet, "A4", "Window")
	_ = f.SetCellValue(summarySheet, "B4", summary.Range.Start.Format("2006-01-02")+" ~ "+summary.Range.End.Format("2006-01-02"))
	_ = f.SetCellValue(summarySheet, "A5", "Days")
	_ = f.SetCellValue(summarySheet, "B5", summary.DayCount)
	_ = f.SetCellValue(summarySheet, "A6", "Rows")
	_ = f.SetCellValue(summarySheet, "B6", summary.RowCount)
	_ = f.SetCellValue(summarySheet, "A7", "Total Revenue")
	_ = f.SetCellValue(summarySheet, "B7", summary.TotalRevenue)
	_ = f.SetCellValue(summarySheet, "A8", "Total Cost")
	_ = f.SetCellValue(summarySheet, "B8", summary.TotalCost)
	_ = f.SetCellValue(summarySheet, "A9", "Total Profit")
	_ = f.SetCellValue(summarySheet, "B9", summary.TotalProfit)
	_ = f.SetCellValue(summarySheet, "A10", "Profit Margin (%)")
	_ = f.SetCellValue(summarySheet, "B10", summary.ProfitMargin)
	_ = f.SetCellValue(summarySheet, "A11", "Missing Cost Units")
	_ = f.SetCellValue(summarySheet, "B11", summary.MissingCosts.Quantity)
	_ = f.SetCellValue(summarySheet, "A12", "Undated Rows")
	_ = f.SetCellValue(summarySheet, "B12", summary.UndatedRows)
	_ = f.SetCellValue(summarySheet, "A13", "Generated")
	_ = f.SetCellValue(summarySheet, "B13", summary.GeneratedAt.Format(time.RFC3339))

	_ = f.SetCellValue(breakdownSheet, "A1", "Category")
	_ = f.SetCellValue(breakdownSheet, "B1", "Amount")
	_ = f.SetCellValue(breakdownSheet, "A2", "Product")
	_ = f.SetCellValue(breakdownSheet, "B2", summary.Breakdown.Product)
	_ = f.SetCellValue(breakdownSheet, "A3", "Fixed")
	_ = f.SetCellValue(breakdownSheet, "B3", summary.Breakdown.Fixed)
	_ = f.SetCellValue(breakdownSheet, "A4", "Payroll")
	_ = f.SetCellValue(breakdownSheet, "B4", summary.Breakdown.Payroll)

	headers := []string{"Date", "SKU", "Quantity", "Revenue", "Product Cost", "Fixed Cost", "Payroll Cost", "Total Cost", "Profit", "Margin (%)", "Cost Missing"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(rowsSheet, cell, header)
	}
	for i, row := range summary.Rows {
		date := ""
		if row.Dated {
			date = row.Date.Format("2006-01-02")
		}
		values := []any{
			date, row.SKU, row.Quantity, row.Amount,
			row.ProductCost, row.AllocatedFixedCost, row.AllocatedPayrollCost,
			row.TotalCost, row.Profit, row.ProfitMargin, row.CostMissing,
		}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			_ = f.SetCellValue(rowsSheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildReportPDF renders a profit report PDF.
func BuildReportPDF(summary *report.ProfitSummary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Profit Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	if summary.Title != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Title: %s", summary.Title))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Window: %s ~ %s (%d days)",
		summary.Range.Start.Format("2006-01-02"), summary.Range.End.Format("2006-01-02"), summary.DayCount))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Rows: %d", summary.RowCount))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", summary.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.Cell(0, 6, fmt.Sprintf("Total Revenue: %.2f", summary.TotalRevenue))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Cost: %.2f (product %.2f / fixed %.2f / payroll %.2f)",
		summary.TotalCost, summary.Breakdown.Product, summary.Breakdown.Fixed, summary.Breakdown.Payroll))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Profit: %.2f (margin %.2f%%)", summary.TotalProfit, summary.ProfitMargin))
	pdf.Ln(5)
	if summary.MissingCosts.Quantity > 0 {
		pdf.Cell(0, 6, fmt.Sprintf("Missing cost units: %.0f", summary.MissingCosts.Quantity))
		pdf.Ln(5)
	}
	if summary.UndatedRows > 0 {
		pdf.Cell(0, 6, fmt.Sprintf("Undated rows: %d", summary.UndatedRows))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(25, 6, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "SKU", "1", 0, "C", false, 0, "")
	pdf.CellFormat(18, 6, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(28, 6, "Revenue", "1", 0, "C", false, 0, "")
	pdf.CellFormat(28, 6, "Cost", "1", 0, "C", false, 0, "")
	pdf.CellFormat(28, 6, "Profit", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "Margin", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, row := range summary.Rows {
		date := "-"
		if row.Dated {
			date = row.Date.Format("2006-01-02")
		}
		pdf.CellFormat(25, 6, date, "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, row.SKU, "1", 0, "L", false, 0, "")
		pdf.CellFormat(18, 6, fmt.Sprintf("%.0f", row.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(28, 6, fmt.Sprintf("%.2f", row.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(28, 6, fmt.Sprintf("%.2f", row.TotalCost), "1", 0, "R", false, 0, "")
		pdf.CellFormat(28, 6, fmt.Sprintf("%.2f", row.Profit), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%.1f%%", row.ProfitMargin), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteReportsCSV streams report headers as CSV.
func WriteReportsCSV(w io.Writer, summaries []report.ProfitSummary) error {
	writer := csv.NewWriter(w)
	header := []string{"id", "title", "range_start", "range_end", "day_count", "row_count",
		"total_revenue", "total_cost", "total_profit", "profit_margin", "missing_cost_units", "undated_rows", "generated_at"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, summary := range summaries {
		record := []string{
			summary.ID,
			summary.Title,
			summary.Range.Start.Format("2006-01-02"),
			summary.Range.End.Format("2006-01-02"),
			strconv.Itoa(summary.DayCount),
			strconv.Itoa(summary.RowCount),
			strconv.FormatFloat(summary.TotalRevenue, 'f', 2, 64),
			strconv.FormatFloat(summary.TotalCost, 'f', 2, 64),
			strconv.FormatFloat(summary.TotalProfit, 'f', 2, 64),
			strconv.FormatFloat(summary.ProfitMargin, 'f', 2, 64),
			strconv.FormatFloat(summary.MissingCosts.Quantity, 'f', 0, 64),
			strconv.Itoa(summary.UndatedRows),
			summary.GeneratedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
