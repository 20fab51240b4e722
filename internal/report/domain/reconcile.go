package report

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

const missingSKUSampleLimit = 20

// ReconciledRow is one revenue row joined against the cost ledgers.
type ReconciledRow struct {
	NormalizedRecord
	ProductCost          float64 `json:"product_cost"`
	AllocatedFixedCost   float64 `json:"allocated_fixed_cost"`
	AllocatedPayrollCost float64 `json:"allocated_payroll_cost"`
	TotalCost            float64 `json:"total_cost"`
	Profit               float64 `json:"profit"`
	ProfitMargin         float64 `json:"profit_margin"`
	CostMissing          bool    `json:"cost_missing,omitempty"`
}

// CostBreakdown splits total cost by ledger category.
type CostBreakdown struct {
	Product float64 `json:"product"`
	Fixed   float64 `json:"fixed"`
	Payroll float64 `json:"payroll"`
}

// MissingCosts accounts for rows whose SKU has no inventory-cost entry.
// Quantity is the total unit quantity across those rows; SKUs is a
// bounded sample of the distinct offenders for the operator to chase.
type MissingCosts struct {
	Quantity float64  `json:"quantity"`
	SKUs     []string `json:"skus,omitempty"`
}

// ProfitSummary is the terminal artifact of one pipeline run.
type ProfitSummary struct {
	ID             string          `json:"id"`
	Title          string          `json:"title,omitempty"`
	Range          DateRange       `json:"range"`
	DayCount       int             `json:"day_count"`
	RowCount       int             `json:"row_count"`
	TotalRevenue   float64         `json:"total_revenue"`
	TotalCost      float64         `json:"total_cost"`
	Breakdown      CostBreakdown   `json:"breakdown"`
	TotalProfit    float64         `json:"total_profit"`
	ProfitMargin   float64         `json:"profit_margin"`
	MissingCosts   MissingCosts    `json:"missing_costs"`
	UndatedRows    int             `json:"undated_rows"`
	ZeroAmountRows int             `json:"zero_amount_rows"`
	Rows           []ReconciledRow `json:"rows,omitempty"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

// Reconcile joins the filtered revenue rows against the ledger snapshot.
// A missing unit cost degrades that row (product cost 0, flagged) but
// never aborts the run. Fixed and payroll entries are amortized to the
// window via their period, then divided evenly across the rows so the
// per-row allocations sum back to the window totals.
func Reconcile(records []NormalizedRecord, snapshot LedgerSnapshot, dayCount int) ([]ReconciledRow, MissingCosts) {
	rows := make([]ReconciledRow, 0, len(records))
	missing := MissingCosts{}
	missingSeen := make(map[string]struct{})

	var totalFixed, totalPayroll float64
	for _, entry := range snapshot.FixedCosts {
		totalFixed += entry.AllocatedOverWindow(dayCount)
	}
	for _, entry := range snapshot.PayrollCosts {
		totalPayroll += entry.AllocatedOverWindow(dayCount)
	}

	var fixedPerRow, payrollPerRow float64
	if len(records) > 0 {
		fixedPerRow = totalFixed / float64(len(records))
		payrollPerRow = totalPayroll / float64(len(records))
	}

	for _, record := range records {
		row := ReconciledRow{
			NormalizedRecord:     record,
			AllocatedFixedCost:   fixedPerRow,
			AllocatedPayrollCost: payrollPerRow,
		}
		unitCost, ok := snapshot.UnitCosts[record.SKU]
		if ok {
			row.ProductCost = unitCost * record.Quantity
		} else {
			row.CostMissing = true
			missing.Quantity += record.Quantity
			if _, seen := missingSeen[record.SKU]; !seen {
				missingSeen[record.SKU] = struct{}{}
				if len(missing.SKUs) < missingSKUSampleLimit {
					missing.SKUs = append(missing.SKUs, record.SKU)
				}
			}
		}
		row.TotalCost = row.ProductCost + row.AllocatedFixedCost + row.AllocatedPayrollCost
		row.Profit = row.Amount - row.TotalCost
		row.ProfitMargin = margin(row.Profit, row.Amount)
		rows = append(rows, row)
	}
	return rows, missing
}

// Summarize reduces reconciled rows into totals and an overall margin.
// It is a pure reduction: running it twice on the same rows yields the
// same summary apart from ID and timestamp.
func Summarize(rows []ReconciledRow, r DateRange, missing MissingCosts, undatedRows, zeroAmountRows int, now time.Time) ProfitSummary {
	summary := ProfitSummary{
		Range:          r,
		DayCount:       r.DayCount(),
		RowCount:       len(rows),
		MissingCosts:   missing,
		UndatedRows:    undatedRows,
		ZeroAmountRows: zeroAmountRows,
		Rows:           rows,
		GeneratedAt:    now.UTC(),
	}
	for _, row := range rows {
		summary.TotalRevenue += row.Amount
		summary.Breakdown.Product += row.ProductCost
		summary.Breakdown.Fixed += row.AllocatedFixedCost
		summary.Breakdown.Payroll += row.AllocatedPayrollCost
		summary.TotalProfit += row.Profit
	}
	summary.TotalCost = summary.Breakdown.Product + summary.Breakdown.Fixed + summary.Breakdown.Payroll
	summary.ProfitMargin = margin(summary.TotalProfit, summary.TotalRevenue)
	summary.ID = buildReportID(r, len(rows), summary.GeneratedAt)
	return summary
}

func margin(profit, revenue float64) float64 {
	if revenue == 0 {
		return 0
	}
	return profit / revenue * 100
}

func buildReportID(r DateRange, rowCount int, at time.Time) string {
	base := r.Start.Format("2006-01-02") + "|" + r.End.Format("2006-01-02") + "|" +
		strconv.Itoa(rowCount) + "|" + strconv.FormatInt(at.UnixNano(), 10)
	hash := sha256.Sum256([]byte(base))
	return "rpt-" + hex.EncodeToString(hash[:8])
}
