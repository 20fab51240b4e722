package report

// Period describes how a ledger amount recurs.
type Period string

const (
	PeriodMonthly Period = "monthly"
	PeriodWeekly  Period = "weekly"
	PeriodDaily   Period = "daily"
	PeriodOneTime Period = "one-time"
)

// AmortizedCost is one fixed or payroll ledger entry as seen by the
// reconciler: a recurring amount to spread over the report window.
type AmortizedCost struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Period Period  `json:"period"`
}

// AllocatedOverWindow converts the entry to its total allocation across
// a window of dayCount days. Monthly uses a fixed 30-day divisor and
// weekly a 7-day divisor regardless of the calendar; one-time amounts
// land once in whichever window they are charged to. The 30-day month
// is a documented approximation downstream reports already assume.
func (c AmortizedCost) AllocatedOverWindow(dayCount int) float64 {
	if dayCount <= 0 {
		return 0
	}
	switch c.Period {
	case PeriodMonthly:
		return c.Amount / 30 * float64(dayCount)
	case PeriodWeekly:
		return c.Amount / 7 * float64(dayCount)
	case PeriodDaily:
		return c.Amount * float64(dayCount)
	case PeriodOneTime:
		return c.Amount
	default:
		return 0
	}
}

// LedgerSnapshot is the reconciler's read-only view of the three cost
// ledgers, fetched fresh for every run.
type LedgerSnapshot struct {
	UnitCosts    map[string]float64 `json:"unit_costs"`
	FixedCosts   []AmortizedCost    `json:"fixed_costs"`
	PayrollCosts []AmortizedCost    `json:"payroll_costs"`
}
