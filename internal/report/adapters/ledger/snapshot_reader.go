package ledger

import (
	"context"
	"errors"

	"profitdesk/internal/auth"
	ledgerdomain "profitdesk/internal/ledger/domain"
	report "profitdesk/internal/report/domain"
)

// SnapshotReader assembles a reconciliation snapshot from the three
// cost ledger repositories.
type SnapshotReader struct {
	inventory ledgerdomain.InventoryRepository
	fixed     ledgerdomain.FixedCostRepository
	payroll   ledgerdomain.PayrollRepository
	tenantID  string
}

// NewSnapshotReader constructs a reader. tenantID is the fallback used
// when the context carries no identity.
func NewSnapshotReader(inventory ledgerdomain.InventoryRepository, fixed ledgerdomain.FixedCostRepository, payroll ledgerdomain.PayrollRepository, tenantID string) (*SnapshotReader, error) {
	if inventory == nil || fixed == nil || payroll == nil {
		return nil, errors.New("snapshot reader: nil repository")
	}
	return &SnapshotReader{inventory: inventory, fixed: fixed, payroll: payroll, tenantID: tenantID}, nil
}

// Snapshot reads all three ledgers. Only active fixed costs are
// included; payroll is read across every category.
func (r *SnapshotReader) Snapshot(ctx context.Context) (report.LedgerSnapshot, error) {
	if r == nil {
		return report.LedgerSnapshot{}, errors.New("snapshot reader: nil reader")
	}
	tenantID := auth.TenantIDFromContext(ctx)
	if tenantID == "" {
		tenantID = r.tenantID
	}
	if tenantID == "" {
		return report.LedgerSnapshot{}, errors.New("snapshot reader: empty tenant id")
	}

	inventory, err := r.inventory.List(ctx, tenantID)
	if err != nil {
		return report.LedgerSnapshot{}, err
	}
	fixed, err := r.fixed.List(ctx, tenantID, true)
	if err != nil {
		return report.LedgerSnapshot{}, err
	}
	payroll, err := r.payroll.List(ctx, tenantID, "")
	if err != nil {
		return report.LedgerSnapshot{}, err
	}

	snapshot := report.LedgerSnapshot{
		UnitCosts: make(map[string]float64, len(inventory)),
	}
	for _, cost := range inventory {
		snapshot.UnitCosts[cost.SKU] = cost.UnitCost
	}
	for _, cost := range fixed {
		snapshot.FixedCosts = append(snapshot.FixedCosts, report.AmortizedCost{
			Name:   cost.Name,
			Amount: cost.Amount,
			Period: report.Period(cost.Period),
		})
	}
	for _, cost := range payroll {
		snapshot.PayrollCosts = append(snapshot.PayrollCosts, report.AmortizedCost{
			Name:   cost.Person + "/" + cost.Category,
			Amount: cost.Amount,
			Period: report.Period(cost.Period),
		})
	}
	return snapshot, nil
}
