package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	ledger "profitdesk/internal/ledger/domain"
)

const defaultInventoryTable = "inventory_costs"

// InventoryRepository is a Postgres implementation for inventory costs.
type InventoryRepository struct {
	db    *sql.DB
	table string
}

// NewInventoryRepository constructs a repository.
func NewInventoryRepository(db *sql.DB, opts ...InventoryOption) *InventoryRepository {
	repo := &InventoryRepository{db: db, table: defaultInventoryTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// InventoryOption configures the repository.
type InventoryOption func(*InventoryRepository)

// WithInventoryTable overrides the default table name.
func WithInventoryTable(table string) InventoryOption {
	return func(repo *InventoryRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// List returns all inventory costs for a tenant ordered by SKU.
func (r *InventoryRepository) List(ctx context.Context, tenantID string) ([]ledger.InventoryCost, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("inventory repo: nil db")
	}
	if tenantID == "" {
		return nil, errors.New("inventory repo: empty tenant id")
	}

	query := fmt.Sprintf(`
SELECT sku, product_name, unit_cost, updated_at
FROM %s
WHERE tenant_id = $1
ORDER BY sku`, r.table)

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var costs []ledger.InventoryCost
	for rows.Next() {
		var cost ledger.InventoryCost
		if err := rows.Scan(&cost.SKU, &cost.ProductName, &cost.UnitCost, &cost.UpdatedAt); err != nil {
			return nil, err
		}
		cost.UpdatedAt = cost.UpdatedAt.UTC()
		costs = append(costs, cost)
	}
	return costs, rows.Err()
}

// Upsert inserts or replaces the unit cost for a SKU.
func (r *InventoryRepository) Upsert(ctx context.Context, tenantID string, cost ledger.InventoryCost) error {
	if r == nil || r.db == nil {
		return errors.New("inventory repo: nil db")
	}
	if tenantID == "" {
		return errors.New("inventory repo: empty tenant id")
	}
	if err := cost.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	tenant_id, sku, product_name, unit_cost, updated_at
) VALUES (
	$1, $2, $3, $4, $5
)
ON CONFLICT (tenant_id, sku)
DO UPDATE SET
	product_name = EXCLUDED.product_name,
	unit_cost = EXCLUDED.unit_cost,
	updated_at = EXCLUDED.updated_at`, r.table)

	_, err := r.db.ExecContext(ctx, query, tenantID, cost.SKU, cost.ProductName, cost.UnitCost, time.Now().UTC())
	return err
}

// Delete removes the cost for a SKU.
func (r *InventoryRepository) Delete(ctx context.Context, tenantID, sku string) error {
	if r == nil || r.db == nil {
		return errors.New("inventory repo: nil db")
	}
	if tenantID == "" || sku == "" {
		return errors.New("inventory repo: empty key")
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE tenant_id = $1 AND sku = $2`, r.table)
	result, err := r.db.ExecContext(ctx, query, tenantID, sku)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ledger.ErrNotFound
	}
	return nil
}
