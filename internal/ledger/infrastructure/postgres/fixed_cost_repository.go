package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	ledger "profitdesk/internal/ledger/domain"
)

const defaultFixedCostsTable = "fixed_costs"

// FixedCostRepository is a Postgres implementation for fixed costs.
type FixedCostRepository struct {
	db    *sql.DB
	table string
}

// NewFixedCostRepository constructs a repository.
func NewFixedCostRepository(db *sql.DB, opts ...FixedCostOption) *FixedCostRepository {
	repo := &FixedCostRepository{db: db, table: defaultFixedCostsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// FixedCostOption configures the repository.
type FixedCostOption func(*FixedCostRepository)

// WithFixedCostTable overrides the default table name.
func WithFixedCostTable(table string) FixedCostOption {
	return func(repo *FixedCostRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// List returns fixed costs for a tenant, optionally only active ones.
func (r *FixedCostRepository) List(ctx context.Context, tenantID string, activeOnly bool) ([]ledger.FixedCost, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("fixed cost repo: nil db")
	}
	if tenantID == "" {
		return nil, errors.New("fixed cost repo: empty tenant id")
	}

	query := fmt.Sprintf(`
SELECT id, name, amount, period, is_active, updated_at
FROM %s
WHERE tenant_id = $1`, r.table)
	if activeOnly {
		query += " AND is_active"
	}
	query += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var costs []ledger.FixedCost
	for rows.Next() {
		var cost ledger.FixedCost
		if err := rows.Scan(&cost.ID, &cost.Name, &cost.Amount, &cost.Period, &cost.IsActive, &cost.UpdatedAt); err != nil {
			return nil, err
		}
		cost.UpdatedAt = cost.UpdatedAt.UTC()
		costs = append(costs, cost)
	}
	return costs, rows.Err()
}

// Upsert inserts or updates a fixed cost by id.
func (r *FixedCostRepository) Upsert(ctx context.Context, tenantID string, cost ledger.FixedCost) error {
	if r == nil || r.db == nil {
		return errors.New("fixed cost repo: nil db")
	}
	if tenantID == "" {
		return errors.New("fixed cost repo: empty tenant id")
	}
	if cost.ID == "" {
		return errors.New("fixed cost repo: empty id")
	}
	if err := cost.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id, tenant_id, name, amount, period, is_active, updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7
)
ON CONFLICT (id)
DO UPDATE SET
	name = EXCLUDED.name,
	amount = EXCLUDED.amount,
	period = EXCLUDED.period,
	is_active = EXCLUDED.is_active,
	updated_at = EXCLUDED.updated_at`, r.table)

	_, err := r.db.ExecContext(ctx, query, cost.ID, tenantID, cost.Name, cost.Amount, string(cost.Period), cost.IsActive, time.Now().UTC())
	return err
}

// Delete removes a fixed cost by id.
func (r *FixedCostRepository) Delete(ctx context.Context, tenantID, id string) error {
	if r == nil || r.db == nil {
		return errors.New("fixed cost repo: nil db")
	}
	if tenantID == "" || id == "" {
		return errors.New("fixed cost repo: empty key")
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE tenant_id = $1 AND id = $2`, r.table)
	result, err := r.db.ExecContext(ctx, query, tenantID, id)
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
