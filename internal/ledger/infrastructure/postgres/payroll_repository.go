package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	ledger "profitdesk/internal/ledger/domain"
)

const defaultPayrollTable = "payroll_costs"

// PayrollRepository is a Postgres implementation for payroll costs.
type PayrollRepository struct {
	db    *sql.DB
	table string
}

// NewPayrollRepository constructs a repository.
func NewPayrollRepository(db *sql.DB, opts ...PayrollOption) *PayrollRepository {
	repo := &PayrollRepository{db: db, table: defaultPayrollTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// PayrollOption configures the repository.
type PayrollOption func(*PayrollRepository)

// WithPayrollTable overrides the default table name.
func WithPayrollTable(table string) PayrollOption {
	return func(repo *PayrollRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// List returns payroll costs for a tenant, optionally filtered by category.
func (r *PayrollRepository) List(ctx context.Context, tenantID, category string) ([]ledger.PayrollCost, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("payroll repo: nil db")
	}
	if tenantID == "" {
		return nil, errors.New("payroll repo: empty tenant id")
	}

	query := fmt.Sprintf(`
SELECT id, person, category, amount, period, updated_at
FROM %s
WHERE tenant_id = $1`, r.table)
	args := []any{tenantID}
	if category != "" {
		query += " AND category = $2"
		args = append(args, category)
	}
	query += " ORDER BY person"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var costs []ledger.PayrollCost
	for rows.Next() {
		var cost ledger.PayrollCost
		if err := rows.Scan(&cost.ID, &cost.Person, &cost.Category, &cost.Amount, &cost.Period, &cost.UpdatedAt); err != nil {
			return nil, err
		}
		cost.UpdatedAt = cost.UpdatedAt.UTC()
		costs = append(costs, cost)
	}
	return costs, rows.Err()
}

// Upsert inserts or updates a payroll cost by id.
func (r *PayrollRepository) Upsert(ctx context.Context, tenantID string, cost ledger.PayrollCost) error {
	if r == nil || r.db == nil {
		return errors.New("payroll repo: nil db")
	}
	if tenantID == "" {
		return errors.New("payroll repo: empty tenant id")
	}
	if cost.ID == "" {
		return errors.New("payroll repo: empty id")
	}
	if err := cost.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id, tenant_id, person, category, amount, period, updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7
)
ON CONFLICT (id)
DO UPDATE SET
	person = EXCLUDED.person,
	category = EXCLUDED.category,
	amount = EXCLUDED.amount,
	period = EXCLUDED.period,
	updated_at = EXCLUDED.updated_at`, r.table)

	_, err := r.db.ExecContext(ctx, query, cost.ID, tenantID, cost.Person, cost.Category, cost.Amount, string(cost.Period), time.Now().UTC())
	return err
}

// Delete removes a payroll cost by id.
func (r *PayrollRepository) Delete(ctx context.Context, tenantID, id string) error {
	if r == nil || r.db == nil {
		return errors.New("payroll repo: nil db")
	}
	if tenantID == "" || id == "" {
		return errors.New("payroll repo: empty key")
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
