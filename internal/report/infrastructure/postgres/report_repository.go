package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	report "profitdesk/internal/report/domain"
)

const defaultReportsTable = "profit_reports"

// ReportRepository persists generated profit reports. The full summary
// including reconciled rows is stored as a JSONB payload next to the
// queryable header columns.
type ReportRepository struct {
	db    *sql.DB
	table string
}

// NewReportRepository constructs a repository.
func NewReportRepository(db *sql.DB, opts ...ReportOption) *ReportRepository {
	repo := &ReportRepository{db: db, table: defaultReportsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// ReportOption configures the repository.
type ReportOption func(*ReportRepository)

// WithReportTable overrides the default table name.
func WithReportTable(table string) ReportOption {
	return func(repo *ReportRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Save inserts a generated report.
func (r *ReportRepository) Save(ctx context.Context, tenantID string, summary *report.ProfitSummary) error {
	if r == nil || r.db == nil {
		return errors.New("report repo: nil db")
	}
	if summary == nil {
		return errors.New("report repo: nil summary")
	}
	if tenantID == "" {
		return errors.New("report repo: empty tenant id")
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id, tenant_id, title, range_start, range_end, day_count, row_count,
	total_revenue, total_cost, total_profit, profit_margin,
	missing_cost_units, undated_rows, payload, generated_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15
)
ON CONFLICT (id) DO NOTHING`, r.table)

	_, err = r.db.ExecContext(ctx, query,
		summary.ID, tenantID, summary.Title,
		summary.Range.Start.UTC(), summary.Range.End.UTC(),
		summary.DayCount, summary.RowCount,
		summary.TotalRevenue, summary.TotalCost, summary.TotalProfit, summary.ProfitMargin,
		summary.MissingCosts.Quantity, summary.UndatedRows,
		payload, summary.GeneratedAt.UTC(),
	)
	return err
}

// Get loads one report with its full payload. Returns nil when absent.
func (r *ReportRepository) Get(ctx context.Context, tenantID, id string) (*report.ProfitSummary, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("report repo: nil db")
	}
	if tenantID == "" || id == "" {
		return nil, errors.New("report repo: empty key")
	}

	query := fmt.Sprintf(`
SELECT payload
FROM %s
WHERE tenant_id = $1 AND id = $2
LIMIT 1`, r.table)

	var payload []byte
	if err := r.db.QueryRowContext(ctx, query, tenantID, id).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var summary report.ProfitSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, err
	}
	summary.GeneratedAt = summary.GeneratedAt.UTC()
	return &summary, nil
}

// List returns report headers for a tenant, newest first. Rows are not
// loaded; fetch the full report by id when detail is needed.
func (r *ReportRepository) List(ctx context.Context, tenantID string, limit int) ([]report.ProfitSummary, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("report repo: nil db")
	}
	if tenantID == "" {
		return nil, errors.New("report repo: empty tenant id")
	}
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`
SELECT id, title, range_start, range_end, day_count, row_count,
	total_revenue, total_cost, total_profit, profit_margin,
	missing_cost_units, undated_rows, generated_at
FROM %s
WHERE tenant_id = $1
ORDER BY generated_at DESC
LIMIT $2`, r.table)

	rows, err := r.db.QueryContext(ctx, query, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []report.ProfitSummary
	for rows.Next() {
		var summary report.ProfitSummary
		var title sql.NullString
		var rangeStart, rangeEnd time.Time
		if err := rows.Scan(
			&summary.ID,
			&title,
			&rangeStart,
			&rangeEnd,
			&summary.DayCount,
			&summary.RowCount,
			&summary.TotalRevenue,
			&summary.TotalCost,
			&summary.TotalProfit,
			&summary.ProfitMargin,
			&summary.MissingCosts.Quantity,
			&summary.UndatedRows,
			&summary.GeneratedAt,
		); err != nil {
			return nil, err
		}
		if title.Valid {
			summary.Title = title.String
		}
		summary.Range = report.DateRange{Start: rangeStart.UTC(), End: rangeEnd.UTC()}
		summary.GeneratedAt = summary.GeneratedAt.UTC()
		result = append(result, summary)
	}
	return result, rows.Err()
}
