package ledger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// ErrNotFound indicates a missing ledger record.
var ErrNotFound = errors.New("ledger: not found")

// Period is the recurrence of an amortized cost.
type Period string

const (
	PeriodMonthly Period = "monthly"
	PeriodWeekly  Period = "weekly"
	PeriodDaily   Period = "daily"
	PeriodOneTime Period = "one-time"
)

// Valid reports whether the period is a known value.
func (p Period) Valid() bool {
	switch p {
	case PeriodMonthly, PeriodWeekly, PeriodDaily, PeriodOneTime:
		return true
	}
	return false
}

// Payroll categories.
const (
	CategoryHost      = "host"
	CategoryOperation = "operation"
	CategoryWarehouse = "warehouse"
)

// InventoryCost is the per-unit product cost for a SKU.
type InventoryCost struct {
	SKU         string    `json:"sku"`
	ProductName string    `json:"product_name"`
	UnitCost    float64   `json:"unit_cost"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks inventory cost invariants.
func (c InventoryCost) Validate() error {
	if strings.TrimSpace(c.SKU) == "" {
		return errors.New("inventory cost: empty sku")
	}
	if c.UnitCost < 0 {
		return errors.New("inventory cost: negative unit cost")
	}
	return nil
}

// FixedCost is a recurring operating expense.
type FixedCost struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	Period    Period    `json:"period"`
	IsActive  bool      `json:"is_active"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks fixed cost invariants.
func (c FixedCost) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("fixed cost: empty name")
	}
	if c.Amount < 0 {
		return errors.New("fixed cost: negative amount")
	}
	if !c.Period.Valid() {
		return errors.New("fixed cost: invalid period")
	}
	return nil
}

// PayrollCost is a staffing expense tied to a category.
type PayrollCost struct {
	ID        string    `json:"id"`
	Person    string    `json:"person"`
	Category  string    `json:"category"`
	Amount    float64   `json:"amount"`
	Period    Period    `json:"period"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks payroll cost invariants.
func (c PayrollCost) Validate() error {
	if strings.TrimSpace(c.Person) == "" {
		return errors.New("payroll cost: empty person")
	}
	switch c.Category {
	case CategoryHost, CategoryOperation, CategoryWarehouse:
	default:
		return errors.New("payroll cost: invalid category")
	}
	if c.Amount < 0 {
		return errors.New("payroll cost: negative amount")
	}
	if !c.Period.Valid() {
		return errors.New("payroll cost: invalid period")
	}
	return nil
}

// NewID generates a random record id with the given prefix.
func NewID(prefix string) string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return prefix + "-" + hex.EncodeToString(buf)
}

// InventoryRepository manages inventory cost persistence.
type InventoryRepository interface {
	List(ctx context.Context, tenantID string) ([]InventoryCost, error)
	Upsert(ctx context.Context, tenantID string, cost InventoryCost) error
	Delete(ctx context.Context, tenantID, sku string) error
}

// FixedCostRepository manages fixed cost persistence.
type FixedCostRepository interface {
	List(ctx context.Context, tenantID string, activeOnly bool) ([]FixedCost, error)
	Upsert(ctx context.Context, tenantID string, cost FixedCost) error
	Delete(ctx context.Context, tenantID, id string) error
}

// PayrollRepository manages payroll cost persistence.
type PayrollRepository interface {
	List(ctx context.Context, tenantID, category string) ([]PayrollCost, error)
	Upsert(ctx context.Context, tenantID string, cost PayrollCost) error
	Delete(ctx context.Context, tenantID, id string) error
}
