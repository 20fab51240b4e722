package ledger

import "testing"

func TestInventoryCostValidate(t *testing.T) {
	if err := (InventoryCost{SKU: "SKU-1", UnitCost: 12.5}).Validate(); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if err := (InventoryCost{SKU: "  ", UnitCost: 1}).Validate(); err == nil {
		t.Fatal("expected error for blank sku")
	}
	if err := (InventoryCost{SKU: "SKU-1", UnitCost: -1}).Validate(); err == nil {
		t.Fatal("expected error for negative unit cost")
	}
}

func TestFixedCostValidate(t *testing.T) {
	valid := FixedCost{Name: "rent", Amount: 3000, Period: PeriodMonthly}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	bad := valid
	bad.Period = Period("yearly")
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for unknown period")
	}
}

func TestPayrollCostValidate(t *testing.T) {
	valid := PayrollCost{Person: "alice", Category: CategoryOperation, Amount: 5000, Period: PeriodMonthly}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	bad := valid
	bad.Category = "marketing"
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestNewIDPrefix(t *testing.T) {
	id := NewID("fc")
	if len(id) != len("fc-")+16 {
		t.Fatalf("unexpected id length: %q", id)
	}
	if id[:3] != "fc-" {
		t.Fatalf("unexpected prefix: %q", id)
	}
	if id == NewID("fc") {
		t.Fatal("expected ids to differ")
	}
}
