package core

import "testing"

func TestPurchaseItemValidate(t *testing.T) {
	cases := []struct {
		it PurchaseItem
		ok bool
	}{
		{PurchaseItem{UnitCount: 10, WeightPerUnit: 20, PricePerKg: 15}, true},
		{PurchaseItem{UnitCount: 0, WeightPerUnit: 20, PricePerKg: 15}, false},
		{PurchaseItem{UnitCount: 10, WeightPerUnit: -1, PricePerKg: 15}, false},
		{PurchaseItem{UnitCount: 10, WeightPerUnit: 20, PricePerKg: 0}, false},
		{PurchaseItem{UnitCount: 10, WeightPerUnit: 20, PricePerKg: 15, Advance: -5}, false},
	}
	for i, tc := range cases {
		err := tc.it.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestSaleItemValidate(t *testing.T) {
	if err := (SaleItem{UnitCount: 5, WeightPerUnit: 18, PricePerKg: 40, ItemCharge: 100}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (SaleItem{UnitCount: 5, WeightPerUnit: 18, PricePerKg: 40, ItemCharge: -1}).Validate(); err == nil {
		t.Fatalf("expected error for negative item charge")
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{Date: "2024-03-01", Type: ExpenseLabour, Description: "loading", Amount: 500, PaymentMethod: PaymentCash}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{Date: "not-a-date", Type: ExpenseLabour, Description: "x", Amount: 1},
		{Date: "2024-03-01", Type: ExpenseLabour, Description: "  ", Amount: 1},
		{Date: "2024-03-01", Type: ExpenseLabour, Description: "x", Amount: 0},
		{Date: "2024-03-01", Type: "rent", Description: "x", Amount: 1},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	tr := PurchaseTransaction{Date: "2024-03-01"}
	if err := tr.Validate(); err != ErrNoItems {
		t.Fatalf("expected ErrNoItems, got %v", err)
	}
	tr.Items = []PurchaseItem{{UnitCount: 1, WeightPerUnit: 1, PricePerKg: 1}}
	if err := tr.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestDefaultAdditions(t *testing.T) {
	adds := DefaultAdditions()
	if len(adds) != 6 {
		t.Fatalf("default additions = %d, want 6", len(adds))
	}
	for _, a := range adds {
		if a.Quantity != 0 || a.TotalAmount != 0 {
			t.Fatalf("default addition should start at zero quantity: %+v", a)
		}
	}
}

func TestParseDay(t *testing.T) {
	if ParseDay("2024-03-01").IsZero() {
		t.Fatalf("valid date parsed as zero")
	}
	if !ParseDay("garbage").IsZero() {
		t.Fatalf("garbage date should parse to zero time")
	}
}
