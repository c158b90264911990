package core

import "testing"

func TestNormalizeLegacyPurchase(t *testing.T) {
	legacy := Purchase{
		ID:   "p1",
		Date: "2023-11-05",
		Farmer: Party{Name: "Shankar", Mobile: "9876543210"},
		Items: []PurchaseItem{
			{Quality: "Export", UnitCount: 10, WeightPerUnit: 20, PricePerKg: 15},
			{Quality: "Local", UnitCount: 4, WeightPerUnit: 25, PricePerKg: 10},
		},
		AdvanceAmount: 1500,
		PaymentMethod: PaymentCash,
	}

	got := legacy.Normalize()

	if len(got.Transactions) != 1 {
		t.Fatalf("transactions = %d, want 1", len(got.Transactions))
	}
	if got.Transactions[0].Date != "2023-11-05" {
		t.Fatalf("transaction date = %q", got.Transactions[0].Date)
	}
	if got.Items != nil {
		t.Fatalf("legacy items should be cleared, got %v", got.Items)
	}
	if len(got.AdvancePayments) != 1 || got.AdvancePayments[0].Amount != 1500 {
		t.Fatalf("advancePayments = %+v", got.AdvancePayments)
	}

	// Flat computation: 10*20*15 + 4*25*10 = 3000 + 1000.
	if got.TotalAmount != 4000 {
		t.Fatalf("totalAmount = %v, want 4000", got.TotalAmount)
	}
	if got.AdvanceAmount != 1500 || got.PendingAmount != 2500 {
		t.Fatalf("advance/pending = %v/%v, want 1500/2500", got.AdvanceAmount, got.PendingAmount)
	}
}

func TestNormalizeLegacySale(t *testing.T) {
	legacy := Sale{
		ID:    "s1",
		Date:  "2023-12-01",
		Buyer: Party{Name: "Irfan", Mobile: "9000000001"},
		Items: []SaleItem{
			{UnitCount: 5, WeightPerUnit: 18, PricePerKg: 40, ItemCharge: 100},
		},
		Additions:      []SaleAddition{{Type: AdditionCrate, Label: "Crate", Quantity: 2, Rate: 50}},
		ReceivedAmount: 2000,
		PaymentMethod:  PaymentOnline,
	}

	got := legacy.Normalize()

	if len(got.Transactions) != 1 {
		t.Fatalf("transactions = %d, want 1", len(got.Transactions))
	}
	tr := got.Transactions[0]
	if tr.TotalItemAmount != 3700 || tr.TotalAdditions != 100 || tr.TotalAmount != 3800 {
		t.Fatalf("transaction totals = %v/%v/%v", tr.TotalItemAmount, tr.TotalAdditions, tr.TotalAmount)
	}
	if got.TotalAmount != 3800 || got.ReceivedAmount != 2000 || got.PendingAmount != 1800 {
		t.Fatalf("aggregate totals = %v/%v/%v", got.TotalAmount, got.ReceivedAmount, got.PendingAmount)
	}
	if got.Items != nil || got.Additions != nil {
		t.Fatalf("legacy fields should be cleared")
	}
}

func TestNormalizeCanonicalIsStable(t *testing.T) {
	p := Purchase{
		Date: "2024-01-10",
		Transactions: []PurchaseTransaction{{
			Date:  "2024-01-10",
			Items: []PurchaseItem{{UnitCount: 3, WeightPerUnit: 10, PricePerKg: 20}},
		}},
		AdvancePayments: []AdvancePayment{{Date: "2024-01-10", Amount: 100, PaymentMethod: PaymentCash}},
	}.Normalize()

	again := p.Normalize()
	if len(again.Transactions) != 1 || len(again.AdvancePayments) != 1 {
		t.Fatalf("normalize not stable: %+v", again)
	}
	if again.TotalAmount != p.TotalAmount || again.PendingAmount != p.PendingAmount {
		t.Fatalf("totals drifted: %v/%v vs %v/%v", again.TotalAmount, again.PendingAmount, p.TotalAmount, p.PendingAmount)
	}
}

func TestNormalizeEmptyLegacyItems(t *testing.T) {
	// A legacy record with no items at all is an empty transaction list,
	// not an error.
	p := Purchase{ID: "p2", Date: "2024-01-01", Farmer: Party{Mobile: "9"}}.Normalize()
	if len(p.Transactions) != 0 {
		t.Fatalf("transactions = %d, want 0", len(p.Transactions))
	}
	if p.TotalAmount != 0 || p.PendingAmount != 0 {
		t.Fatalf("totals = %v/%v, want zeros", p.TotalAmount, p.PendingAmount)
	}
}
