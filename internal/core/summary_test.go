package core

import "testing"

func mkSale(id, date, mobile string, total, received float64) Sale {
	return Sale{
		ID:             id,
		Date:           date,
		Buyer:          Party{Name: "B" + id, Mobile: mobile},
		TotalAmount:    total,
		ReceivedAmount: received,
		PendingAmount:  total - received,
		PaymentMethod:  PaymentCash,
	}
}

func mkPurchase(id, date, mobile string, total, advance float64) Purchase {
	return Purchase{
		ID:            id,
		Date:          date,
		Farmer:        Party{Name: "F" + id, Mobile: mobile},
		TotalAmount:   total,
		AdvanceAmount: advance,
		PendingAmount: total - advance,
		PaymentMethod: PaymentCash,
	}
}

func TestSummarize(t *testing.T) {
	purchases := []Purchase{
		mkPurchase("p1", "2024-03-01", "1", 3000, 0),
		mkPurchase("p2", "2024-03-02", "2", 999, 0), // other day
	}
	sales := []Sale{
		mkSale("s1", "2024-03-01", "3", 2000, 0),
		mkSale("s2", "2024-03-01", "4", 3000, 0),
	}
	expenses := []Expense{
		{ID: "e1", Date: "2024-03-01", Type: ExpenseLabour, Description: "loading", Amount: 500, PaymentMethod: PaymentCash},
		{ID: "e2", Date: "2024-03-03", Type: ExpensePetrol, Description: "fuel", Amount: 700, PaymentMethod: PaymentCash},
	}

	got := Summarize("2024-03-01", purchases, sales, expenses)

	if got.TotalPurchases != 3000 || got.TotalSales != 5000 || got.TotalExpenses != 500 {
		t.Fatalf("stream totals = %v/%v/%v", got.TotalPurchases, got.TotalSales, got.TotalExpenses)
	}
	if got.GrossProfit != 2000 {
		t.Fatalf("grossProfit = %v, want 2000", got.GrossProfit)
	}
	if got.NetProfit != 1500 {
		t.Fatalf("netProfit = %v, want 1500", got.NetProfit)
	}
	if got.PurchaseCount != 1 || got.SaleCount != 2 {
		t.Fatalf("counts = %d/%d, want 1/2", got.PurchaseCount, got.SaleCount)
	}
}

func TestSummarizeEmptyDay(t *testing.T) {
	got := Summarize("2024-06-01", nil, nil, nil)
	if got != (DailySummary{Date: "2024-06-01"}) {
		t.Fatalf("empty day summary = %+v", got)
	}
}

func TestSummarizeExactDateMatch(t *testing.T) {
	// Date is an opaque key: no range logic, no normalization.
	sales := []Sale{mkSale("s1", "2024-03-01", "1", 100, 0)}
	if got := Summarize("2024-3-1", nil, sales, nil); got.SaleCount != 0 {
		t.Fatalf("differently formatted date matched: %+v", got)
	}
}

func TestCollection(t *testing.T) {
	sales := []Sale{
		mkSale("s1", "2024-03-01", "1", 5000, 3000),
		mkSale("s2", "2024-03-01", "2", 1000, 1500), // overpaid
	}
	sales[1].PaymentMethod = PaymentOnline

	got := Collection("2024-03-01", sales)
	if got.CashReceived != 3000 || got.OnlineReceived != 1500 {
		t.Fatalf("split = %v/%v", got.CashReceived, got.OnlineReceived)
	}
	if got.TotalReceived != 4500 {
		t.Fatalf("totalReceived = %v", got.TotalReceived)
	}
	// 2000 + (-500): the overpayment offsets, unclamped.
	if got.TotalPending != 1500 {
		t.Fatalf("totalPending = %v, want 1500", got.TotalPending)
	}
	if got.RecoveryRate != 75 {
		t.Fatalf("recoveryRate = %v, want 75", got.RecoveryRate)
	}
}

func TestCollectionZeroSalesGuard(t *testing.T) {
	got := Collection("2024-03-01", nil)
	if got.RecoveryRate != 0 {
		t.Fatalf("recoveryRate = %v, want 0 for empty day", got.RecoveryRate)
	}
}
