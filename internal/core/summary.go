package core

// CollectionStatus breaks the day's sales down by how the money came in.
type CollectionStatus struct {
	CashReceived   float64 `json:"cashReceived"`
	OnlineReceived float64 `json:"onlineReceived"`
	TotalReceived  float64 `json:"totalReceived"`
	TotalPending   float64 `json:"totalPending"`
	RecoveryRate   float64 `json:"recoveryRate"` // percent, 0 when no sales
}

// Summarize reduces the three record streams to a single-day snapshot.
// Records match by exact date-string equality. It recomputes from scratch on
// every call; the working set is small and mutable, so there is no
// incremental state to keep consistent. A date with no records yields an
// all-zero summary, not an error.
func Summarize(date string, purchases []Purchase, sales []Sale, expenses []Expense) DailySummary {
	sum := DailySummary{Date: date}
	for _, p := range purchases {
		if p.Date != date {
			continue
		}
		sum.TotalPurchases += p.TotalAmount
		sum.PurchaseCount++
	}
	for _, s := range sales {
		if s.Date != date {
			continue
		}
		sum.TotalSales += s.TotalAmount
		sum.SaleCount++
	}
	for _, e := range expenses {
		if e.Date != date {
			continue
		}
		sum.TotalExpenses += e.Amount
	}
	sum.GrossProfit = sum.TotalSales - sum.TotalPurchases
	sum.NetProfit = sum.GrossProfit - sum.TotalExpenses
	return sum
}

// Collection computes the day's cash/online split and recovery rate across
// the sales matching the date. The rate denominator is guarded: zero sales
// means a zero rate, not NaN. Pending may go negative when buyers have
// overpaid; it is reported as-is.
func Collection(date string, sales []Sale) CollectionStatus {
	var c CollectionStatus
	var totalSales float64
	for _, s := range sales {
		if s.Date != date {
			continue
		}
		totalSales += s.TotalAmount
		c.TotalReceived += s.ReceivedAmount
		c.TotalPending += s.PendingAmount
		switch s.PaymentMethod {
		case PaymentOnline:
			c.OnlineReceived += s.ReceivedAmount
		default:
			c.CashReceived += s.ReceivedAmount
		}
	}
	if totalSales > 0 {
		c.RecoveryRate = c.TotalReceived / totalSales * 100
	}
	return c
}
