// Package core holds the ledger's domain model and the pure computation that
// turns raw purchase/sale/expense records into totals, pending balances,
// daily summaries and per-party statements. Nothing in this package touches
// storage or mutates its inputs; callers get recomputed copies back.
package core

// Totals are the derived numeric fields of a Purchase or Sale aggregate.
type Totals struct {
	TotalAmount   float64
	PaidAmount    float64
	PendingAmount float64
}

// ComputeAggregateTotals folds transaction totals and payment amounts into
// aggregate totals. Summation is a plain left-to-right fold; inputs are
// assumed validated non-negative, and a negative pending amount (overpayment)
// is a valid result, never clamped.
func ComputeAggregateTotals(transactionAmounts, paymentAmounts []float64) Totals {
	var t Totals
	for _, a := range transactionAmounts {
		t.TotalAmount += a
	}
	for _, a := range paymentAmounts {
		t.PaidAmount += a
	}
	t.PendingAmount = t.TotalAmount - t.PaidAmount
	return t
}

// WithTotals returns the item with totalWeight and totalAmount recomputed
// from its inputs. Stored totals are never trusted on edit paths.
func (it PurchaseItem) WithTotals() PurchaseItem {
	it.TotalWeight = it.UnitCount * it.WeightPerUnit
	it.TotalAmount = it.TotalWeight * it.PricePerKg
	return it
}

// WithTotals recomputes a sale item. The optional per-item charge is folded
// into the item's own total.
func (it SaleItem) WithTotals() SaleItem {
	it.TotalWeight = it.UnitCount * it.WeightPerUnit
	it.TotalAmount = it.TotalWeight*it.PricePerKg + it.ItemCharge
	return it
}

// WithTotal recomputes an addition line.
func (a SaleAddition) WithTotal() SaleAddition {
	a.TotalAmount = a.Quantity * a.Rate
	return a
}

// WithTotals recomputes every item and the transaction total.
func (t PurchaseTransaction) WithTotals() PurchaseTransaction {
	items := make([]PurchaseItem, len(t.Items))
	var total float64
	for i, it := range t.Items {
		items[i] = it.WithTotals()
		total += items[i].TotalAmount
	}
	t.Items = items
	t.TotalAmount = total
	return t
}

// WithTotals recomputes items, additions and the three transaction totals.
func (t SaleTransaction) WithTotals() SaleTransaction {
	items := make([]SaleItem, len(t.Items))
	var itemTotal float64
	for i, it := range t.Items {
		items[i] = it.WithTotals()
		itemTotal += items[i].TotalAmount
	}
	additions := make([]SaleAddition, len(t.Additions))
	var addTotal float64
	for i, a := range t.Additions {
		additions[i] = a.WithTotal()
		addTotal += additions[i].TotalAmount
	}
	t.Items = items
	t.Additions = additions
	t.TotalItemAmount = itemTotal
	t.TotalAdditions = addTotal
	t.TotalAmount = itemTotal + addTotal
	return t
}

// WithTotals recomputes the whole aggregate bottom-up: every transaction,
// then totalAmount, advanceAmount and pendingAmount. Idempotent.
func (p Purchase) WithTotals() Purchase {
	txs := make([]PurchaseTransaction, len(p.Transactions))
	txAmounts := make([]float64, len(p.Transactions))
	for i, tr := range p.Transactions {
		txs[i] = tr.WithTotals()
		txAmounts[i] = txs[i].TotalAmount
	}
	payAmounts := make([]float64, len(p.AdvancePayments))
	for i, ap := range p.AdvancePayments {
		payAmounts[i] = ap.Amount
	}
	totals := ComputeAggregateTotals(txAmounts, payAmounts)
	p.Transactions = txs
	p.TotalAmount = totals.TotalAmount
	p.AdvanceAmount = totals.PaidAmount
	p.PendingAmount = totals.PendingAmount
	return p
}

// WithTotals mirrors Purchase.WithTotals on the sale side.
func (s Sale) WithTotals() Sale {
	txs := make([]SaleTransaction, len(s.Transactions))
	txAmounts := make([]float64, len(s.Transactions))
	for i, tr := range s.Transactions {
		txs[i] = tr.WithTotals()
		txAmounts[i] = txs[i].TotalAmount
	}
	payAmounts := make([]float64, len(s.ReceivedPayments))
	for i, rp := range s.ReceivedPayments {
		payAmounts[i] = rp.Amount
	}
	totals := ComputeAggregateTotals(txAmounts, payAmounts)
	s.Transactions = txs
	s.TotalAmount = totals.TotalAmount
	s.ReceivedAmount = totals.PaidAmount
	s.PendingAmount = totals.PendingAmount
	return s
}

// TotalWeight sums the weight of every item across the purchase's
// transactions, for display lines like "3 lots | 240.0 kg total".
func (p Purchase) TotalWeight() float64 {
	var kg float64
	for _, tr := range p.Transactions {
		for _, it := range tr.Items {
			kg += it.TotalWeight
		}
	}
	return kg
}

// ItemCount counts line items across all transactions.
func (p Purchase) ItemCount() int {
	n := 0
	for _, tr := range p.Transactions {
		n += len(tr.Items)
	}
	return n
}

func (s Sale) ItemCount() int {
	n := 0
	for _, tr := range s.Transactions {
		n += len(tr.Items)
	}
	return n
}
