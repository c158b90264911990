package core

// Older versions of the app stored a Purchase as a flat item list with a
// single advanceAmount, and a Sale as flat items+additions with a single
// receivedAmount. Stored records of both shapes are still in the database,
// so every aggregate passes through Normalize at the ingestion boundary and
// the rest of the engine only ever sees the transaction-list shape.

// Normalize converts a legacy flat-shape purchase to the canonical
// transaction-list form and recomputes its totals. Already-canonical
// purchases only get their totals recomputed. The legacy fields are cleared
// so the record writes back in canonical shape.
func (p Purchase) Normalize() Purchase {
	if len(p.Transactions) == 0 && len(p.Items) > 0 {
		p.Transactions = []PurchaseTransaction{{
			Date:  p.Date,
			Items: p.Items,
		}}
	}
	if len(p.AdvancePayments) == 0 && p.AdvanceAmount > 0 {
		p.AdvancePayments = []AdvancePayment{{
			Date:          p.Date,
			Amount:        p.AdvanceAmount,
			PaymentMethod: p.PaymentMethod,
		}}
	}
	p.Items = nil
	return p.WithTotals()
}

// Normalize converts a legacy flat-shape sale to the canonical form and
// recomputes its totals.
func (s Sale) Normalize() Sale {
	if len(s.Transactions) == 0 && (len(s.Items) > 0 || len(s.Additions) > 0) {
		s.Transactions = []SaleTransaction{{
			Date:      s.Date,
			Items:     s.Items,
			Additions: s.Additions,
		}}
	}
	if len(s.ReceivedPayments) == 0 && s.ReceivedAmount > 0 {
		s.ReceivedPayments = []ReceivedPayment{{
			Date:          s.Date,
			Amount:        s.ReceivedAmount,
			PaymentMethod: s.PaymentMethod,
		}}
	}
	s.Items = nil
	s.Additions = nil
	s.LegacyItemAmt = 0
	s.LegacyAddAmt = 0
	return s.WithTotals()
}
