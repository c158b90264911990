package core

import "fmt"

const (
	FeedPurchase FeedType = "purchase"
	FeedSale     FeedType = "sale"
	FeedExpense  FeedType = "expense"
)

type FeedType string

// FeedEntry is one display-ready business event in the unified feed. Amount
// is the record's gross value (totalAmount / amount), not its pending value.
type FeedEntry struct {
	ID            string        `json:"id"`
	Type          FeedType      `json:"type"`
	Date          string        `json:"date"`
	Description   string        `json:"description"`
	Amount        float64       `json:"amount"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Details       string        `json:"details"`
}

// BuildFeed merges the day's purchases, sales and expenses into one list.
// Entry ids are namespaced by source ("purchase-<id>", "sale-<id>",
// "expense-<id>") so the three id spaces cannot collide. If the same id
// shows up twice the later entry wins. Order is purchases, then sales, then
// expenses, insertion order within each; callers impose their own sort if
// they need chronology.
func BuildFeed(date string, purchases []Purchase, sales []Sale, expenses []Expense) []FeedEntry {
	var entries []FeedEntry
	for _, p := range purchases {
		if p.Date != date {
			continue
		}
		entries = append(entries, FeedEntry{
			ID:            "purchase-" + p.ID,
			Type:          FeedPurchase,
			Date:          p.Date,
			Description:   fmt.Sprintf("Grapes from %s", p.Farmer.Name),
			Amount:        p.TotalAmount,
			PaymentMethod: p.PaymentMethod,
			Details:       fmt.Sprintf("%d lots | %.1f kg total", p.ItemCount(), p.TotalWeight()),
		})
	}
	for _, s := range sales {
		if s.Date != date {
			continue
		}
		entries = append(entries, FeedEntry{
			ID:            "sale-" + s.ID,
			Type:          FeedSale,
			Date:          s.Date,
			Description:   fmt.Sprintf("Invoice to %s", s.Buyer.Name),
			Amount:        s.TotalAmount,
			PaymentMethod: s.PaymentMethod,
			Details:       fmt.Sprintf("%d items | ₹%.0f", s.ItemCount(), s.TotalAmount),
		})
	}
	for _, e := range expenses {
		if e.Date != date {
			continue
		}
		entries = append(entries, FeedEntry{
			ID:            "expense-" + e.ID,
			Type:          FeedExpense,
			Date:          e.Date,
			Description:   e.Description,
			Amount:        e.Amount,
			PaymentMethod: e.PaymentMethod,
			Details:       titleCase(string(e.Type)),
		})
	}
	return dedupeByID(entries)
}

// dedupeByID collapses duplicate ids, last write wins, preserving the
// position of the first occurrence.
func dedupeByID(entries []FeedEntry) []FeedEntry {
	index := make(map[string]int, len(entries))
	out := make([]FeedEntry, 0, len(entries))
	for _, e := range entries {
		if i, seen := index[e.ID]; seen {
			out[i] = e
			continue
		}
		index[e.ID] = len(out)
		out = append(out, e)
	}
	return out
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 32
	}
	return string(b)
}
