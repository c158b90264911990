package core

import "testing"

func TestPartyKey(t *testing.T) {
	if PartyKey("") != UnknownPartyKey {
		t.Fatalf("empty mobile should map to %q", UnknownPartyKey)
	}
	// Literal string equality: surrounding whitespace makes a different party.
	if PartyKey("9876543210") == PartyKey(" 9876543210") {
		t.Fatalf("whitespace-variant mobiles must not match")
	}
}

func TestGroupFarmers(t *testing.T) {
	purchases := []Purchase{
		mkPurchase("p1", "2024-01-01", "9876543210", 3000, 1000),
		mkPurchase("p2", "2024-02-15", "9876543210", 2000, 0),
		mkPurchase("p3", "2024-01-20", "9123456789", 4000, 4000),
	}

	groups := GroupFarmers(purchases)
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}

	byKey := map[string]PartyGroup{}
	for _, g := range groups {
		byKey[g.Key] = g
	}

	a := byKey["9876543210"]
	if a.VisitCount != 2 || a.TotalAmount != 5000 || a.PendingAmount != 4000 {
		t.Fatalf("group a = %+v", a)
	}
	if a.LastVisit != "2024-02-15" {
		t.Fatalf("lastVisit = %q, want 2024-02-15", a.LastVisit)
	}

	b := byKey["9123456789"]
	if b.VisitCount != 1 || b.TotalAmount != 4000 || b.PendingAmount != 0 {
		t.Fatalf("group b = %+v", b)
	}

	// Sorted by most recent visit.
	if groups[0].Key != "9876543210" {
		t.Fatalf("expected most recently visited group first, got %q", groups[0].Key)
	}
}

func TestGroupFarmersUnknownBucket(t *testing.T) {
	purchases := []Purchase{
		{ID: "p1", Date: "2024-01-01", TotalAmount: 100},
		{ID: "p2", Date: "2024-01-02", TotalAmount: 200},
	}
	groups := GroupFarmers(purchases)
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want single unknown bucket", len(groups))
	}
	g := groups[0]
	if g.Key != UnknownPartyKey || g.Name != "Unknown Farmer" {
		t.Fatalf("unknown group = %+v", g)
	}
	if g.VisitCount != 2 || g.TotalAmount != 300 {
		t.Fatalf("unknown group totals = %+v", g)
	}
}

func TestGroupBuyersProfileFromFirstRecord(t *testing.T) {
	sales := []Sale{
		mkSale("s1", "2024-01-01", "9999999999", 100, 0),
		mkSale("s2", "2024-01-02", "9999999999", 200, 0),
	}
	sales[0].Buyer.Name = "Irfan"
	sales[1].Buyer.Name = "Irfan Bhai" // same party, retyped name

	groups := GroupBuyers(sales)
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	if groups[0].Name != "Irfan" {
		t.Fatalf("profile name = %q, want first record's", groups[0].Name)
	}
}

func TestPreviousPendingExcludesEditedRecord(t *testing.T) {
	sales := []Sale{
		mkSale("s1", "2024-01-01", "9999999999", 500, 300), // pending 200
		mkSale("s2", "2024-01-05", "9999999999", 800, 500), // pending 300
	}

	if got := PreviousPending(sales, "9999999999", ""); got != 500 {
		t.Fatalf("previousPending = %v, want 500", got)
	}
	if got := PreviousPending(sales, "9999999999", "s2"); got != 200 {
		t.Fatalf("previousPending excluding s2 = %v, want 200", got)
	}
	if got := PreviousPending(sales, "8888888888", ""); got != 0 {
		t.Fatalf("previousPending for stranger = %v, want 0", got)
	}
}

func TestBuyerHistoryNewestFirst(t *testing.T) {
	sales := []Sale{
		mkSale("old", "2024-01-01", "9999999999", 1, 0),
		mkSale("new", "2024-03-01", "9999999999", 1, 0),
		mkSale("mid", "2024-02-01", "9999999999", 1, 0),
	}
	hist := BuyerHistory(sales, "9999999999", "")
	if len(hist) != 3 || hist[0].ID != "new" || hist[2].ID != "old" {
		t.Fatalf("history order wrong: %v %v %v", hist[0].ID, hist[1].ID, hist[2].ID)
	}
}

func TestTotalOutstanding(t *testing.T) {
	if got := TotalOutstanding(500, 1800); got != 2300 {
		t.Fatalf("totalOutstanding = %v, want 2300", got)
	}
	// A party with no pending history contributes nothing beyond the
	// current transaction.
	if got := TotalOutstanding(0, 1800); got != 1800 {
		t.Fatalf("totalOutstanding = %v, want 1800", got)
	}
}
