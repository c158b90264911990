package core

import "sort"

// UnknownPartyKey buckets records whose party has no mobile number. It is an
// intentional degenerate group, not an error.
const UnknownPartyKey = "unknown"

// PartyKey derives group identity from a mobile number. Identity is literal
// string equality on the user-entered value — no trimming, no country-code
// or spacing normalization. This is the one place the matching rule lives:
// it lets the app recognize a repeat counterparty purely from a phone number
// typed into a new form, even when stored ids differ.
func PartyKey(mobile string) string {
	if mobile == "" {
		return UnknownPartyKey
	}
	return mobile
}

// PartyGroup is one counterparty's full history rolled up.
type PartyGroup struct {
	Key           string  `json:"key"`
	Name          string  `json:"name"`
	Mobile        string  `json:"mobile"`
	Address       string  `json:"address"`
	TotalAmount   float64 `json:"totalAmount"`
	PendingAmount float64 `json:"pendingAmount"`
	VisitCount    int     `json:"visitCount"`
	LastVisit     string  `json:"lastVisit"`
	RecordIDs     []string `json:"recordIds"`
}

// GroupFarmers groups purchases by farmer mobile. Profile fields come from
// the first record seen for a key; totals and pending are running sums over
// the whole history; lastVisit is the latest calendar date (dates are parsed
// for this comparison, not compared as strings). Groups come back sorted by
// most recent visit.
func GroupFarmers(purchases []Purchase) []PartyGroup {
	groups := make(map[string]*PartyGroup)
	var order []string
	for _, p := range purchases {
		key := PartyKey(p.Farmer.Mobile)
		g, ok := groups[key]
		if !ok {
			name := p.Farmer.Name
			if name == "" {
				name = "Unknown Farmer"
			}
			g = &PartyGroup{
				Key:       key,
				Name:      name,
				Mobile:    key,
				Address:   p.Farmer.Address,
				LastVisit: p.Date,
			}
			groups[key] = g
			order = append(order, key)
		}
		g.TotalAmount += p.TotalAmount
		g.PendingAmount += p.PendingAmount
		g.VisitCount++
		g.RecordIDs = append(g.RecordIDs, p.ID)
		if ParseDay(p.Date).After(ParseDay(g.LastVisit)) {
			g.LastVisit = p.Date
		}
	}
	return sortedGroups(groups, order)
}

// GroupBuyers mirrors GroupFarmers over sales.
func GroupBuyers(sales []Sale) []PartyGroup {
	groups := make(map[string]*PartyGroup)
	var order []string
	for _, s := range sales {
		key := PartyKey(s.Buyer.Mobile)
		g, ok := groups[key]
		if !ok {
			name := s.Buyer.Name
			if name == "" {
				name = "Unknown Buyer"
			}
			g = &PartyGroup{
				Key:       key,
				Name:      name,
				Mobile:    key,
				Address:   s.Buyer.Address,
				LastVisit: s.Date,
			}
			groups[key] = g
			order = append(order, key)
		}
		g.TotalAmount += s.TotalAmount
		g.PendingAmount += s.PendingAmount
		g.VisitCount++
		g.RecordIDs = append(g.RecordIDs, s.ID)
		if ParseDay(s.Date).After(ParseDay(g.LastVisit)) {
			g.LastVisit = s.Date
		}
	}
	return sortedGroups(groups, order)
}

func sortedGroups(groups map[string]*PartyGroup, order []string) []PartyGroup {
	out := make([]PartyGroup, 0, len(order))
	for _, key := range order {
		out = append(out, *groups[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return ParseDay(out[i].LastVisit).After(ParseDay(out[j].LastVisit))
	})
	return out
}

// BuyerHistory returns a buyer's past sales, newest first, optionally
// excluding one record id. The exclusion is used while editing that very
// record, so it is not counted against itself.
func BuyerHistory(sales []Sale, mobile, excludeID string) []Sale {
	if mobile == "" {
		return nil
	}
	var out []Sale
	for _, s := range sales {
		if s.Buyer.Mobile != mobile {
			continue
		}
		if excludeID != "" && s.ID == excludeID {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return ParseDay(out[i].Date).After(ParseDay(out[j].Date))
	})
	return out
}

// PreviousPending sums the pending amounts across a buyer's history,
// excluding one record when editing. Overpayments subtract; the result is
// never clamped to zero.
func PreviousPending(sales []Sale, mobile, excludeID string) float64 {
	var sum float64
	for _, s := range BuyerHistory(sales, mobile, excludeID) {
		sum += s.PendingAmount
	}
	return sum
}

// TotalOutstanding is the figure shown when composing a new sale for a known
// buyer: history carried forward plus the transaction being composed.
func TotalOutstanding(previousPending, currentPending float64) float64 {
	return previousPending + currentPending
}
