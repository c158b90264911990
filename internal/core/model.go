package core

import (
	"errors"
	"strings"
	"time"
)

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentOnline PaymentMethod = "online"
)

const (
	ExpenseLabour ExpenseType = "labour"
	ExpensePetrol ExpenseType = "petrol"
	ExpenseOther  ExpenseType = "other"
)

const (
	AdditionLabour     AdditionType = "labour"
	AdditionPaper      AdditionType = "paper"
	AdditionRassi      AdditionType = "rassi"
	AdditionTape       AdditionType = "tape"
	AdditionCrate      AdditionType = "crate"
	AdditionCommission AdditionType = "commission"
	AdditionOther      AdditionType = "other"
)

// DateLayout is the calendar-day key format used on every record. Dates are
// treated as opaque strings for filtering; they are parsed only when two of
// them have to be ordered.
const DateLayout = "2006-01-02"

type (
	PaymentMethod string
	ExpenseType   string
	AdditionType  string

	// Party identifies a farmer or buyer. The mobile number is the natural
	// join key across records; it is user-entered free text and is matched
	// by literal string equality, never normalized.
	Party struct {
		ID      string `json:"id,omitempty"`
		Name    string `json:"name"`
		Mobile  string `json:"mobile"`
		Address string `json:"address"`
	}

	// PurchaseItem is one line of a purchase lot.
	PurchaseItem struct {
		ID            string  `json:"id,omitempty"`
		Date          string  `json:"date,omitempty"`
		Quality       string  `json:"quality"`
		UnitCount     float64 `json:"unitCount"`
		WeightPerUnit float64 `json:"weightPerUnit"`
		TotalWeight   float64 `json:"totalWeight"`
		PricePerKg    float64 `json:"pricePerKg"`
		TotalAmount   float64 `json:"totalAmount"`
		Advance       float64 `json:"advance,omitempty"`
	}

	// PurchaseTransaction is one dated purchase event within a Purchase.
	PurchaseTransaction struct {
		ID          string         `json:"id,omitempty"`
		Date        string         `json:"date"`
		Items       []PurchaseItem `json:"items"`
		TotalAmount float64        `json:"totalAmount"`
	}

	AdvancePayment struct {
		ID            string        `json:"id,omitempty"`
		Date          string        `json:"date"`
		Amount        float64       `json:"amount"`
		PaymentMethod PaymentMethod `json:"paymentMethod"`
		Note          string        `json:"note,omitempty"`
	}

	// Purchase is the persisted aggregate for a farmer relationship.
	// Date is the first transaction date. Records written by older versions
	// of the app carry a flat Items slice instead of Transactions; see
	// Normalize.
	Purchase struct {
		ID              string                `json:"id,omitempty"`
		Date            string                `json:"date"`
		Farmer          Party                 `json:"farmer"`
		Transactions    []PurchaseTransaction `json:"transactions"`
		AdvancePayments []AdvancePayment      `json:"advancePayments"`
		TotalAmount     float64               `json:"totalAmount"`
		AdvanceAmount   float64               `json:"advanceAmount"`
		PendingAmount   float64               `json:"pendingAmount"`
		PaymentMethod   PaymentMethod         `json:"paymentMethod"`

		// Legacy flat shape.
		Items []PurchaseItem `json:"items,omitempty"`
	}

	SaleItem struct {
		ID            string  `json:"id,omitempty"`
		Quality       string  `json:"quality"`
		UnitCount     float64 `json:"unitCount"`
		WeightPerUnit float64 `json:"weightPerUnit"`
		TotalWeight   float64 `json:"totalWeight"`
		PricePerKg    float64 `json:"pricePerKg"`
		ItemCharge    float64 `json:"itemCharge,omitempty"`
		TotalAmount   float64 `json:"totalAmount"`
	}

	// SaleAddition is a named surcharge applied to the whole transaction
	// rather than a single item (labour, packaging, commission...).
	SaleAddition struct {
		ID          string       `json:"id,omitempty"`
		Type        AdditionType `json:"type"`
		Label       string       `json:"label"`
		Quantity    float64      `json:"quantity"`
		Rate        float64      `json:"rate"`
		TotalAmount float64      `json:"totalAmount"`
	}

	SaleTransaction struct {
		ID              string         `json:"id,omitempty"`
		Date            string         `json:"date"`
		Items           []SaleItem     `json:"items"`
		Additions       []SaleAddition `json:"additions"`
		TotalItemAmount float64        `json:"totalItemAmount"`
		TotalAdditions  float64        `json:"totalAdditions"`
		TotalAmount     float64        `json:"totalAmount"`
	}

	ReceivedPayment struct {
		ID            string        `json:"id,omitempty"`
		Date          string        `json:"date"`
		Amount        float64       `json:"amount"`
		PaymentMethod PaymentMethod `json:"paymentMethod"`
		Note          string        `json:"note,omitempty"`
	}

	// Sale mirrors Purchase on the buyer side.
	Sale struct {
		ID               string            `json:"id,omitempty"`
		Date             string            `json:"date"`
		Buyer            Party             `json:"buyer"`
		Transactions     []SaleTransaction `json:"transactions"`
		ReceivedPayments []ReceivedPayment `json:"receivedPayments"`
		TotalAmount      float64           `json:"totalAmount"`
		ReceivedAmount   float64           `json:"receivedAmount"`
		PendingAmount    float64           `json:"pendingAmount"`
		PaymentMethod    PaymentMethod     `json:"paymentMethod"`

		// Legacy flat shape.
		Items          []SaleItem     `json:"items,omitempty"`
		Additions      []SaleAddition `json:"additions,omitempty"`
		LegacyItemAmt  float64        `json:"totalItemAmount,omitempty"`
		LegacyAddAmt   float64        `json:"totalAdditions,omitempty"`
	}

	Expense struct {
		ID            string        `json:"id,omitempty"`
		Date          string        `json:"date"`
		Type          ExpenseType   `json:"type"`
		Description   string        `json:"description"`
		Amount        float64       `json:"amount"`
		PaymentMethod PaymentMethod `json:"paymentMethod"`
	}

	// DailySummary is derived, never persisted.
	DailySummary struct {
		Date           string  `json:"date"`
		TotalPurchases float64 `json:"totalPurchases"`
		TotalSales     float64 `json:"totalSales"`
		TotalExpenses  float64 `json:"totalExpenses"`
		GrossProfit    float64 `json:"grossProfit"`
		NetProfit      float64 `json:"netProfit"`
		PurchaseCount  int     `json:"purchaseCount"`
		SaleCount      int     `json:"saleCount"`
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidItem      = errors.New("invalid item line")
	ErrEmptyDescription = errors.New("empty description")
	ErrNoItems          = errors.New("transaction has no items")
)

// DefaultAdditions returns the addition lines a new sale starts from, with
// the rates the business customarily charges. Quantities start at zero.
func DefaultAdditions() []SaleAddition {
	return []SaleAddition{
		{Type: AdditionLabour, Label: "Labour", Rate: 50},
		{Type: AdditionPaper, Label: "Paper", Rate: 250},
		{Type: AdditionRassi, Label: "Rassi (Rope)", Rate: 50},
		{Type: AdditionTape, Label: "Tape", Rate: 30},
		{Type: AdditionCrate, Label: "Crate", Rate: 50},
		{Type: AdditionCommission, Label: "Commission", Rate: 20},
	}
}

// ParseDay parses a calendar-day key. The zero time is returned for anything
// that is not a valid YYYY-MM-DD string, so malformed dates sort first
// instead of failing a read path.
func ParseDay(s string) time.Time {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

func validDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentOnline
}

func (t ExpenseType) Valid() bool {
	return t == ExpenseLabour || t == ExpensePetrol || t == ExpenseOther
}

// Validate rejects item lines before they reach aggregation. Aggregation
// itself assumes validated non-negative inputs and does not re-check.
func (it PurchaseItem) Validate() error {
	if it.UnitCount <= 0 || it.WeightPerUnit <= 0 || it.PricePerKg <= 0 {
		return ErrInvalidItem
	}
	if it.Advance < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (it SaleItem) Validate() error {
	if it.UnitCount <= 0 || it.WeightPerUnit <= 0 || it.PricePerKg <= 0 {
		return ErrInvalidItem
	}
	if it.ItemCharge < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (a SaleAddition) Validate() error {
	if a.Quantity < 0 || a.Rate < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (p AdvancePayment) Validate() error {
	if p.Amount < 0 {
		return ErrInvalidAmount
	}
	if !validDate(p.Date) {
		return ErrInvalidDate
	}
	return nil
}

func (p ReceivedPayment) Validate() error {
	if p.Amount < 0 {
		return ErrInvalidAmount
	}
	if !validDate(p.Date) {
		return ErrInvalidDate
	}
	return nil
}

func (t PurchaseTransaction) Validate() error {
	if !validDate(t.Date) {
		return ErrInvalidDate
	}
	if len(t.Items) == 0 {
		return ErrNoItems
	}
	for _, it := range t.Items {
		if err := it.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (t SaleTransaction) Validate() error {
	if !validDate(t.Date) {
		return ErrInvalidDate
	}
	if len(t.Items) == 0 {
		return ErrNoItems
	}
	for _, it := range t.Items {
		if err := it.Validate(); err != nil {
			return err
		}
	}
	for _, a := range t.Additions {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (p Purchase) Validate() error {
	if !validDate(p.Date) {
		return ErrInvalidDate
	}
	for _, tr := range p.Transactions {
		if err := tr.Validate(); err != nil {
			return err
		}
	}
	for _, ap := range p.AdvancePayments {
		if err := ap.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s Sale) Validate() error {
	if !validDate(s.Date) {
		return ErrInvalidDate
	}
	for _, tr := range s.Transactions {
		if err := tr.Validate(); err != nil {
			return err
		}
	}
	for _, rp := range s.ReceivedPayments {
		if err := rp.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (e Expense) Validate() error {
	if !validDate(e.Date) {
		return ErrInvalidDate
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !e.Type.Valid() {
		return errors.New("invalid expense type")
	}
	return nil
}
