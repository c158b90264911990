// Package sheets defines the outbound port for the off-site ledger backup.
package sheets

import (
	"context"
	"time"
)

// RecordRow is one flattened snapshot of a ledger record, appended to the
// backup sheet every time the record changes. The backup is append-only: an
// update or delete adds a new row rather than rewriting an old one, so the
// sheet doubles as a change journal.
type RecordRow struct {
	SyncedAt      time.Time
	Collection    string
	RecordID      string
	Action        string
	Date          string
	PartyName     string
	PartyMobile   string
	Description   string
	TotalAmount   float64
	PaidAmount    float64
	PendingAmount float64
	PaymentMethod string
}

// RecordExporter appends snapshot rows to the backup.
type RecordExporter interface {
	AppendRecord(ctx context.Context, row RecordRow) error
}
