// Package worker turns queued record events into backup rows: it fetches the
// changed document from storage, flattens it, and hands it to the exporter.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"mandi/internal/amqp"
	"mandi/internal/core"
	"mandi/internal/sheets"
	"mandi/internal/storage"
)

// DocumentGetter is the slice of the repository the worker needs. Soft-
// deleted documents are still returned by Get, which is what makes delete
// events exportable.
type DocumentGetter interface {
	Get(ctx context.Context, collection, id string) (storage.Document, error)
}

type SyncWorker struct {
	store    DocumentGetter
	exporter sheets.RecordExporter
}

func NewSyncWorker(store DocumentGetter, exporter sheets.RecordExporter) *SyncWorker {
	return &SyncWorker{store: store, exporter: exporter}
}

// HandleRecordEvent processes one queued event. Errors bubble up so the
// consumer can nack-and-requeue.
func (w *SyncWorker) HandleRecordEvent(ctx context.Context, ev *amqp.RecordEvent) error {
	slog.InfoContext(ctx, "Processing record event",
		"collection", ev.Collection,
		"id", ev.ID,
		"action", ev.Action)

	doc, err := w.store.Get(ctx, ev.Collection, ev.ID)
	if err != nil {
		return fmt.Errorf("get %s/%s: %w", ev.Collection, ev.ID, err)
	}

	row, err := buildRow(doc, ev.Action)
	if err != nil {
		return fmt.Errorf("build row for %s/%s: %w", ev.Collection, ev.ID, err)
	}

	if err := w.exporter.AppendRecord(ctx, row); err != nil {
		return fmt.Errorf("append record %s/%s: %w", ev.Collection, ev.ID, err)
	}

	return nil
}

// buildRow flattens a stored document into one backup row. Aggregates are
// normalized first so legacy-shape records export with correct totals.
func buildRow(doc storage.Document, action string) (sheets.RecordRow, error) {
	row := sheets.RecordRow{
		SyncedAt:   time.Now(),
		Collection: doc.Collection,
		RecordID:   doc.ID,
		Action:     action,
	}

	switch doc.Collection {
	case storage.CollectionPurchases:
		var p core.Purchase
		if err := json.Unmarshal(doc.Data, &p); err != nil {
			return sheets.RecordRow{}, fmt.Errorf("decode purchase: %w", err)
		}
		p = p.Normalize()
		row.Date = p.Date
		row.PartyName = p.Farmer.Name
		row.PartyMobile = p.Farmer.Mobile
		row.Description = fmt.Sprintf("%d lots | %.1f kg", p.ItemCount(), p.TotalWeight())
		row.TotalAmount = p.TotalAmount
		row.PaidAmount = p.AdvanceAmount
		row.PendingAmount = p.PendingAmount
		row.PaymentMethod = string(p.PaymentMethod)

	case storage.CollectionSales:
		var s core.Sale
		if err := json.Unmarshal(doc.Data, &s); err != nil {
			return sheets.RecordRow{}, fmt.Errorf("decode sale: %w", err)
		}
		s = s.Normalize()
		row.Date = s.Date
		row.PartyName = s.Buyer.Name
		row.PartyMobile = s.Buyer.Mobile
		row.Description = fmt.Sprintf("%d items", s.ItemCount())
		row.TotalAmount = s.TotalAmount
		row.PaidAmount = s.ReceivedAmount
		row.PendingAmount = s.PendingAmount
		row.PaymentMethod = string(s.PaymentMethod)

	case storage.CollectionExpenses:
		var e core.Expense
		if err := json.Unmarshal(doc.Data, &e); err != nil {
			return sheets.RecordRow{}, fmt.Errorf("decode expense: %w", err)
		}
		row.Date = e.Date
		row.Description = e.Description
		row.TotalAmount = e.Amount
		row.PaidAmount = e.Amount
		row.PaymentMethod = string(e.PaymentMethod)

	default:
		return sheets.RecordRow{}, fmt.Errorf("unknown collection %q", doc.Collection)
	}

	return row, nil
}
