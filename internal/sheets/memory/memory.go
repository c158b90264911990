// Package memory is an in-memory RecordExporter for tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"sync"

	"mandi/internal/sheets"
)

type Exporter struct {
	mu   sync.Mutex
	rows []sheets.RecordRow
}

func New() *Exporter {
	return &Exporter{}
}

func (e *Exporter) AppendRecord(_ context.Context, row sheets.RecordRow) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = append(e.rows, row)
	return nil
}

// Rows returns a copy of everything appended so far.
func (e *Exporter) Rows() []sheets.RecordRow {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]sheets.RecordRow, len(e.rows))
	copy(out, e.rows)
	return out
}
