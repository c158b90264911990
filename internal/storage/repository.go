// Package storage is the repository boundary of the ledger: a document store
// over SQLite. Records are kept as whole JSON documents in one table, keyed
// by (collection, id). Deletes are soft — a deleted document drops out of
// listings but stays fetchable by id.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"
)

const (
	CollectionPurchases = "purchases"
	CollectionSales     = "sales"
	CollectionExpenses  = "expenses"
)

var ErrNotFound = errors.New("document not found")

// Document is a stored record plus its envelope. Data does not contain the
// id; callers stamp it on after decoding, the way the original store's
// clients did.
type Document struct {
	ID         string
	Collection string
	Date       string
	Deleted    bool
	Data       json.RawMessage
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Create persists a new document and returns its generated id.
func (r *SQLiteRepository) Create(ctx context.Context, collection string, record json.RawMessage) (string, error) {
	date, err := recordDate(record)
	if err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (collection, record_date, doc) VALUES (?, ?, ?)`,
		collection, date, string(record))
	if err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Document created",
		"collection", collection,
		"id", id,
		"date", date)

	return strconv.FormatInt(id, 10), nil
}

// Update merges the fields of partial into the stored document, Firestore
// merge-write style: top-level fields in partial replace the stored ones,
// everything else is untouched.
func (r *SQLiteRepository) Update(ctx context.Context, collection, id string, partial json.RawMessage) error {
	doc, err := r.Get(ctx, collection, id)
	if err != nil {
		return err
	}

	merged, err := mergeDocuments(doc.Data, partial)
	if err != nil {
		return fmt.Errorf("merge document %s/%s: %w", collection, id, err)
	}

	date, err := recordDate(merged)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE documents SET doc = ?, record_date = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE collection = ? AND id = ?`,
		string(merged), date, collection, id)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	slog.InfoContext(ctx, "Document updated",
		"collection", collection,
		"id", id,
		"date", date)

	return nil
}

// SoftDelete marks a document deleted without removing it.
func (r *SQLiteRepository) SoftDelete(ctx context.Context, collection, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET deleted = 1, updated_at = CURRENT_TIMESTAMP
		 WHERE collection = ? AND id = ?`,
		collection, id)
	if err != nil {
		return fmt.Errorf("soft delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Document soft-deleted",
		"collection", collection,
		"id", id)

	return nil
}

// ListAll returns every live document in a collection, ordered descending by
// the given field. Only "date" ordering is supported; the parameter exists
// because it is part of the repository contract.
func (r *SQLiteRepository) ListAll(ctx context.Context, collection, orderByField string) ([]Document, error) {
	if orderByField != "date" {
		return nil, fmt.Errorf("unsupported order field %q", orderByField)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, record_date, doc FROM documents
		 WHERE collection = ? AND deleted = 0
		 ORDER BY record_date DESC, id DESC`,
		collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			id   int64
			date string
			doc  string
		)
		if err := rows.Scan(&id, &date, &doc); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", collection, err)
		}
		docs = append(docs, Document{
			ID:         strconv.FormatInt(id, 10),
			Collection: collection,
			Date:       date,
			Data:       json.RawMessage(doc),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", collection, err)
	}

	return docs, nil
}

// Get fetches a single document by id, soft-deleted ones included — the
// export worker still needs the data after a delete.
func (r *SQLiteRepository) Get(ctx context.Context, collection, id string) (Document, error) {
	var (
		date    string
		deleted int
		doc     string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT record_date, deleted, doc FROM documents
		 WHERE collection = ? AND id = ?`,
		collection, id).Scan(&date, &deleted, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("get document %s/%s: %w", collection, id, err)
	}

	return Document{
		ID:         id,
		Collection: collection,
		Date:       date,
		Deleted:    deleted != 0,
		Data:       json.RawMessage(doc),
	}, nil
}

// recordDate pulls the date field out of a document so listings can order by
// it without parsing every document on read.
func recordDate(record json.RawMessage) (string, error) {
	var probe struct {
		Date string `json:"date"`
	}
	if err := json.Unmarshal(record, &probe); err != nil {
		return "", fmt.Errorf("decode record date: %w", err)
	}
	return probe.Date, nil
}

func mergeDocuments(stored, partial json.RawMessage) (json.RawMessage, error) {
	var base map[string]any
	if err := json.Unmarshal(stored, &base); err != nil {
		return nil, fmt.Errorf("decode stored document: %w", err)
	}
	var patch map[string]any
	if err := json.Unmarshal(partial, &patch); err != nil {
		return nil, fmt.Errorf("decode partial document: %w", err)
	}
	for k, v := range patch {
		base[k] = v
	}
	merged, err := json.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("encode merged document: %w", err)
	}
	return merged, nil
}
