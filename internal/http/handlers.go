package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"mandi/internal/core"
	"mandi/internal/storage"
)

const maxBodyBytes = 1 << 20 // 1 MiB

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", "method", r.Method, "url", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusForError maps domain errors onto HTTP statuses: unknown ids are 404,
// rejected input is 422, everything else is a server fault.
func statusForError(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidItem),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrNoItems):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}

func (s *Server) handleCreatePurchase(w http.ResponseWriter, r *http.Request) {
	var p core.Purchase
	if err := decodeBody(w, r, &p); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	created, err := s.ledger.AddPurchase(r.Context(), p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Purchases())
}

func (s *Server) handleGetPurchase(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	for _, p := range s.ledger.Purchases() {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	respondError(w, r, storage.ErrNotFound)
}

func (s *Server) handleUpdatePurchase(w http.ResponseWriter, r *http.Request) {
	var p core.Purchase
	if err := decodeBody(w, r, &p); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	updated, err := s.ledger.UpdatePurchase(r.Context(), r.PathValue("id"), p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeletePurchase(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeletePurchase(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	var sale core.Sale
	if err := decodeBody(w, r, &sale); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	created, err := s.ledger.AddSale(r.Context(), sale)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListSales(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Sales())
}

func (s *Server) handleGetSale(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	for _, sale := range s.ledger.Sales() {
		if sale.ID == id {
			writeJSON(w, http.StatusOK, sale)
			return
		}
	}
	respondError(w, r, storage.ErrNotFound)
}

func (s *Server) handleUpdateSale(w http.ResponseWriter, r *http.Request) {
	var sale core.Sale
	if err := decodeBody(w, r, &sale); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	updated, err := s.ledger.UpdateSale(r.Context(), r.PathValue("id"), sale)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteSale(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteSale(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var e core.Expense
	if err := decodeBody(w, r, &e); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	created, err := s.ledger.AddExpense(r.Context(), e)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Expenses())
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDailySummary returns the derived profit/loss snapshot plus the
// payment collection status for one calendar day.
func (s *Server) handleDailySummary(w http.ResponseWriter, r *http.Request) {
	date, ok := requireDate(w, r)
	if !ok {
		return
	}
	summary, collection := s.ledger.DailySummary(date)
	writeJSON(w, http.StatusOK, struct {
		Summary    core.DailySummary     `json:"summary"`
		Collection core.CollectionStatus `json:"collection"`
	}{Summary: summary, Collection: collection})
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	date, ok := requireDate(w, r)
	if !ok {
		return
	}
	feed := s.ledger.Feed(date)
	if feed == nil {
		feed = []core.FeedEntry{}
	}
	writeJSON(w, http.StatusOK, feed)
}

func (s *Server) handleFarmers(w http.ResponseWriter, r *http.Request) {
	groups := s.ledger.Farmers()
	if groups == nil {
		groups = []core.PartyGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleBuyers(w http.ResponseWriter, r *http.Request) {
	groups := s.ledger.Buyers()
	if groups == nil {
		groups = []core.PartyGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}

// handleBuyerOutstanding reports a returning buyer's carry-forward balance.
// The optional exclude parameter names a sale id to leave out, so editing a
// sale does not count its own pending amount twice.
func (s *Server) handleBuyerOutstanding(w http.ResponseWriter, r *http.Request) {
	mobile := strings.TrimSpace(r.URL.Query().Get("mobile"))
	if mobile == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing mobile parameter"})
		return
	}
	excludeID := r.URL.Query().Get("exclude")

	var currentPending float64
	if v := strings.TrimSpace(r.URL.Query().Get("currentPending")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid currentPending parameter"})
			return
		}
		currentPending = f
	}

	writeJSON(w, http.StatusOK, s.ledger.BuyerOutstanding(mobile, excludeID, currentPending))
}

// requireDate reads the mandatory date query parameter. Dates are matched as
// literal YYYY-MM-DD strings downstream, so only presence and shape are
// checked here.
func requireDate(w http.ResponseWriter, r *http.Request) (string, bool) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing date parameter"})
		return "", false
	}
	if core.ParseDay(date).IsZero() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid date parameter, want YYYY-MM-DD"})
		return "", false
	}
	return date, true
}
