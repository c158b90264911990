// Package http exposes the ledger as a JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"mandi/internal/ledger"
)

type Server struct {
	http.Server
	ledger      *ledger.Service
	rateLimiter *rateLimiter

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, svc *ledger.Service) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:      svc,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /purchases", s.withSecurityHeaders(s.handleCreatePurchase))
	mux.HandleFunc("GET /purchases", s.withSecurityHeaders(s.handleListPurchases))
	mux.HandleFunc("GET /purchases/{id}", s.withSecurityHeaders(s.handleGetPurchase))
	mux.HandleFunc("PUT /purchases/{id}", s.withSecurityHeaders(s.handleUpdatePurchase))
	mux.HandleFunc("DELETE /purchases/{id}", s.withSecurityHeaders(s.handleDeletePurchase))

	mux.HandleFunc("POST /sales", s.withSecurityHeaders(s.handleCreateSale))
	mux.HandleFunc("GET /sales", s.withSecurityHeaders(s.handleListSales))
	mux.HandleFunc("GET /sales/{id}", s.withSecurityHeaders(s.handleGetSale))
	mux.HandleFunc("PUT /sales/{id}", s.withSecurityHeaders(s.handleUpdateSale))
	mux.HandleFunc("DELETE /sales/{id}", s.withSecurityHeaders(s.handleDeleteSale))

	mux.HandleFunc("POST /expenses", s.withSecurityHeaders(s.handleCreateExpense))
	mux.HandleFunc("GET /expenses", s.withSecurityHeaders(s.handleListExpenses))
	mux.HandleFunc("DELETE /expenses/{id}", s.withSecurityHeaders(s.handleDeleteExpense))

	mux.HandleFunc("GET /summary/daily", s.withSecurityHeaders(s.handleDailySummary))
	mux.HandleFunc("GET /feed", s.withSecurityHeaders(s.handleFeed))
	mux.HandleFunc("GET /parties/farmers", s.withSecurityHeaders(s.handleFarmers))
	mux.HandleFunc("GET /parties/buyers", s.withSecurityHeaders(s.handleBuyers))
	mux.HandleFunc("GET /parties/buyers/outstanding", s.withSecurityHeaders(s.handleBuyerOutstanding))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		// Rate limit writes only; reads are derived from memory and cheap.
		if isWrite(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports ready only once the working set is hydrated; writes
// and derived reads would otherwise run against an empty ledger.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.ledger.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("hydrating"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
