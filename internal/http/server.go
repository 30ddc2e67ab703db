// Package http exposes the ledger as a JSON API. Every /api route acts for
// the user named by the X-User-ID header; view routes read the period
// selection from query parameters.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"moneta/internal/analytics"
	"moneta/internal/cache"
	"moneta/internal/log"
	"moneta/internal/services"
)

type Server struct {
	http.Server
	ledger      *services.LedgerService
	rateLimiter *rateLimiter

	// Cached read views, invalidated per user on mutation.
	analysisCache *cache.LRUCache[analytics.Analysis]
	budgetsCache  *cache.LRUCache[[]analytics.BudgetStatus]
	cacheManager  *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run server.
func NewServer(addr string, ledger *services.LedgerService, cacheTTL time.Duration) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:        ledger,
		rateLimiter:   newRateLimiter(),
		analysisCache: cache.NewLRUCache[analytics.Analysis](200, cacheTTL),
		budgetsCache:  cache.NewLRUCache[[]analytics.BudgetStatus](200, cacheTTL),
		cacheManager:  cache.NewManager(),
	}

	s.cacheManager.Register(s.analysisCache)
	s.cacheManager.Register(s.budgetsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/records", s.secured(s.handleListRecords))
	mux.HandleFunc("POST /api/records", s.secured(s.handleUpsertRecord))
	mux.HandleFunc("DELETE /api/records/{id}", s.secured(s.handleDeleteRecord))

	mux.HandleFunc("GET /api/categories", s.secured(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.secured(s.handleAddCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.secured(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/accounts", s.secured(s.handleListAccounts))
	mux.HandleFunc("POST /api/accounts", s.secured(s.handleAddAccount))
	mux.HandleFunc("DELETE /api/accounts/{id}", s.secured(s.handleDeleteAccount))

	mux.HandleFunc("GET /api/budgets", s.secured(s.handleBudgets))
	mux.HandleFunc("PUT /api/budgets/{categoryId}", s.secured(s.handleSetBudget))
	mux.HandleFunc("DELETE /api/budgets/{id}", s.secured(s.handleRemoveBudget))

	mux.HandleFunc("GET /api/analysis", s.secured(s.handleAnalysis))

	mux.HandleFunc("POST /api/import", s.secured(s.handleImport))
	mux.HandleFunc("GET /api/export/backup", s.secured(s.handleExportBackup))
	mux.HandleFunc("GET /api/export/csv", s.secured(s.handleExportCSV))
	mux.HandleFunc("POST /api/restore", s.secured(s.handleRestore))

	return s
}

// Shutdown stops the cleanup goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// secured adds security headers, rate limiting and request logging.
func (s *Server) secured(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		logger := log.FromContext(r.Context()).WithComponent(log.ComponentHTTP).With(
			log.FieldRequestID, requestID,
			log.FieldClientIP, clientIP)
		ctx := log.WithLogger(r.Context(), logger)
		r = r.WithContext(ctx)

		logger.InfoContext(ctx, "Request started",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)

		// Mutations are rate limited per client, reads are not.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			logger.WarnContext(ctx, "Rate limit exceeded", log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
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
		logger.InfoContext(ctx, "Request completed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, duration.Milliseconds())
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// invalidateUser drops every cached view for the user after a mutation.
func (s *Server) invalidateUser(userID string) {
	s.analysisCache.DeletePrefix(userID + "|")
	s.budgetsCache.DeletePrefix(userID + "|")
}
