// Package http exposes the finance ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"laplata/internal/auth"
	"laplata/internal/cache"
	"laplata/internal/config"
	"laplata/internal/ledger"
	applog "laplata/internal/log"
	"laplata/internal/middleware/ratelimit"
	"laplata/internal/middleware/security"
	"laplata/internal/middleware/trace"
	"laplata/internal/services"
	"laplata/internal/storage"
)

// Server serves the ledger API. Month summaries are cached with a short
// TTL and invalidated on writes.
type Server struct {
	http.Server

	ledger *services.LedgerService
	auth   *auth.Service
	kv     storage.KV
	logger *applog.Logger

	limiter  *ratelimit.Limiter
	cacheMgr *cache.Manager

	summaryCache *cache.LRUCache[SummaryResponse]

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg *config.Config, ledgerSvc *services.LedgerService, authSvc *auth.Service, kv storage.KV, logger *applog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		ledger: ledgerSvc,
		auth:   authSvc,
		kv:     kv,
		logger: logger.WithComponent(applog.ComponentHTTP),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitPerMinute,
		}),
		cacheMgr:     cache.NewManager(),
		summaryCache: cache.NewLRUCache[SummaryResponse](cfg.SummaryCacheSize, cfg.SummaryCacheTTL),
	}

	s.cacheMgr.Register(s.summaryCache)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/transactions", s.handleTransactions)
	mux.HandleFunc("/api/budgets", s.rateLimited(s.handleCreateBudget))
	mux.HandleFunc("/api/goals", s.rateLimited(s.handleCreateGoal))
	mux.HandleFunc("/api/products/stats", s.handleProductStats)

	mux.HandleFunc("/api/analyze/receipt", s.rateLimited(s.handleAnalyzeReceipt))
	mux.HandleFunc("/api/analyze/audio", s.rateLimited(s.handleAnalyzeAudio))
	mux.HandleFunc("/api/analyze/file", s.rateLimited(s.handleAnalyzeFile))

	mux.HandleFunc("/api/auth/login", s.handleLogin)
	mux.HandleFunc("/api/auth/register", s.handleRegister)
	mux.HandleFunc("/api/auth/logout", s.handleLogout)
	mux.HandleFunc("/api/auth/session", s.handleSession)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	handler := headers.Middleware(
		trace.NewMiddleware().Middleware(
			applog.RequestLogger(logger)(mux)))

	s.Server = http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// rateLimited caps write traffic per client IP. Reads stay unmetered.
func (s *Server) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			clientIP := security.ExtractClientIP(r)
			if !s.limiter.Allow(clientIP) {
				s.logger.WarnContext(r.Context(), "Rate limit exceeded",
					applog.NewFields().
						WithClientIP(clientIP).
						WithHTTPRequest(r.Method, r.URL.Path).
						ToSlice()...)
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, _, err := s.kv.Get(ctx, ledger.DefaultKey); err != nil {
		s.logger.ErrorContext(ctx, "Readiness check failed", applog.FieldError, err.Error())
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("storage unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// invalidateSummary drops the cached summary for one month.
func (s *Server) invalidateSummary(month string) {
	s.summaryCache.Delete(month)
}

// invalidateAllSummaries drops every cached summary. Goal writes and
// analysis results can touch any month.
func (s *Server) invalidateAllSummaries() {
	s.summaryCache.Clear()
}

// Shutdown stops background routines before closing the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
