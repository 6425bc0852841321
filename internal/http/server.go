// Package http serves the finly JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"finly/internal/cache"
	"finly/internal/chat"
	"finly/internal/core"
	"finly/internal/health"
	"finly/internal/ledger"
	"finly/internal/log"
	"finly/internal/middleware/ratelimit"
	"finly/internal/middleware/security"
	"finly/internal/middleware/trace"
	"finly/internal/notify"
)

// Cache keys. Every derived view lives under one key; a change purges all.
const (
	keyBalance  = "balance"
	keyHealth   = "health"
	keyDebtFree = "debt_free"
)

// ReadyFunc reports whether the backing store is usable.
type ReadyFunc func(ctx context.Context) error

type Options struct {
	Logger             *log.Logger
	Advisor            *chat.Advisor
	Ready              ReadyFunc
	CacheTTL           time.Duration
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	ledger  *ledger.Ledger
	notes   *notify.Service
	advisor *chat.Advisor
	ready   ReadyFunc
	logger  *log.Logger

	limiter  *ratelimit.Limiter
	ips      *security.IPResolver
	tracer   *trace.Middleware
	caches   *cache.Manager
	balance  *cache.LRUCache[core.Balance]
	score    *cache.LRUCache[health.Result]
	debtFree *cache.LRUCache[core.DebtFreeProgress]

	unsubscribe  func()
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, l *ledger.Ledger, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.Advisor == nil {
		opts.Advisor = chat.NewAdvisor(nil, chat.WithLogger(opts.Logger))
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	logger := opts.Logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		ledger:   l,
		notes:    notify.NewService(l),
		advisor:  opts.Advisor,
		ready:    opts.Ready,
		logger:   logger,
		ips:      security.NewIPResolver(),
		caches:   cache.NewManager(opts.Logger),
		balance:  cache.NewLRUCache[core.Balance](1, opts.CacheTTL),
		score:    cache.NewLRUCache[health.Result](1, opts.CacheTTL),
		debtFree: cache.NewLRUCache[core.DebtFreeProgress](1, opts.CacheTTL),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
			Logger:            opts.Logger,
		}),
	}
	s.tracer = trace.NewMiddleware(opts.Logger, s.ips.ClientIP)
	s.caches.Register(s.balance, s.score, s.debtFree)
	s.caches.StartCleanup(opts.CacheTTL)
	s.unsubscribe = l.Bus().Subscribe(s.caches.PurgeAll)

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.ips.ClientIP, exemptFromLimit, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded, try again later"})
	})(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// exemptFromLimit keeps probes and the long-lived event stream out of the
// per-client budget.
func exemptFromLimit(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/readyz", "/api/events":
		return true
	}
	return false
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /api/transactions/months", s.handleTransactionMonths)
	mux.HandleFunc("GET /api/categories", s.handleCategories)

	mux.HandleFunc("GET /api/balance", s.handleBalance)
	mux.HandleFunc("GET /api/balance/banks", s.handleBalanceByBank)
	mux.HandleFunc("GET /api/reports/monthly", s.handleMonthlyReport)
	mux.HandleFunc("GET /api/reports/categories", s.handleCategoryReport)
	mux.HandleFunc("GET /api/reports/savings", s.handleSavingsReport)

	mux.HandleFunc("GET /api/goals", s.handleListGoals)
	mux.HandleFunc("POST /api/goals", s.handleCreateGoal)
	mux.HandleFunc("PATCH /api/goals/{id}", s.handleUpdateGoal)
	mux.HandleFunc("DELETE /api/goals/{id}", s.handleDeactivateGoal)
	mux.HandleFunc("GET /api/goals/{id}/progress", s.handleGoalProgress)
	mux.HandleFunc("POST /api/goals/{id}/deposits", s.handleDeposit)
	mux.HandleFunc("POST /api/goals/{id}/withdrawals", s.handleWithdraw)

	mux.HandleFunc("GET /api/debts", s.handleListDebts)
	mux.HandleFunc("POST /api/debts", s.handleCreateDebt)
	mux.HandleFunc("POST /api/debts/{id}/payments", s.handlePayDebt)
	mux.HandleFunc("GET /api/debts/overdue", s.handleOverdueDebts)
	mux.HandleFunc("GET /api/debts/upcoming", s.handleUpcomingDebts)
	mux.HandleFunc("GET /api/debts/progress", s.handleDebtFreeProgress)

	mux.HandleFunc("GET /api/health-score", s.handleHealthScore)
	mux.HandleFunc("GET /api/notifications", s.handleNotifications)
	mux.HandleFunc("POST /api/notifications/{id}/dismiss", s.handleDismissNotification)

	mux.HandleFunc("GET /api/banks", handleBanks)
	mux.HandleFunc("GET /api/banks/active", s.handleActiveBanks)
	mux.HandleFunc("PUT /api/banks/active", s.handleSetActiveBanks)

	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/events", s.handleEvents)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	})
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.unsubscribe()
		s.caches.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
