package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"saga/internal/core"
	"saga/internal/log"
	"saga/internal/middleware/ratelimit"
	"saga/internal/middleware/security"
	"saga/internal/middleware/trace"
	"saga/internal/services"
)

// LedgerAPI is the ledger behaviour served over HTTP.
type LedgerAPI interface {
	Ledger() *core.Ledger
	Overview() services.Overview
	CurrentMonthSummary() (core.MonthlyData, bool)
	PreviousMonthSummary() (core.MonthlyData, bool)
	MonthNavigation() core.MonthNavigation
	BudgetProgress(month string) (core.BudgetReport, error)
	SpendingByCategory(month string) ([]core.CategoryAmount, error)
	SavingsOverview() core.SavingsOverview
	DebtOverview() core.DebtOverview
	RecentTransactions(n int) []core.Transaction
	AvailableBudgetCategories() []core.Category
	ListTransactions(f services.TransactionFilter) ([]core.Transaction, error)

	AddTransaction(ctx context.Context, in core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, in core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	AddBudget(ctx context.Context, in core.Budget) (core.Budget, error)
	UpdateBudget(ctx context.Context, id string, in core.Budget) (core.Budget, error)
	DeleteBudget(ctx context.Context, id string) error
	AddSavingsGoal(ctx context.Context, in core.SavingsGoal) (core.SavingsGoal, error)
	UpdateSavingsGoal(ctx context.Context, id string, in core.SavingsGoal) (core.SavingsGoal, error)
	DeleteSavingsGoal(ctx context.Context, id string) error
	ContributeSavings(ctx context.Context, id string, amount core.Money) (core.SavingsGoal, core.Transaction, error)
	AddDebt(ctx context.Context, in core.Debt) (core.Debt, error)
	UpdateDebt(ctx context.Context, id string, in core.Debt) (core.Debt, error)
	DeleteDebt(ctx context.Context, id string) error
	MakeDebtPayment(ctx context.Context, id string, amount core.Money) (core.Debt, core.Transaction, error)
	MarkDebtComplete(ctx context.Context, id string) (core.Debt, error)
	AddCategory(ctx context.Context, in core.Category) (core.Category, error)
	UpdateCategory(ctx context.Context, id string, in core.Category) (core.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	SetSelectedMonth(ctx context.Context, month string) error
	Reset(ctx context.Context) (*core.Ledger, error)
}

// ReadinessCheck reports whether a dependency can serve requests.
type ReadinessCheck func(ctx context.Context) error

// Config wires a Server.
type Config struct {
	Addr      string
	Ledger    LedgerAPI
	Logger    *log.Logger
	RateLimit ratelimit.Config
	Ready     ReadinessCheck
}

type Server struct {
	http.Server
	ledger   LedgerAPI
	logger   *log.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	ready    ReadinessCheck

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		ledger:   cfg.Ledger,
		logger:   logger,
		limiter:  ratelimit.NewLimiter(cfg.RateLimit),
		detector: security.NewDetector(),
		ready:    cfg.Ready,
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/ledger", s.handleLedger)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("PUT /api/selected-month", s.handleSetSelectedMonth)
	mux.HandleFunc("POST /api/reset", s.handleReset)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleAddTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("GET /api/budgets/progress", s.handleBudgetProgress)
	mux.HandleFunc("GET /api/budgets/available-categories", s.handleAvailableBudgetCategories)
	mux.HandleFunc("POST /api/budgets", s.handleAddBudget)
	mux.HandleFunc("PUT /api/budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /api/budgets/{id}", s.handleDeleteBudget)

	mux.HandleFunc("GET /api/goals", s.handleListGoals)
	mux.HandleFunc("POST /api/goals", s.handleAddGoal)
	mux.HandleFunc("PUT /api/goals/{id}", s.handleUpdateGoal)
	mux.HandleFunc("DELETE /api/goals/{id}", s.handleDeleteGoal)
	mux.HandleFunc("POST /api/goals/{id}/contributions", s.handleContribute)

	mux.HandleFunc("GET /api/debts", s.handleListDebts)
	mux.HandleFunc("POST /api/debts", s.handleAddDebt)
	mux.HandleFunc("PUT /api/debts/{id}", s.handleUpdateDebt)
	mux.HandleFunc("DELETE /api/debts/{id}", s.handleDeleteDebt)
	mux.HandleFunc("POST /api/debts/{id}/payments", s.handleDebtPayment)
	mux.HandleFunc("POST /api/debts/{id}/complete", s.handleCompleteDebt)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleAddCategory)
	mux.HandleFunc("PUT /api/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/reports/spending", s.handleSpending)
	mux.HandleFunc("GET /api/reports/overview", s.handleOverview)

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("No such endpoint").Write(w)
	})

	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		TooManyRequestsError().Write(w)
	})(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	return s.tracer.Middleware(h)
}

// Shutdown stops accepting requests, waits for in-flight ones and stops the limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ledger.Ledger() == nil {
		ErrorResponse(&core.UnavailableError{Reason: "not loaded"}).Write(w)
		return
	}
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.WarnContext(ctx, "Readiness check failed", log.FieldError, err)
			NewJSONResponse().Status(http.StatusServiceUnavailable).
				Fail(KindUnavailable, "Storage unavailable", "").Write(w)
			return
		}
	}
	NewJSONResponse().Data(map[string]string{"status": "ready"}).Write(w)
}
