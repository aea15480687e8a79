// Package http exposes the ledger as a JSON API with a websocket stream of
// change events.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	"fintrack/internal/views"
)

// Ledger is the part of the ledger service the API uses.
type Ledger interface {
	Transactions(ctx context.Context) ([]core.Transaction, error)
	AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
	BudgetStats(ctx context.Context) ([]core.BudgetWithSpent, error)
	SpentByCategory(ctx context.Context, category string) (decimal.Decimal, error)
	Categories(ctx context.Context) ([]string, error)
}

// Themes reads and changes the stored theme preference.
type Themes interface {
	Current(ctx context.Context) (services.Theme, error)
	Set(ctx context.Context, theme services.Theme) error
	Toggle(ctx context.Context) (services.Theme, error)
}

// Advisor answers chat messages.
type Advisor interface {
	Reply(ctx context.Context, message string) (string, error)
}

// Config holds the listener and throttling settings.
type Config struct {
	Addr           string
	RateLimitRPS   float64
	RateLimitBurst int
	AllowedOrigins []string
}

// Deps are the services behind the API. Bus and Budgets are optional: without
// them the websocket stream carries no events or snapshots.
type Deps struct {
	Ledger  Ledger
	Themes  Themes
	Advisor Advisor
	Bus     views.Subscriber
	Budgets *views.BudgetsView
}

// Server is an http.Server with the API routes mounted.
type Server struct {
	http.Server

	ledger   Ledger
	themes   Themes
	advisor  Advisor
	bus      views.Subscriber
	budgets  *views.BudgetsView
	hub      *Hub
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	upgrader websocket.Upgrader
	logger   *log.Logger
	started  time.Time

	subID        string
	stopWatch    func()
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware and subscribes the websocket hub to
// the bus. Shutdown releases everything.
func NewServer(cfg Config, deps Deps, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Nop()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		ledger:   deps.Ledger,
		themes:   deps.Themes,
		advisor:  deps.Advisor,
		bus:      deps.Bus,
		budgets:  deps.Budgets,
		hub:      NewHub(logger),
		detector: security.NewDetector(),
		logger:   logger,
		started:  time.Now(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
			Logger:            logger.WithComponent(log.ComponentHTTP),
		}),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ClientIP)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/budgets", s.handleBudgets)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/categories/{category}/spent", s.handleCategorySpent)
	mux.HandleFunc("POST /api/advisor", s.handleAdvisor)
	mux.HandleFunc("GET /api/theme", s.handleGetTheme)
	mux.HandleFunc("POST /api/theme", s.handleSetTheme)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ClientIP, ratelimit.WritesOnly, s.onRateLimited)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.flagSuspicious(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.streamChanges()
	return s
}

// streamChanges forwards bus events and budget snapshots to the hub.
func (s *Server) streamChanges() {
	if s.bus != nil {
		s.subID = s.bus.Subscribe(func(e events.Event) {
			s.hub.Broadcast(string(e.Type), e)
		})
	}
	if s.budgets != nil {
		s.stopWatch = s.budgets.Watch(func(st views.State[[]core.BudgetWithSpent]) {
			if st.Loading || st.Err != nil {
				return
			}
			s.hub.Broadcast(MessageBudgetsSnapshot, toBudgetsResponse(st.Data))
		})
	}
}

func (s *Server) flagSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.IsSuspicious(r) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request",
				log.FieldMethod, r.Method, log.FieldPath, r.URL.Path, log.FieldClientIP, s.detector.ClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request, retry time.Duration) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ClientIP(r), log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
	writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded, retry in "+retry.String())
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.subID != "" {
			s.bus.Unsubscribe(s.subID)
		}
		if s.stopWatch != nil {
			s.stopWatch()
		}
		s.limiter.Stop()
		s.hub.Close()

		shutdownErr = s.Server.Shutdown(ctx)
		s.logger.Info("HTTP server stopped", log.FieldOperation, log.OpShutdown)
	})

	return shutdownErr
}
