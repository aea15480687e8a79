package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

const (
	defaultSpentCacheSize = 64
	spentCacheTTL         = 5 * time.Minute
)

// ChangeFeed forwards created transactions to other processes.
type ChangeFeed interface {
	PublishTransactionCreated(ctx context.Context, t core.Transaction) error
	Close() error
}

// LedgerService is the single mutation entry point over the record store.
// Every successful write is announced on the change bus.
type LedgerService struct {
	store     store.Store
	bus       events.Publisher
	feed      ChangeFeed
	spent     *cache.LRU[string, decimal.Decimal]
	spentSize int
	strict    bool
	now       func() time.Time
	logger    *log.Logger
}

type Option func(*LedgerService)

// WithChangeFeed publishes created transactions to feed.
func WithChangeFeed(feed ChangeFeed) Option {
	return func(s *LedgerService) { s.feed = feed }
}

// WithStrictCategories rejects categories that match no budget.
func WithStrictCategories(strict bool) Option {
	return func(s *LedgerService) { s.strict = strict }
}

// WithClock sets the clock used for transaction dates and spent cache
// expiry.
func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

func WithSpentCacheSize(size int) Option {
	return func(s *LedgerService) {
		if size > 0 {
			s.spentSize = size
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(s *LedgerService) { s.logger = logger.WithComponent(log.ComponentLedger) }
}

func NewLedgerService(st store.Store, bus events.Publisher, opts ...Option) *LedgerService {
	if bus == nil {
		bus = events.NoOpPublisher{}
	}
	s := &LedgerService{
		store:     st,
		bus:       bus,
		spentSize: defaultSpentCacheSize,
		now:       time.Now,
		logger:    log.Default(log.ComponentLedger),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.spent = cache.NewLRU[string, decimal.Decimal](s.spentSize, spentCacheTTL).WithClock(s.now)
	return s
}

// AddTransaction validates in, normalizes the amount sign and appends the
// record. Validation failures return a *core.ValidationError and leave the
// store untouched.
func (s *LedgerService) AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	var known core.CategoryResolver
	var lookupErr error
	if s.strict {
		known = func(category string) bool {
			bs, err := s.store.BudgetsByCategory(ctx, category)
			if err != nil {
				lookupErr = err
				return false
			}
			return len(bs) > 0
		}
	}

	t, fields := core.BuildTransaction(in, s.now(), known)
	if lookupErr != nil {
		return core.Transaction{}, fmt.Errorf("look up category: %w", lookupErr)
	}
	if len(fields) > 0 {
		s.logger.DebugContext(ctx, "Transaction rejected", log.FieldOperation, log.OpValidate, "fields", len(fields))
		return core.Transaction{}, &core.ValidationError{Fields: fields}
	}

	// Save first, everything after is best effort
	id, err := s.store.AppendTransaction(ctx, t)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save transaction", log.FieldError, err)
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	t.ID = id

	log.NewEvents(s.logger).TransactionCreated(ctx, t.ID, t.Title, t.Amount.String(), t.Category, string(t.PaymentMode))

	s.spent.Clear()
	s.bus.Publish(events.New(events.TransactionCreated, t.ID, t.Category))

	if err := s.publishCreated(ctx, t); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish change message",
			log.FieldTransactionID, t.ID, log.FieldError, err)
		// Don't fail the request, the transaction is saved locally
	}

	return t, nil
}

func (s *LedgerService) publishCreated(ctx context.Context, t core.Transaction) error {
	if s.feed == nil {
		s.logger.DebugContext(ctx, "Change feed not configured, skipping message")
		return nil
	}
	return s.feed.PublishTransactionCreated(ctx, t)
}

// InitializeBudgets stores the default budgets when none exist and
// reports how many were added.
func (s *LedgerService) InitializeBudgets(ctx context.Context) (int, error) {
	n, err := s.store.CountBudgets(ctx)
	if err != nil {
		return 0, fmt.Errorf("count budgets: %w", err)
	}
	if n > 0 {
		s.logger.DebugContext(ctx, "Budgets already present, skipping seed", log.FieldCount, n)
		return 0, nil
	}

	ids, err := s.store.AppendBudgets(ctx, core.DefaultBudgets())
	if err != nil {
		return 0, fmt.Errorf("seed budgets: %w", err)
	}
	s.logger.InfoContext(ctx, "Default budgets seeded", log.FieldOperation, log.OpSeed, log.FieldCount, len(ids))

	s.spent.Clear()
	s.bus.Publish(events.New(events.BudgetsSeeded, 0, ""))
	return len(ids), nil
}

func (s *LedgerService) Transactions(ctx context.Context) ([]core.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (s *LedgerService) Transaction(ctx context.Context, id int64) (core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

func (s *LedgerService) Budgets(ctx context.Context) ([]core.Budget, error) {
	bs, err := s.store.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return bs, nil
}

// Categories returns the budget categories followed by Income, the
// choices offered when adding a transaction.
func (s *LedgerService) Categories(ctx context.Context) ([]string, error) {
	bs, err := s.Budgets(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(bs)+1)
	for _, b := range bs {
		out = append(out, b.Category)
	}
	return append(out, core.IncomeCategory), nil
}

// SpentByCategory sums expenses recorded under category.
func (s *LedgerService) SpentByCategory(ctx context.Context, category string) (decimal.Decimal, error) {
	if v, ok := s.spent.Get(category); ok {
		return v, nil
	}
	// A write landing during the scan clears the cache and bumps the
	// generation; the stale sum is then returned but not kept.
	gen := s.spent.Generation()
	txs, err := s.store.TransactionsByCategory(ctx, category)
	if err != nil {
		return decimal.Zero, fmt.Errorf("transactions for %q: %w", category, err)
	}
	v := core.SpentByCategory(txs, category)
	if !s.spent.SetIf(category, v, gen) {
		s.logger.DebugContext(ctx, "Spent total superseded by a write, not cached", "category", category)
	}
	return v, nil
}

// BudgetStats pairs every budget with its spent amount, in budget order.
// Budgets and transactions are read once each.
func (s *LedgerService) BudgetStats(ctx context.Context) ([]core.BudgetWithSpent, error) {
	bs, err := s.Budgets(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := s.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	return core.BudgetStats(bs, txs), nil
}

func (s *LedgerService) Totals(ctx context.Context) (core.Totals, error) {
	stats, err := s.BudgetStats(ctx)
	if err != nil {
		return core.Totals{}, err
	}
	return core.ComputeTotals(stats), nil
}

// Close closes both the store and the change feed
func (s *LedgerService) Close() error {
	var errs []error

	if s.spent != nil {
		expired := s.spent.Prune()
		st := s.spent.Stats()
		s.logger.Debug("Spent cache stats", "hits", st.Hits, "misses", st.Misses,
			"evictions", st.Evictions, "expired", expired, "live", s.spent.Len())
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}

	if s.feed != nil {
		if err := s.feed.Close(); err != nil {
			errs = append(errs, fmt.Errorf("change feed: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close ledger service: %w", err)
	}
	return nil
}
