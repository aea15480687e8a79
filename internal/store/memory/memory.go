package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// Store keeps transactions, budgets and preferences in process memory.
// Ids are sequential per collection starting at 1.
type Store struct {
	mu      sync.Mutex
	txs     []core.Transaction
	budgets []core.Budget
	prefs   map[string]string
	now     func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{prefs: map[string]string{}, now: time.Now}
}

// NewFromFiles preloads budgets from base/seed_budgets.txt when present.
// Each line is "category,limit[,color[,icon]]"; blank lines and lines
// starting with # are skipped, duplicate categories keep the first entry.
func NewFromFiles(base string) (*Store, error) {
	s := New()
	lines := readLines(filepath.Join(base, "seed_budgets.txt"))
	if len(lines) == 0 {
		return s, nil
	}
	budgets := make([]core.Budget, 0, len(lines))
	for i, line := range lines {
		b, err := parseBudgetLine(line)
		if err != nil {
			return nil, fmt.Errorf("seed_budgets.txt line %d: %w", i+1, err)
		}
		budgets = append(budgets, b)
	}
	if _, err := s.AppendBudgets(context.Background(), dedupeBudgets(budgets)); err != nil {
		return nil, err
	}
	return s, nil
}

// WithClock overrides the CreatedAt source.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) AppendTransaction(_ context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = int64(len(s.txs) + 1)
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}
	s.txs = append(s.txs, t)
	return t.ID, nil
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	return s.filterTransactions(func(core.Transaction) bool { return true }), nil
}

func (s *Store) TransactionsByCategory(_ context.Context, category string) ([]core.Transaction, error) {
	return s.filterTransactions(func(t core.Transaction) bool { return t.Category == category }), nil
}

func (s *Store) TransactionsByPaymentMode(_ context.Context, mode core.PaymentMode) ([]core.Transaction, error) {
	return s.filterTransactions(func(t core.Transaction) bool { return t.PaymentMode == mode }), nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 1 || id > int64(len(s.txs)) {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, store.ErrNotFound)
	}
	return s.txs[id-1], nil
}

func (s *Store) filterTransactions(keep func(core.Transaction) bool) []core.Transaction {
	s.mu.Lock()
	out := make([]core.Transaction, 0, len(s.txs))
	for _, t := range s.txs {
		if keep(t) {
			out = append(out, t)
		}
	}
	s.mu.Unlock()
	core.SortTransactions(out)
	return out
}

func (s *Store) AppendBudgets(_ context.Context, budgets []core.Budget) ([]int64, error) {
	for _, b := range budgets {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("budget %q: %w", b.Category, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, len(budgets))
	for i, b := range budgets {
		b.ID = int64(len(s.budgets) + 1)
		s.budgets = append(s.budgets, b)
		ids[i] = b.ID
	}
	return ids, nil
}

func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Budget(nil), s.budgets...), nil
}

func (s *Store) BudgetsByCategory(_ context.Context, category string) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Budget
	for _, b := range s.budgets {
		if b.Category == category {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Store) CountBudgets(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.budgets), nil
}

func (s *Store) GetPreference(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.prefs[key]
	return v, ok, nil
}

func (s *Store) SetPreference(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[key] = value
	return nil
}

func (s *Store) Close() error { return nil }

func parseBudgetLine(line string) (core.Budget, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 2 {
		return core.Budget{}, fmt.Errorf("expected category,limit: %q", line)
	}
	limit, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return core.Budget{}, fmt.Errorf("invalid limit %q: %w", parts[1], err)
	}
	b := core.Budget{Category: strings.TrimSpace(parts[0]), Limit: limit}
	if len(parts) > 2 {
		b.Color = strings.TrimSpace(parts[2])
	}
	if len(parts) > 3 {
		b.IconName = strings.TrimSpace(parts[3])
	}
	return b, nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

func dedupeBudgets(in []core.Budget) []core.Budget {
	seen := map[string]struct{}{}
	out := make([]core.Budget, 0, len(in))
	for _, b := range in {
		if _, ok := seen[b.Category]; ok {
			continue
		}
		seen[b.Category] = struct{}{}
		out = append(out, b)
	}
	// Preserve input order.
	return out
}
