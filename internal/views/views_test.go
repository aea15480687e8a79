package views

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/log"
	"fintrack/internal/loop"
	"fintrack/internal/services"
	"fintrack/internal/store/memory"
)

type failingStore struct {
	*memory.Store
	fail bool
}

var errUnavailable = errors.New("unavailable")

func (s *failingStore) AppendTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if s.fail {
		return 0, errUnavailable
	}
	return s.Store.AppendTransaction(ctx, t)
}

func (s *failingStore) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	if s.fail {
		return nil, errUnavailable
	}
	return s.Store.ListTransactions(ctx)
}

func setup(t *testing.T) (*services.LedgerService, *events.Bus, *failingStore) {
	t.Helper()
	st := &failingStore{Store: memory.New()}
	bus := events.NewBus()
	svc := services.NewLedgerService(st, bus)
	_, err := svc.InitializeBudgets(context.Background())
	require.NoError(t, err)
	return svc, bus, st
}

func TestActivateFetchesAndTracksLoading(t *testing.T) {
	ctx := context.Background()
	svc, bus, _ := setup(t)
	v := NewBudgetsView(svc, bus, loop.Inline{}, nil)
	defer v.Close()

	var transitions []bool
	v.Watch(func(s State[[]core.BudgetWithSpent]) { transitions = append(transitions, s.Loading) })

	v.Activate(ctx)

	assert.Equal(t, []bool{true, false}, transitions)
	st := v.State()
	assert.False(t, st.Loading)
	assert.NoError(t, st.Err)
	assert.Len(t, st.Data, 6)
	assert.Equal(t, 1, bus.Len())
}

func TestActivateTwiceSubscribesOnce(t *testing.T) {
	svc, bus, _ := setup(t)
	v := NewTransactionsView(svc, bus, loop.Inline{}, nil)

	v.Activate(context.Background())
	v.Activate(context.Background())
	assert.Equal(t, 1, bus.Len())

	v.Close()
	assert.Equal(t, 0, bus.Len())
}

func TestViewsRefreshAfterAdd(t *testing.T) {
	ctx := context.Background()
	svc, bus, _ := setup(t)
	txView := NewTransactionsView(svc, bus, loop.Inline{}, nil)
	budgetsView := NewBudgetsView(svc, bus, loop.Inline{}, nil)
	txView.Activate(ctx)
	budgetsView.Activate(ctx)
	defer txView.Close()
	defer budgetsView.Close()

	before := budgetsView.Totals()

	ok, fields := txView.Add(ctx, core.TransactionInput{
		Title: "Coffee", Amount: "4.50", Category: "Food & Dining", PaymentMode: "cash",
	})
	require.True(t, ok)
	require.Nil(t, fields)

	txs := txView.State().Data
	require.Len(t, txs, 1)
	assert.Equal(t, "Coffee", txs[0].Title)
	assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("-4.50")))

	after := budgetsView.Totals()
	assert.True(t, after.TotalSpent.Sub(before.TotalSpent).Equal(decimal.RequireFromString("4.50")))
	assert.Equal(t, before.TotalLimit, after.TotalLimit)
}

func TestAddReturnsFieldErrors(t *testing.T) {
	ctx := context.Background()
	svc, bus, _ := setup(t)
	v := NewTransactionsView(svc, bus, loop.Inline{}, nil)
	v.Activate(ctx)
	defer v.Close()

	ok, fields := v.Add(ctx, core.TransactionInput{Title: "", Amount: "10", Category: "Food & Dining"})

	assert.False(t, ok)
	assert.Contains(t, fields, core.FieldTitle)
	assert.Empty(t, v.State().Data)
	assert.NoError(t, v.State().Err)
}

func TestAddStoreFailureSetsViewError(t *testing.T) {
	ctx := context.Background()
	svc, bus, st := setup(t)
	v := NewTransactionsView(svc, bus, loop.Inline{}, nil)
	v.Activate(ctx)
	defer v.Close()

	st.fail = true
	ok, fields := v.Add(ctx, core.TransactionInput{Title: "Coffee", Amount: "4.50", Category: "Food & Dining"})

	assert.False(t, ok)
	assert.Nil(t, fields)
	assert.ErrorIs(t, v.State().Err, errUnavailable)
}

func TestRefreshFailureKeepsDataAndRecovers(t *testing.T) {
	ctx := context.Background()
	svc, bus, st := setup(t)
	v := NewTransactionsView(svc, bus, loop.Inline{}, nil)
	v.Activate(ctx)
	defer v.Close()

	_, err := svc.AddTransaction(ctx, core.TransactionInput{Title: "Rent", Amount: "1200", Category: "Housing"})
	require.NoError(t, err)
	require.Len(t, v.State().Data, 1)

	st.fail = true
	failed := v.Refresh(ctx)
	assert.ErrorIs(t, failed.Err, errUnavailable)
	assert.False(t, failed.Loading)
	assert.Len(t, failed.Data, 1)

	st.fail = false
	ok := v.Refresh(ctx)
	assert.NoError(t, ok.Err)
	assert.Len(t, ok.Data, 1)
}

func TestRefreshIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, bus, _ := setup(t)
	for _, in := range []core.TransactionInput{
		{Title: "Coffee", Amount: "4.50", Category: "Food & Dining"},
		{Title: "Paycheck", Amount: "1000", Category: core.IncomeCategory},
		{Title: "Train", Amount: "12", Category: "Transportation", PaymentMode: "card"},
	} {
		_, err := svc.AddTransaction(ctx, in)
		require.NoError(t, err)
	}

	txView := NewTransactionsView(svc, bus, loop.Inline{}, nil)
	budgetsView := NewBudgetsView(svc, bus, loop.Inline{}, nil)

	first := txView.Refresh(ctx)
	second := txView.Refresh(ctx)
	assert.Equal(t, first.Data, second.Data)

	b1 := budgetsView.Refresh(ctx)
	b2 := budgetsView.Refresh(ctx)
	assert.Equal(t, b1.Data, b2.Data)
}

func TestClosedViewStopsRefreshing(t *testing.T) {
	ctx := context.Background()
	svc, bus, _ := setup(t)
	v := NewTransactionsView(svc, bus, loop.Inline{}, nil)
	v.Activate(ctx)
	v.Close()

	_, err := svc.AddTransaction(ctx, core.TransactionInput{Title: "Rent", Amount: "1200", Category: "Housing"})
	require.NoError(t, err)

	assert.Empty(t, v.State().Data)
}

func TestWatchCancel(t *testing.T) {
	svc, bus, _ := setup(t)
	v := NewBudgetsView(svc, bus, loop.Inline{}, nil)
	calls := 0
	cancel := v.Watch(func(State[[]core.BudgetWithSpent]) { calls++ })

	v.Refresh(context.Background())
	cancel()
	v.Refresh(context.Background())

	assert.Equal(t, 2, calls)
}

func TestViewsOnLoop(t *testing.T) {
	ctx := context.Background()
	svc, bus, _ := setup(t)
	l := loop.New(log.Nop())
	defer l.Close()

	v := NewBudgetsView(svc, bus, l, nil)
	v.Activate(ctx)
	defer v.Close()

	_, err := svc.AddTransaction(ctx, core.TransactionInput{Title: "Cinema", Amount: "250", Category: "Entertainment"})
	require.NoError(t, err)
	l.Flush()

	totals := v.Totals()
	assert.Equal(t, 1, totals.OverBudgetCount)
}

// gatedStore holds the first full listing after it has read the rows.
type gatedStore struct {
	*memory.Store
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func (g *gatedStore) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	txs, err := g.Store.ListTransactions(ctx)
	g.once.Do(func() {
		close(g.read)
		<-g.release
	})
	return txs, err
}

func TestBudgetsViewAddDuringRefresh(t *testing.T) {
	ctx := context.Background()
	st := &gatedStore{Store: memory.New(), read: make(chan struct{}), release: make(chan struct{})}
	bus := events.NewBus()
	svc := services.NewLedgerService(st, bus)
	_, err := svc.InitializeBudgets(ctx)
	require.NoError(t, err)

	l := loop.New(log.Nop())
	defer l.Close()
	v := NewBudgetsView(svc, bus, l, nil)
	v.Activate(ctx)
	defer v.Close()

	<-st.read
	added := make(chan error, 1)
	go func() {
		_, err := svc.AddTransaction(ctx, core.TransactionInput{Title: "Coffee", Amount: "4.50", Category: "Food & Dining"})
		added <- err
	}()
	require.NoError(t, <-added)
	close(st.release)
	l.Flush()

	state := v.State()
	require.NoError(t, state.Err)
	assert.False(t, state.Loading)
	require.NotEmpty(t, state.Data)
	assert.Equal(t, "Food & Dining", state.Data[0].Category)
	assert.True(t, state.Data[0].Spent.Equal(decimal.RequireFromString("4.50")), "spent = %s", state.Data[0].Spent)

	spent, err := svc.SpentByCategory(ctx, "Food & Dining")
	require.NoError(t, err)
	assert.True(t, spent.Equal(decimal.RequireFromString("4.50")))
}
