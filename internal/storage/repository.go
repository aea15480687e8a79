package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"

	_ "modernc.org/sqlite"
)

const transactionColumns = "id, title, amount, date, category, payment_mode, created_at"

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ store.Store = (*SQLiteRepository)(nil)

// logger resolves the process default on each call so SetDefault applies.
func logger() *log.Logger { return log.Default(log.ComponentStorage) }

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection serializes writers; SQLite allows one at a time anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := MigrateUp(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger().Debug("Schema up to date", "db_path", dbPath, "version", version)

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// AppendTransaction implements store.TransactionWriter
func (r *SQLiteRepository) AppendTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = r.now()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (title, amount, date, category, payment_mode, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.Title, t.Amount.String(), t.Date.ISO(), t.Category, string(t.PaymentMode),
		t.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read transaction id: %w", err)
	}

	logger().DebugContext(ctx, "Transaction saved to SQLite",
		log.FieldTransactionID, id,
		log.FieldCategory, t.Category,
		log.FieldAmount, t.Amount.String())

	return id, nil
}

// ListTransactions implements store.TransactionReader
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return r.queryTransactions(ctx, "SELECT "+transactionColumns+" FROM transactions ORDER BY date DESC, id DESC")
}

func (r *SQLiteRepository) TransactionsByCategory(ctx context.Context, category string) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE category = ? ORDER BY date DESC, id DESC", category)
}

func (r *SQLiteRepository) TransactionsByPaymentMode(ctx context.Context, mode core.PaymentMode) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE payment_mode = ? ORDER BY date DESC, id DESC", string(mode))
}

// GetTransaction retrieves a single transaction by ID
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction by id: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (core.Transaction, error) {
	var t core.Transaction
	var amount, date, mode, created string
	if err := s.Scan(&t.ID, &t.Title, &amount, &date, &t.Category, &mode, &created); err != nil {
		return core.Transaction{}, err
	}

	var err error
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", amount, err)
	}
	if t.Date, err = core.ParseDate(date); err != nil {
		return core.Transaction{}, fmt.Errorf("date %q: %w", date, err)
	}
	if t.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return core.Transaction{}, fmt.Errorf("created_at %q: %w", created, err)
	}
	t.PaymentMode = core.PaymentMode(mode)
	return t, nil
}

// AppendBudgets implements store.BudgetStore. All rows are written in one
// database transaction.
func (r *SQLiteRepository) AppendBudgets(ctx context.Context, budgets []core.Budget) ([]int64, error) {
	for _, b := range budgets {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("budget %q: %w", b.Category, err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin budget insert: %w", err)
	}
	defer tx.Rollback()

	ids := make([]int64, 0, len(budgets))
	for _, b := range budgets {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO budgets (category, limit_amt, color, icon_name) VALUES (?, ?, ?, ?)",
			b.Category, b.Limit.String(), b.Color, b.IconName)
		if err != nil {
			return nil, fmt.Errorf("insert budget %q: %w", b.Category, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("read budget id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit budgets: %w", err)
	}

	logger().InfoContext(ctx, "Budgets saved to SQLite", log.FieldCount, len(ids))
	return ids, nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	return r.queryBudgets(ctx, "SELECT id, category, limit_amt, color, icon_name FROM budgets ORDER BY id")
}

func (r *SQLiteRepository) BudgetsByCategory(ctx context.Context, category string) ([]core.Budget, error) {
	return r.queryBudgets(ctx,
		"SELECT id, category, limit_amt, color, icon_name FROM budgets WHERE category = ? ORDER BY id", category)
}

func (r *SQLiteRepository) CountBudgets(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM budgets").Scan(&n); err != nil {
		return 0, fmt.Errorf("count budgets: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) queryBudgets(ctx context.Context, query string, args ...any) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var (
			b     core.Budget
			limit string
		)
		if err := rows.Scan(&b.ID, &b.Category, &limit, &b.Color, &b.IconName); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		if b.Limit, err = decimal.NewFromString(limit); err != nil {
			return nil, fmt.Errorf("budget %d limit %q: %w", b.ID, limit, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetPreference(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM preferences WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get preference %s: %w", key, err)
	}
	return v, true, nil
}

func (r *SQLiteRepository) SetPreference(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO preferences (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set preference %s: %w", key, err)
	}
	return nil
}
