package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// fakeSheets serves the handful of Values endpoints the client uses.
type fakeSheets struct {
	mu       sync.Mutex
	rows     [][]any
	gets     int
	header   []any
	appended int
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.rows = append(f.rows, vr.Values...)
		f.appended++
		json.NewEncoder(w).Encode(map[string]any{
			"updates": map[string]any{"updatedRange": "Transactions!A2:F2", "updatedRows": 1},
		})
	case r.Method == http.MethodPut:
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.header = vr.Values[0]
		json.NewEncoder(w).Encode(map[string]any{"updatedRows": 1})
	case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "A1:F1"):
		values := [][]any{}
		if f.header != nil {
			values = append(values, f.header)
		}
		json.NewEncoder(w).Encode(map[string]any{"values": values})
	case r.Method == http.MethodGet:
		f.gets++
		values := [][]any{{"ID"}}
		for _, row := range f.rows {
			values = append(values, []any{row[0]})
		}
		json.NewEncoder(w).Encode(map[string]any{"values": values})
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T) (*Client, *fakeSheets) {
	t.Helper()
	fake := &fakeSheets{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Config{SpreadsheetID: "sheet-1"}, log.Nop(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c, fake
}

func coffee(id int64) core.Transaction {
	return core.Transaction{
		ID:          id,
		Title:       "Coffee",
		Amount:      decimal.RequireFromString("-4.50"),
		Date:        core.NewDate(2025, 3, 14),
		Category:    "Food & Dining",
		PaymentMode: core.PaymentCash,
	}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{}, log.Nop())
	if err == nil || !strings.Contains(err.Error(), "GOOGLE_SPREADSHEET_ID") {
		t.Errorf("New() error = %v, want missing spreadsheet id", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Config{SpreadsheetID: "x"}, log.Nop())
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("New() error = %v, want missing credentials", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "x", CredentialsFile: "/nonexistent/key.json"}, log.Nop())
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Errorf("New() error = %v, want file read error", err)
	}
}

func TestNew_DefaultSheetName(t *testing.T) {
	c, _ := newTestClient(t)
	if c.sheetName != defaultSheetName {
		t.Errorf("sheetName = %q, want %q", c.sheetName, defaultSheetName)
	}
}

func TestAppendTransaction(t *testing.T) {
	c, fake := newTestClient(t)

	ref, err := c.AppendTransaction(context.Background(), coffee(9))
	if err != nil {
		t.Fatalf("AppendTransaction() error = %v", err)
	}
	if ref != "Transactions!A2:F2" {
		t.Errorf("ref = %q, want Transactions!A2:F2", ref)
	}

	if len(fake.rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(fake.rows))
	}
	row := fake.rows[0]
	if len(row) != 6 {
		t.Fatalf("row has %d columns, want 6", len(row))
	}
	if row[1] != "2025-03-14" || row[2] != "Coffee" || row[3] != "Food & Dining" || row[4] != "cash" || row[5] != "-4.50" {
		t.Errorf("row = %v", row)
	}
}

func TestAppendTransaction_Invalid(t *testing.T) {
	c, fake := newTestClient(t)

	tx := coffee(1)
	tx.Title = " "
	if _, err := c.AppendTransaction(context.Background(), tx); err == nil {
		t.Error("AppendTransaction() should reject an empty title")
	}
	if fake.appended != 0 {
		t.Errorf("appended = %d, want 0", fake.appended)
	}
}

func TestMirroredIDs_CachesAndTracksAppends(t *testing.T) {
	ctx := context.Background()
	c, fake := newTestClient(t)

	if _, err := c.AppendTransaction(ctx, coffee(1)); err != nil {
		t.Fatal(err)
	}

	ids, err := c.MirroredIDs(ctx)
	if err != nil {
		t.Fatalf("MirroredIDs() error = %v", err)
	}
	if _, ok := ids[1]; !ok {
		t.Errorf("MirroredIDs() = %v, want id 1", ids)
	}

	if _, err := c.AppendTransaction(ctx, coffee(2)); err != nil {
		t.Fatal(err)
	}
	ids, err = c.MirroredIDs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ids[2]; !ok {
		t.Errorf("MirroredIDs() = %v, want id 2 from cache", ids)
	}
	if fake.gets != 1 {
		t.Errorf("sheet reads = %d, want 1", fake.gets)
	}

	c.InvalidateIDCache()
	if _, err := c.MirroredIDs(ctx); err != nil {
		t.Fatal(err)
	}
	if fake.gets != 2 {
		t.Errorf("sheet reads after invalidate = %d, want 2", fake.gets)
	}
}

func TestMirroredIDs_CacheExpires(t *testing.T) {
	ctx := context.Background()
	c, fake := newTestClient(t)
	c.cacheValidDuration = 50 * time.Millisecond

	if _, err := c.MirroredIDs(ctx); err != nil {
		t.Fatal(err)
	}
	time.Sleep(80 * time.Millisecond)
	if _, err := c.MirroredIDs(ctx); err != nil {
		t.Fatal(err)
	}
	if fake.gets != 2 {
		t.Errorf("sheet reads = %d, want 2 after expiry", fake.gets)
	}
}

func TestEnsureHeader(t *testing.T) {
	ctx := context.Background()
	c, fake := newTestClient(t)

	if err := c.EnsureHeader(ctx); err != nil {
		t.Fatalf("EnsureHeader() error = %v", err)
	}
	if len(fake.header) != 6 || fake.header[0] != "ID" || fake.header[5] != "Amount" {
		t.Errorf("header = %v", fake.header)
	}

	fake.header = []any{"Existing"}
	if err := c.EnsureHeader(ctx); err != nil {
		t.Fatal(err)
	}
	if fake.header[0] != "Existing" {
		t.Errorf("EnsureHeader() overwrote an existing header: %v", fake.header)
	}
}
