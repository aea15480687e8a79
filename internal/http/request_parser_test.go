package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"fintrack/internal/core"
)

func TestParseListParams(t *testing.T) {
	tests := []struct {
		name       string
		query      url.Values
		wantKind   core.TransactionKind
		wantSearch string
	}{
		{"defaults", url.Values{}, core.KindAll, ""},
		{"income", url.Values{"kind": {"income"}}, core.KindIncome, ""},
		{"expense uppercase", url.Values{"kind": {" EXPENSE "}}, core.KindExpense, ""},
		{"unknown kind", url.Values{"kind": {"transfers"}}, core.KindAll, ""},
		{"search trimmed", url.Values{"search": {"  coffee\t"}}, core.KindAll, "coffee"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseListParams(tt.query)
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", got.Kind, tt.wantKind)
			}
			if got.Search != tt.wantSearch {
				t.Errorf("Search = %q, want %q", got.Search, tt.wantSearch)
			}
		})
	}
}

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"title": "Coffee", "amount": 4.5, "category": "Food & Dining", "paymentMode": "card"}`
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}

	in := parser.TransactionInput()
	want := core.TransactionInput{Title: "Coffee", Amount: "4.5", Category: "Food & Dining", PaymentMode: "card"}
	if in != want {
		t.Errorf("TransactionInput() = %+v, want %+v", in, want)
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := "title=Paycheck&amount=1000&category=Income&paymentMode=bank&date=2024-03-15"
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}

	in := parser.TransactionInput()
	if in.Title != "Paycheck" || in.Amount != "1000" || in.Date != "2024-03-15" {
		t.Errorf("TransactionInput() = %+v", in)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(""))

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
}

func TestRequestBodyParser_Errors(t *testing.T) {
	bad := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"title":`))
	if err := NewRequestBodyParser(bad).Parse(); err == nil {
		t.Error("expected error for malformed JSON")
	}

	big := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader("title="+strings.Repeat("x", maxBodyBytes)))
	if err := NewRequestBodyParser(big).Parse(); err != errBodyTooLarge {
		t.Errorf("Parse() error = %v, want errBodyTooLarge", err)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := map[string]string{
		"  plain  ":      "plain",
		"tab\tinside":    "tabinside",
		"bell\a":         "bell",
		"Food & Dining":  "Food & Dining",
		"":               "",
	}
	for in, want := range tests {
		if got := sanitizeInput(in); got != want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", in, got, want)
		}
	}
}
