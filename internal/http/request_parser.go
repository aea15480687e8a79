package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"fintrack/internal/core"
)

// maxBodyBytes caps every request body the API reads.
const maxBodyBytes = 64 << 10

var errBodyTooLarge = errors.New("request body too large")

// ListParams holds the transaction list filters.
type ListParams struct {
	Kind   core.TransactionKind
	Search string
}

// ParseListParams reads kind and search from the query string. Unknown
// kinds fall back to all.
func ParseListParams(query url.Values) ListParams {
	params := ListParams{Kind: core.KindAll, Search: sanitizeInput(query.Get("search"))}
	switch k := core.TransactionKind(strings.ToLower(strings.TrimSpace(query.Get("kind")))); k {
	case core.KindIncome, core.KindExpense:
		params.Kind = k
	}
	return params
}

// RequestBodyParser handles both JSON and form-encoded request bodies.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once, up to maxBodyBytes.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body == nil {
		return p
	}

	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = errBodyTooLarge
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if strings.HasPrefix(trimmed, "{") {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	// Fall back to form parsing
	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// TransactionInput maps the body fields onto a form submission. Validation
// is left to the ledger.
func (p *RequestBodyParser) TransactionInput() core.TransactionInput {
	return core.TransactionInput{
		Title:       p.Get(core.FieldTitle),
		Amount:      p.Get(core.FieldAmount),
		Category:    p.Get(core.FieldCategory),
		PaymentMode: p.Get(core.FieldPaymentMode),
		Date:        p.Get(core.FieldDate),
	}
}

// stringValue converts a decoded JSON value to string.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput trims s and drops control characters.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s))
}
