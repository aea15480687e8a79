package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
		"clients":   s.hub.ClientCount(),
	})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	txs, err := s.ledger.Transactions(ctx)
	if err != nil {
		s.internalError(w, r, "Failed to list transactions", err, log.OpList)
		return
	}

	params := ParseListParams(r.URL.Query())
	filtered := core.FilterTransactions(txs, params.Kind, params.Search)
	writeJSON(w, r, http.StatusOK, map[string]any{
		"transactions": toTransactionsJSON(filtered),
		"count":        len(filtered),
	})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		if errors.Is(err, errBodyTooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}

	t, err := s.ledger.AddTransaction(ctx, parser.TransactionInput())
	if err != nil {
		var ve *core.ValidationError
		if errors.As(err, &ve) {
			writeValidationError(w, r, ve.Fields)
			return
		}
		s.internalError(w, r, "Failed to create transaction", err, log.OpCreate)
		return
	}

	writeJSON(w, r, http.StatusCreated, toTransactionJSON(t))
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ledger.BudgetStats(r.Context())
	if err != nil {
		s.internalError(w, r, "Failed to load budgets", err, log.OpList)
		return
	}
	writeJSON(w, r, http.StatusOK, toBudgetsResponse(stats))
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.ledger.Categories(r.Context())
	if err != nil {
		s.internalError(w, r, "Failed to load categories", err, log.OpList)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"categories":   cats,
		"paymentModes": core.PaymentModes(),
	})
}

// handleCategorySpent reports the spent amount of any category. Categories
// without expenses report zero.
func (s *Server) handleCategorySpent(w http.ResponseWriter, r *http.Request) {
	category := sanitizeInput(r.PathValue("category"))
	if category == "" {
		writeError(w, r, http.StatusBadRequest, "category is required")
		return
	}

	spent, err := s.ledger.SpentByCategory(r.Context(), category)
	if err != nil {
		s.internalError(w, r, "Failed to compute spent amount", err, log.OpList)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{
		"category": category,
		"spent":    spent.StringFixed(2),
	})
}

func (s *Server) handleAdvisor(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	message := parser.Get("message")
	if message == "" {
		writeValidationError(w, r, core.FieldErrors{"message": "Message is required"})
		return
	}

	reply, err := s.advisor.Reply(r.Context(), message)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// client went away
			return
		}
		s.internalError(w, r, "Advisor failed", err, "")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"reply": reply})
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := s.themes.Current(r.Context())
	if err != nil {
		s.internalError(w, r, "Failed to read theme", err, "")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"theme": string(theme)})
}

// handleSetTheme stores the theme named in the body, or toggles the current
// one when the body names none.
func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}

	var (
		theme services.Theme
		err   error
	)
	if name := strings.ToLower(parser.Get("theme")); name == "" {
		theme, err = s.themes.Toggle(ctx)
	} else {
		theme, err = services.ParseTheme(name)
		if err != nil {
			writeValidationError(w, r, core.FieldErrors{"theme": "Theme must be light or dark"})
			return
		}
		err = s.themes.Set(ctx, theme)
	}
	if err != nil {
		s.internalError(w, r, "Failed to save theme", err, "")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"theme": string(theme)})
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg string, err error, operation string) {
	log.NewEvents(log.FromContext(r.Context())).Failure(r.Context(), msg, err, operation)
	writeError(w, r, http.StatusInternalServerError, "internal error")
}
