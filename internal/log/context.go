package log

import (
	"context"
	"log/slog"
	"net/http"
)

type contextKey struct{}

// IntoContext returns a copy of ctx carrying logger.
func IntoContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger stored by IntoContext, or the default
// logger under the http component.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(contextKey{}).(*Logger); ok {
		return logger
	}
	return Default(ComponentHTTP)
}

// Events groups the log lines whose shape is shared across packages.
type Events struct {
	logger *Logger
}

func NewEvents(logger *Logger) *Events {
	return &Events{logger: logger}
}

func (e *Events) HTTPStart(ctx context.Context, r *http.Request, clientIP string) {
	f := Fields{}.Request(r.Method, r.URL.Path, r.UserAgent()).Add(FieldClientIP, clientIP)
	e.logger.DebugContext(ctx, "HTTP request started", f...)
}

// HTTPEnd logs at warn for 4xx and error for 5xx responses.
func (e *Events) HTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	switch {
	case statusCode >= 500:
		level = slog.LevelError
	case statusCode >= 400:
		level = slog.LevelWarn
	}
	f := Fields{FieldComponent, e.logger.Component()}.
		Request(r.Method, r.URL.Path, "").
		Response(statusCode, durationMs).
		Add(FieldClientIP, clientIP)
	e.logger.Logger.Log(ctx, level, "HTTP request completed", f...)
}

func (e *Events) TransactionCreated(ctx context.Context, id int64, title, amount, category, paymentMode string) {
	f := Fields{}.Transaction(id, title, amount, category, paymentMode).Operation(OpCreate)
	e.logger.InfoContext(ctx, "Transaction created", f...)
}

func (e *Events) TransactionMirrored(ctx context.Context, id int64, rowRef string) {
	f := Fields{}.Add(FieldTransactionID, id).Add(FieldRowRef, rowRef).Operation(OpSync)
	e.logger.InfoContext(ctx, "Transaction mirrored", f...)
}

func (e *Events) Failure(ctx context.Context, msg string, err error, operation string) {
	e.logger.ErrorContext(ctx, msg, Fields{}.Error(err).Operation(operation)...)
}
