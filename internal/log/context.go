package log

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

type contextKey string

const requestIDContextKey contextKey = "request_id"

// WithRequestID tags ctx with the id sent as X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

// StructuredLogger provides structured logging methods with context awareness
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogHTTPStart logs an outbound API request.
func (sl *StructuredLogger) LogHTTPStart(ctx context.Context, r *http.Request) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path).
		WithRequestID(RequestID(ctx))

	sl.logger.DebugContext(ctx, "API request started", fields.ToSlice()...)
}

// LogHTTPEnd logs the outcome of an outbound request. 4xx responses are
// warnings and 5xx errors.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, elapsed time.Duration) {
	level := slog.LevelInfo
	if statusCode >= 400 && statusCode < 500 {
		level = slog.LevelWarn
	} else if statusCode >= 500 {
		level = slog.LevelError
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path).
		WithHTTPResponse(statusCode, elapsed.Milliseconds(), statusCode < 400).
		WithRequestID(RequestID(ctx))

	sl.logger.Log(ctx, level, "API request completed", fields.ToSlice()...)
}

// LogTransactionCreated logs a transaction accepted by the API.
func (sl *StructuredLogger) LogTransactionCreated(ctx context.Context, id int64, typeID int, value, desc string) {
	fields := NewFields().
		WithTransaction(id, typeID, value, desc).
		WithOperation(OpCreate)

	sl.logger.InfoContext(ctx, "Transaction created", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation)

	sl.logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}
