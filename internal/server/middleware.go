package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

// logKey stores the per-request logger in the context.
type logKey struct{}

// requestLogger gives each request an ID, echoes it back, and stores a
// logger carrying it for the handlers. One line is logged per request.
func requestLogger(parent *slog.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		reqID := ctx.Header(requestIDHeader)
		if reqID == "" {
			reqID = newRequestID()
		}
		ctx.SetHeader(requestIDHeader, reqID)

		op := ctx.Operation()
		logger := parent.With("request_id", reqID, "op", op.OperationID)
		start := time.Now()
		next(huma.WithValue(ctx, logKey{}, logger))

		level := slog.LevelInfo
		if ctx.Status() >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		logger.LogAttrs(context.Background(), level, op.Method+" "+op.Path,
			slog.Int("status", ctx.Status()),
			slog.String("remote", ctx.RemoteAddr()),
			slog.Duration("dur", time.Since(start)),
		)
	}
}

// recoverPanics turns a handler panic into a 500 and logs it.
func recoverPanics(fallback *slog.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		defer func() {
			if v := recover(); v != nil {
				loggerFrom(ctx.Context(), fallback).Error("handler panicked", "recovered", v)
				ctx.SetStatus(http.StatusInternalServerError)
			}
		}()
		next(ctx)
	}
}

// logErrors logs handler errors with the request logger: client errors at
// warn, everything else at error.
func logErrors(fallback *slog.Logger) func(context.Context, error) {
	return func(ctx context.Context, err error) {
		level := slog.LevelError
		attrs := []any{"err", err}

		var statusErr huma.StatusError
		if errors.As(err, &statusErr) {
			if statusErr.GetStatus() < http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			attrs = append(attrs, "status", statusErr.GetStatus())
		}
		loggerFrom(ctx, fallback).Log(ctx, level, "contact request failed", attrs...)
	}
}

func loggerFrom(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(logKey{}).(*slog.Logger); ok {
		return logger
	}
	return fallback
}

// meterRequests counts API requests and their latency per route and status.
func meterRequests(set *metrics.Set) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		op, start := ctx.Operation(), time.Now()
		next(ctx)

		labels := fmt.Sprintf(`{method=%q,path=%q,status="%d"}`, op.Method, op.Path, ctx.Status())
		set.GetOrCreateCounter("http_requests_total" + labels).Inc()
		set.GetOrCreateHistogram("http_request_duration_seconds" + labels).UpdateDuration(start)
	}
}

func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
