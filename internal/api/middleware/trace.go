// Package middleware provides the HTTP middleware chain: request
// tracing, JWT authentication, and Prometheus metrics.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/storefront-api/internal/api/shared"
	"github.com/phrazzld/storefront-api/internal/platform/logger"
)

// TraceMiddleware adds a trace ID to the request context.
// This middleware should be applied early in the middleware chain to ensure
// that all subsequent handlers have access to the trace ID.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		traceID := shared.GetTraceID(ctx)

		// Downstream code picks this logger up via logger.FromContext,
		// so every log line carries the trace ID.
		log := slog.With(slog.String("trace_id", traceID))
		ctx = logger.WithLogger(ctx, log)

		log.Debug("request started",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
