package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/expense-tracker/pkg/logger"

	"github.com/google/uuid"
)

const TraceIDHeader = "X-Trace-ID"

// RequestID tags every request with a trace id and stores a request-scoped
// logger carrying it in the context.
func RequestID(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(TraceIDHeader)
			if traceID == "" {
				traceID = uuid.NewString()
			}

			ctx := r.Context()
			if base != nil {
				ctx = logger.Into(ctx, base)
			}
			ctx = logger.With(ctx, "trace_id", traceID)

			w.Header().Set(TraceIDHeader, traceID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
