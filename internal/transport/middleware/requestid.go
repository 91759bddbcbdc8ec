package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/sgdocumental/document-tracking/pkg/logger"
)

// RequestID threads a trace id through the context logger and echoes it on
// the response so a client report can be matched to log lines. An incoming
// X-Trace-ID is honored, otherwise one is generated.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}

		w.Header().Set("X-Trace-ID", traceID)

		ctx := logger.With(r.Context(), "trace_id", traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
