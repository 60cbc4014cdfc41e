package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	apiContext "riffraff/internal/api/context"
	"riffraff/internal/platform/metrics"
)

const requestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// RequestLogger tags each request with an id, puts a request-scoped logger
// in the context and writes one access line when the request finishes.
// route is the registered pattern, used as the metrics label.
func RequestLogger(route string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, requestID)

			logger := log.With().Str("request_id", requestID).Logger()
			ctx := logger.WithContext(r.Context())
			ctx = context.WithValue(ctx, apiContext.RequestID, requestID)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next(rec, r.WithContext(ctx))

			elapsed := time.Since(start)
			metrics.ObserveRequest(r.Method, route, rec.status, elapsed)

			event := logger.Info()
			if rec.status >= http.StatusInternalServerError {
				event = logger.Error()
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Dur("duration", elapsed).
				Msg("request")
		}
	}
}
