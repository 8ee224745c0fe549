package log

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"laplata/internal/middleware/trace"
)

// ContextKey type for context keys
type ContextKey string

// LoggerContextKey is the context key for the request-scoped logger.
const LoggerContextKey ContextKey = "logger"

// FromContext extracts a logger from the request context, falling back
// to the process default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{Logger: slog.Default(), component: ComponentApp}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs every request on completion and stores a
// request-scoped logger in the context. When a request id is already
// present it is carried into both.
func RequestLogger(logger *Logger) func(http.Handler) http.Handler {
	httpLogger := logger.WithComponent(ComponentHTTP)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			scoped := httpLogger
			requestID := trace.GetRequestID(r.Context())
			if requestID != "" {
				scoped = scoped.With(FieldRequestID, requestID)
			}

			ctx := context.WithValue(r.Context(), LoggerContextKey, scoped)
			next.ServeHTTP(rec, r.WithContext(ctx))

			fields := NewFields().
				WithHTTPRequest(r.Method, r.URL.Path).
				WithHTTPResponse(rec.status, time.Since(start).Milliseconds())

			level := slog.LevelInfo
			switch {
			case rec.status >= 500:
				level = slog.LevelError
			case rec.status >= 400:
				level = slog.LevelWarn
			}
			scoped.Logger.Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
		})
	}
}
