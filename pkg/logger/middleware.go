package logger

import (
	"log/slog"
	"net/http"
	"time"

	// Packages
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Middleware puts a request-scoped logger into the request context and logs
// each completed request. It should be one of the first middlewares in the
// chain, after chi's RequestID.
func Middleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			scoped := log.With(
				"request_id", chimiddleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
			)
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ToContext(r.Context(), scoped)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			scoped.Log(r.Context(), level, "request", "status", status, "bytes", ww.BytesWritten(), "duration", time.Since(start))
		})
	}
}
