package middleware

import (
	"log/slog"
	"net/http"

	"github.com/garrettladley/fixit/internal/xcontext"
	"github.com/garrettladley/fixit/internal/xslog"
)

// Logger puts base, tagged with the request and client session ids, into the
// request context. It must run after RequestID and ClientSessionID.
func Logger(base *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := base
			if id, ok := xcontext.GetRequestID(ctx); ok {
				logger = logger.With(xslog.RequestID(id))
			}
			if id, ok := xcontext.GetSessionID(ctx); ok {
				logger = logger.With(xslog.SessionID(id))
			}
			next.ServeHTTP(w, r.WithContext(xslog.WithLogger(ctx, logger)))
		})
	}
}
