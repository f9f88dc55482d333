package middleware

import (
	"net/http"

	"github.com/garrettladley/fixit/internal/xcontext"
)

// ShutdownContext flags requests whose base context is already cancelled and
// asks the client not to reuse the connection.
func ShutdownContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if ctx.Err() != nil {
			r = r.WithContext(xcontext.SetShutdownInProgress(ctx, true))
			w.Header().Set("Connection", "close")
		}
		next.ServeHTTP(w, r)
	})
}
