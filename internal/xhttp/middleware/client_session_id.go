package middleware

import (
	"net/http"

	"github.com/garrettladley/fixit/internal/xcontext"
	"github.com/garrettladley/fixit/internal/xhttp"
)

// ClientSessionID copies the client's X-Session-ID into the request context.
// Requests without one, such as raw websocket upgrades from browsers, pass
// through untouched.
func ClientSessionID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := xhttp.GetRequestHeaderSessionID(r); id != "" {
			r = r.WithContext(xcontext.SetSessionID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
