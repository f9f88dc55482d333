package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/garrettladley/fixit/internal/xcontext"
	"github.com/garrettladley/fixit/internal/xhttp"
)

type requestIDConfig struct {
	newID        func() string
	trustInbound bool
}

type RequestIDOption func(*requestIDConfig)

// WithRequestIDFunc replaces the uuid generator.
func WithRequestIDFunc(fn func() string) RequestIDOption {
	return func(c *requestIDConfig) { c.newID = fn }
}

// TrustInboundRequestID reuses a well-formed X-Request-ID sent by the caller.
func TrustInboundRequestID() RequestIDOption {
	return func(c *requestIDConfig) { c.trustInbound = true }
}

func RequestID(opts ...RequestIDOption) Middleware {
	cfg := requestIDConfig{newID: uuid.NewString}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if cfg.trustInbound {
				if inbound := r.Header.Get(xhttp.XRequestID); uuid.Validate(inbound) == nil {
					id = inbound
				}
			}
			if id == "" {
				id = cfg.newID()
			}
			xhttp.SetHeaderRequestID(w, id)
			next.ServeHTTP(w, r.WithContext(xcontext.SetRequestID(r.Context(), id)))
		})
	}
}
