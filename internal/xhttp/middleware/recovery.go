package middleware

import (
	"net/http"

	"github.com/garrettladley/fixit/internal/xerrors"
	"github.com/garrettladley/fixit/internal/xslog"
)

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			// the connection was hijacked or the client went away
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			ctx := r.Context()
			xslog.FromContext(ctx).ErrorContext(ctx, "panic recovered",
				xslog.RequestGroup(r),
				xslog.PanicGroup(rec),
			)
			xerrors.WriteError(ctx, w, xerrors.Internal())
		}()
		next.ServeHTTP(w, r)
	})
}
