package devserver

import (
	"net/http"

	"github.com/garrettladley/fixit/internal/xcontext"
	"github.com/garrettladley/fixit/internal/xerrors"
	"github.com/garrettladley/fixit/internal/xhttp"
	"github.com/garrettladley/fixit/internal/xslog"
)

// BearerAuth validates the bearer token and sets the verified user id in
// context.
func BearerAuth(tokens *Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw, ok := xhttp.GetBearerToken(r)
			if !ok {
				xerrors.WriteError(ctx, w, xerrors.Unauthorized(xerrors.WithMessage("missing Authorization header")))
				return
			}

			claims, err := tokens.Validate(raw)
			if err != nil {
				xslog.FromContext(ctx).WarnContext(ctx, "token validation failed",
					xslog.RequestPath(r),
					xslog.ErrorGroup(err))
				xerrors.WriteError(ctx, w, xerrors.Unauthorized(xerrors.WithMessage(err.Error())))
				return
			}

			ctx = xcontext.SetUser(ctx, claims.UserID, claims.Role)
			ctx = xslog.WithAttrs(ctx, xslog.UserGroup(claims.UserID, claims.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
