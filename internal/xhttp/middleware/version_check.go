package middleware

import (
	"net/http"

	"github.com/garrettladley/fixit/internal/version"
	"github.com/garrettladley/fixit/internal/xerrors"
	"github.com/garrettladley/fixit/internal/xslog"
)

// VersionCheck rejects clients older than minVersion with 426 Upgrade Required.
func VersionCheck(minVersion string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientVersion := r.Header.Get(version.Header)
			if clientVersion == "" {
				next.ServeHTTP(w, r)
				return
			}

			if verr := version.CheckCompatibility(clientVersion, minVersion); verr != nil {
				xslog.FromContext(r.Context()).WarnContext(
					r.Context(),
					"client version incompatible",
					xslog.Version(),
					xslog.RequestPath(r),
				)
				xerrors.WriteError(r.Context(), w, xerrors.UpgradeRequired(
					xerrors.WithMessage(verr.Error()),
					xerrors.WithCause(verr),
				))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
