package xerrors

import (
	"context"
	"log/slog"
	"net/http"

	go_json "github.com/goccy/go-json"

	"github.com/garrettladley/fixit/internal/xcontext"
	"github.com/garrettladley/fixit/internal/xhttp"
	"github.com/garrettladley/fixit/internal/xslog"
)

// Response is the JSON body of every error reply.
type Response struct {
	Code      string            `json:"code,omitempty"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
}

// WriteError logs err and writes it as a Response. Errors that are not
// an *Error become a 500 without leaking their text.
func WriteError(ctx context.Context, w http.ResponseWriter, err error) {
	e := As(err)
	if e == nil {
		e = Internal(WithCause(err))
	}

	logError(ctx, e)

	resp := Response{
		Code:    e.Code,
		Message: e.Message,
		Fields:  e.Fields,
	}
	if id, ok := xcontext.GetRequestID(ctx); ok {
		resp.RequestID = id
	}

	xhttp.SetHeaderContentTypeApplicationJSON(w)
	w.WriteHeader(e.StatusCode)
	_ = go_json.NewEncoder(w).Encode(resp)
}

func logError(ctx context.Context, e *Error) {
	attrs := []any{
		xslog.HTTPStatus(e.StatusCode),
		slog.String("code", e.Code),
		slog.String("message", e.Message),
	}
	if e.Cause != nil {
		attrs = append(attrs, xslog.Error(e.Cause))
	}
	if len(e.Fields) > 0 {
		attrs = append(attrs, slog.Any("fields", e.Fields))
	}

	logger := xslog.FromContext(ctx)
	if e.StatusCode >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "server error", attrs...)
		return
	}
	logger.WarnContext(ctx, "client error", attrs...)
}
