package xslog

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/garrettladley/fixit/internal/xcontext"
)

const (
	groupRequest      = "request"
	groupResponse     = "response"
	groupError        = "error"
	groupUser         = "user"
	groupFrame        = "frame"
	groupNotification = "notification"
)

// RequestGroup collects the inbound request, including the ids the
// middleware chain stored on its context.
func RequestGroup(r *http.Request) slog.Attr {
	attrs := []slog.Attr{
		RequestMethod(r),
		RequestPath(r),
		RequestIP(r),
		slog.String("host", r.Host),
		slog.String("user_agent", r.UserAgent()),
	}
	ctx := r.Context()
	if id, ok := xcontext.GetRequestID(ctx); ok {
		attrs = append(attrs, RequestID(id))
	}
	if id, ok := xcontext.GetSessionID(ctx); ok && id != "" {
		attrs = append(attrs, SessionID(id))
	}
	if id, ok := xcontext.GetUserID(ctx); ok {
		attrs = append(attrs, UserID(id))
	}
	if q := r.URL.RawQuery; q != "" {
		attrs = append(attrs, slog.String("query", q))
	}
	return slog.GroupAttrs(groupRequest, attrs...)
}

func ResponseGroup(status int, elapsed time.Duration) slog.Attr {
	return slog.GroupAttrs(groupResponse,
		HTTPStatus(status),
		Duration(elapsed),
		slog.Int64("duration_ms", elapsed.Milliseconds()),
	)
}

func ErrorGroup(err error) slog.Attr {
	if err == nil {
		return slog.GroupAttrs(groupError)
	}
	return slog.GroupAttrs(groupError,
		slog.String("message", err.Error()),
		slog.String("type", fmt.Sprintf("%T", err)),
	)
}

// PanicGroup describes a recovered panic value with the current stack.
func PanicGroup(v any) slog.Attr {
	return slog.GroupAttrs(groupError,
		slog.Any("value", v),
		slog.String("type", fmt.Sprintf("%T", v)),
		Stack(),
	)
}

func UserGroup(userID string, role string) slog.Attr {
	return slog.GroupAttrs(groupUser,
		slog.String("id", userID),
		slog.String("role", role),
	)
}

// FrameGroup summarizes a STOMP frame without its body.
func FrameGroup(command string, destination string, bodyLen int) slog.Attr {
	attrs := []slog.Attr{Command(command)}
	if destination != "" {
		attrs = append(attrs, Destination(destination))
	}
	if bodyLen > 0 {
		attrs = append(attrs, slog.Int("body_bytes", bodyLen))
	}
	return slog.GroupAttrs(groupFrame, attrs...)
}

func NotificationGroup(id string, senderID string, senderRole string) slog.Attr {
	return slog.GroupAttrs(groupNotification,
		slog.String("id", id),
		slog.String("sender_id", senderID),
		slog.String("sender_role", senderRole),
	)
}
