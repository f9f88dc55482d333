package devserver

import (
	"errors"
	"net/http"

	go_json "github.com/goccy/go-json"

	"github.com/garrettladley/fixit/internal/notification"
	"github.com/garrettladley/fixit/internal/validator"
	"github.com/garrettladley/fixit/internal/xcontext"
	"github.com/garrettladley/fixit/internal/xerrors"
	"github.com/garrettladley/fixit/internal/xhttp"
	"github.com/garrettladley/fixit/internal/xslog"
)

const maxBodyBytes = 64 << 10

type Handler struct {
	users   *Directory
	tokens  *Tokens
	service *Service
}

func NewHandler(users *Directory, tokens *Tokens, service *Service) *Handler {
	return &Handler{
		users:   users,
		tokens:  tokens,
		service: service,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if r.Email == "" {
		errs["email"] = "required"
	}
	if r.Password == "" {
		errs["password"] = "required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

type loginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type countResponse struct {
	Count int `json:"count"`
}

// HandleLogin handles POST /api/auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := decode(r, &req); err != nil {
		xerrors.WriteError(ctx, w, err)
		return
	}
	if verr := validator.Validate(req); verr != nil {
		xerrors.WriteError(ctx, w, verr)
		return
	}

	user, ok := h.users.Authenticate(req.Email, req.Password)
	if !ok {
		xerrors.WriteError(ctx, w, xerrors.Unauthorized(
			xerrors.WithCode("invalid_credentials"),
			xerrors.WithMessage("invalid email or password"),
		))
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		xerrors.WriteError(ctx, w, xerrors.Internal(xerrors.WithCause(err)))
		return
	}

	xslog.FromContext(ctx).InfoContext(ctx, "user logged in", xslog.UserGroup(user.ID.String(), user.Role.String()))
	xhttp.WriteOK(w, loginResponse{Token: token, User: user})
}

// HandleUnread handles GET /api/notifications/unread.
func (h *Handler) HandleUnread(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := currentUser(r)
	if !ok {
		xerrors.WriteError(ctx, w, xerrors.Unauthorized())
		return
	}

	records, err := h.service.Unread(ctx, userID)
	if err != nil {
		xerrors.WriteError(ctx, w, xerrors.Internal(xerrors.WithMessage("failed to fetch notifications"), xerrors.WithCause(err)))
		return
	}
	if records == nil {
		records = []notification.Record{}
	}

	xslog.FromContext(ctx).DebugContext(ctx, "fetched unread notifications", xslog.Count(len(records)))
	xhttp.WriteOK(w, records)
}

// HandleCount handles GET /api/notifications/count.
func (h *Handler) HandleCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := currentUser(r)
	if !ok {
		xerrors.WriteError(ctx, w, xerrors.Unauthorized())
		return
	}

	n, err := h.service.Count(ctx, userID)
	if err != nil {
		xerrors.WriteError(ctx, w, xerrors.Internal(xerrors.WithMessage("failed to count notifications"), xerrors.WithCause(err)))
		return
	}
	xhttp.WriteOK(w, countResponse{Count: n})
}

// HandleMarkRead handles PUT /api/notifications/{id}/read.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := currentUser(r)
	if !ok {
		xerrors.WriteError(ctx, w, xerrors.Unauthorized())
		return
	}

	id := notification.ID(r.PathValue("id"))
	if id == "" {
		xerrors.WriteError(ctx, w, xerrors.BadRequest(xerrors.WithMessage("missing notification id")))
		return
	}

	err := h.service.MarkRead(ctx, userID, id)
	switch {
	case errors.Is(err, ErrNotFound):
		xerrors.WriteError(ctx, w, xerrors.NotFound(
			xerrors.WithCode("notification_not_found"),
			xerrors.WithMessage(err.Error()),
		))
		return
	case err != nil:
		xerrors.WriteError(ctx, w, xerrors.Internal(xerrors.WithMessage("failed to mark notification read"), xerrors.WithCause(err)))
		return
	}
	xhttp.WriteNoContent(w)
}

// HandleMarkAllRead handles PUT /api/notifications/read-all.
func (h *Handler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := currentUser(r)
	if !ok {
		xerrors.WriteError(ctx, w, xerrors.Unauthorized())
		return
	}

	if err := h.service.MarkAllRead(ctx, userID); err != nil {
		xerrors.WriteError(ctx, w, xerrors.Internal(xerrors.WithMessage("failed to mark notifications read"), xerrors.WithCause(err)))
		return
	}
	xhttp.WriteNoContent(w)
}

// HandlePublish handles POST /api/notifications.
func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req publishRequest
	if err := decode(r, &req); err != nil {
		xerrors.WriteError(ctx, w, err)
		return
	}
	// sender defaults to the caller
	if req.SenderID == "" {
		if id, ok := currentUser(r); ok {
			req.SenderID = id
		}
	}
	if sender, ok := h.users.Get(req.SenderID); ok {
		if req.SenderName == "" {
			req.SenderName = sender.Name
		}
		if req.SenderRole == "" {
			req.SenderRole = sender.Role
		}
	}
	if verr := validator.Validate(req); verr != nil {
		xerrors.WriteError(ctx, w, verr)
		return
	}

	record, err := h.service.Publish(ctx, req)
	if err != nil && record.ID == "" {
		xerrors.WriteError(ctx, w, xerrors.Internal(xerrors.WithMessage("failed to publish notification"), xerrors.WithCause(err)))
		return
	}
	if err != nil {
		xslog.FromContext(ctx).WarnContext(ctx, "stored notification was not pushed",
			xslog.Error(err),
			xslog.NotificationID(record.ID.String()))
	}

	xhttp.WriteCreated(w, record)
}

func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	xhttp.WriteOK(w, map[string]string{"status": "ok"})
}

func currentUser(r *http.Request) (notification.ID, bool) {
	id, ok := xcontext.GetUserID(r.Context())
	if !ok || id == "" {
		return "", false
	}
	return notification.ID(id), true
}

func decode(r *http.Request, v any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := go_json.NewDecoder(body).Decode(v); err != nil {
		return xerrors.BadRequest(xerrors.WithMessage("invalid request body"), xerrors.WithCause(err))
	}
	return nil
}
