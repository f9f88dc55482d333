package presenter

import (
	"context"
	"log/slog"

	"github.com/garrettladley/fixit/internal/notification"
	"github.com/garrettladley/fixit/internal/xslog"
)

type Marker interface {
	MarkRead(ctx context.Context, id notification.ID) error
}

// Presenter turns clicks into intents on behalf of one signed-in user.
type Presenter struct {
	marker  Marker
	signals *Signals
	role    notification.Role
	logger  *slog.Logger
}

func New(marker Marker, signals *Signals, role notification.Role, logger *slog.Logger) *Presenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Presenter{
		marker:  marker,
		signals: signals,
		role:    role,
		logger:  logger,
	}
}

// Click marks r read, then resolves where it leads. Administrator
// conversations are announced on the signal bus.
func (p *Presenter) Click(ctx context.Context, r notification.Record) Intent {
	if err := p.marker.MarkRead(ctx, r.ID); err != nil {
		p.logger.WarnContext(ctx, "mark read on click", xslog.Error(err), xslog.NotificationID(r.ID.String()))
	}

	intent := ResolveClickAction(r, p.role)
	if intent.Kind == IntentAdminChat && p.signals != nil {
		p.signals.Publish(AdminChatRequest{AdminID: intent.PeerID})
	}
	return intent
}
