package fixit

import (
	"context"

	"github.com/garrettladley/fixit/internal/notification"
)

type AuthService interface {
	Login(ctx context.Context, email string, password string) (*LoginResponse, error)
}

type NotificationService interface {
	Unread(ctx context.Context) ([]notification.Record, error)
	Count(ctx context.Context) (int, error)
	MarkRead(ctx context.Context, id notification.ID) error
	MarkAllRead(ctx context.Context) error
	Publish(ctx context.Context, req PublishRequest) (*notification.Record, error)
}
