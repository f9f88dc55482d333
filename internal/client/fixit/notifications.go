package fixit

import (
	"context"
	"net/http"
	"net/url"

	"github.com/garrettladley/fixit/internal/notification"
)

var _ notification.Persister = (NotificationService)(nil)

type notificationService struct {
	client *Client
}

func (s *notificationService) Unread(ctx context.Context) ([]notification.Record, error) {
	const route = "/api/notifications/unread"

	var records []notification.Record
	if err := s.client.do(ctx, http.MethodGet, route, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *notificationService) Count(ctx context.Context) (int, error) {
	const route = "/api/notifications/count"

	var resp countResponse
	if err := s.client.do(ctx, http.MethodGet, route, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id notification.ID) error {
	route := "/api/notifications/" + url.PathEscape(id.String()) + "/read"
	return s.client.do(ctx, http.MethodPut, route, nil, nil)
}

func (s *notificationService) MarkAllRead(ctx context.Context) error {
	const route = "/api/notifications/read-all"
	return s.client.do(ctx, http.MethodPut, route, nil, nil)
}

func (s *notificationService) Publish(ctx context.Context, req PublishRequest) (*notification.Record, error) {
	const route = "/api/notifications"

	var record notification.Record
	if err := s.client.do(ctx, http.MethodPost, route, req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
