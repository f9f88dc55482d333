package devserver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garrettladley/fixit/internal/notification"
)

// Service records notifications and pushes them to live sessions.
type Service struct {
	store  Store
	broker Broker
	newID  func() notification.ID
	now    func() time.Time
}

func NewService(store Store, broker Broker) *Service {
	return &Service{
		store:  store,
		broker: broker,
		newID:  func() notification.ID { return notification.ID(uuid.NewString()) },
		now:    time.Now,
	}
}

type publishRequest struct {
	RecipientID    notification.ID   `json:"recipientId"`
	SenderID       notification.ID   `json:"senderId"`
	SenderRole     notification.Role `json:"senderRole"`
	SenderName     string            `json:"senderName"`
	MessageContent string            `json:"messageContent"`
}

func (r publishRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if r.RecipientID == "" {
		errs["recipientId"] = "required"
	}
	if r.SenderID == "" {
		errs["senderId"] = "required"
	}
	switch r.SenderRole {
	case notification.RoleAdmin, notification.RoleProvider, notification.RoleCustomer:
	default:
		errs["senderRole"] = "must be one of ADMIN, PROVIDER, CUSTOMER"
	}
	if strings.TrimSpace(r.MessageContent) == "" {
		errs["messageContent"] = "required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Publish stores a new unread record for the recipient, then pushes it.
// A push failure is returned but the record stays stored.
func (s *Service) Publish(ctx context.Context, req publishRequest) (notification.Record, error) {
	r := notification.Record{
		ID:             s.newID(),
		SenderID:       req.SenderID,
		SenderRole:     req.SenderRole,
		SenderName:     req.SenderName,
		MessageContent: req.MessageContent,
		SentAt:         notification.Timestamp{Time: s.now().UTC()},
	}

	if err := s.store.Add(ctx, req.RecipientID, r); err != nil {
		return notification.Record{}, fmt.Errorf("failed to store notification: %w", err)
	}
	if err := s.broker.Publish(ctx, req.RecipientID, r); err != nil {
		return r, fmt.Errorf("failed to push notification: %w", err)
	}
	return r, nil
}

func (s *Service) Unread(ctx context.Context, user notification.ID) ([]notification.Record, error) {
	return s.store.Unread(ctx, user)
}

func (s *Service) Count(ctx context.Context, user notification.ID) (int, error) {
	return s.store.Count(ctx, user)
}

func (s *Service) MarkRead(ctx context.Context, user notification.ID, id notification.ID) error {
	return s.store.MarkRead(ctx, user, id)
}

func (s *Service) MarkAllRead(ctx context.Context, user notification.ID) error {
	return s.store.MarkAllRead(ctx, user)
}

func (s *Service) Subscribe(ctx context.Context, user notification.ID) (<-chan notification.Record, func(), error) {
	return s.broker.Subscribe(ctx, user)
}
