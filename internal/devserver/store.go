package devserver

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/garrettladley/fixit/internal/notification"
)

var ErrNotFound = errors.New("notification not found")

// Store keeps each recipient's notifications.
type Store interface {
	Add(ctx context.Context, recipient notification.ID, r notification.Record) error
	// Unread returns the recipient's unread notifications, newest first.
	Unread(ctx context.Context, recipient notification.ID) ([]notification.Record, error)
	Count(ctx context.Context, recipient notification.ID) (int, error)
	MarkRead(ctx context.Context, recipient notification.ID, id notification.ID) error
	MarkAllRead(ctx context.Context, recipient notification.ID) error
}

var _ Store = (*MemoryStore)(nil)

type MemoryStore struct {
	mu     sync.Mutex
	byUser map[notification.ID][]notification.Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byUser: make(map[notification.ID][]notification.Record)}
}

func (s *MemoryStore) Add(_ context.Context, recipient notification.ID, r notification.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[recipient] = append(s.byUser[recipient], r)
	return nil
}

func (s *MemoryStore) Unread(_ context.Context, recipient notification.ID) ([]notification.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var unread []notification.Record
	for _, r := range s.byUser[recipient] {
		if !r.IsRead {
			unread = append(unread, r)
		}
	}
	sortNewestFirst(unread)
	return unread, nil
}

func (s *MemoryStore) Count(ctx context.Context, recipient notification.ID) (int, error) {
	unread, err := s.Unread(ctx, recipient)
	if err != nil {
		return 0, err
	}
	return len(unread), nil
}

func (s *MemoryStore) MarkRead(_ context.Context, recipient notification.ID, id notification.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.byUser[recipient]
	for i := range records {
		if records[i].ID == id {
			records[i].IsRead = true
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) MarkAllRead(_ context.Context, recipient notification.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.byUser[recipient]
	for i := range records {
		records[i].IsRead = true
	}
	return nil
}

func sortNewestFirst(records []notification.Record) {
	slices.SortStableFunc(records, func(a, b notification.Record) int {
		return cmp.Compare(b.SentAt.UnixNano(), a.SentAt.UnixNano())
	})
}
