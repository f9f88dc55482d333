package devserver

import (
	"context"
	"errors"
	"fmt"

	go_json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/garrettladley/fixit/internal/notification"
)

const (
	recordsKeyPrefix = "fixit:notifications:records:"
	orderKeyPrefix   = "fixit:notifications:order:"
)

var _ Store = (*RedisStore)(nil)

// RedisStore keeps each recipient's records in a hash keyed by id, with a
// sorted set ordering ids by sentAt.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) recordsKey(recipient notification.ID) string {
	return recordsKeyPrefix + recipient.String()
}

func (s *RedisStore) orderKey(recipient notification.ID) string {
	return orderKeyPrefix + recipient.String()
}

func (s *RedisStore) Add(ctx context.Context, recipient notification.ID, r notification.Record) error {
	data, err := go_json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.recordsKey(recipient), r.ID.String(), data)
		pipe.ZAdd(ctx, s.orderKey(recipient), redis.Z{
			Score:  float64(r.SentAt.UnixMilli()),
			Member: r.ID.String(),
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to add notification: %w", err)
	}
	return nil
}

func (s *RedisStore) Unread(ctx context.Context, recipient notification.ID) ([]notification.Record, error) {
	ids, err := s.client.ZRevRange(ctx, s.orderKey(recipient), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	values, err := s.client.HMGet(ctx, s.recordsKey(recipient), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load notifications: %w", err)
	}

	var unread []notification.Record
	for _, v := range values {
		data, ok := v.(string)
		if !ok {
			continue
		}
		var r notification.Record
		if err := go_json.Unmarshal([]byte(data), &r); err != nil {
			continue
		}
		if !r.IsRead {
			unread = append(unread, r)
		}
	}
	return unread, nil
}

func (s *RedisStore) Count(ctx context.Context, recipient notification.ID) (int, error) {
	unread, err := s.Unread(ctx, recipient)
	if err != nil {
		return 0, err
	}
	return len(unread), nil
}

func (s *RedisStore) MarkRead(ctx context.Context, recipient notification.ID, id notification.ID) error {
	key := s.recordsKey(recipient)

	data, err := s.client.HGet(ctx, key, id.String()).Result()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load notification: %w", err)
	}

	var r notification.Record
	if err := go_json.Unmarshal([]byte(data), &r); err != nil {
		return fmt.Errorf("failed to unmarshal notification: %w", err)
	}
	if r.IsRead {
		return nil
	}
	r.IsRead = true

	updated, err := go_json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := s.client.HSet(ctx, key, id.String(), updated).Err(); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (s *RedisStore) MarkAllRead(ctx context.Context, recipient notification.ID) error {
	key := s.recordsKey(recipient)

	all, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to load notifications: %w", err)
	}

	updates := make(map[string]any, len(all))
	for id, data := range all {
		var r notification.Record
		if err := go_json.Unmarshal([]byte(data), &r); err != nil || r.IsRead {
			continue
		}
		r.IsRead = true
		updated, err := go_json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal notification: %w", err)
		}
		updates[id] = updated
	}
	if len(updates) == 0 {
		return nil
	}

	if err := s.client.HSet(ctx, key, updates).Err(); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
