package devserver

import (
	"context"
	"fmt"
	"time"

	go_json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/garrettladley/fixit/internal/notification"
)

const liveKeyPrefix = "fixit:notifications:live:"

var _ Broker = (*RedisBroker)(nil)

// RedisBroker relays records through redis pub/sub so sessions on any
// server instance receive them.
type RedisBroker struct {
	client *redis.Client
}

func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

func (b *RedisBroker) liveKey(recipient notification.ID) string {
	return liveKeyPrefix + recipient.String()
}

func (b *RedisBroker) Publish(ctx context.Context, recipient notification.ID, r notification.Record) error {
	data, err := go_json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err := b.client.Publish(ctx, b.liveKey(recipient), string(data)).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, recipient notification.ID) (<-chan notification.Record, func(), error) {
	pubsub := b.client.Subscribe(ctx, b.liveKey(recipient))

	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	records := make(chan notification.Record)

	go func() {
		defer close(records)
		for msg := range pubsub.Channel() {
			var r notification.Record
			if err := go_json.Unmarshal([]byte(msg.Payload), &r); err != nil {
				continue
			}

			select {
			case records <- r:
			case <-ctx.Done():
				return
			}
		}
	}()

	unsubscribe := func() {
		_ = pubsub.Close()
	}
	return records, unsubscribe, nil
}

// OpenRedis connects to url and verifies the connection with a ping.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
