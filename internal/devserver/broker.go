package devserver

import (
	"context"
	"sync"

	"github.com/garrettladley/fixit/internal/notification"
	"github.com/garrettladley/fixit/internal/xslog"
)

const subscriberBuffer = 64

// Broker fans published records out to every live session of the recipient.
type Broker interface {
	Publish(ctx context.Context, recipient notification.ID, r notification.Record) error
	// Subscribe returns a channel of records for recipient. The returned
	// func unsubscribes and must be called.
	Subscribe(ctx context.Context, recipient notification.ID) (<-chan notification.Record, func(), error)
}

var _ Broker = (*MemoryBroker)(nil)

type MemoryBroker struct {
	mu   sync.Mutex
	next int
	subs map[notification.ID]map[int]chan notification.Record
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[notification.ID]map[int]chan notification.Record)}
}

func (b *MemoryBroker) Publish(ctx context.Context, recipient notification.ID, r notification.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs[recipient] {
		select {
		case ch <- r:
		default:
			xslog.FromContext(ctx).WarnContext(ctx, "dropping notification for slow subscriber",
				xslog.UserID(recipient.String()),
				xslog.NotificationID(r.ID.String()))
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(_ context.Context, recipient notification.ID) (<-chan notification.Record, func(), error) {
	ch := make(chan notification.Record, subscriberBuffer)

	b.mu.Lock()
	id := b.next
	b.next++
	if b.subs[recipient] == nil {
		b.subs[recipient] = make(map[int]chan notification.Record)
	}
	b.subs[recipient][id] = ch
	b.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[recipient], id)
			if len(b.subs[recipient]) == 0 {
				delete(b.subs, recipient)
			}
			close(ch)
		})
	}
	return ch, unsubscribe, nil
}
