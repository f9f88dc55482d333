package notification

import (
	"context"
	"time"
)

type OpKind string

// OpMarkRead is the only queued kind. A failed read-all queues one
// OpMarkRead per record it marked.
const OpMarkRead OpKind = "mark_read"

// Op is a persist call that failed and awaits replay.
type Op struct {
	Seq            int64
	Kind           OpKind
	NotificationID ID
	CreatedAt      time.Time
}

// Persister writes read state to the server.
type Persister interface {
	MarkRead(ctx context.Context, id ID) error
	MarkAllRead(ctx context.Context) error
}

// Outbox holds failed persist calls until they are replayed.
type Outbox interface {
	Enqueue(ctx context.Context, kind OpKind, id ID) error
	Pending(ctx context.Context) ([]Op, error)
	Remove(ctx context.Context, seq int64) error
}
