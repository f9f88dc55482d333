package outbox

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/garrettladley/fixit/internal/notification"
)

var _ notification.Outbox = (*Memory)(nil)

type Memory struct {
	mu   sync.Mutex
	next int64
	ops  []notification.Op
	now  func() time.Time
}

func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

func (m *Memory) Enqueue(_ context.Context, kind notification.OpKind, id notification.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	m.ops = append(m.ops, notification.Op{
		Seq:            m.next,
		Kind:           kind,
		NotificationID: id,
		CreatedAt:      m.now(),
	})
	return nil
}

func (m *Memory) Pending(_ context.Context) ([]notification.Op, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.ops), nil
}

func (m *Memory) Remove(_ context.Context, seq int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = slices.DeleteFunc(m.ops, func(op notification.Op) bool { return op.Seq == seq })
	return nil
}
