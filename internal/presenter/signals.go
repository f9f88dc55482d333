package presenter

import (
	"sync"

	"github.com/garrettladley/fixit/internal/notification"
)

// AdminChatRequest asks whichever chat surface is listening to open a
// conversation with AdminID.
type AdminChatRequest struct {
	AdminID notification.ID
}

// Bus is a typed fire-and-forget broadcast. Publish never blocks: a
// subscriber whose buffer is full misses the value.
type Bus[T any] struct {
	mu   sync.Mutex
	next int
	subs map[int]chan T
}

func NewBus[T any]() *Bus[T] {
	return &Bus[T]{subs: make(map[int]chan T)}
}

// Subscribe returns a channel of published values and a func that
// unsubscribes and closes it.
func (b *Bus[T]) Subscribe(buffer int) (<-chan T, func()) {
	ch := make(chan T, max(buffer, 1))

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers v to every subscriber with room and reports how many received it.
func (b *Bus[T]) Publish(v T) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	delivered := 0
	for _, ch := range b.subs {
		select {
		case ch <- v:
			delivered++
		default:
		}
	}
	return delivered
}

type Signals = Bus[AdminChatRequest]

func NewSignals() *Signals {
	return NewBus[AdminChatRequest]()
}
