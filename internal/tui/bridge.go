package tui

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/garrettladley/fixit/internal/notification"
	"github.com/garrettladley/fixit/internal/presenter"
)

const bridgeBuffer = 64

// Bridge carries transport and store callbacks, which fire on their own
// goroutines, onto the bubbletea event loop.
type Bridge struct {
	ctx     context.Context
	ch      chan tea.Msg
	changed chan struct{}
}

func NewBridge(ctx context.Context) *Bridge {
	return &Bridge{
		ctx:     ctx,
		ch:      make(chan tea.Msg, bridgeBuffer),
		changed: make(chan struct{}, 1),
	}
}

func (b *Bridge) OnStateChange(s notification.ConnectionState) {
	b.send(ConnectionStateMsg{State: s})
}

func (b *Bridge) OnIngest(r notification.Record) {
	b.send(IngestedMsg{Record: r})
}

// OnStoreChange never blocks. Changes made while a signal is pending fold
// into it, and the signal has its own slot so a busy bridge cannot drop it.
func (b *Bridge) OnStoreChange() {
	select {
	case b.changed <- struct{}{}:
	default:
	}
}

// Forward relays admin chat requests from the signal bus until ch closes.
func (b *Bridge) Forward(ch <-chan presenter.AdminChatRequest) {
	go func() {
		for req := range ch {
			b.send(AdminChatMsg{Request: req})
		}
	}()
}

func (b *Bridge) send(msg tea.Msg) {
	select {
	case b.ch <- msg:
	case <-b.ctx.Done():
	}
}

// ListenCmd waits for the next bridged message. It must be re-issued after
// every message it returns to keep listening.
func ListenCmd(b *Bridge) tea.Cmd {
	if b == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case msg := <-b.ch:
			return msg
		case <-b.changed:
			return StoreChangedMsg{}
		case <-b.ctx.Done():
			return BridgeClosedMsg{}
		}
	}
}
