package tui

import (
	"testing"

	"github.com/garrettladley/fixit/internal/notification"
)

func TestBridgeStoreChangeSurvivesFullBuffer(t *testing.T) {
	t.Parallel()

	b := NewBridge(t.Context())
	for range bridgeBuffer {
		b.OnStateChange(notification.Connected)
	}

	b.OnStoreChange()
	b.OnStoreChange()

	changes := 0
	for range bridgeBuffer + 1 {
		if _, ok := ListenCmd(b)().(StoreChangedMsg); ok {
			changes++
		}
	}
	if changes != 1 {
		t.Errorf("store changes delivered = %d, want 1", changes)
	}

	// the slot is free again once the pending change was consumed
	b.OnStoreChange()
	if _, ok := ListenCmd(b)().(StoreChangedMsg); !ok {
		t.Error("store change after drain not delivered")
	}
}
