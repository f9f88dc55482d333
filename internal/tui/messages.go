package tui

import (
	"time"

	"github.com/garrettladley/fixit/internal/notification"
	"github.com/garrettladley/fixit/internal/presenter"
)

const (
	splashDuration  = 800 * time.Millisecond
	refreshInterval = 30 * time.Second
)

type SplashTickMsg struct{}

// RefreshTickMsg re-renders relative timestamps.
type RefreshTickMsg struct{}

type AuthStatusMsg struct {
	HasToken bool
	Err      error
}

type HydratedMsg struct {
	Admitted int
	Err      error
}

type ConnectResultMsg struct {
	Err error
}

type ConnectionStateMsg struct {
	State notification.ConnectionState
}

type StoreChangedMsg struct{}

type IngestedMsg struct {
	Record notification.Record
}

type AdminChatMsg struct {
	Request presenter.AdminChatRequest
}

type IntentMsg struct {
	Intent presenter.Intent
	Err    error
}

type ActionResultMsg struct {
	Action string
	Err    error
}

// BridgeClosedMsg stops the listener loop.
type BridgeClosedMsg struct{}
