package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/garrettladley/fixit/internal/credential"
	"github.com/garrettladley/fixit/internal/notification"
	"github.com/garrettladley/fixit/internal/presenter"
)

// Connector is the part of the realtime transport the TUI drives.
type Connector interface {
	Connect(ctx context.Context) error
	Disconnect()
}

type FetchFunc func(ctx context.Context) ([]notification.Record, error)

type Deps struct {
	Ctx           context.Context
	Logger        *slog.Logger
	TokenChecker  credential.TokenChecker
	Store         *notification.Store
	Transport     Connector
	Presenter     *presenter.Presenter
	Signals       *presenter.Signals
	Bridge        *Bridge
	Fetch         FetchFunc
	Open          func(url string) error
	AppURL        string
	TruncateLimit int
	Sound         bool
	Now           func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
