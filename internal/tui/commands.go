package tui

import (
	"context"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/garrettladley/fixit/internal/credential"
	"github.com/garrettladley/fixit/internal/notification"
	"github.com/garrettladley/fixit/internal/presenter"
	"github.com/garrettladley/fixit/internal/xslog"
)

const (
	actionMarkAll = "mark all read"
	actionOpen    = "open"
)

func checkAuthCmd(ctx context.Context, checker credential.TokenChecker) tea.Cmd {
	if checker == nil {
		return func() tea.Msg {
			return AuthStatusMsg{}
		}
	}
	return func() tea.Msg {
		hasToken, err := checker.HasToken(ctx)
		return AuthStatusMsg{HasToken: hasToken, Err: err}
	}
}

// hydrateCmd loads the unread snapshot, then replays anything left in the
// outbox from an earlier session.
func hydrateCmd(ctx context.Context, fetch FetchFunc, store *notification.Store) tea.Cmd {
	return func() tea.Msg {
		records, err := fetch(ctx)
		if err != nil {
			return HydratedMsg{Err: fmt.Errorf("%w: %w", notification.ErrFetch, err)}
		}
		admitted := store.Hydrate(records)
		if _, err := store.Reconcile(ctx); err != nil {
			xslog.FromContext(ctx).WarnContext(ctx, "outbox replay after hydrate", xslog.Error(err))
		}
		return HydratedMsg{Admitted: admitted}
	}
}

func connectCmd(ctx context.Context, transport Connector) tea.Cmd {
	return func() tea.Msg {
		return ConnectResultMsg{Err: transport.Connect(ctx)}
	}
}

func markAllCmd(ctx context.Context, store *notification.Store) tea.Cmd {
	return func() tea.Msg {
		return ActionResultMsg{Action: actionMarkAll, Err: store.MarkAllRead(ctx)}
	}
}

func clickCmd(ctx context.Context, p *presenter.Presenter, r notification.Record) tea.Cmd {
	return func() tea.Msg {
		return IntentMsg{Intent: p.Click(ctx, r)}
	}
}

func openCmd(open func(string) error, url string) tea.Cmd {
	if open == nil || url == "" {
		return nil
	}
	return func() tea.Msg {
		return ActionResultMsg{Action: actionOpen, Err: open(url)}
	}
}

func refreshTickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return RefreshTickMsg{}
	})
}
