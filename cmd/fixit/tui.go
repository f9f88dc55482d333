package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/garrettladley/fixit/internal/browser"
	"github.com/garrettladley/fixit/internal/paths"
	"github.com/garrettladley/fixit/internal/presenter"
	"github.com/garrettladley/fixit/internal/tui"
)

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if _, err := paths.EnsureDir(); err != nil {
		return err
	}
	logPath, err := paths.Log()
	if err != nil {
		return err
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	bridge := tui.NewBridge(ctx)
	a, err := newApp(ctx, logFile, hooks{
		onChange: bridge.OnStoreChange,
		onIngest: bridge.OnIngest,
	})
	if err != nil {
		return err
	}
	defer func() {
		cancel()
		a.close()
	}()

	slog.SetDefault(a.logger)
	a.transport.OnStateChange(bridge.OnStateChange)

	signals := presenter.NewSignals()
	chatRequests, unsubscribe := signals.Subscribe(1)
	defer unsubscribe()
	bridge.Forward(chatRequests)

	id := a.identity(ctx)
	model := tui.New(tui.Deps{
		Ctx:           ctx,
		Logger:        a.logger,
		TokenChecker:  a.checker,
		Store:         a.store,
		Transport:     a.transport,
		Presenter:     presenter.New(a.store, signals, id.Role, a.logger),
		Signals:       signals,
		Bridge:        bridge,
		Fetch:         a.client.Notifications.Unread,
		Open:          browser.Open,
		AppURL:        a.cfg.AppURL,
		TruncateLimit: a.prefs.Display.TruncateLimit,
		Sound:         a.prefs.Display.Sound,
	})

	p := tea.NewProgram(&model, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
