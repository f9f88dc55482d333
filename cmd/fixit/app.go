package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"golang.org/x/oauth2"

	"github.com/garrettladley/fixit/internal/client/fixit"
	"github.com/garrettladley/fixit/internal/client/realtime"
	"github.com/garrettladley/fixit/internal/config"
	"github.com/garrettladley/fixit/internal/credential"
	"github.com/garrettladley/fixit/internal/db"
	"github.com/garrettladley/fixit/internal/notification"
	"github.com/garrettladley/fixit/internal/outbox"
	"github.com/garrettladley/fixit/internal/paths"
	"github.com/garrettladley/fixit/internal/session"
	"github.com/garrettladley/fixit/internal/xslog"
)

// app is the wiring shared by the TUI and watch.
type app struct {
	cfg       config.Config
	prefs     config.Prefs
	logger    *slog.Logger
	tokens    oauth2.TokenSource
	checker   credential.TokenChecker
	creds     *credential.Store
	client    *fixit.Client
	store     *notification.Store
	transport *realtime.Transport

	sqlDB *sqlx.DB
}

type hooks struct {
	onChange func()
	onIngest func(notification.Record)
}

type tokenPresent struct{}

func (tokenPresent) HasToken(context.Context) (bool, error) { return true, nil }

func newApp(ctx context.Context, logOut io.Writer, h hooks) (*app, error) {
	cfg, err := config.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	prefsPath, err := paths.Prefs()
	if err != nil {
		return nil, err
	}
	prefs, err := config.LoadPrefs(prefsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}

	a := &app{
		cfg:    cfg,
		prefs:  prefs,
		logger: xslog.NewLoggerFromEnv(logOut),
	}

	if err := a.loadCredentials(); err != nil {
		return nil, err
	}

	a.client = fixit.New(a.tokens,
		fixit.WithBaseURL(cfg.APIURL),
		fixit.WithSessionID(session.NewID()),
		fixit.WithLogger(a.logger),
	)

	storeOpts := []notification.StoreOption{notification.WithLogger(a.logger)}
	if prefs.Outbox.Enabled {
		ob, err := a.openOutbox(ctx)
		if err != nil {
			return nil, err
		}
		storeOpts = append(storeOpts, notification.WithOutbox(ob))
	}
	if h.onChange != nil {
		storeOpts = append(storeOpts, notification.WithOnChange(h.onChange))
	}
	if h.onIngest != nil {
		storeOpts = append(storeOpts, notification.WithSound(h.onIngest))
	}
	a.store = notification.NewStore(a.client.Notifications, storeOpts...)

	a.transport = realtime.New(cfg.WSURL, a.tokens,
		realtime.WithPolicy(policyFrom(prefs.Realtime)),
		realtime.WithLogger(a.logger),
	)
	a.transport.OnMessage(func(r notification.Record) { a.store.Ingest(r) })
	a.transport.OnConnected(func() {
		if _, err := a.store.Reconcile(ctx); err != nil {
			a.logger.WarnContext(ctx, "outbox replay after connect", xslog.Error(err))
		}
	})

	return a, nil
}

// loadCredentials prefers FIXIT_TOKEN over the keyring.
func (a *app) loadCredentials() error {
	if a.cfg.Token != "" {
		a.tokens = credential.Static(a.cfg.Token)
		a.checker = tokenPresent{}
		return nil
	}

	store, err := openCredentialStore()
	if err != nil {
		return err
	}
	src := credential.NewKeyringSource(store)
	a.creds = store
	a.tokens = src
	a.checker = src
	return nil
}

func (a *app) openOutbox(ctx context.Context) (notification.Outbox, error) {
	if _, err := paths.EnsureDir(); err != nil {
		return nil, err
	}
	dbPath, err := paths.DB()
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.Open(ctx, dbPath)
	if err != nil {
		a.logger.WarnContext(ctx, "falling back to in-memory outbox", xslog.Error(err))
		return outbox.NewMemory(), nil
	}
	a.sqlDB = sqlDB
	return outbox.NewSQLite(sqlDB), nil
}

// identity is best effort; an unknown role resolves clicks as a customer.
func (a *app) identity(ctx context.Context) credential.Identity {
	id, err := credential.Resolve(a.tokens, a.creds)
	if err != nil && !errors.Is(err, credential.ErrNoToken) && !errors.Is(err, credential.ErrTokenExpired) {
		a.logger.WarnContext(ctx, "failed to resolve identity", xslog.Error(err))
	}
	return id
}

func (a *app) close() {
	a.transport.Disconnect()
	if a.sqlDB != nil {
		_ = a.sqlDB.Close()
	}
}

func openCredentialStore() (*credential.Store, error) {
	if _, err := paths.EnsureDir(); err != nil {
		return nil, err
	}
	dir, err := paths.Keys()
	if err != nil {
		return nil, err
	}
	ring, err := credential.OpenKeyring(dir)
	if err != nil {
		return nil, err
	}
	return credential.NewStore(ring), nil
}

func policyFrom(r config.Realtime) realtime.Policy {
	if r.Policy == config.PolicyExponential {
		return &realtime.Exponential{
			Initial:     r.ReconnectDelay,
			Max:         r.MaxDelay,
			Jitter:      r.Jitter,
			MaxAttempts: r.MaxAttempts,
		}
	}
	return realtime.Fixed(r.ReconnectDelay)
}
