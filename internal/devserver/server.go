package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/garrettladley/fixit/internal/xhttp/middleware"
	"github.com/garrettladley/fixit/internal/xslog"
)

const (
	wsShutdownGracePeriod = 2 * time.Second
	shutdownTimeout       = 30 * time.Second
)

// Deps are the collaborators behind the routes.
type Deps struct {
	Users   *Directory
	Tokens  *Tokens
	Service *Service
}

// NewMemoryDeps wires an in-process store and broker seeded with DefaultUsers.
func NewMemoryDeps(cfg Config) Deps {
	return Deps{
		Users:   NewDirectory(DefaultUsers()),
		Tokens:  NewTokens(cfg.JWTSecret, cfg.TokenTTL),
		Service: NewService(NewMemoryStore(), NewMemoryBroker()),
	}
}

// Routes builds the full handler tree, middleware included.
func Routes(cfg Config, deps Deps, logger *slog.Logger) http.Handler {
	h := NewHandler(deps.Users, deps.Tokens, deps.Service)
	ws := NewStompHandler(deps.Tokens, deps.Service, DefaultBrokerHeartBeat)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", HandleHealth)
	mux.HandleFunc("POST /api/auth/login", h.HandleLogin)
	mux.HandleFunc("GET /ws", ws.HandleWebsocket)
	mux.HandleFunc("GET /ws/websocket", ws.HandleWebsocket)

	notificationsMux := http.NewServeMux()
	notificationsMux.HandleFunc("GET /api/notifications/unread", h.HandleUnread)
	notificationsMux.HandleFunc("GET /api/notifications/count", h.HandleCount)
	notificationsMux.HandleFunc("PUT /api/notifications/read-all", h.HandleMarkAllRead)
	notificationsMux.HandleFunc("PUT /api/notifications/{id}/read", h.HandleMarkRead)
	notificationsMux.HandleFunc("POST /api/notifications", h.HandlePublish)
	notificationsWrapped := middleware.Chain(notificationsMux,
		BearerAuth(deps.Tokens),
	)
	mux.Handle("/api/notifications", notificationsWrapped)
	mux.Handle("/api/notifications/", notificationsWrapped)

	return middleware.Chain(mux,
		middleware.Recovery,
		middleware.RequestID(middleware.TrustInboundRequestID()),
		middleware.ClientSessionID,
		middleware.Logger(logger),
		middleware.Logging,
		middleware.ShutdownContext,
		middleware.SecurityHeaders,
		middleware.GzipWith(middleware.WithGzipExcluded("/health")),
		middleware.VersionCheck(cfg.MinClientVersion),
	)
}

// Run serves until ctx is cancelled, then shuts down gracefully. With
// REDIS_URL set, notifications are stored in and fanned out through redis.
func Run(ctx context.Context, cfg Config, logger *slog.Logger) error {
	deps := NewMemoryDeps(cfg)
	if cfg.RedisURL != "" {
		logger.InfoContext(ctx, "initializing redis store and broker")
		client, err := OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer func() {
			if err := client.Close(); err != nil {
				logger.ErrorContext(ctx, "failed to close redis", xslog.Error(err))
			}
		}()
		deps.Service = NewService(NewRedisStore(client), NewRedisBroker(client))
	}

	coordinator := NewShutdownCoordinator(wsShutdownGracePeriod)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           Routes(cfg, deps, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return coordinator.BaseContext()
		},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.InfoContext(ctx, "starting dev server",
			xslog.Version(),
			slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.InfoContext(ctx, "shutdown initiated")

		coordinator.InitiateShutdown()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		logger.InfoContext(ctx, "server stopped")
		return nil
	})

	return g.Wait()
}
