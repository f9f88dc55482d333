package devserver

import (
	"context"
	"errors"
	"time"
)

// ErrShutdown is the cancellation cause seen by long-lived sessions when
// the server stops.
var ErrShutdown = errors.New("server shutting down")

// ShutdownCoordinator gives websocket sessions a chance to tell their
// clients before the listener closes.
type ShutdownCoordinator struct {
	baseCtx     context.Context
	cancel      context.CancelCauseFunc
	gracePeriod time.Duration
}

func NewShutdownCoordinator(gracePeriod time.Duration) *ShutdownCoordinator {
	ctx, cancel := context.WithCancelCause(context.Background())
	return &ShutdownCoordinator{
		baseCtx:     ctx,
		cancel:      cancel,
		gracePeriod: gracePeriod,
	}
}

// BaseContext is the parent of every request context.
func (sc *ShutdownCoordinator) BaseContext() context.Context {
	return sc.baseCtx
}

// InitiateShutdown cancels the base context with ErrShutdown and blocks for
// the grace period.
func (sc *ShutdownCoordinator) InitiateShutdown() {
	sc.cancel(ErrShutdown)
	time.Sleep(sc.gracePeriod)
}
