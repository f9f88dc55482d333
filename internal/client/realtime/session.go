package realtime

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/garrettladley/fixit/internal/client/stomp"
)

// session is one authenticated, subscribed STOMP connection.
type session struct {
	conn    Conn
	subID   string
	send    time.Duration
	receive time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	writeMu sync.Mutex
	closed  atomic.Bool
}

func newSession(ctx context.Context, conn Conn, subID string) *session {
	ctx, cancel := context.WithCancel(ctx)
	return &session{
		conn:   conn,
		subID:  subID,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *session) write(f stomp.Frame) error {
	return s.writeRaw(stomp.Encode(f))
}

func (s *session) writeRaw(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

func (s *session) isClosed() bool {
	return s.closed.Load()
}

func (s *session) close() {
	if s.closed.Swap(true) {
		return
	}
	s.cancel()
	_ = s.conn.Close()
}

// shutdown unsubscribes and says goodbye before closing. Errors are ignored.
func (s *session) shutdown() {
	if s.isClosed() {
		return
	}
	_ = s.write(stomp.New(stomp.CommandUnsubscribe, stomp.HeaderID, s.subID))
	_ = s.write(stomp.New(stomp.CommandDisconnect))
	s.close()
}
