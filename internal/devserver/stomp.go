package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	go_json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/garrettladley/fixit/internal/client/stomp"
	"github.com/garrettladley/fixit/internal/notification"
	"github.com/garrettladley/fixit/internal/version"
	"github.com/garrettladley/fixit/internal/xhttp"
	"github.com/garrettladley/fixit/internal/xslog"
)

const (
	// UserDestination is the only destination sessions may subscribe to;
	// it always resolves to the authenticated user's queue.
	UserDestination = "/user/queue/notifications"

	connectWait  = 10 * time.Second
	writeWait    = 10 * time.Second
	maxFrameSize = 64 << 10
	contentJSON  = "application/json"
)

// DefaultBrokerHeartBeat is what the broker offers in CONNECTED.
var DefaultBrokerHeartBeat = stomp.HeartBeatSpec{Send: 10 * time.Second, Receive: 10 * time.Second}

var errClientDisconnect = errors.New("client disconnected")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	Subprotocols:    []string{"v12.stomp", "v11.stomp", "v10.stomp"},
	CheckOrigin:     func(*http.Request) bool { return true },
}

// StompHandler serves STOMP 1.2 over websocket. CONNECT must carry a bearer
// token; each session receives only its own user's notifications. Records
// published after CONNECTED but before SUBSCRIBE are held for the session.
type StompHandler struct {
	tokens    *Tokens
	service   *Service
	heartBeat stomp.HeartBeatSpec
}

func NewStompHandler(tokens *Tokens, service *Service, heartBeat stomp.HeartBeatSpec) *StompHandler {
	return &StompHandler{
		tokens:    tokens,
		service:   service,
		heartBeat: heartBeat,
	}
}

// HandleWebsocket handles GET /ws and GET /ws/websocket.
func (h *StompHandler) HandleWebsocket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := xslog.FromContext(ctx)

	// browsers cannot set headers on a websocket upgrade; CONNECT carries them
	upgradeToken, _ := xhttp.GetBearerToken(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnContext(ctx, "websocket upgrade failed", xslog.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()
	conn.SetReadLimit(maxFrameSize)

	s := &stompSession{
		conn:         conn,
		handler:      h,
		upgradeToken: upgradeToken,
		logger:       logger,
	}
	s.serve(ctx)
}

type stompSession struct {
	conn         *websocket.Conn
	handler      *StompHandler
	upgradeToken string
	logger       *slog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	subID   string
	pending []notification.Record
}

func (s *stompSession) serve(ctx context.Context) {
	claims, send, receive, err := s.authenticate()
	if err != nil {
		s.logger.WarnContext(ctx, "stomp handshake failed", xslog.Error(err))
		_ = s.writeError(err.Error())
		return
	}

	userID := notification.ID(claims.UserID)
	s.logger = s.logger.With(xslog.UserGroup(claims.UserID, claims.Role))

	records, unsubscribe, err := s.handler.service.Subscribe(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to subscribe to notifications", xslog.Error(err))
		_ = s.writeError("subscription unavailable")
		return
	}
	defer unsubscribe()

	connected := stomp.New(stomp.CommandConnected,
		stomp.HeaderVersion, stomp.Version,
		stomp.HeaderHeartBeat, s.handler.heartBeat.String(),
		stomp.HeaderUserName, claims.UserID,
		"server", "fixit-devserver/"+version.Get(),
	)
	if err := s.write(connected); err != nil {
		s.logger.WarnContext(ctx, "failed to write CONNECTED", xslog.Error(err))
		return
	}

	s.logger.InfoContext(ctx, "stomp session established",
		slog.Duration("send_interval", send),
		slog.Duration("receive_interval", receive))

	g, gctx := errgroup.WithContext(ctx)
	stop := context.AfterFunc(gctx, func() { _ = s.conn.Close() })
	defer stop()

	g.Go(func() error { return s.readLoop(gctx, receive) })
	g.Go(func() error { return s.writeLoop(gctx, records, send) })

	err = g.Wait()
	switch {
	case errors.Is(err, errClientDisconnect):
		s.logger.InfoContext(ctx, "stomp session closed by client")
	case errors.Is(context.Cause(ctx), ErrShutdown):
		s.logger.InfoContext(ctx, "stomp session closed for shutdown")
	case err != nil:
		s.logger.InfoContext(ctx, "stomp session ended", xslog.Error(err))
	}
}

// authenticate reads CONNECT, validates its bearer token and negotiates
// heart-beats. CONNECTED is written by the caller once the session is fed.
func (s *stompSession) authenticate() (*Claims, time.Duration, time.Duration, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(connectWait)); err != nil {
		return nil, 0, 0, err
	}

	_, data, err := s.conn.ReadMessage()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("read connect: %w", err)
	}
	frames, err := stomp.Decode(data)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("malformed frame: %w", err)
	}
	if len(frames) == 0 {
		return nil, 0, 0, errors.New("expected CONNECT frame")
	}

	f := frames[0]
	if f.Command != stomp.CommandConnect && f.Command != stomp.CommandStomp {
		return nil, 0, 0, fmt.Errorf("expected CONNECT frame, got %s", f.Command)
	}
	if accepted, ok := f.Get(stomp.HeaderAcceptVersion); ok &&
		!slices.Contains(strings.Split(accepted, ","), stomp.Version) {
		return nil, 0, 0, fmt.Errorf("unsupported protocol versions %q", accepted)
	}

	token := s.upgradeToken
	if header, ok := f.Get(stomp.HeaderAuthorization); ok {
		token, _ = xhttp.ParseBearer(header)
	}
	if token == "" {
		return nil, 0, 0, errors.New("missing bearer token")
	}
	claims, err := s.handler.tokens.Validate(token)
	if err != nil {
		return nil, 0, 0, err
	}

	remote, err := stomp.ParseHeartBeat(f.Value(stomp.HeaderHeartBeat))
	if err != nil {
		return nil, 0, 0, err
	}
	send, receive := stomp.Negotiate(s.handler.heartBeat, remote)

	return claims, send, receive, nil
}

func (s *stompSession) readLoop(ctx context.Context, receive time.Duration) error {
	for {
		deadline := time.Time{}
		if receive > 0 {
			deadline = time.Now().Add(2 * receive)
		}
		if err := s.conn.SetReadDeadline(deadline); err != nil {
			return err
		}

		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		frames, err := stomp.Decode(data)
		if err != nil {
			_ = s.writeError("malformed frame")
			return fmt.Errorf("decode: %w", err)
		}

		for _, f := range frames {
			if err := s.handleFrame(ctx, f); err != nil {
				return err
			}
		}
	}
}

func (s *stompSession) handleFrame(ctx context.Context, f stomp.Frame) error {
	switch f.Command {
	case stomp.CommandSubscribe:
		if dest := f.Value(stomp.HeaderDestination); dest != UserDestination {
			_ = s.writeError("unknown destination " + dest)
			return fmt.Errorf("subscribe to unknown destination %q", dest)
		}
		if err := s.subscribe(f.Value(stomp.HeaderID)); err != nil {
			return err
		}

	case stomp.CommandUnsubscribe:
		s.mu.Lock()
		if s.subID == f.Value(stomp.HeaderID) {
			s.subID = ""
		}
		s.mu.Unlock()

	case stomp.CommandDisconnect:
		_ = s.receipt(f)
		return errClientDisconnect

	case stomp.CommandSend:
		_ = s.writeError("SEND is not supported")
		return errors.New("client attempted SEND")

	default:
		s.logger.DebugContext(ctx, "ignoring stomp frame",
			xslog.FrameGroup(f.Command, f.Value(stomp.HeaderDestination), len(f.Body)),
		)
		return nil
	}
	return s.receipt(f)
}

func (s *stompSession) writeLoop(ctx context.Context, records <-chan notification.Record, send time.Duration) error {
	var beat <-chan time.Time
	if send > 0 {
		ticker := time.NewTicker(send)
		defer ticker.Stop()
		beat = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			if errors.Is(context.Cause(ctx), ErrShutdown) {
				_ = s.writeError(ErrShutdown.Error())
			}
			return context.Cause(ctx)

		case r, ok := <-records:
			if !ok {
				return errors.New("notification feed closed")
			}
			if err := s.deliver(r); err != nil {
				return err
			}

		case <-beat:
			if err := s.writeRaw(stomp.HeartBeat); err != nil {
				return fmt.Errorf("heart-beat: %w", err)
			}
		}
	}
}

// subscribe records the subscription id and flushes anything queued for
// the user while the session had no subscription.
func (s *stompSession) subscribe(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subID = id
	pending := s.pending
	s.pending = nil
	for _, r := range pending {
		if err := s.sendMessageLocked(r); err != nil {
			return err
		}
	}
	return nil
}

func (s *stompSession) deliver(r notification.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subID == "" {
		if len(s.pending) < subscriberBuffer {
			s.pending = append(s.pending, r)
		}
		return nil
	}
	return s.sendMessageLocked(r)
}

func (s *stompSession) sendMessageLocked(r notification.Record) error {
	body, err := go_json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	f := stomp.New(stomp.CommandMessage,
		stomp.HeaderDestination, UserDestination,
		stomp.HeaderSubscription, s.subID,
		stomp.HeaderMessageID, uuid.NewString(),
		stomp.HeaderContentType, contentJSON,
	)
	f.Body = body
	return s.write(f)
}

func (s *stompSession) receipt(f stomp.Frame) error {
	id, ok := f.Get(stomp.HeaderReceipt)
	if !ok {
		return nil
	}
	return s.write(stomp.New(stomp.CommandReceipt, stomp.HeaderReceiptID, id))
}

func (s *stompSession) writeError(message string) error {
	return s.write(stomp.New(stomp.CommandError, stomp.HeaderMessage, message))
}

func (s *stompSession) write(f stomp.Frame) error {
	return s.writeRaw(stomp.Encode(f))
}

func (s *stompSession) writeRaw(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}
