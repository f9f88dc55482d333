package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/garrettladley/fixit/internal/client/stomp"
	"github.com/garrettladley/fixit/internal/notification"
	"github.com/garrettladley/fixit/internal/xhttp"
	"github.com/garrettladley/fixit/internal/xslog"
)

const (
	DefaultDestination = "/user/queue/notifications"

	subscriptionID = "sub-0"
	connectTimeout = 10 * time.Second
)

// DefaultHeartBeat is requested on every CONNECT.
var DefaultHeartBeat = stomp.HeartBeatSpec{Send: 10 * time.Second, Receive: 10 * time.Second}

type (
	MessageHandler func(notification.Record)
	StateHandler   func(notification.ConnectionState)
)

// Transport keeps at most one live subscription to the per-user notification
// channel and reconnects according to its Policy after failures.
type Transport struct {
	url         string
	tokens      oauth2.TokenSource
	dialer      Dialer
	policy      Policy
	afterFunc   AfterFunc
	heartBeat   stomp.HeartBeatSpec
	destination string
	logger      *slog.Logger

	mu          sync.Mutex
	state       notification.ConnectionState
	onMessage   MessageHandler
	onState     StateHandler
	onConnected func()
	sess        *session
	timer       Timer
	attempt     int
	gen         uint64
	active      bool
	ctx         context.Context
	cancel      context.CancelFunc

	notifyMu sync.Mutex
	notified notification.ConnectionState
}

type Option func(*Transport)

func WithDialer(d Dialer) Option {
	return func(t *Transport) { t.dialer = d }
}

func WithPolicy(p Policy) Option {
	return func(t *Transport) { t.policy = p }
}

func WithAfterFunc(fn AfterFunc) Option {
	return func(t *Transport) { t.afterFunc = fn }
}

func WithHeartBeat(h stomp.HeartBeatSpec) Option {
	return func(t *Transport) { t.heartBeat = h }
}

func WithDestination(d string) Option {
	return func(t *Transport) { t.destination = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(t *Transport) { t.logger = logger }
}

func New(wsURL string, tokens oauth2.TokenSource, opts ...Option) *Transport {
	t := &Transport{
		url:         wsURL,
		tokens:      tokens,
		dialer:      NewWebsocketDialer(nil),
		policy:      Fixed(DefaultReconnectDelay),
		afterFunc:   timeAfterFunc,
		heartBeat:   DefaultHeartBeat,
		destination: DefaultDestination,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OnMessage registers the handler called once per inbound notification,
// in arrival order, on the transport's read goroutine.
func (t *Transport) OnMessage(h MessageHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onMessage = h
}

func (t *Transport) OnStateChange(h StateHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onState = h
}

// OnConnected registers a hook run after every successful subscribe.
func (t *Transport) OnConnected(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onConnected = fn
}

func (t *Transport) State() notification.ConnectionState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Connect opens and subscribes a session. It is a no-op while connected or
// connecting. A missing credential fails immediately without scheduling a
// retry; any other failure schedules a reconnect and is returned wrapped in
// notification.ErrTransport.
func (t *Transport) Connect(ctx context.Context) error {
	if t.busy() {
		return nil
	}

	token, err := t.token()
	if err != nil {
		return err
	}

	t.mu.Lock()
	if t.state == notification.Connected || t.state == notification.Connecting {
		t.mu.Unlock()
		return nil
	}
	t.stopTimerLocked()
	if !t.active {
		t.active = true
		t.ctx, t.cancel = context.WithCancel(context.WithoutCancel(ctx))
	}
	// a manual Connect starts a fresh retry budget, even after the policy gave up
	t.attempt = 0
	gen := t.gen
	life := t.ctx
	t.state = notification.Connecting
	t.mu.Unlock()

	t.notify(notification.Connecting)

	dialCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	stop := context.AfterFunc(life, cancel)
	defer stop()

	return t.establish(dialCtx, life, gen, token)
}

// Disconnect cancels any pending reconnect, unsubscribes and closes the
// session. Safe to call repeatedly.
func (t *Transport) Disconnect() {
	t.mu.Lock()
	t.gen++
	t.active = false
	t.attempt = 0
	t.stopTimerLocked()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	sess := t.sess
	t.sess = nil
	changed := t.state != notification.Disconnected
	t.state = notification.Disconnected
	t.mu.Unlock()

	if sess != nil {
		sess.shutdown()
	}
	if changed {
		t.logger.Info("realtime disconnected")
		t.notify(notification.Disconnected)
	}
}

func (t *Transport) busy() bool {
	s := t.State()
	return s == notification.Connected || s == notification.Connecting
}

func (t *Transport) token() (string, error) {
	if t.tokens == nil {
		return "", notification.ErrMissingCredential
	}
	tok, err := t.tokens.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %w", notification.ErrMissingCredential, err)
	}
	if tok == nil || tok.AccessToken == "" {
		return "", notification.ErrMissingCredential
	}
	return tok.AccessToken, nil
}

func (t *Transport) establish(dialCtx context.Context, life context.Context, gen uint64, token string) error {
	sess, err := t.open(dialCtx, life, token)
	if err != nil {
		t.fail(gen, nil, err)
		return fmt.Errorf("%w: %w", notification.ErrTransport, err)
	}

	t.mu.Lock()
	if gen != t.gen || !t.active {
		t.mu.Unlock()
		sess.close()
		return fmt.Errorf("%w: disconnected while connecting", notification.ErrTransport)
	}
	t.sess = sess
	t.attempt = 0
	t.state = notification.Connected
	onConnected := t.onConnected
	t.mu.Unlock()

	t.logger.InfoContext(life, "realtime connected",
		xslog.URL(t.url),
		xslog.Destination(t.destination),
	)
	t.notify(notification.Connected)

	go t.readLoop(gen, sess)
	if sess.send > 0 {
		go t.heartBeatLoop(gen, sess)
	}

	if onConnected != nil {
		onConnected()
	}
	return nil
}

func (t *Transport) open(ctx context.Context, life context.Context, token string) (*session, error) {
	header := http.Header{}
	header.Set(xhttp.Authorization, xhttp.BearerPrefix+token)

	conn, err := t.dialer.DialContext(ctx, t.url, header)
	if err != nil {
		return nil, err
	}

	sess := newSession(life, conn, subscriptionID)
	stop := context.AfterFunc(ctx, sess.close)
	defer stop()

	connect := stomp.New(stomp.CommandConnect,
		stomp.HeaderAcceptVersion, stomp.Version,
		stomp.HeaderHost, hostOf(t.url),
		stomp.HeaderHeartBeat, t.heartBeat.String(),
		stomp.HeaderAuthorization, xhttp.BearerPrefix+token,
	)
	if err := sess.write(connect); err != nil {
		sess.close()
		return nil, err
	}

	_ = conn.SetReadDeadline(time.Now().Add(connectTimeout))
	connected, err := readConnected(conn)
	if err != nil {
		sess.close()
		return nil, err
	}
	_ = conn.SetReadDeadline(time.Time{})

	remote, err := stomp.ParseHeartBeat(connected.Value(stomp.HeaderHeartBeat))
	if err != nil {
		t.logger.DebugContext(ctx, "ignoring server heart-beat header", xslog.Error(err))
	}
	sess.send, sess.receive = stomp.Negotiate(t.heartBeat, remote)

	subscribe := stomp.New(stomp.CommandSubscribe,
		stomp.HeaderID, sess.subID,
		stomp.HeaderDestination, t.destination,
		stomp.HeaderAck, "auto",
	)
	if err := sess.write(subscribe); err != nil {
		sess.close()
		return nil, err
	}

	if sess.isClosed() {
		return nil, fmt.Errorf("connect cancelled: %w", context.Cause(ctx))
	}
	return sess, nil
}

func readConnected(conn Conn) (stomp.Frame, error) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return stomp.Frame{}, fmt.Errorf("failed to read CONNECTED: %w", err)
		}
		frames, err := stomp.Decode(data)
		if err != nil {
			return stomp.Frame{}, fmt.Errorf("failed to decode CONNECTED: %w", err)
		}
		for _, f := range frames {
			switch f.Command {
			case stomp.CommandConnected:
				return f, nil
			case stomp.CommandError:
				return stomp.Frame{}, serverError(f)
			}
		}
	}
}

func serverError(f stomp.Frame) error {
	msg := f.Value(stomp.HeaderMessage)
	if msg == "" {
		msg = string(f.Body)
	}
	return fmt.Errorf("server error: %s", msg)
}

func (t *Transport) readLoop(gen uint64, sess *session) {
	for {
		if sess.receive > 0 {
			_ = sess.conn.SetReadDeadline(time.Now().Add(2 * sess.receive))
		}
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			if !sess.isClosed() {
				t.fail(gen, sess, fmt.Errorf("failed to read: %w", err))
			}
			return
		}

		frames, err := stomp.Decode(data)
		if err != nil {
			t.logger.WarnContext(sess.ctx, "dropping malformed frame",
				xslog.Error(err),
				xslog.Data(string(data)),
			)
		}

		for _, f := range frames {
			switch f.Command {
			case stomp.CommandMessage:
				t.deliver(sess, f)
			case stomp.CommandError:
				t.fail(gen, sess, serverError(f))
				return
			default:
				t.logger.DebugContext(sess.ctx, "ignoring frame",
					xslog.FrameGroup(f.Command, f.Value(stomp.HeaderDestination), len(f.Body)),
				)
			}
		}
	}
}

func (t *Transport) deliver(sess *session, f stomp.Frame) {
	if sub, ok := f.Get(stomp.HeaderSubscription); ok && sub != sess.subID {
		return
	}

	record, err := notification.Decode(f.Body)
	if err != nil {
		t.logger.WarnContext(sess.ctx, "dropping notification",
			xslog.Error(err),
			xslog.Data(string(f.Body)),
		)
		return
	}

	t.logger.DebugContext(sess.ctx, "notification received",
		xslog.NotificationGroup(record.ID.String(), record.SenderID.String(), record.SenderRole.String()),
	)

	t.mu.Lock()
	h := t.onMessage
	t.mu.Unlock()
	if h != nil {
		h(record)
	}
}

func (t *Transport) heartBeatLoop(gen uint64, sess *session) {
	ticker := time.NewTicker(sess.send)
	defer ticker.Stop()

	for {
		select {
		case <-sess.ctx.Done():
			return
		case <-ticker.C:
			if err := sess.writeRaw(stomp.HeartBeat); err != nil {
				if !sess.isClosed() {
					t.fail(gen, sess, err)
				}
				return
			}
		}
	}
}

// fail marks the transport Failed and schedules the next attempt. Failures
// from superseded sessions or after Disconnect are ignored.
func (t *Transport) fail(gen uint64, sess *session, cause error) {
	t.mu.Lock()
	if gen != t.gen || !t.active || (sess != nil && t.sess != sess) {
		t.mu.Unlock()
		if sess != nil {
			sess.close()
		}
		return
	}
	t.sess = nil
	t.state = notification.Failed
	delay, retry := t.policy.Next(t.attempt)
	t.attempt++
	attempt := t.attempt
	if retry {
		t.timer = t.afterFunc(delay, func() { t.reconnect(gen) })
	}
	ctx := t.ctx
	t.mu.Unlock()

	if sess != nil {
		sess.close()
	}

	if retry {
		t.logger.WarnContext(ctx, "realtime connection failed, reconnecting",
			xslog.Error(cause),
			xslog.Attempt(attempt),
			xslog.Delay(delay),
		)
	} else {
		t.logger.ErrorContext(ctx, "realtime connection failed, giving up",
			xslog.Error(cause),
			xslog.Attempt(attempt),
		)
	}
	t.notify(notification.Failed)
}

func (t *Transport) reconnect(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || !t.active || t.state != notification.Failed {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	t.state = notification.Connecting
	life := t.ctx
	t.mu.Unlock()

	t.notify(notification.Connecting)

	token, err := t.token()
	if err != nil {
		t.mu.Lock()
		current := gen == t.gen
		if current {
			t.state = notification.Failed
		}
		t.mu.Unlock()
		if current {
			t.logger.ErrorContext(life, "realtime reconnect stopped", xslog.Error(err))
			t.notify(notification.Failed)
		}
		return
	}

	ctx, cancel := context.WithTimeout(life, connectTimeout)
	defer cancel()
	// failures are logged and rescheduled by fail
	_ = t.establish(ctx, life, gen, token)
}

// must hold t.mu
func (t *Transport) stopTimerLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// notify reports s to the state handler unless the transport has already
// moved past it. Observers never see an older state after a newer one.
func (t *Transport) notify(s notification.ConnectionState) {
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()

	t.mu.Lock()
	h := t.onState
	current := t.state
	t.mu.Unlock()
	if h == nil || s != current || s == t.notified {
		return
	}
	t.notified = s
	h(s)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
