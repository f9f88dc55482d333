package realtime

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/oauth2"

	"github.com/garrettladley/fixit/internal/client/stomp"
)

var errConnClosed = errors.New("use of closed connection")

type fakeConn struct {
	in        chan []byte
	closed    chan struct{}
	closeOnce sync.Once
	reply     stomp.Frame

	mu      sync.Mutex
	written []stomp.Frame
	beats   int
}

func newFakeConn(reply stomp.Frame) *fakeConn {
	return &fakeConn{
		in:     make(chan []byte, 16),
		closed: make(chan struct{}),
		reply:  reply,
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case <-c.closed:
		return 0, nil, errConnClosed
	default:
	}
	select {
	case data := <-c.in:
		return websocket.TextMessage, data, nil
	case <-c.closed:
		return 0, nil, errConnClosed
	}
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	select {
	case <-c.closed:
		return errConnClosed
	default:
	}
	frames, err := stomp.Decode(data)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.written = append(c.written, frames...)
	if len(frames) == 0 {
		c.beats++
	}
	c.mu.Unlock()
	for _, f := range frames {
		if f.Command == stomp.CommandConnect {
			c.in <- stomp.Encode(c.reply)
		}
	}
	return nil
}

func (c *fakeConn) SetReadDeadline(time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) push(f stomp.Frame) {
	c.in <- stomp.Encode(f)
}

func (c *fakeConn) pushRaw(data string) {
	c.in <- []byte(data)
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *fakeConn) commands() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.written))
	for i, f := range c.written {
		out[i] = f.Command
	}
	return out
}

func (c *fakeConn) frame(command string) (stomp.Frame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range c.written {
		if f.Command == command {
			return f, true
		}
	}
	return stomp.Frame{}, false
}

type fakeDialer struct {
	mu      sync.Mutex
	fail    bool
	reply   stomp.Frame
	headers []http.Header
	conns   []*fakeConn
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{
		reply: stomp.New(stomp.CommandConnected, stomp.HeaderVersion, stomp.Version, stomp.HeaderHeartBeat, "0,0"),
	}
}

func (d *fakeDialer) DialContext(ctx context.Context, _ string, header http.Header) (Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.headers = append(d.headers, header.Clone())
	if d.fail {
		return nil, errors.New("connection refused")
	}
	c := newFakeConn(d.reply)
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *fakeDialer) setFail(fail bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fail = fail
}

func (d *fakeDialer) dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.headers)
}

func (d *fakeDialer) last() *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		return nil
	}
	return d.conns[len(d.conns)-1]
}

type fakeTimer struct {
	clock   *fakeClock
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func (c *fakeClock) last(t *testing.T) *fakeTimer {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.timers) == 0 {
		t.Fatal("no timer scheduled")
	}
	return c.timers[len(c.timers)-1]
}

// fire runs the most recent timer as if it elapsed, unless it was stopped.
func (c *fakeClock) fire(t *testing.T) {
	t.Helper()
	timer := c.last(t)
	c.mu.Lock()
	stopped := timer.stopped
	timer.stopped = true
	c.mu.Unlock()
	if !stopped {
		timer.f()
	}
}

type tokenFunc func() (*oauth2.Token, error)

func (f tokenFunc) Token() (*oauth2.Token, error) { return f() }

func staticToken(tok string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok})
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func (c *fakeConn) heartBeats() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.beats
}
