package realtime

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/oauth2"

	"github.com/garrettladley/fixit/internal/client/stomp"
	"github.com/garrettladley/fixit/internal/notification"
)

const testURL = "ws://fixit.test/ws/websocket"

func newTestTransport(t *testing.T, tokens oauth2.TokenSource, opts ...Option) (*Transport, *fakeDialer, *fakeClock) {
	t.Helper()
	d := newFakeDialer()
	c := &fakeClock{}
	opts = append([]Option{WithDialer(d), WithAfterFunc(c.AfterFunc)}, opts...)
	tr := New(testURL, tokens, opts...)
	t.Cleanup(tr.Disconnect)
	return tr, d, c
}

func message(body string) stomp.Frame {
	f := stomp.New(stomp.CommandMessage,
		stomp.HeaderDestination, DefaultDestination,
		stomp.HeaderSubscription, subscriptionID,
		stomp.HeaderMessageID, "m",
	)
	f.Body = []byte(body)
	return f
}

func TestTransportConnect(t *testing.T) {
	t.Parallel()

	tr, d, _ := newTestTransport(t, staticToken("tok"))

	var (
		mu     sync.Mutex
		states []notification.ConnectionState
	)
	tr.OnStateChange(func(s notification.ConnectionState) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, s)
	})
	connected := 0
	tr.OnConnected(func() { connected++ })

	if err := tr.Connect(t.Context()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if got := tr.State(); got != notification.Connected {
		t.Fatalf("State() = %v, want connected", got)
	}
	if connected != 1 {
		t.Errorf("connected hook ran %d times, want 1", connected)
	}

	if got := d.headers[0].Get("Authorization"); got != "Bearer tok" {
		t.Errorf("dial Authorization = %q, want Bearer tok", got)
	}

	conn := d.last()
	connect, ok := conn.frame(stomp.CommandConnect)
	if !ok {
		t.Fatal("no CONNECT frame written")
	}
	if got := connect.Value(stomp.HeaderAuthorization); got != "Bearer tok" {
		t.Errorf("CONNECT Authorization = %q, want Bearer tok", got)
	}
	if got := connect.Value(stomp.HeaderHeartBeat); got != "10000,10000" {
		t.Errorf("CONNECT heart-beat = %q, want 10000,10000", got)
	}
	if got := connect.Value(stomp.HeaderHost); got != "fixit.test" {
		t.Errorf("CONNECT host = %q, want fixit.test", got)
	}

	sub, ok := conn.frame(stomp.CommandSubscribe)
	if !ok {
		t.Fatal("no SUBSCRIBE frame written")
	}
	if got := sub.Value(stomp.HeaderDestination); got != DefaultDestination {
		t.Errorf("SUBSCRIBE destination = %q, want %q", got, DefaultDestination)
	}

	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]notification.ConnectionState{notification.Connecting, notification.Connected}, states); diff != "" {
		t.Errorf("state transitions (-want +got):\n%s", diff)
	}
}

func TestTransportConnectIdempotent(t *testing.T) {
	t.Parallel()

	tr, d, _ := newTestTransport(t, staticToken("tok"))

	for range 3 {
		if err := tr.Connect(t.Context()); err != nil {
			t.Fatalf("Connect() error = %v", err)
		}
	}
	if got := d.dials(); got != 1 {
		t.Errorf("dials = %d, want 1", got)
	}
}

func TestTransportMissingCredential(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		tokens oauth2.TokenSource
	}{
		{name: "nil source", tokens: nil},
		{name: "source error", tokens: tokenFunc(func() (*oauth2.Token, error) { return nil, errors.New("no token") })},
		{name: "empty token", tokens: staticToken("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tr, d, c := newTestTransport(t, tt.tokens)

			err := tr.Connect(t.Context())
			if !errors.Is(err, notification.ErrMissingCredential) {
				t.Fatalf("Connect() error = %v, want ErrMissingCredential", err)
			}
			if d.dials() != 0 {
				t.Errorf("dials = %d, want 0", d.dials())
			}
			if c.count() != 0 {
				t.Errorf("scheduled %d reconnects, want 0", c.count())
			}
			if got := tr.State(); got != notification.Disconnected {
				t.Errorf("State() = %v, want disconnected", got)
			}
		})
	}
}

func TestTransportDeliversInOrder(t *testing.T) {
	t.Parallel()

	tr, d, _ := newTestTransport(t, staticToken("tok"))

	got := make(chan notification.ID, 8)
	tr.OnMessage(func(r notification.Record) { got <- r.ID })

	if err := tr.Connect(t.Context()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	conn := d.last()
	conn.push(message(`{"id":1,"senderRole":"CUSTOMER"}`))
	conn.pushRaw("\n")
	conn.push(message(`not json`))
	conn.push(message(`{"id":2}`))

	other := message(`{"id":99}`)
	other.Set(stomp.HeaderSubscription, "sub-other")
	conn.push(other)

	conn.push(message(`{"id":3}`))

	want := []notification.ID{"1", "2", "3"}
	for i, w := range want {
		select {
		case id := <-got:
			if id != w {
				t.Fatalf("message %d = %s, want %s", i, id, w)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}
	if got := tr.State(); got != notification.Connected {
		t.Errorf("State() = %v after malformed payload, want connected", got)
	}
}

func TestTransportReconnectAfterDialFailure(t *testing.T) {
	t.Parallel()

	tr, d, c := newTestTransport(t, staticToken("tok"))
	d.setFail(true)

	err := tr.Connect(t.Context())
	if !errors.Is(err, notification.ErrTransport) {
		t.Fatalf("Connect() error = %v, want ErrTransport", err)
	}
	if got := tr.State(); got != notification.Failed {
		t.Fatalf("State() = %v, want failed", got)
	}
	if got := c.last(t).d; got != DefaultReconnectDelay {
		t.Errorf("reconnect delay = %v, want %v", got, DefaultReconnectDelay)
	}

	c.fire(t)
	if got := tr.State(); got != notification.Failed {
		t.Fatalf("State() after second failure = %v, want failed", got)
	}
	if got := c.count(); got != 2 {
		t.Fatalf("scheduled reconnects = %d, want 2", got)
	}
	if got := c.last(t).d; got != DefaultReconnectDelay {
		t.Errorf("second reconnect delay = %v, want fixed %v", got, DefaultReconnectDelay)
	}

	d.setFail(false)
	c.fire(t)
	if got := tr.State(); got != notification.Connected {
		t.Fatalf("State() after recovery = %v, want connected", got)
	}
	if got := d.dials(); got != 3 {
		t.Errorf("dials = %d, want 3", got)
	}
}

func TestTransportReconnectAfterSessionDrop(t *testing.T) {
	t.Parallel()

	tr, d, c := newTestTransport(t, staticToken("tok"))
	reconnected := make(chan struct{}, 4)
	tr.OnConnected(func() { reconnected <- struct{}{} })

	if err := tr.Connect(t.Context()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	<-reconnected

	_ = d.last().Close()
	waitFor(t, "failed state", func() bool { return tr.State() == notification.Failed })
	if c.count() != 1 {
		t.Fatalf("scheduled reconnects = %d, want 1", c.count())
	}

	c.fire(t)
	select {
	case <-reconnected:
	case <-time.After(2 * time.Second):
		t.Fatal("did not reconnect")
	}
	if got := d.dials(); got != 2 {
		t.Errorf("dials = %d, want 2", got)
	}
}

func TestTransportServerErrorFrame(t *testing.T) {
	t.Parallel()

	tr, d, c := newTestTransport(t, staticToken("tok"))
	if err := tr.Connect(t.Context()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	d.last().push(stomp.New(stomp.CommandError, stomp.HeaderMessage, "session expired"))
	waitFor(t, "failed state", func() bool { return tr.State() == notification.Failed })
	if c.count() != 1 {
		t.Errorf("scheduled reconnects = %d, want 1", c.count())
	}
}

func TestTransportRejectedConnect(t *testing.T) {
	t.Parallel()

	tr, d, c := newTestTransport(t, staticToken("tok"))
	d.reply = stomp.New(stomp.CommandError, stomp.HeaderMessage, "invalid token")

	err := tr.Connect(t.Context())
	if !errors.Is(err, notification.ErrTransport) {
		t.Fatalf("Connect() error = %v, want ErrTransport", err)
	}
	if !d.last().isClosed() {
		t.Error("rejected connection left open")
	}
	if c.count() != 1 {
		t.Errorf("scheduled reconnects = %d, want 1", c.count())
	}
}

func TestTransportDisconnectStopsReconnect(t *testing.T) {
	t.Parallel()

	tr, d, c := newTestTransport(t, staticToken("tok"))
	d.setFail(true)

	_ = tr.Connect(t.Context())
	timer := c.last(t)

	tr.Disconnect()
	if got := tr.State(); got != notification.Disconnected {
		t.Fatalf("State() = %v, want disconnected", got)
	}
	if !timer.stopped {
		t.Error("reconnect timer not stopped")
	}

	// a callback that already fired must not dial either
	d.setFail(false)
	timer.f()

	if got := d.dials(); got != 1 {
		t.Errorf("dials = %d, want 1", got)
	}
	if got := tr.State(); got != notification.Disconnected {
		t.Errorf("State() = %v, want disconnected", got)
	}
}

func TestTransportDisconnect(t *testing.T) {
	t.Parallel()

	tr, d, c := newTestTransport(t, staticToken("tok"))
	if err := tr.Connect(t.Context()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	conn := d.last()

	tr.Disconnect()
	tr.Disconnect()

	if !conn.isClosed() {
		t.Error("connection not closed")
	}
	want := []string{stomp.CommandConnect, stomp.CommandSubscribe, stomp.CommandUnsubscribe, stomp.CommandDisconnect}
	if diff := cmp.Diff(want, conn.commands()); diff != "" {
		t.Errorf("frames written (-want +got):\n%s", diff)
	}
	if got := tr.State(); got != notification.Disconnected {
		t.Errorf("State() = %v, want disconnected", got)
	}
	if c.count() != 0 {
		t.Errorf("scheduled reconnects = %d, want 0", c.count())
	}

	if err := tr.Connect(t.Context()); err != nil {
		t.Fatalf("Connect() after Disconnect error = %v", err)
	}
	if got := tr.State(); got != notification.Connected {
		t.Errorf("State() = %v, want connected", got)
	}
}

func TestTransportPolicyGivesUp(t *testing.T) {
	t.Parallel()

	policy := &Exponential{Initial: time.Second, Max: 4 * time.Second, Factor: 2, MaxAttempts: 2}
	tr, d, c := newTestTransport(t, staticToken("tok"), WithPolicy(policy))
	d.setFail(true)

	_ = tr.Connect(t.Context())
	if got := c.last(t).d; got != time.Second {
		t.Errorf("first delay = %v, want 1s", got)
	}
	c.fire(t)
	if got := c.last(t).d; got != 2*time.Second {
		t.Errorf("second delay = %v, want 2s", got)
	}
	c.fire(t)

	if got := c.count(); got != 2 {
		t.Errorf("scheduled reconnects = %d, want 2", got)
	}
	if got := tr.State(); got != notification.Failed {
		t.Errorf("State() = %v, want failed", got)
	}

	// a manual Connect after giving up gets the full retry budget again
	_ = tr.Connect(t.Context())
	if got := c.count(); got != 3 {
		t.Fatalf("scheduled reconnects after Connect = %d, want 3", got)
	}
	if got := c.last(t).d; got != time.Second {
		t.Errorf("delay after Connect = %v, want 1s", got)
	}
}

func TestTransportSendsHeartBeats(t *testing.T) {
	t.Parallel()

	tr, d, _ := newTestTransport(t, staticToken("tok"),
		WithHeartBeat(stomp.HeartBeatSpec{Send: 10 * time.Millisecond}),
	)
	d.reply = stomp.New(stomp.CommandConnected,
		stomp.HeaderVersion, stomp.Version,
		stomp.HeaderHeartBeat, "0,10",
	)

	if err := tr.Connect(t.Context()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	conn := d.last()
	waitFor(t, "heart-beats", func() bool { return conn.heartBeats() >= 2 })

	if got := tr.State(); got != notification.Connected {
		t.Errorf("State() = %v, want connected", got)
	}
}

func TestTransportSurvivesOversizedContentLength(t *testing.T) {
	t.Parallel()

	tr, d, _ := newTestTransport(t, staticToken("tok"))

	got := make(chan notification.ID, 1)
	tr.OnMessage(func(r notification.Record) { got <- r.ID })

	if err := tr.Connect(t.Context()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	conn := d.last()
	conn.pushRaw("MESSAGE\ncontent-length:9223372036854775807\n\nx\x00")
	conn.push(message(`{"id":7}`))

	select {
	case id := <-got:
		if id != "7" {
			t.Errorf("message = %s, want 7", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message after oversized frame")
	}
	if got := tr.State(); got != notification.Connected {
		t.Errorf("State() = %v, want connected", got)
	}
}

func TestTransportDropsStaleStateChange(t *testing.T) {
	t.Parallel()

	tr, _, _ := newTestTransport(t, staticToken("tok"))

	var (
		mu     sync.Mutex
		states []notification.ConnectionState
	)
	tr.OnStateChange(func(s notification.ConnectionState) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, s)
	})

	if err := tr.Connect(t.Context()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	tr.Disconnect()

	// a failure that lost the race with Disconnect reports late
	tr.notify(notification.Failed)

	mu.Lock()
	defer mu.Unlock()
	want := []notification.ConnectionState{notification.Connecting, notification.Connected, notification.Disconnected}
	if diff := cmp.Diff(want, states); diff != "" {
		t.Errorf("state transitions (-want +got):\n%s", diff)
	}
}
