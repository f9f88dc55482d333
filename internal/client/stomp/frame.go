// Package stomp carries STOMP 1.2 frames over websocket messages. The wire
// format is read and written by go-stomp's frame package; this package adds
// the value type the transport and dev server share, and the per-message
// framing a websocket needs.
package stomp

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/go-stomp/stomp/v3/frame"
)

const (
	CommandConnect     = "CONNECT"
	CommandStomp       = "STOMP"
	CommandConnected   = "CONNECTED"
	CommandSend        = "SEND"
	CommandSubscribe   = "SUBSCRIBE"
	CommandUnsubscribe = "UNSUBSCRIBE"
	CommandDisconnect  = "DISCONNECT"
	CommandMessage     = "MESSAGE"
	CommandReceipt     = "RECEIPT"
	CommandError       = "ERROR"
)

const (
	HeaderAcceptVersion = "accept-version"
	HeaderVersion       = "version"
	HeaderHost          = "host"
	HeaderHeartBeat     = "heart-beat"
	HeaderAuthorization = "Authorization"
	HeaderDestination   = "destination"
	HeaderID            = "id"
	HeaderAck           = "ack"
	HeaderSubscription  = "subscription"
	HeaderMessageID     = "message-id"
	HeaderReceipt       = "receipt"
	HeaderReceiptID     = "receipt-id"
	HeaderContentType   = "content-type"
	HeaderContentLength = "content-length"
	HeaderMessage       = "message"
	HeaderUserName      = "user-name"
)

const Version = "1.2"

var (
	ErrMissingNull     = errors.New("stomp: frame is not null terminated")
	ErrMalformedHeader = errors.New("stomp: malformed header")
	ErrMalformedFrame  = errors.New("stomp: malformed frame")
)

// HeartBeat is the single end-of-line frame peers exchange to prove liveness.
var HeartBeat = []byte{'\n'}

type Header struct {
	Key   string
	Value string
}

type Frame struct {
	Command string
	Headers []Header
	Body    []byte
}

func New(command string, kv ...string) Frame {
	f := Frame{Command: command}
	for i := 0; i+1 < len(kv); i += 2 {
		f.Headers = append(f.Headers, Header{Key: kv[i], Value: kv[i+1]})
	}
	return f
}

// Get returns the first value for key. Repeated headers keep their first value.
func (f Frame) Get(key string) (string, bool) {
	for _, h := range f.Headers {
		if h.Key == key {
			return h.Value, true
		}
	}
	return "", false
}

func (f Frame) Value(key string) string {
	v, _ := f.Get(key)
	return v
}

func (f *Frame) Set(key, value string) {
	for i, h := range f.Headers {
		if h.Key == key {
			f.Headers[i].Value = value
			return
		}
	}
	f.Headers = append(f.Headers, Header{Key: key, Value: value})
}

// Encode serializes f. A content-length header is added when the frame has a body.
func Encode(f Frame) []byte {
	wire := frame.New(f.Command)
	hasLength := false
	for _, h := range f.Headers {
		if h.Key == HeaderContentLength {
			hasLength = true
		}
		wire.Header.Add(h.Key, h.Value)
	}
	if len(f.Body) > 0 && !hasLength {
		wire.Header.Add(HeaderContentLength, strconv.Itoa(len(f.Body)))
	}
	wire.Body = f.Body

	var buf bytes.Buffer
	// bytes.Buffer writes do not fail
	_ = frame.NewWriter(&buf).Write(wire)
	return buf.Bytes()
}

// endOfMessage is appended to every decoded message. Reading it back
// proves every frame before it was complete.
var endOfMessage = []byte("\n" + endCommand + "\n\n\x00")

const endCommand = "FIXIT-END-OF-MESSAGE"

// Decode parses every frame in data. Heart-beat EOLs between frames are
// skipped, so a message holding only a heart-beat yields no frames.
func Decode(data []byte) ([]Frame, error) {
	if err := checkContentLengths(data); err != nil {
		return nil, err
	}
	if !terminated(data) {
		return nil, ErrMissingNull
	}

	r := frame.NewReader(io.MultiReader(bytes.NewReader(data), bytes.NewReader(endOfMessage)))
	var frames []Frame
	for {
		wire, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return frames, ErrMissingNull
			}
			return frames, fmt.Errorf("%w: %w", ErrMalformedFrame, err)
		}
		if wire == nil {
			continue
		}
		if wire.Command == endCommand {
			return frames, nil
		}
		frames = append(frames, fromWire(wire))
	}
}

func fromWire(wire *frame.Frame) Frame {
	f := Frame{Command: wire.Command}
	for i := range wire.Header.Len() {
		k, v := wire.Header.GetAt(i)
		f.Headers = append(f.Headers, Header{Key: k, Value: v})
	}
	if len(wire.Body) > 0 {
		f.Body = wire.Body
	}
	return f
}

// terminated reports whether data, less trailing heart-beats, is empty or
// ends in the null byte that closes a frame.
func terminated(data []byte) bool {
	data = bytes.TrimRight(data, "\r\n")
	return len(data) == 0 || data[len(data)-1] == 0
}

// checkContentLengths rejects any content-length line whose value could not
// fit in what is left of the message. The frame reader allocates the full
// length before reading the body.
func checkContentLengths(data []byte) error {
	prefix := []byte(HeaderContentLength + ":")
	rest := data
	for len(rest) > 0 {
		line, next, found := bytes.Cut(rest, []byte{'\n'})
		if !found {
			next = nil
		}
		if v, ok := bytes.CutPrefix(line, prefix); ok {
			v = bytes.TrimSuffix(v, []byte{'\r'})
			n, err := strconv.ParseInt(string(v), 10, 64)
			if err != nil || n < 0 || n > int64(len(next)) {
				return fmt.Errorf("%w: content-length %q", ErrMalformedHeader, v)
			}
		}
		rest = next
	}
	return nil
}
