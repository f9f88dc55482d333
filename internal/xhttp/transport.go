package xhttp

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/garrettladley/fixit/internal/version"
)

// clientTransport stamps every outbound request with the client version,
// the CLI session id, and a fresh request id the server can adopt.
type clientTransport struct {
	base      http.RoundTripper
	sessionID string
	requestID func() string
}

var _ http.RoundTripper = (*clientTransport)(nil)

func (t *clientTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	v := version.Get()
	req.Header.Set(UserAgent, "fixit/"+v)
	req.Header.Set(version.Header, v)
	if t.sessionID != "" {
		SetRequestHeaderSessionID(req, t.sessionID)
	}
	if req.Header.Get(XRequestID) == "" {
		req.Header.Set(XRequestID, t.requestID())
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform round trip: %w", err)
	}
	return resp, nil
}

type TransportOption func(*clientTransport)

func WithSessionID(id string) TransportOption {
	return func(t *clientTransport) { t.sessionID = id }
}

func WithBase(base http.RoundTripper) TransportOption {
	return func(t *clientTransport) { t.base = base }
}

func WithRequestIDFunc(fn func() string) TransportOption {
	return func(t *clientTransport) { t.requestID = fn }
}

func NewTransport(opts ...TransportOption) http.RoundTripper {
	t := &clientTransport{
		base:      http.DefaultTransport,
		requestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}
