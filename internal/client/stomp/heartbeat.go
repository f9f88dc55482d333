package stomp

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
)

// HeartBeatSpec is the pair carried in a heart-beat header: the smallest
// interval the sender can emit at, and the interval it wants to receive at.
// Zero means "cannot" or "does not want".
type HeartBeatSpec struct {
	Send    time.Duration
	Receive time.Duration
}

func (h HeartBeatSpec) String() string {
	return strconv.FormatInt(h.Send.Milliseconds(), 10) + "," + strconv.FormatInt(h.Receive.Milliseconds(), 10)
}

func ParseHeartBeat(v string) (HeartBeatSpec, error) {
	if v == "" {
		return HeartBeatSpec{}, nil
	}
	send, receive, err := frame.ParseHeartBeat(v)
	if err != nil {
		return HeartBeatSpec{}, fmt.Errorf("%w: heart-beat %q", ErrMalformedHeader, v)
	}
	return HeartBeatSpec{Send: send, Receive: receive}, nil
}

// Negotiate returns the intervals local should send at and expect to
// receive at, given what local asked for and what remote answered.
func Negotiate(local, remote HeartBeatSpec) (send, receive time.Duration) {
	if local.Send > 0 && remote.Receive > 0 {
		send = max(local.Send, remote.Receive)
	}
	if local.Receive > 0 && remote.Send > 0 {
		receive = max(local.Receive, remote.Send)
	}
	return send, receive
}
