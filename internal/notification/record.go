package notification

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	go_json "github.com/goccy/go-json"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleProvider Role = "PROVIDER"
	RoleCustomer Role = "CUSTOMER"
)

func (r Role) String() string { return string(r) }

// ID is an opaque identifier. The server emits ids either as JSON strings
// or as JSON numbers; both decode to the same ID.
type ID string

func (id ID) String() string { return string(id) }

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := go_json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return fmt.Errorf("invalid id %s", data)
	}
	*id = ID(data)
	return nil
}

// Timestamp accepts RFC 3339 as well as zone-less ISO-8601 local date-times,
// which are interpreted as UTC.
type Timestamp struct {
	time.Time
}

const localDateTime = "2006-01-02T15:04:05.999999999"

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := go_json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to decode timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.ParseInLocation(localDateTime, s, time.UTC)
	if err != nil {
		return fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return go_json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

type Record struct {
	ID             ID        `json:"id"`
	SenderID       ID        `json:"senderId"`
	SenderRole     Role      `json:"senderRole"`
	SenderName     string    `json:"senderName"`
	MessageContent string    `json:"messageContent"`
	SentAt         Timestamp `json:"sentAt"`
	IsRead         bool      `json:"isRead"`
}

// Decode parses a single realtime payload. Any failure, including a
// missing id, is reported as ErrMalformedPayload.
func Decode(body []byte) (Record, error) {
	var r Record
	if err := go_json.Unmarshal(body, &r); err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if r.ID == "" {
		return Record{}, fmt.Errorf("%w: missing id", ErrMalformedPayload)
	}
	return r, nil
}
