package notification

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		want    Record
		wantErr bool
	}{
		{
			name: "numeric ids and local date-time",
			body: `{"id":42,"senderId":7,"senderRole":"PROVIDER","senderName":"Ana","messageContent":"hi","sentAt":"2024-05-01T10:20:30","isRead":false}`,
			want: Record{
				ID:             "42",
				SenderID:       "7",
				SenderRole:     RoleProvider,
				SenderName:     "Ana",
				MessageContent: "hi",
				SentAt:         Timestamp{time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC)},
			},
		},
		{
			name: "string ids and rfc3339",
			body: `{"id":"n-1","senderId":"u-1","senderRole":"ADMIN","sentAt":"2024-05-01T10:20:30Z","isRead":true}`,
			want: Record{
				ID:         "n-1",
				SenderID:   "u-1",
				SenderRole: RoleAdmin,
				SentAt:     Timestamp{time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC)},
				IsRead:     true,
			},
		},
		{name: "not json", body: `hello`, wantErr: true},
		{name: "missing id", body: `{"senderName":"x"}`, wantErr: true},
		{name: "bad timestamp", body: `{"id":1,"sentAt":"yesterday"}`, wantErr: true},
		{name: "object id", body: `{"id":{"x":1}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Decode([]byte(tt.body))
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedPayload) {
					t.Fatalf("Decode() error = %v, want ErrMalformedPayload", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got, cmp.Comparer(func(a, b Timestamp) bool { return a.Equal(b.Time) })); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
