package presenter

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/garrettladley/fixit/internal/notification"
)

func TestResolveClickAction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		senderRole notification.Role
		userRole   notification.Role
		want       Intent
		wantURL    string
	}{
		{
			name:       "admin sender to customer",
			senderRole: notification.RoleAdmin,
			userRole:   notification.RoleCustomer,
			want:       Intent{Kind: IntentAdminChat, PeerID: "s1"},
		},
		{
			name:       "admin sender to admin",
			senderRole: notification.RoleAdmin,
			userRole:   notification.RoleAdmin,
			want:       Intent{Kind: IntentAdminChat, PeerID: "s1"},
		},
		{
			name:       "customer sender to provider",
			senderRole: notification.RoleCustomer,
			userRole:   notification.RoleProvider,
			want:       Intent{Kind: IntentProviderDashboard, Tab: 6},
			wantURL:    "https://app.test/provider-dashboard?activeTab=6",
		},
		{
			name:       "provider sender to admin",
			senderRole: notification.RoleProvider,
			userRole:   notification.RoleAdmin,
			want:       Intent{Kind: IntentAdminDashboard, Tab: 4},
			wantURL:    "https://app.test/admin-dashboard?activeTab=4",
		},
		{
			name:       "provider sender to customer",
			senderRole: notification.RoleProvider,
			userRole:   notification.RoleCustomer,
			want:       Intent{Kind: IntentDirectChat, PeerID: "s1"},
			wantURL:    "https://app.test/chat/s1",
		},
		{
			name:       "no current role",
			senderRole: notification.RoleProvider,
			userRole:   "",
			want:       Intent{Kind: IntentDirectChat, PeerID: "s1"},
			wantURL:    "https://app.test/chat/s1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := notification.Record{ID: "n1", SenderID: "s1", SenderRole: tt.senderRole}
			got := ResolveClickAction(r, tt.userRole)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("ResolveClickAction() mismatch (-want +got):\n%s", diff)
			}
			if u := got.URL("https://app.test/"); u != tt.wantURL {
				t.Errorf("URL() = %q, want %q", u, tt.wantURL)
			}
		})
	}
}

func TestViewAllURL(t *testing.T) {
	t.Parallel()

	if got := ViewAll().URL("https://app.test"); got != "https://app.test/notifications" {
		t.Errorf("ViewAll().URL() = %q", got)
	}
}

type markerFunc func(ctx context.Context, id notification.ID) error

func (f markerFunc) MarkRead(ctx context.Context, id notification.ID) error { return f(ctx, id) }

func TestPresenterClick(t *testing.T) {
	t.Parallel()

	var marked []notification.ID
	marker := markerFunc(func(_ context.Context, id notification.ID) error {
		marked = append(marked, id)
		return errors.New("offline")
	})

	signals := NewSignals()
	requests, unsubscribe := signals.Subscribe(1)
	defer unsubscribe()

	p := New(marker, signals, notification.RoleCustomer, nil)

	got := p.Click(t.Context(), notification.Record{ID: "n1", SenderID: "a1", SenderRole: notification.RoleAdmin})
	if got.Kind != IntentAdminChat {
		t.Fatalf("Click() kind = %v, want IntentAdminChat", got.Kind)
	}
	select {
	case req := <-requests:
		if req.AdminID != "a1" {
			t.Errorf("AdminID = %q, want a1", req.AdminID)
		}
	default:
		t.Fatal("no admin chat signal published")
	}

	got = p.Click(t.Context(), notification.Record{ID: "n2", SenderID: "c1", SenderRole: notification.RoleCustomer})
	if got.Kind != IntentDirectChat {
		t.Fatalf("Click() kind = %v, want IntentDirectChat", got.Kind)
	}
	select {
	case req := <-requests:
		t.Fatalf("unexpected signal %+v", req)
	default:
	}

	if diff := cmp.Diff([]notification.ID{"n1", "n2"}, marked); diff != "" {
		t.Errorf("marked (-want +got):\n%s", diff)
	}
}
