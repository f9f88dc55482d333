package outbox

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/garrettladley/fixit/internal/db"
	"github.com/garrettladley/fixit/internal/notification"
)

func TestOutbox(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		new  func(t *testing.T) notification.Outbox
	}{
		{
			name: "memory",
			new:  func(*testing.T) notification.Outbox { return NewMemory() },
		},
		{
			name: "sqlite",
			new: func(t *testing.T) notification.Outbox {
				t.Helper()
				sqlDB, err := db.Open(t.Context(), ":memory:")
				if err != nil {
					t.Fatalf("db.Open() error = %v", err)
				}
				t.Cleanup(func() { _ = sqlDB.Close() })
				return NewSQLite(sqlDB)
			},
		},
	}

	type entry struct {
		Kind notification.OpKind
		ID   notification.ID
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := t.Context()
			box := tt.new(t)

			if err := box.Enqueue(ctx, notification.OpMarkRead, "1"); err != nil {
				t.Fatalf("Enqueue() error = %v", err)
			}
			if err := box.Enqueue(ctx, notification.OpMarkRead, "3"); err != nil {
				t.Fatalf("Enqueue() error = %v", err)
			}
			if err := box.Enqueue(ctx, notification.OpMarkRead, "2"); err != nil {
				t.Fatalf("Enqueue() error = %v", err)
			}

			pending, err := box.Pending(ctx)
			if err != nil {
				t.Fatalf("Pending() error = %v", err)
			}

			got := make([]entry, len(pending))
			for i, op := range pending {
				got[i] = entry{Kind: op.Kind, ID: op.NotificationID}
				if op.CreatedAt.IsZero() {
					t.Errorf("op %d has zero CreatedAt", op.Seq)
				}
			}
			want := []entry{
				{Kind: notification.OpMarkRead, ID: "1"},
				{Kind: notification.OpMarkRead, ID: "3"},
				{Kind: notification.OpMarkRead, ID: "2"},
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("Pending() mismatch (-want +got):\n%s", diff)
			}

			if err := box.Remove(ctx, pending[1].Seq); err != nil {
				t.Fatalf("Remove() error = %v", err)
			}

			pending, err = box.Pending(ctx)
			if err != nil {
				t.Fatalf("Pending() error = %v", err)
			}
			if len(pending) != 2 || pending[0].NotificationID != "1" || pending[1].NotificationID != "2" {
				t.Errorf("Pending() after Remove = %+v", pending)
			}
		})
	}
}
