package devserver

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/garrettladley/fixit/internal/notification"
)

const redisEnvKey = "FIXIT_TEST_REDIS_URL"

func TestStores(t *testing.T) {
	t.Parallel()

	stores := map[string]func(t *testing.T) Store{
		"memory": func(*testing.T) Store { return NewMemoryStore() },
		"redis": func(t *testing.T) Store {
			url := os.Getenv(redisEnvKey)
			if url == "" {
				t.Skipf("%s not set", redisEnvKey)
			}
			client, err := OpenRedis(t.Context(), url)
			if err != nil {
				t.Fatalf("OpenRedis() error = %v", err)
			}
			t.Cleanup(func() { _ = client.Close() })
			return NewRedisStore(client)
		},
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			testStore(t, newStore(t))
		})
	}
}

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := t.Context()

	// unique recipients keep runs against a shared redis independent
	alice := notification.ID("alice-" + uuid.NewString())
	bob := notification.ID("bob-" + uuid.NewString())

	base := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	rec := func(id string, offset time.Duration) notification.Record {
		return notification.Record{
			ID:             notification.ID(id),
			SenderID:       "9",
			SenderRole:     notification.RoleCustomer,
			SenderName:     "Sam",
			MessageContent: "hello " + id,
			SentAt:         notification.Timestamp{Time: base.Add(offset)},
		}
	}

	for _, r := range []notification.Record{rec("a", 0), rec("b", time.Minute), rec("c", 2*time.Minute)} {
		if err := s.Add(ctx, alice, r); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	if err := s.Add(ctx, bob, rec("z", 0)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	ids := func(records []notification.Record) []notification.ID {
		out := make([]notification.ID, 0, len(records))
		for _, r := range records {
			out = append(out, r.ID)
		}
		return out
	}

	unread, err := s.Unread(ctx, alice)
	if err != nil {
		t.Fatalf("Unread() error = %v", err)
	}
	if diff := cmp.Diff([]notification.ID{"c", "b", "a"}, ids(unread)); diff != "" {
		t.Fatalf("Unread() newest first (-want +got):\n%s", diff)
	}

	if err := s.MarkRead(ctx, alice, "b"); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	if err := s.MarkRead(ctx, alice, "b"); err != nil {
		t.Fatalf("MarkRead() twice error = %v", err)
	}
	if err := s.MarkRead(ctx, alice, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("MarkRead(missing) error = %v, want ErrNotFound", err)
	}
	if err := s.MarkRead(ctx, bob, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("MarkRead(other user's id) error = %v, want ErrNotFound", err)
	}

	n, err := s.Count(ctx, alice)
	if err != nil || n != 2 {
		t.Fatalf("Count() = %d, %v, want 2", n, err)
	}

	if err := s.MarkAllRead(ctx, alice); err != nil {
		t.Fatalf("MarkAllRead() error = %v", err)
	}
	if n, err := s.Count(ctx, alice); err != nil || n != 0 {
		t.Fatalf("Count() after MarkAllRead = %d, %v, want 0", n, err)
	}
	if n, err := s.Count(ctx, bob); err != nil || n != 1 {
		t.Fatalf("Count(bob) = %d, %v, want 1", n, err)
	}
}

func TestMemoryBroker(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	b := NewMemoryBroker()

	first, unsubFirst, err := b.Subscribe(ctx, "1")
	if err != nil {
		t.Fatal(err)
	}
	second, unsubSecond, err := b.Subscribe(ctx, "1")
	if err != nil {
		t.Fatal(err)
	}
	defer unsubSecond()
	other, unsubOther, err := b.Subscribe(ctx, "2")
	if err != nil {
		t.Fatal(err)
	}
	defer unsubOther()

	if err := b.Publish(ctx, "1", notification.Record{ID: "n1"}); err != nil {
		t.Fatal(err)
	}

	for name, ch := range map[string]<-chan notification.Record{"first": first, "second": second} {
		select {
		case r := <-ch:
			if r.ID != "n1" {
				t.Errorf("%s got %q, want n1", name, r.ID)
			}
		default:
			t.Errorf("%s received nothing", name)
		}
	}
	select {
	case r := <-other:
		t.Errorf("other user received %q", r.ID)
	default:
	}

	unsubFirst()
	unsubFirst()
	if _, ok := <-first; ok {
		t.Error("channel open after unsubscribe")
	}
	if err := b.Publish(ctx, "1", notification.Record{ID: "n2"}); err != nil {
		t.Fatal(err)
	}
	if r := <-second; r.ID != "n2" {
		t.Errorf("second got %q, want n2", r.ID)
	}
}

func TestPublishValidate(t *testing.T) {
	t.Parallel()

	valid := publishRequest{
		RecipientID:    "3",
		SenderID:       "2",
		SenderRole:     notification.RoleProvider,
		MessageContent: "on my way",
	}
	if errs := valid.Validate(); errs != nil {
		t.Fatalf("Validate() = %v, want nil", errs)
	}

	got := publishRequest{SenderRole: "GUEST", MessageContent: "  "}.Validate()
	want := map[string]string{
		"recipientId":    "required",
		"senderId":       "required",
		"senderRole":     "must be one of ADMIN, PROVIDER, CUSTOMER",
		"messageContent": "required",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Validate() mismatch (-want +got):\n%s", diff)
	}
}
