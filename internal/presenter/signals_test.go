package presenter

import "testing"

func TestBus(t *testing.T) {
	t.Parallel()

	b := NewBus[int]()
	a, unsubA := b.Subscribe(1)
	c, unsubC := b.Subscribe(2)
	defer unsubC()

	if got := b.Publish(1); got != 2 {
		t.Fatalf("Publish(1) delivered = %d, want 2", got)
	}
	// a is full now
	if got := b.Publish(2); got != 1 {
		t.Fatalf("Publish(2) delivered = %d, want 1", got)
	}

	if v := <-a; v != 1 {
		t.Errorf("a got %d, want 1", v)
	}
	if v := <-c; v != 1 {
		t.Errorf("c got %d, want 1", v)
	}
	if v := <-c; v != 2 {
		t.Errorf("c got %d, want 2", v)
	}

	unsubA()
	unsubA()
	if _, ok := <-a; ok {
		t.Error("a still open after unsubscribe")
	}
	if got := b.Publish(3); got != 1 {
		t.Errorf("Publish(3) delivered = %d, want 1", got)
	}
}
