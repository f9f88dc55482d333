package session

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewID(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 9, 30, 5, 0, time.FixedZone("EST", -5*3600))
	u := uuid.MustParse("6f1c2d0e-8a4b-4c1e-9f3a-2b7d5e6f7a8b")
	if got, want := newID(now, u), "20250301-143005-6f1c2d0e"; got != want {
		t.Errorf("newID() = %q, want %q", got, want)
	}

	pattern := regexp.MustCompile(`^\d{8}-\d{6}-[0-9a-f]{8}$`)
	a, b := NewID(), NewID()
	if !pattern.MatchString(a) {
		t.Errorf("NewID() = %q, want match %s", a, pattern)
	}
	if a == b {
		t.Errorf("NewID() returned %q twice", a)
	}
}
