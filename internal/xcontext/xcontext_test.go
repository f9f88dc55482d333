package xcontext

import (
	"context"
	"testing"
)

func TestContextValues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if _, ok := GetUserID(ctx); ok {
		t.Fatal("expected no user on an empty context")
	}
	if IsShutdownInProgress(ctx) {
		t.Fatal("expected no shutdown on an empty context")
	}

	ctx = SetRequestID(ctx, "req-1")
	ctx = SetSessionID(ctx, "sess-1")
	ctx = SetUser(ctx, "3", "CUSTOMER")
	ctx = SetShutdownInProgress(ctx, true)

	tests := []struct {
		name     string
		get      func(context.Context) (string, bool)
		expected string
	}{
		{name: "request id", get: GetRequestID, expected: "req-1"},
		{name: "session id", get: GetSessionID, expected: "sess-1"},
		{name: "user id", get: GetUserID, expected: "3"},
		{name: "role", get: GetRole, expected: "CUSTOMER"},
	}
	for _, tt := range tests {
		got, ok := tt.get(ctx)
		if !ok || got != tt.expected {
			t.Errorf("%s = %q, %v, want %q", tt.name, got, ok, tt.expected)
		}
	}
	if !IsShutdownInProgress(ctx) {
		t.Error("expected shutdown in progress")
	}
}
