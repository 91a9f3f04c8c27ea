package net_test

import (
	"context"
	"testing"

	pnet "curator/internal/platform/net"
)

func TestWithRequest(t *testing.T) {
	base := context.Background()

	ctx := pnet.WithRequest(base, "req-123")
	if got := pnet.RequestID(ctx); got != "req-123" {
		t.Fatalf("RequestID got %q want %q", got, "req-123")
	}

	if pnet.WithRequest(base, "") != base {
		t.Fatal("empty id should leave ctx untouched")
	}
	if got := pnet.RequestID(base); got != "" {
		t.Fatalf("RequestID on bare ctx = %q", got)
	}
}
