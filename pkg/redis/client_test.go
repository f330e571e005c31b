package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"
)

func TestNewClientAndHealthy(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	ctx := context.Background()
	c, err := NewClient(ctx, s.Addr(), "", 0, zap.NewNop())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer c.Close()

	if err := c.Healthy(ctx); err != nil {
		t.Errorf("Healthy = %v, want nil", err)
	}

	s.Close()
	if err := c.Healthy(ctx); err == nil {
		t.Error("Healthy should fail once redis is down")
	}
}

func TestNewClientUnreachable(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	addr := s.Addr()
	s.Close()

	if _, err := NewClient(context.Background(), addr, "", 0, zap.NewNop()); err == nil {
		t.Error("NewClient should fail for an unreachable server")
	}
}
