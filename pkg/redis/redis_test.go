package redis

import (
	"context"
	"testing"

	"github.com/minsuk/triblend/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	cfg := &config.Config{
		Redis: config.RedisConfig{Enabled: false},
	}
	client, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)
	if client.Enabled() {
		t.Error("expected client to be disabled")
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestRunLock_DisabledAlwaysAcquires(t *testing.T) {
	lock := NewRunLock(disabledClient(t), 0)

	ok, err := lock.Acquire(context.Background(), "wf-test")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if !ok {
		t.Error("expected lock acquisition to succeed when Redis disabled")
	}

	if err := lock.Refresh(context.Background(), "wf-test"); err != nil {
		t.Errorf("Refresh() error = %v", err)
	}
	if err := lock.Release(context.Background(), "wf-test"); err != nil {
		t.Errorf("Release() error = %v", err)
	}
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")

	// When Redis is disabled, cache operations are no-ops
	var result string
	found, err := cache.Get(context.Background(), "key", &result)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("expected cache miss when Redis disabled")
	}

	if err := cache.Set(context.Background(), "key", "value", 0); err != nil {
		t.Errorf("Set() error = %v", err)
	}
}
