package storage

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryKVRoundTrip(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	if _, ok, err := kv.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing slot: ok=%v err=%v", ok, err)
	}

	if err := kv.Put(ctx, "k", "v1"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := kv.Put(ctx, "k", "v2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	v, ok, err := kv.Get(ctx, "k")
	if err != nil || !ok || v != "v2" {
		t.Fatalf("get = (%q, %v, %v), want v2", v, ok, err)
	}
}

func TestMemoryKVFailPuts(t *testing.T) {
	kv := NewMemoryKV()
	kv.FailPuts = errors.New("quota exceeded")
	if err := kv.Put(context.Background(), "k", "v"); err == nil {
		t.Fatalf("expected put failure")
	}
	if _, ok, _ := kv.Get(context.Background(), "k"); ok {
		t.Fatalf("failed put must not store the value")
	}
}
