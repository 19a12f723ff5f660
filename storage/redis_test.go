package storage

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisKV(t *testing.T, prefix string) (*RedisKV, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisKV(client, prefix), mr
}

func TestRedisKVRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv, _ := newTestRedisKV(t, "")

	if _, ok, err := kv.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}

	if err := kv.Set(ctx, "session", `{"id":"u1"}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := kv.Get(ctx, "session")
	if err != nil || !ok || v != `{"id":"u1"}` {
		t.Fatalf("get: v=%q ok=%v err=%v", v, ok, err)
	}

	if err := kv.Delete(ctx, "session"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "session"); ok {
		t.Fatal("key survived delete")
	}
}

func TestRedisKVAppliesPrefix(t *testing.T) {
	ctx := context.Background()
	kv, mr := newTestRedisKV(t, "deck1")

	if err := kv.Set(ctx, "users", "[]"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := mr.Get("deck1:users")
	if err != nil || got != "[]" {
		t.Fatalf("prefixed key not written: v=%q err=%v", got, err)
	}
}
