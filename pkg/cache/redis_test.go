package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

// newTestRedis returns a RedisCache backed by miniredis.
func newTestRedis(t *testing.T, prefix string) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mini.Close)

	c, err := NewRedisCache(context.Background(), RedisConfig{Addr: mini.Addr(), Prefix: prefix})
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, mini
}

func TestRedisCache_SetGet(t *testing.T) {
	c, mini := newTestRedis(t, "pg:")
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("layout"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "layout" {
		t.Fatalf("Get(k) = %q, %v, %v", data, hit, err)
	}

	if !mini.Exists("pg:k") {
		t.Error("key not stored under prefix")
	}
	if ttl := mini.TTL("pg:k"); ttl != time.Hour {
		t.Errorf("TTL = %v, want 1h", ttl)
	}
}

func TestRedisCache_Expiry(t *testing.T) {
	c, mini := newTestRedis(t, "")
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	mini.FastForward(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired key returned")
	}

	if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if ttl := mini.TTL("forever"); ttl != 0 {
		t.Errorf("TTL = %v, want none", ttl)
	}
}

func TestRedisCache_Delete(t *testing.T) {
	c, mini := newTestRedis(t, "pg:")
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), 0)
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if mini.Exists("pg:k") {
		t.Error("key still present")
	}
}

func TestRedisCache_ClearPrefix(t *testing.T) {
	c, mini := newTestRedis(t, "pg:")
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k), 0)
	}
	if err := mini.Set("other:keep", "1"); err != nil {
		t.Fatal(err)
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	for _, k := range []string{"pg:a", "pg:b", "pg:c"} {
		if mini.Exists(k) {
			t.Errorf("%s survived Clear", k)
		}
	}
	if !mini.Exists("other:keep") {
		t.Error("Clear removed a key outside the prefix")
	}
}

func TestRedisCache_FromClient(t *testing.T) {
	mini := miniredis.RunT(t)
	c := NewRedisCacheFromClient(goredis.NewClient(&goredis.Options{Addr: mini.Addr()}), "")
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if got, _ := mini.Get("k"); got != "v" {
		t.Errorf("stored %q", got)
	}
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	mini := miniredis.RunT(t)
	addr := mini.Addr()
	mini.Close()

	_, err := NewRedisCache(context.Background(), RedisConfig{Addr: addr, DialTimeout: 100 * time.Millisecond})
	if err == nil {
		t.Fatal("expected error for closed server")
	}
}

func TestNewRedisCache_RequiresAddr(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), RedisConfig{}); err == nil {
		t.Error("expected error without address")
	}
}
