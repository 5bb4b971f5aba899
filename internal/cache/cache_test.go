package cache_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/candyhaus/sweetshop/internal/cache"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := cache.NewMemory(time.Minute)
	ctx := context.Background()

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set(ctx, "k", []byte("v"))

	got, ok := c.Get(ctx, "k")
	if !ok {
		t.Fatal("expected hit after set")
	}
	if !bytes.Equal(got, []byte("v")) {
		t.Fatalf("got %q, want %q", got, "v")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := cache.NewMemory(5 * time.Millisecond)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"))
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	c := cache.NewMemory(time.Minute)
	ctx := context.Background()

	c.Set(ctx, "a", []byte("1"))
	c.Set(ctx, "b", []byte("2"))

	c.Delete(ctx, "a")

	if _, ok := c.Get(ctx, "a"); ok {
		t.Fatal("expected a to be deleted")
	}
	if _, ok := c.Get(ctx, "b"); !ok {
		t.Fatal("expected b to survive delete of a")
	}

	c.Clear(ctx)

	if _, ok := c.Get(ctx, "b"); ok {
		t.Fatal("expected clear to drop everything")
	}
}
