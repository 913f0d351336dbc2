package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemory_SetGetDelete(t *testing.T) {
	c := NewMemory(Config{})
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); !IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}

	if err := c.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, err := c.Get(ctx, "k")
	if err != nil || v != "v" {
		t.Fatalf("get = %q, %v", v, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !IsNotFound(err) {
		t.Fatalf("err tras delete = %v, want not found", err)
	}
}

func TestMemory_PrefixIsolation(t *testing.T) {
	a := NewMemory(Config{Prefix: "a"})
	b := NewMemory(Config{Prefix: "b"})
	ctx := context.Background()

	if err := a.Set(ctx, "k", "va", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := b.Get(ctx, "k"); !IsNotFound(err) {
		t.Fatalf("instancias no comparten estado, err = %v", err)
	}
}

func TestMemory_Expiry(t *testing.T) {
	c := NewMemory(Config{})
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", 20*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, err := c.Get(ctx, "k"); !IsNotFound(err) {
		t.Fatalf("err tras expiry = %v, want not found", err)
	}
}

func TestMemory_Incr(t *testing.T) {
	c := NewMemory(Config{})
	ctx := context.Background()

	n, err := c.Incr(ctx, "counter", time.Minute)
	if err != nil || n != 1 {
		t.Fatalf("primer incr = %d, %v", n, err)
	}
	n, err = c.Incr(ctx, "counter", time.Minute)
	if err != nil || n != 2 {
		t.Fatalf("segundo incr = %d, %v", n, err)
	}
}

func TestMemory_IncrConcurrent(t *testing.T) {
	c := NewMemory(Config{})
	ctx := context.Background()

	const goroutines = 20
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			if _, err := c.Incr(ctx, "counter", time.Minute); err != nil {
				t.Errorf("incr: %v", err)
			}
		}()
	}
	wg.Wait()

	n, err := c.Incr(ctx, "counter", time.Minute)
	if err != nil || n != goroutines+1 {
		t.Fatalf("contador final = %d, %v, want %d", n, err, goroutines+1)
	}
}

func TestNew_DefaultsToMemory(t *testing.T) {
	c, err := New(Config{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	_ = c.Close()
}
