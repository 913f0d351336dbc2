package rate

import (
	"context"
	"testing"
	"time"

	"github.com/dropDatabas3/quicklendar/internal/cache"
)

func TestWindowLimiter_AllowsUpToMax(t *testing.T) {
	// ventana larga para no cruzar el borde durante el test
	l := NewWindowLimiter(cache.NewMemory(cache.Config{}), "rl:test", 3, time.Hour)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res, err := l.Allow(ctx, "1.2.3.4")
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !res.Allowed {
			t.Fatalf("hit %d denegado, want allowed", i)
		}
		if want := int64(3 - i); res.Remaining != want {
			t.Fatalf("remaining tras hit %d = %d, want %d", i, res.Remaining, want)
		}
	}

	res, err := l.Allow(ctx, "1.2.3.4")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if res.Allowed {
		t.Fatal("hit 4 permitido, want denied")
	}
	if res.RetryAfter <= 0 {
		t.Fatalf("RetryAfter = %v, want > 0", res.RetryAfter)
	}
}

func TestWindowLimiter_KeysAreIndependent(t *testing.T) {
	l := NewWindowLimiter(cache.NewMemory(cache.Config{}), "rl:test", 1, time.Hour)
	ctx := context.Background()

	if res, _ := l.Allow(ctx, "1.1.1.1"); !res.Allowed {
		t.Fatal("primer hit de 1.1.1.1 denegado")
	}
	if res, _ := l.Allow(ctx, "1.1.1.1"); res.Allowed {
		t.Fatal("segundo hit de 1.1.1.1 permitido")
	}
	// otra IP no comparte contador
	if res, _ := l.Allow(ctx, "2.2.2.2"); !res.Allowed {
		t.Fatal("primer hit de 2.2.2.2 denegado")
	}
}

func TestWindowLimiter_WindowReset(t *testing.T) {
	// ventana mínima: el contador expira junto con la ventana
	l := NewWindowLimiter(cache.NewMemory(cache.Config{}), "rl:test", 1, 30*time.Millisecond)
	ctx := context.Background()

	if res, _ := l.Allow(ctx, "ip"); !res.Allowed {
		t.Fatal("primer hit denegado")
	}
	time.Sleep(70 * time.Millisecond)
	if res, _ := l.Allow(ctx, "ip"); !res.Allowed {
		t.Fatal("hit en ventana nueva denegado")
	}
}

func TestNoopLimiter(t *testing.T) {
	var l Limiter = NoopLimiter{}
	for i := 0; i < 100; i++ {
		res, err := l.Allow(context.Background(), "any")
		if err != nil || !res.Allowed {
			t.Fatalf("noop denegó: %v %v", res, err)
		}
	}
}
