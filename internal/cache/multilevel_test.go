package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"todo-manager/internal/models"
)

func newRedisBackedCache(t *testing.T) *MultiLevelCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewMultiLevelCache(NewRedisCacheWithClient(client))
	t.Cleanup(func() { c.Close() })
	return c
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	if err := c.Set("key", "value", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got string
	if err := c.Get("key", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "value" {
		t.Errorf("expected %q, got %q", "value", got)
	}

	if err := c.Get("missing", &got); err != ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	c.Set("key", "value", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	var got string
	if err := c.Get("key", &got); err != ErrCacheMiss {
		t.Errorf("expected expired key to miss, got %v", err)
	}
}

func TestMemoryCache_DeletePattern(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	c.Set("tasks:list", 1, time.Minute)
	c.Set("tasks:tags", 2, time.Minute)
	c.Set("other", 3, time.Minute)

	if err := c.DeletePattern("tasks:*"); err != nil {
		t.Fatal(err)
	}

	var n int
	if err := c.Get("tasks:list", &n); err != ErrCacheMiss {
		t.Error("expected tasks:list to be deleted")
	}
	if err := c.Get("tasks:tags", &n); err != ErrCacheMiss {
		t.Error("expected tasks:tags to be deleted")
	}
	if err := c.Get("other", &n); err != nil {
		t.Errorf("expected other to survive, got %v", err)
	}
}

func TestMultiLevelCache_MemoryOnly(t *testing.T) {
	c := NewMultiLevelCache(nil)
	defer c.Close()

	tasks := []models.Task{{ID: "a", Title: "one"}}
	if err := c.Set("tasks:list", tasks, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got []models.Task
	if err := c.Get("tasks:list", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("expected cached task list back, got %+v", got)
	}

	if err := c.Get("missing", &got); err != ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMultiLevelCache_CopyIsolation(t *testing.T) {
	c := NewMultiLevelCache(nil)
	defer c.Close()

	tasks := []models.Task{{ID: "a", Title: "original"}}
	c.Set("tasks:list", tasks, time.Minute)

	var first []models.Task
	c.Get("tasks:list", &first)
	first[0].Title = "mutated"

	var second []models.Task
	c.Get("tasks:list", &second)
	if second[0].Title != "original" {
		t.Errorf("cached value was mutated through an alias: %q", second[0].Title)
	}
}

func TestMultiLevelCache_RedisL2(t *testing.T) {
	c := newRedisBackedCache(t)

	tasks := []models.Task{{ID: "a", Title: "one"}, {ID: "b", Title: "two"}}
	if err := c.Set("tasks:list", tasks, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Drop L1 so the read has to come from redis.
	c.l1.Delete("tasks:list")

	var got []models.Task
	if err := c.Get("tasks:list", &got); err != nil {
		t.Fatalf("Get via L2: %v", err)
	}
	if len(got) != 2 || got[1].ID != "b" {
		t.Errorf("expected both tasks from L2, got %+v", got)
	}

	// The L2 hit must have promoted the value back into L1.
	if _, found := c.l1.get("tasks:list"); !found {
		t.Error("expected L2 hit to promote the value into L1")
	}
}

func TestMultiLevelCache_DeleteBothLevels(t *testing.T) {
	c := newRedisBackedCache(t)

	c.Set("tasks:list", []string{"x"}, time.Minute)
	if err := c.Delete("tasks:list"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var got []string
	if err := c.Get("tasks:list", &got); err != ErrCacheMiss {
		t.Errorf("expected miss after delete, got %v", err)
	}
}

func TestMultiLevelCache_Stats(t *testing.T) {
	c := NewMultiLevelCache(nil)
	defer c.Close()

	c.Set("k", 1, time.Minute)
	var n int
	c.Get("k", &n)
	c.Get("absent", &n)

	stats := c.Stats()
	if _, ok := stats["l1"]; !ok {
		t.Error("expected l1 stats")
	}
	if _, ok := stats["hit_rate_percent"]; !ok {
		t.Error("expected hit rate")
	}
	if _, ok := stats["circuit_breaker"]; !ok {
		t.Error("expected circuit breaker stats")
	}
}

func TestCircuitBreaker_OpensAfterFailures(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 2, ResetAfter: time.Hour})

	fail := func() error { return errTest }
	cb.Execute(fail)
	cb.Execute(fail)

	if cb.State() != "open" {
		t.Fatalf("expected open after %d failures, got %s", 2, cb.State())
	}
	if err := cb.Execute(func() error { return nil }); err != ErrCircuitOpen {
		t.Errorf("expected ErrCircuitOpen while open, got %v", err)
	}
}

func TestCircuitBreaker_MissesDoNotTrip(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 1, ResetAfter: time.Hour})

	cb.Execute(func() error { return ErrCacheMiss })
	if cb.State() != "closed" {
		t.Errorf("expected cache misses to keep the breaker closed, got %s", cb.State())
	}
}

var errTest = &testError{}

type testError struct{}

func (*testError) Error() string { return "test failure" }
