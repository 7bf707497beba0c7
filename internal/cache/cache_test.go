package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestMemoryExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	_ = m.Set(ctx, "a", "1", time.Minute)
	_ = m.Set(ctx, "b", "2", 0)
	if v, ok, _ := m.Get(ctx, "a"); !ok || v != "1" {
		t.Fatalf("Get(a) = %q, %v", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := m.Get(ctx, "a"); ok {
		t.Fatal("a should have expired")
	}
	if v, ok, _ := m.Get(ctx, "b"); !ok || v != "2" {
		t.Fatal("b should never expire")
	}
}

type fakeRedis struct {
	data map[string]string
	ttl  map[string]time.Duration
	err  error
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.data[key] = value.(string)
	f.ttl[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func TestRedisPrefixAndMiss(t *testing.T) {
	client := &fakeRedis{data: map[string]string{}, ttl: map[string]time.Duration{}}
	r := NewRedis(client, "productshots:")
	ctx := context.Background()

	if _, ok, err := r.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("miss = %v, %v", ok, err)
	}
	if err := r.Set(ctx, "k", "v", time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if client.data["productshots:k"] != "v" || client.ttl["productshots:k"] != time.Hour {
		t.Fatalf("stored = %v / %v", client.data, client.ttl)
	}
	if v, ok, _ := r.Get(ctx, "k"); !ok || v != "v" {
		t.Fatalf("Get = %q, %v", v, ok)
	}
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("down")
}

func (failingCache) Set(context.Context, string, string, time.Duration) error {
	return errors.New("down")
}

func TestReadThroughLoadsOnce(t *testing.T) {
	rt := NewReadThrough(NewMemory(), time.Hour, nil)
	var loads int32
	release := make(chan struct{})
	load := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&loads, 1)
		<-release
		return "insight", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = rt.Get(context.Background(), "brand-insight:logo.png", load)
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		if r != "insight" {
			t.Fatalf("results = %v", results)
		}
	}
	if n := atomic.LoadInt32(&loads); n != 1 {
		t.Fatalf("loads = %d, want 1", n)
	}

	if _, err := rt.Get(context.Background(), "brand-insight:logo.png", func(context.Context) (string, error) {
		t.Fatal("cached value should be used")
		return "", nil
	}); err != nil {
		t.Fatalf("Get error: %v", err)
	}
}

func TestReadThroughLoadOutlivesCancelledCaller(t *testing.T) {
	rt := NewReadThrough(NewMemory(), time.Hour, nil)
	var loads int32
	release := make(chan struct{})
	load := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&loads, 1)
		<-release
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "insight", nil
	}

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := rt.Get(first, "brand-insight:mascot.png", load)
		firstErr <- err
	}()
	time.Sleep(20 * time.Millisecond)

	type result struct {
		value string
		err   error
	}
	second := make(chan result, 1)
	go func() {
		v, err := rt.Get(context.Background(), "brand-insight:mascot.png", load)
		second <- result{v, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller error = %v", err)
	}

	close(release)
	got := <-second
	if got.err != nil || got.value != "insight" {
		t.Fatalf("joined caller = %q, %v", got.value, got.err)
	}
	if n := atomic.LoadInt32(&loads); n != 1 {
		t.Fatalf("loads = %d, want 1", n)
	}
}

func TestReadThroughDegradesOnCacheFailure(t *testing.T) {
	rt := NewReadThrough(failingCache{}, time.Hour, nil)
	v, err := rt.Get(context.Background(), "k", func(context.Context) (string, error) { return "fresh", nil })
	if err != nil || v != "fresh" {
		t.Fatalf("Get = %q, %v", v, err)
	}

	_, err = rt.Get(context.Background(), "k", func(context.Context) (string, error) { return "", errors.New("vision down") })
	if err == nil {
		t.Fatal("loader error should propagate")
	}
}
