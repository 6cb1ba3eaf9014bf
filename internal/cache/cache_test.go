package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-news-aggregator/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func countingFill(calls *atomic.Int32, key string) FillFunc {
	return func(context.Context) domain.Feed {
		n := calls.Add(1)
		return domain.Feed{Key: key, Articles: make([]domain.Article, n)}
	}
}

func TestGetServesFreshEntryWithoutRefill(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New(Options{TTL: 5 * time.Minute, Now: clock.Now})
	var calls atomic.Int32

	first, outcome := c.Get(context.Background(), "k", countingFill(&calls, "k"))
	if outcome != Filled {
		t.Fatalf("first lookup must fill, got %v", outcome)
	}
	clock.Advance(4*time.Minute + 59*time.Second)

	second, outcome := c.Get(context.Background(), "k", countingFill(&calls, "k"))
	if outcome != Hit {
		t.Fatalf("expected hit within TTL")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one fill, got %d", calls.Load())
	}
	if !second.FetchedAt.Equal(first.FetchedAt) {
		t.Fatalf("hit should return the stored entry")
	}
}

func TestGetRefillsStaleEntry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New(Options{TTL: time.Minute, Now: clock.Now})
	var calls atomic.Int32

	c.Get(context.Background(), "k", countingFill(&calls, "k"))
	clock.Advance(time.Minute)

	e, outcome := c.Get(context.Background(), "k", countingFill(&calls, "k"))
	if outcome != Filled {
		t.Fatalf("entry at exactly TTL age must be stale")
	}
	if calls.Load() != 2 {
		t.Fatalf("expected refill, got %d fills", calls.Load())
	}
	if len(e.Feed.Articles) != 2 || !e.FetchedAt.Equal(clock.Now()) {
		t.Fatalf("unexpected refilled entry %+v", e)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	c := New(Options{})
	var a, b atomic.Int32

	c.Get(context.Background(), "a", countingFill(&a, "a"))
	c.Get(context.Background(), "b", countingFill(&b, "b"))
	c.Get(context.Background(), "a", countingFill(&a, "a"))

	if a.Load() != 1 || b.Load() != 1 {
		t.Fatalf("unexpected fills a=%d b=%d", a.Load(), b.Load())
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d", c.Len())
	}
	if e, ok := c.Peek("b"); !ok || e.Key != "b" {
		t.Fatalf("Peek(b) = %+v %v", e, ok)
	}
	if _, ok := c.Peek("missing"); ok {
		t.Fatalf("Peek on missing key should fail")
	}
}

func TestSingleFlightCollapsesConcurrentRefills(t *testing.T) {
	c := New(Options{SingleFlight: true})
	var calls atomic.Int32
	release := make(chan struct{})

	fill := func(context.Context) domain.Feed {
		calls.Add(1)
		<-release
		return domain.Feed{Key: "k"}
	}

	var (
		wg     sync.WaitGroup
		filled atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, outcome := c.Get(context.Background(), "k", fill); outcome == Filled {
				filled.Add(1)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("expected a single refill, got %d", calls.Load())
	}
	if filled.Load() != 1 {
		t.Fatalf("expected exactly one caller to report Filled, got %d", filled.Load())
	}
}

func TestDefaults(t *testing.T) {
	c := New(Options{})
	if c.TTL() != DefaultTTL {
		t.Fatalf("TTL = %v", c.TTL())
	}
}
