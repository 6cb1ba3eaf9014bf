package aggregator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-news-aggregator/internal/domain"
	"github.com/samvad-hq/samvad-news-aggregator/pkg/sources"
)

// fakeFetcher returns preset articles or errors per source URL and tracks concurrency.
type fakeFetcher struct {
	mu       sync.Mutex
	articles map[string][]domain.Article
	errs     map[string]error
	delay    time.Duration
	calls    atomic.Int32
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeFetcher) Fetch(_ context.Context, src sources.Source) ([]domain.Article, error) {
	f.calls.Add(1)
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if cur <= p || f.peak.CompareAndSwap(p, cur) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[src.URL]; err != nil {
		return nil, err
	}
	return append([]domain.Article(nil), f.articles[src.URL]...), nil
}

func at(hour int) *time.Time {
	t := time.Date(2024, 5, 1, hour, 0, 0, 0, time.UTC)
	return &t
}

func art(id string, published *time.Time) domain.Article {
	return domain.Article{ID: id, Title: id, Published: published}
}

func category(n int) sources.Category {
	cat := sources.Category{Key: "cat", Name: "Cat", Icon: "i"}
	for i := 0; i < n; i++ {
		cat.Sources = append(cat.Sources, sources.Source{
			Name: fmt.Sprintf("s%d", i),
			URL:  fmt.Sprintf("https://s%d.example", i),
		})
	}
	return cat
}

func ids(articles []domain.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.ID
	}
	return out
}

func TestAggregateIsolatesFailingSource(t *testing.T) {
	cat := category(3)
	f := &fakeFetcher{
		articles: map[string][]domain.Article{
			"https://s0.example": {art("a", at(1))},
			"https://s2.example": {art("c", at(3))},
		},
		errs: map[string]error{"https://s1.example": errors.New("timeout")},
	}

	feed := New(f, Options{Workers: 2, Limit: 10}, nil).Aggregate(context.Background(), cat)

	if got := ids(feed.Articles); len(got) != 2 || got[0] != "c" || got[1] != "a" {
		t.Fatalf("unexpected articles %v", got)
	}
	if len(feed.Errors) != 1 || feed.Errors[0].Source != "s1" {
		t.Fatalf("unexpected errors %+v", feed.Errors)
	}
	if feed.Key != "cat" || feed.Name != "Cat" || feed.Icon != "i" {
		t.Fatalf("category metadata not copied: %+v", feed)
	}
	if feed.FetchedAt.IsZero() {
		t.Fatalf("FetchedAt not set")
	}
}

func TestAggregateAllSourcesFail(t *testing.T) {
	cat := category(2)
	f := &fakeFetcher{errs: map[string]error{
		"https://s0.example": errors.New("x"),
		"https://s1.example": errors.New("y"),
	}}

	feed := New(f, Options{}, nil).Aggregate(context.Background(), cat)
	if feed.Articles == nil || len(feed.Articles) != 0 {
		t.Fatalf("expected empty non-nil articles, got %#v", feed.Articles)
	}
	if len(feed.Errors) != 2 || feed.Errors[0].Source != "s0" || feed.Errors[1].Source != "s1" {
		t.Fatalf("errors should follow source order: %+v", feed.Errors)
	}
}

func TestAggregateSortsUndatedLastWithSourceOrderTieBreak(t *testing.T) {
	cat := category(2)
	f := &fakeFetcher{articles: map[string][]domain.Article{
		"https://s0.example": {art("s0-undated", nil), art("s0-tie", at(5)), art("s0-old", at(1))},
		"https://s1.example": {art("s1-tie", at(5)), art("s1-undated", nil), art("s1-new", at(9))},
	}}

	feed := New(f, Options{Workers: 2, Limit: 100}, nil).Aggregate(context.Background(), cat)
	want := []string{"s1-new", "s0-tie", "s1-tie", "s0-old", "s0-undated", "s1-undated"}
	got := ids(feed.Articles)
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("order = %v want %v", got, want)
	}
}

func TestAggregateCapsResult(t *testing.T) {
	cat := category(4)
	f := &fakeFetcher{articles: map[string][]domain.Article{}}
	for i, src := range cat.Sources {
		for j := 0; j < 5; j++ {
			f.articles[src.URL] = append(f.articles[src.URL], art(fmt.Sprintf("%d-%d", i, j), at(i*5+j)))
		}
	}

	feed := New(f, Options{Limit: 7}, nil).Aggregate(context.Background(), cat)
	if len(feed.Articles) != 7 {
		t.Fatalf("expected 7 articles, got %d", len(feed.Articles))
	}
	if feed.Articles[0].ID != "3-4" {
		t.Fatalf("expected newest first, got %s", feed.Articles[0].ID)
	}
}

func TestAggregateBoundsConcurrency(t *testing.T) {
	cat := category(10)
	f := &fakeFetcher{delay: 20 * time.Millisecond}

	New(f, Options{Workers: 3}, nil).Aggregate(context.Background(), cat)

	if got := f.calls.Load(); got != 10 {
		t.Fatalf("expected 10 fetches, got %d", got)
	}
	if peak := f.peak.Load(); peak > 3 {
		t.Fatalf("expected at most 3 concurrent fetches, saw %d", peak)
	}
}

func TestSortPropertyRandomInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		n := rng.Intn(30)
		articles := make([]domain.Article, n)
		for i := range articles {
			var ts *time.Time
			if rng.Intn(4) > 0 {
				ts = at(rng.Intn(6))
			}
			articles[i] = art(fmt.Sprintf("%d", i), ts)
		}
		limit := rng.Intn(20) + 1

		out := Merge(limit, articles)
		if len(out) > limit {
			t.Fatalf("round %d: len %d exceeds cap %d", round, len(out), limit)
		}
		for i := 1; i < len(out); i++ {
			prev, cur := out[i-1], out[i]
			if prev.Published == nil && cur.Published != nil {
				t.Fatalf("round %d: dated article after undated one", round)
			}
			if prev.Published != nil && cur.Published != nil && prev.Published.Before(*cur.Published) {
				t.Fatalf("round %d: not descending at %d", round, i)
			}
		}
	}
}

func TestMergeDoesNotModifyInputs(t *testing.T) {
	a := []domain.Article{art("old", at(1))}
	b := []domain.Article{art("new", at(2))}

	out := Merge(1, a, b)
	if len(out) != 1 || out[0].ID != "new" {
		t.Fatalf("unexpected merge %v", ids(out))
	}
	if a[0].ID != "old" || b[0].ID != "new" {
		t.Fatalf("inputs modified")
	}
	if got := Merge(10); len(got) != 0 {
		t.Fatalf("expected empty merge")
	}
}
