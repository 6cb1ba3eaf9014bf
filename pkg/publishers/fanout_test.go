package publishers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-news-aggregator/internal/domain"
)

type stubPublisher struct {
	id    string
	typ   string
	err   error
	calls int
	last  Event
}

func (s *stubPublisher) ID() string   { return s.id }
func (s *stubPublisher) Type() string { return s.typ }
func (s *stubPublisher) Publish(_ context.Context, evt Event) error {
	s.calls++
	s.last = evt
	return s.err
}

func TestFanoutPublishAggregatesErrors(t *testing.T) {
	fanout := NewFanout([]Publisher{
		&stubPublisher{id: "ok", typ: "http"},
		nil,
		&stubPublisher{id: "bad", typ: "http", err: errors.New("failed")},
	})
	if fanout.Size() != 2 {
		t.Fatalf("expected nil publishers to be dropped, size=%d", fanout.Size())
	}

	count, err := fanout.Publish(context.Background(), Event{})
	if count != 1 {
		t.Fatalf("expected 1 success, got %d", count)
	}
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
}

func TestFanoutNotifyBuildsEvent(t *testing.T) {
	stub := &stubPublisher{id: "s", typ: "http"}
	fanout := NewFanout([]Publisher{stub})

	pub := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feed := domain.Feed{
		Key:  "ai",
		Name: "IT & AI",
		Articles: []domain.Article{
			{Title: "1", Published: &pub}, {Title: "2"}, {Title: "3"}, {Title: "4"}, {Title: "5"}, {Title: "6"},
		},
		Errors:    []domain.SourceError{{Source: "TechCrunch", Error: "timeout"}},
		FetchedAt: pub,
	}

	if err := fanout.Notify(context.Background(), feed); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	evt := stub.last
	if evt.Type != EventCategoryRefreshed || evt.Category != "ai" || evt.CategoryName != "IT & AI" {
		t.Fatalf("unexpected event %+v", evt)
	}
	if evt.ArticleCount != 6 || len(evt.Headlines) != maxEventHeadlines {
		t.Fatalf("unexpected counts %d/%d", evt.ArticleCount, len(evt.Headlines))
	}
	if len(evt.FailedSources) != 1 || evt.FailedSources[0] != "TechCrunch" {
		t.Fatalf("FailedSources = %v", evt.FailedSources)
	}
	if !evt.FetchedAt.Equal(pub) || evt.EmittedAt.IsZero() {
		t.Fatalf("unexpected timestamps %v %v", evt.FetchedAt, evt.EmittedAt)
	}
}

func TestNilFanoutIsNoop(t *testing.T) {
	var f *Fanout
	if n, err := f.Publish(context.Background(), Event{}); n != 0 || err != nil {
		t.Fatalf("expected noop, got %d %v", n, err)
	}
	if f.Size() != 0 {
		t.Fatalf("expected zero size")
	}
}

func TestBuildAllWithDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	pubs, err := BuildAll(context.Background(), reg, []PublisherConfig{
		{ID: "http", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "https://example.com"}},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(pubs) != 1 || pubs[0].Type() != TypeHTTP {
		t.Fatalf("expected 1 http publisher, got %#v", pubs)
	}

	if _, err := BuildAll(context.Background(), reg, []PublisherConfig{{ID: "x", Type: "kafka"}}, nil); err == nil {
		t.Fatalf("expected error for unregistered type")
	}
}
