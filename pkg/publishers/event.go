package publishers

import (
	"time"

	"github.com/samvad-hq/samvad-news-aggregator/internal/domain"
)

const (
	EventCategoryRefreshed = "category.refreshed"
	maxEventHeadlines      = 5
)

// Headline is the short form of an article carried in events.
type Headline struct {
	Title     string     `json:"title"`
	Link      string     `json:"link"`
	Source    string     `json:"source"`
	Published *time.Time `json:"published,omitempty"`
}

// Event represents the payload published downstream after a category refill.
type Event struct {
	Type          string     `json:"type"`
	Category      string     `json:"category"`
	CategoryName  string     `json:"category_name"`
	ArticleCount  int        `json:"article_count"`
	FailedSources []string   `json:"failed_sources"`
	Headlines     []Headline `json:"headlines"`
	FetchedAt     time.Time  `json:"fetched_at"`
	EmittedAt     time.Time  `json:"emitted_at"`
}

// NewEvent summarises a freshly aggregated feed.
func NewEvent(feed domain.Feed) Event {
	failed := make([]string, 0, len(feed.Errors))
	for _, e := range feed.Errors {
		failed = append(failed, e.Source)
	}

	n := len(feed.Articles)
	if n > maxEventHeadlines {
		n = maxEventHeadlines
	}
	headlines := make([]Headline, 0, n)
	for _, a := range feed.Articles[:n] {
		headlines = append(headlines, Headline{
			Title:     a.Title,
			Link:      a.Link,
			Source:    a.SourceName,
			Published: a.Published,
		})
	}

	return Event{
		Type:          EventCategoryRefreshed,
		Category:      feed.Key,
		CategoryName:  feed.Name,
		ArticleCount:  len(feed.Articles),
		FailedSources: failed,
		Headlines:     headlines,
		FetchedAt:     feed.FetchedAt,
		EmittedAt:     time.Now().UTC(),
	}
}
