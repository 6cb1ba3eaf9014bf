package domain

import "time"

// Domain contains core models shared by the fetcher, aggregator, cache and API.

// Article is a single normalized feed entry. Published is nil when the source
// did not provide a usable timestamp.
type Article struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Link       string     `json:"link"`
	Summary    string     `json:"summary,omitempty"`
	Published  *time.Time `json:"published"`
	SourceName string     `json:"source"`
}

// SourceError records a swallowed per-source fetch failure.
type SourceError struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// Feed is the aggregated result for a category, or for a group of categories
// when Members is set.
type Feed struct {
	Key       string        `json:"key"`
	Name      string        `json:"name,omitempty"`
	Icon      string        `json:"icon,omitempty"`
	Members   []string      `json:"members,omitempty"`
	Articles  []Article     `json:"articles"`
	Errors    []SourceError `json:"errors"`
	FetchedAt time.Time     `json:"fetched_at"`
}
