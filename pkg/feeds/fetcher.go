package feeds

import (
	"bytes"
	"context"
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/samvad-hq/samvad-news-aggregator/internal/domain"
	"github.com/samvad-hq/samvad-news-aggregator/pkg/httpclient"
	"github.com/samvad-hq/samvad-news-aggregator/pkg/sources"
)

const (
	// UntitledTitle replaces empty entry titles.
	UntitledTitle = "(bez titulku)"

	defaultTimeout  = 15 * time.Second
	maxSummaryRunes = 300
	idLength        = 12

	// MaxFeedBodyBytes caps a downloaded feed document.
	MaxFeedBodyBytes = 8 << 20
)

// RSSFetcher downloads a feed over HTTP and parses RSS, Atom or JSON Feed documents.
type RSSFetcher struct {
	client  HTTPClient
	headers func(sources.Source) map[string]string
	timeout time.Duration
}

// Option configures an RSSFetcher.
type Option func(*RSSFetcher)

// WithTimeout bounds each Fetch call.
func WithTimeout(d time.Duration) Option {
	return func(f *RSSFetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithHeaders sets the function producing request headers for a source.
func WithHeaders(fn func(sources.Source) map[string]string) Option {
	return func(f *RSSFetcher) {
		if fn != nil {
			f.headers = fn
		}
	}
}

// NewRSSFetcher builds a fetcher using client (or a default resty client).
func NewRSSFetcher(client HTTPClient, opts ...Option) *RSSFetcher {
	f := &RSSFetcher{
		client:  client,
		headers: func(src sources.Source) map[string]string { return src.Headers },
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = DefaultHTTPClient(f.timeout)
	}
	return f
}

// DefaultHTTPClient returns the resty-backed client used when none is injected.
func DefaultHTTPClient(timeout time.Duration) HTTPClient {
	return httpclient.NewRestyClient(httpclient.Options{
		Timeout:      timeout,
		MaxBodyBytes: MaxFeedBodyBytes,
	})
}

// Fetch downloads and parses src. An empty feed yields an empty, non-nil slice.
func (f *RSSFetcher) Fetch(ctx context.Context, src sources.Source) ([]domain.Article, error) {
	if strings.TrimSpace(src.URL) == "" {
		return nil, fmt.Errorf("source %q url is empty", src.Name)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	resp, err := f.client.Get(ctx, src.URL, f.headers(src))
	if err != nil {
		return nil, fmt.Errorf("fetch %s feed: %w", src.Name, err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s feed returned status %d body: %s", src.Name, resp.StatusCode(), responseSnippet(body))
	}

	// gofeed parsers keep per-document state, so each fetch gets its own.
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s feed: %w", src.Name, err)
	}

	return buildArticles(src.Name, feed.Items), nil
}

func buildArticles(sourceName string, items []*gofeed.Item) []domain.Article {
	articles := make([]domain.Article, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		articles = append(articles, buildArticle(sourceName, item))
	}
	return articles
}

func buildArticle(sourceName string, item *gofeed.Item) domain.Article {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = UntitledTitle
	}
	link := strings.TrimSpace(item.Link)

	summary := item.Description
	if strings.TrimSpace(summary) == "" {
		summary = item.Content
	}

	return domain.Article{
		ID:         articleID(link, item.Title),
		Title:      title,
		Link:       link,
		Summary:    truncate(PlainText(summary), maxSummaryRunes),
		Published:  publishedAt(item),
		SourceName: sourceName,
	}
}

func publishedAt(item *gofeed.Item) *time.Time {
	for _, ts := range []*time.Time{item.PublishedParsed, item.UpdatedParsed} {
		if ts != nil && !ts.IsZero() {
			utc := ts.UTC()
			return &utc
		}
	}
	return nil
}

// articleID derives a short stable id from the link, falling back to the title.
func articleID(link, title string) string {
	raw := link
	if raw == "" {
		raw = strings.TrimSpace(title)
	}
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])[:idLength]
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
