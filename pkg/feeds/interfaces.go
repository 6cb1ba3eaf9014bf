package feeds

import (
	"context"

	"github.com/samvad-hq/samvad-news-aggregator/internal/domain"
	"github.com/samvad-hq/samvad-news-aggregator/pkg/httpclient"
	"github.com/samvad-hq/samvad-news-aggregator/pkg/sources"
)

// Fetcher retrieves and normalizes the articles of a single source.
type Fetcher interface {
	Fetch(ctx context.Context, src sources.Source) ([]domain.Article, error)
}

// FetcherFunc adapts a plain function to Fetcher.
type FetcherFunc func(ctx context.Context, src sources.Source) ([]domain.Article, error)

func (f FetcherFunc) Fetch(ctx context.Context, src sources.Source) ([]domain.Article, error) {
	return f(ctx, src)
}

// HTTPClient aliases the shared httpclient.Client interface for clarity within feeds.
type HTTPClient = httpclient.Client
