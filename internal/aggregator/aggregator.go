package aggregator

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/samvad-hq/samvad-news-aggregator/internal/domain"
	"github.com/samvad-hq/samvad-news-aggregator/internal/logger"
	"github.com/samvad-hq/samvad-news-aggregator/internal/metrics"
	"github.com/samvad-hq/samvad-news-aggregator/pkg/feeds"
	"github.com/samvad-hq/samvad-news-aggregator/pkg/sources"
)

const (
	DefaultWorkers = 8
	DefaultLimit   = 100
)

// Aggregator fetches every source of a category through a bounded worker pool
// and merges the results. It holds no state between calls.
type Aggregator struct {
	fetcher feeds.Fetcher
	workers int
	limit   int
	log     logger.Logger
	now     func() time.Time
}

// Options tunes pool width and result size.
type Options struct {
	Workers int
	Limit   int
}

// New wires an aggregator around fetcher.
func New(fetcher feeds.Fetcher, opts Options, log logger.Logger) *Aggregator {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	return &Aggregator{
		fetcher: fetcher,
		workers: opts.Workers,
		limit:   opts.Limit,
		log:     logger.Ensure(log),
		now:     time.Now,
	}
}

// Limit is the maximum number of articles a category result carries.
func (a *Aggregator) Limit() int { return a.limit }

// Aggregate fetches all sources of cat and returns their articles newest first,
// capped at the configured limit. It always succeeds; failed sources show up in
// Feed.Errors and contribute nothing.
func (a *Aggregator) Aggregate(ctx context.Context, cat sources.Category) domain.Feed {
	start := a.now()
	results := a.collectAll(ctx, cat.Sources)

	total := 0
	for _, res := range results {
		total += len(res.Articles)
	}

	articles := make([]domain.Article, 0, total)
	errs := make([]domain.SourceError, 0)
	for _, res := range results {
		articles = append(articles, res.Articles...)
		if se, failed := res.SourceError(); failed {
			errs = append(errs, se)
		}
	}

	SortArticles(articles)
	articles = Truncate(articles, a.limit)

	metrics.CategoryArticles.WithLabelValues(cat.Key).Set(float64(len(articles)))
	a.log.InfoObj("category aggregated", "aggregate_result", map[string]any{
		"category":       cat.Key,
		"sources":        len(cat.Sources),
		"failed_sources": len(errs),
		"articles":       len(articles),
		"collected":      total,
		"elapsed_ms":     a.now().Sub(start).Milliseconds(),
	})

	return domain.Feed{
		Key:       cat.Key,
		Name:      cat.Name,
		Icon:      cat.Icon,
		Articles:  articles,
		Errors:    errs,
		FetchedAt: a.now().UTC(),
	}
}

// collectAll runs one fetch per source, at most a.workers at a time. Results
// keep source order regardless of completion order.
func (a *Aggregator) collectAll(ctx context.Context, srcs []sources.Source) []feeds.SourceResult {
	results := make([]feeds.SourceResult, len(srcs))

	var g errgroup.Group
	g.SetLimit(a.workers)
	for i, src := range srcs {
		g.Go(func() error {
			results[i] = feeds.Collect(ctx, a.fetcher, src, a.log)
			return nil
		})
	}
	_ = g.Wait() // Collect never fails

	return results
}
