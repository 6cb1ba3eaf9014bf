package feeds

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/samvad-news-aggregator/internal/domain"
	"github.com/samvad-hq/samvad-news-aggregator/internal/logger"
	"github.com/samvad-hq/samvad-news-aggregator/internal/metrics"
	"github.com/samvad-hq/samvad-news-aggregator/pkg/sources"
)

// SourceResult is the outcome of one source fetch. Err is set when the source
// failed, in which case Articles is empty.
type SourceResult struct {
	Source   sources.Source
	Articles []domain.Article
	Err      error
}

// SourceError converts a failed result into its reportable form.
func (r SourceResult) SourceError() (domain.SourceError, bool) {
	if r.Err == nil {
		return domain.SourceError{}, false
	}
	return domain.SourceError{Source: r.Source.Name, Error: r.Err.Error()}, true
}

// Collect runs f for src and never fails: network, status, parse and timeout
// errors (and panics) are logged and turned into an empty result.
func Collect(ctx context.Context, f Fetcher, src sources.Source, log logger.Logger) (res SourceResult) {
	log = logger.Ensure(log)
	res.Source = src
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			res.Articles = nil
			res.Err = fmt.Errorf("fetch %s panicked: %v", src.Name, r)
		}

		outcome := metrics.OutcomeOK
		if res.Err != nil {
			outcome = metrics.OutcomeError
			res.Articles = []domain.Article{}
			log.WarnObj("source fetch failed", "source_error", map[string]any{
				"source": src.Name,
				"url":    src.URL,
				"error":  res.Err.Error(),
			})
		} else {
			log.DebugObj("source fetch completed", "source_result", map[string]any{
				"source":     src.Name,
				"articles":   len(res.Articles),
				"elapsed_ms": time.Since(start).Milliseconds(),
			})
		}
		metrics.SourceFetches.WithLabelValues(src.Name, outcome).Inc()
		metrics.SourceFetchDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}()

	if f == nil {
		res.Err = fmt.Errorf("no fetcher configured for source %s", src.Name)
		return res
	}

	articles, err := f.Fetch(ctx, src)
	if err != nil {
		res.Err = err
		return res
	}
	if articles == nil {
		articles = []domain.Article{}
	}
	res.Articles = articles
	return res
}
