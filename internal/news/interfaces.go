package news

import (
	"context"

	"github.com/samvad-hq/samvad-news-aggregator/internal/domain"
	"github.com/samvad-hq/samvad-news-aggregator/pkg/sources"
)

// CategoryAggregator produces a fresh feed for a category.
type CategoryAggregator interface {
	Aggregate(ctx context.Context, cat sources.Category) domain.Feed
}

// Notifier is told about every cache refill. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, feed domain.Feed) error
}
