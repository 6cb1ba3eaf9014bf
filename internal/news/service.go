package news

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/samvad-hq/samvad-news-aggregator/internal/aggregator"
	"github.com/samvad-hq/samvad-news-aggregator/internal/cache"
	"github.com/samvad-hq/samvad-news-aggregator/internal/domain"
	"github.com/samvad-hq/samvad-news-aggregator/internal/logger"
	"github.com/samvad-hq/samvad-news-aggregator/pkg/sources"
)

// ErrUnknownKey is returned for keys that are neither a category nor a group alias.
var ErrUnknownKey = errors.New("unknown category")

const (
	DefaultGroupLimit    = 150
	defaultNotifyTimeout = 10 * time.Second
)

// Service answers feed queries from the cache, aggregating on a miss.
// Returned feeds share memory with the cache and must be treated as read-only.
type Service struct {
	registry      *sources.Registry
	cache         *cache.Cache
	aggregator    CategoryAggregator
	groupLimit    int
	notifier      Notifier
	notifyTimeout time.Duration
	log           logger.Logger
}

// Options configures a Service.
type Options struct {
	GroupLimit int
	Notifier   Notifier
}

// NewService wires the registry, cache and aggregator together.
func NewService(reg *sources.Registry, c *cache.Cache, agg CategoryAggregator, opts Options, log logger.Logger) (*Service, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry must not be nil")
	}
	if c == nil {
		return nil, fmt.Errorf("cache must not be nil")
	}
	if agg == nil {
		return nil, fmt.Errorf("aggregator must not be nil")
	}
	if opts.GroupLimit <= 0 {
		opts.GroupLimit = DefaultGroupLimit
	}
	return &Service{
		registry:      reg,
		cache:         c,
		aggregator:    agg,
		groupLimit:    opts.GroupLimit,
		notifier:      opts.Notifier,
		notifyTimeout: defaultNotifyTimeout,
		log:           logger.Ensure(log),
	}, nil
}

// All returns the feed of every category, keyed by category key. Categories are
// resolved one after another on the calling goroutine.
func (s *Service) All(ctx context.Context) map[string]domain.Feed {
	cats := s.registry.Categories()
	out := make(map[string]domain.Feed, len(cats))
	for _, cat := range cats {
		out[cat.Key] = s.categoryFeed(ctx, cat)
	}
	return out
}

// Get resolves key as a category first, then as a group alias. Group feeds merge
// their members' articles newest first, capped at the group limit.
func (s *Service) Get(ctx context.Context, key string) (domain.Feed, error) {
	if cat, ok := s.registry.Category(key); ok {
		return s.categoryFeed(ctx, cat), nil
	}
	if g, ok := s.registry.Group(key); ok {
		return s.groupFeed(ctx, g), nil
	}
	return domain.Feed{}, fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

func (s *Service) categoryFeed(ctx context.Context, cat sources.Category) domain.Feed {
	entry, outcome := s.cache.Get(ctx, cat.Key, func(ctx context.Context) domain.Feed {
		return s.aggregator.Aggregate(ctx, cat)
	})
	feed := entry.Feed
	feed.FetchedAt = entry.FetchedAt.UTC()

	s.log.DebugObj("category served", "category_lookup", map[string]any{
		"category":   cat.Key,
		"cache_hit":  outcome == cache.Hit,
		"fetched_at": feed.FetchedAt,
	})
	if outcome == cache.Filled {
		s.notify(ctx, feed)
	}
	return feed
}

func (s *Service) groupFeed(ctx context.Context, g sources.Group) domain.Feed {
	lists := make([][]domain.Article, 0, len(g.Members))
	errs := make([]domain.SourceError, 0)
	var oldest time.Time

	for _, key := range g.Members {
		cat, ok := s.registry.Category(key)
		if !ok {
			// Registry validation guarantees members exist.
			continue
		}
		feed := s.categoryFeed(ctx, cat)
		lists = append(lists, feed.Articles)
		errs = append(errs, feed.Errors...)
		if oldest.IsZero() || feed.FetchedAt.Before(oldest) {
			oldest = feed.FetchedAt
		}
	}

	return domain.Feed{
		Key:       g.Alias,
		Name:      g.Alias,
		Members:   append([]string(nil), g.Members...),
		Articles:  aggregator.Merge(s.groupLimit, lists...),
		Errors:    errs,
		FetchedAt: oldest,
	}
}

func (s *Service) notify(ctx context.Context, feed domain.Feed) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	go func() {
		defer cancel()
		if err := s.notifier.Notify(ctx, feed); err != nil {
			s.log.WarnObj("refresh notification failed", "notify_error", map[string]any{
				"category": feed.Key,
				"error":    err.Error(),
			})
		}
	}()
}

// CategoryInfo describes a category without its articles.
type CategoryInfo struct {
	Key     string   `json:"key"`
	Name    string   `json:"name"`
	Icon    string   `json:"icon"`
	Sources []string `json:"sources"`
}

// Catalog lists the categories and group aliases the service can resolve.
type Catalog struct {
	Categories []CategoryInfo      `json:"categories"`
	Groups     map[string][]string `json:"groups"`
	TTLSeconds int64               `json:"cache_ttl_seconds"`
}

// Catalog returns registry metadata for clients.
func (s *Service) Catalog() Catalog {
	cats := lo.Map(s.registry.Categories(), func(c sources.Category, _ int) CategoryInfo {
		return CategoryInfo{
			Key:  c.Key,
			Name: c.Name,
			Icon: c.Icon,
			Sources: lo.Map(c.Sources, func(src sources.Source, _ int) string {
				return src.Name
			}),
		}
	})
	groups := lo.SliceToMap(s.registry.Groups(), func(g sources.Group) (string, []string) {
		return g.Alias, g.Members
	})
	return Catalog{
		Categories: cats,
		Groups:     groups,
		TTLSeconds: int64(s.cache.TTL() / time.Second),
	}
}
