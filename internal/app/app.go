package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samvad-hq/samvad-news-aggregator/internal/aggregator"
	"github.com/samvad-hq/samvad-news-aggregator/internal/cache"
	"github.com/samvad-hq/samvad-news-aggregator/internal/config"
	"github.com/samvad-hq/samvad-news-aggregator/internal/logger"
	"github.com/samvad-hq/samvad-news-aggregator/internal/news"
	"github.com/samvad-hq/samvad-news-aggregator/internal/server"
	"github.com/samvad-hq/samvad-news-aggregator/pkg/feeds"
	"github.com/samvad-hq/samvad-news-aggregator/pkg/httpclient"
	"github.com/samvad-hq/samvad-news-aggregator/pkg/publishers"
	"github.com/samvad-hq/samvad-news-aggregator/pkg/sources"
)

const shutdownTimeout = 10 * time.Second

// App is the aggregator runtime: the feed registry, the fetch pipeline behind
// the cache, and the HTTP server in front of it.
type App struct {
	cfg      *config.Config
	registry *sources.Registry
	fanout   *publishers.Fanout
	service  *news.Service
	server   *fiber.App
	log      logger.Logger
}

// New builds the runtime from cfg.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	reg, err := loadRegistry(cfg)
	if err != nil {
		return nil, err
	}
	log.InfoObj("feed registry loaded", "registry_meta", map[string]any{
		"source":     registrySource(cfg),
		"categories": reg.Keys(),
		"groups":     len(reg.Groups()),
	})

	fanout, err := buildFanout(ctx, cfg, reg, log)
	if err != nil {
		return nil, err
	}

	client := httpclient.NewRestyClient(httpclient.Options{
		Timeout:      cfg.FetchTimeout,
		UserAgent:    cfg.UserAgent,
		MaxBodyBytes: feeds.MaxFeedBodyBytes,
	})
	fetcher := feeds.NewRSSFetcher(client,
		feeds.WithTimeout(cfg.FetchTimeout),
		feeds.WithHeaders(reg.RequestHeaders),
	)
	agg := aggregator.New(fetcher, aggregator.Options{
		Workers: cfg.FetchWorkers,
		Limit:   cfg.CategoryLimit,
	}, log)
	c := cache.New(cache.Options{
		TTL:          cfg.CacheTTL,
		SingleFlight: cfg.CacheSingleFlight,
	})

	opts := news.Options{GroupLimit: cfg.GroupLimit}
	if fanout.Size() > 0 {
		opts.Notifier = fanout
	}
	svc, err := news.NewService(reg, c, agg, opts, log)
	if err != nil {
		return nil, fmt.Errorf("init news service: %w", err)
	}

	return &App{
		cfg:      cfg,
		registry: reg,
		fanout:   fanout,
		service:  svc,
		server:   server.New(svc, log),
		log:      log,
	}, nil
}

func loadRegistry(cfg *config.Config) (*sources.Registry, error) {
	if cfg.FeedsFile == "" {
		return sources.Default(), nil
	}
	reg, err := sources.Load(cfg.FeedsFile)
	if err != nil {
		return nil, fmt.Errorf("load feeds registry: %w", err)
	}
	return reg, nil
}

func registrySource(cfg *config.Config) string {
	if cfg.FeedsFile == "" {
		return "built-in"
	}
	return cfg.FeedsFile
}

// buildFanout returns an empty fanout when no publishers file is configured.
// Subscriptions must name categories of reg.
func buildFanout(ctx context.Context, cfg *config.Config, reg *sources.Registry, log logger.Logger) (*publishers.Fanout, error) {
	if cfg.PublishersFile == "" {
		return publishers.NewFanout(nil), nil
	}

	file, err := publishers.LoadFile(cfg.PublishersFile)
	if err != nil {
		return nil, err
	}
	if err := file.CheckCategories(reg.Keys()); err != nil {
		return nil, fmt.Errorf("check publisher subscriptions: %w", err)
	}
	enabled := file.Enabled()
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]any, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]any{
			"id":         pubCfg.ID,
			"type":       pubCfg.Type,
			"categories": pubCfg.Categories,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"disabled":   len(file.Publishers) - len(enabled),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// Handler exposes the HTTP application, for tests and embedding.
func (a *App) Handler() *fiber.App { return a.server }

// Run serves HTTP on the configured address until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.server == nil {
		return fmt.Errorf("app is not initialized")
	}
	defer a.closeFanout()

	a.log.InfoObj("http server starting", "server_state", map[string]any{
		"listen_addr":       a.cfg.ListenAddr,
		"categories":        len(a.registry.Categories()),
		"publishers_count":  a.fanout.Size(),
		"cache_ttl_seconds": a.cfg.CacheTTLSeconds,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Listen(a.cfg.ListenAddr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", a.cfg.ListenAddr, err)
		}
		return nil
	case <-ctx.Done():
		a.log.InfoObj("http server stopping", "reason", ctx.Err().Error())
		if err := a.server.ShutdownWithTimeout(shutdownTimeout); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return <-errCh
	}
}

func (a *App) closeFanout() {
	if err := a.fanout.Close(); err != nil {
		a.log.ErrorObj("publishers close failed", "error", err.Error())
	}
}
