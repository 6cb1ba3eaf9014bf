package server

import (
	"context"
	"embed"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/samvad-hq/samvad-news-aggregator/internal/domain"
	"github.com/samvad-hq/samvad-news-aggregator/internal/logger"
	"github.com/samvad-hq/samvad-news-aggregator/internal/news"
)

//go:embed web/*
var web embed.FS

// FeedService is the read side of the news service the API exposes.
type FeedService interface {
	All(ctx context.Context) map[string]domain.Feed
	Get(ctx context.Context, key string) (domain.Feed, error)
	Catalog() news.Catalog
}

type errorBody struct {
	Error string `json:"error"`
}

// New returns a fiber.App serving the frontend and the JSON feed API.
func New(svc FeedService, log logger.Logger) *fiber.App {
	log = logger.Ensure(log)

	app := fiber.New(fiber.Config{
		AppName:               "samvad-news-aggregator",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(log),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(requestLogger(log))
	app.Use(compress.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")
	api.Get("/categories", func(c *fiber.Ctx) error {
		return c.JSON(svc.Catalog())
	})
	api.Get("/feeds", func(c *fiber.Ctx) error {
		return c.JSON(svc.All(c.UserContext()))
	})
	api.Get("/feeds/:key", func(c *fiber.Ctx) error {
		key := c.Params("key")
		feed, err := svc.Get(c.UserContext(), key)
		if errors.Is(err, news.ErrUnknownKey) {
			return c.Status(fiber.StatusNotFound).JSON(errorBody{Error: "unknown category: " + key})
		}
		if err != nil {
			return err
		}
		return c.JSON(feed)
	})

	app.Use("/", filesystem.New(filesystem.Config{
		Browse:     false,
		Index:      "index.html",
		Root:       http.FS(web),
		PathPrefix: "/web",
	}))

	return app
}

// requestLogger records method, route, status and latency of every request.
func requestLogger(log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
		log.InfoObj("request", "http_request", map[string]any{
			"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
			"method":     c.Method(),
			"route":      c.Route().Path,
			"path":       c.Path(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
		})
		return err
	}
}

// errorHandler renders every unhandled error as a JSON body.
func errorHandler(log logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.ErrorObj("request failed", "http_error", map[string]any{
				"path":  c.Path(),
				"error": err.Error(),
			})
		}
		return c.Status(code).JSON(errorBody{Error: err.Error()})
	}
}
