package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samvad-hq/samvad-news-aggregator/internal/domain"
	"github.com/samvad-hq/samvad-news-aggregator/internal/metrics"
	"github.com/samvad-hq/samvad-news-aggregator/internal/news"
)

type stubService struct {
	feeds   map[string]domain.Feed
	catalog news.Catalog
	panicOn string
	failOn  string
}

func (s *stubService) All(context.Context) map[string]domain.Feed { return s.feeds }

func (s *stubService) Get(_ context.Context, key string) (domain.Feed, error) {
	if key == s.panicOn {
		panic("boom")
	}
	if key == s.failOn {
		return domain.Feed{}, fmt.Errorf("aggregate %s: broken", key)
	}
	f, ok := s.feeds[key]
	if !ok {
		return domain.Feed{}, fmt.Errorf("%w: %s", news.ErrUnknownKey, key)
	}
	return f, nil
}

func (s *stubService) Catalog() news.Catalog { return s.catalog }

func newStub() *stubService {
	fetched := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &stubService{
		feeds: map[string]domain.Feed{
			"ai": {
				Key:       "ai",
				Name:      "IT & AI",
				Articles:  []domain.Article{{ID: "a1", Title: "Model", Link: "https://x/1", SourceName: "TechCrunch"}},
				Errors:    []domain.SourceError{},
				FetchedAt: fetched,
			},
		},
		catalog: news.Catalog{
			Categories: []news.CategoryInfo{{Key: "ai", Name: "IT & AI", Icon: "🤖", Sources: []string{"TechCrunch"}}},
			Groups:     map[string][]string{"ai": {"ai"}},
			TTLSeconds: 300,
		},
		panicOn: "explode",
		failOn:  "broken",
	}
}

func doGet(t *testing.T, svc FeedService, path string) (*http.Response, []byte) {
	t.Helper()
	app := New(svc, nil)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestGetFeedByKey(t *testing.T) {
	resp, body := doGet(t, newStub(), "/api/feeds/ai")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var feed domain.Feed
	require.NoError(t, json.Unmarshal(body, &feed))
	assert.Equal(t, "ai", feed.Key)
	assert.Len(t, feed.Articles, 1)
	assert.Equal(t, "TechCrunch", feed.Articles[0].SourceName)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestUnknownKeyIs404(t *testing.T) {
	resp, body := doGet(t, newStub(), "/api/feeds/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"unknown category: nope"}`, string(body))
}

func TestAllFeeds(t *testing.T) {
	resp, body := doGet(t, newStub(), "/api/feeds")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var all map[string]domain.Feed
	require.NoError(t, json.Unmarshal(body, &all))
	assert.Contains(t, all, "ai")
}

func TestCategoriesCatalog(t *testing.T) {
	resp, body := doGet(t, newStub(), "/api/categories")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cat news.Catalog
	require.NoError(t, json.Unmarshal(body, &cat))
	require.Len(t, cat.Categories, 1)
	assert.Equal(t, []string{"TechCrunch"}, cat.Categories[0].Sources)
	assert.EqualValues(t, 300, cat.TTLSeconds)
}

func TestUnexpectedErrorsRenderJSON(t *testing.T) {
	resp, body := doGet(t, newStub(), "/api/feeds/broken")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"aggregate broken: broken"}`, string(body))
}

func TestPanicsAreRecovered(t *testing.T) {
	resp, _ := doGet(t, newStub(), "/api/feeds/explode")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestIndexAndHealth(t *testing.T) {
	resp, body := doGet(t, newStub(), "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "/api/categories")

	resp, body = doGet(t, newStub(), "/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.CacheLookups.WithLabelValues(metrics.CacheHit).Inc()
	metrics.SourceFetches.WithLabelValues("test-source", metrics.OutcomeOK).Inc()

	resp, body := doGet(t, newStub(), "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "go_goroutines")
	assert.Contains(t, string(body), "aggregator_cache_lookups_total")
	assert.Contains(t, string(body), "aggregator_source_fetches_total")
}
