package aggregator

import (
	"slices"

	"github.com/samvad-hq/samvad-news-aggregator/internal/domain"
)

// SortArticles orders articles newest first. Undated articles go last. Ties
// keep their input order.
func SortArticles(articles []domain.Article) {
	slices.SortStableFunc(articles, compareRecency)
}

func compareRecency(a, b domain.Article) int {
	switch {
	case a.Published == nil && b.Published == nil:
		return 0
	case a.Published == nil:
		return 1
	case b.Published == nil:
		return -1
	default:
		return b.Published.Compare(*a.Published)
	}
}

// Truncate caps articles at limit. A non-positive limit leaves it untouched.
func Truncate(articles []domain.Article, limit int) []domain.Article {
	if limit > 0 && len(articles) > limit {
		return articles[:limit]
	}
	return articles
}

// Merge concatenates the article lists in the given order, re-sorts them by
// recency and caps the union at limit. Inputs are not modified.
func Merge(limit int, lists ...[]domain.Article) []domain.Article {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	out := make([]domain.Article, 0, total)
	for _, l := range lists {
		out = append(out, l...)
	}
	SortArticles(out)
	return Truncate(out, limit)
}
