package sources

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/samber/lo"

	"github.com/samvad-hq/samvad-news-aggregator/pkg/fileconf"
)

// Package sources holds the static feed registry: categories of RSS sources and
// group aliases that expand to several categories.

// Source is one RSS feed endpoint.
type Source struct {
	Name    string            `json:"name" yaml:"name"`
	URL     string            `json:"url" yaml:"url"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// Category is a named, ordered list of sources.
type Category struct {
	Key     string   `json:"key" yaml:"key"`
	Name    string   `json:"name" yaml:"name"`
	Icon    string   `json:"icon" yaml:"icon"`
	Sources []Source `json:"sources" yaml:"sources"`
}

// Group expands an alias to a set of category keys.
type Group struct {
	Alias   string   `json:"alias" yaml:"alias"`
	Members []string `json:"members" yaml:"members"`
}

// Registry is the immutable category/group configuration built once at startup.
// All accessors return copies.
type Registry struct {
	categories []Category
	groups     []Group
	catIdx     map[string]int
	groupIdx   map[string]int
	headers    map[string]string
}

type registryFile struct {
	Headers    map[string]string `json:"headers" yaml:"headers"`
	Categories []Category        `json:"categories" yaml:"categories"`
	Groups     []Group           `json:"groups" yaml:"groups"`
}

// New validates the given categories and groups and builds a Registry.
func New(categories []Category, groups []Group, opts ...Option) (*Registry, error) {
	if len(categories) == 0 {
		return nil, errors.New("registry contains no categories")
	}

	reg := &Registry{
		categories: make([]Category, 0, len(categories)),
		groups:     make([]Group, 0, len(groups)),
		catIdx:     make(map[string]int, len(categories)),
		groupIdx:   make(map[string]int, len(groups)),
	}
	for _, opt := range opts {
		opt(reg)
	}

	for i, c := range categories {
		c = sanitizeCategory(c)
		if err := validateCategory(c); err != nil {
			return nil, fmt.Errorf("categories[%d]: %w", i, err)
		}
		if _, exists := reg.catIdx[c.Key]; exists {
			return nil, fmt.Errorf("duplicate category key %q", c.Key)
		}
		reg.catIdx[c.Key] = len(reg.categories)
		reg.categories = append(reg.categories, c)
	}

	for i, g := range groups {
		g = sanitizeGroup(g)
		if err := reg.validateGroup(g); err != nil {
			return nil, fmt.Errorf("groups[%d]: %w", i, err)
		}
		if _, exists := reg.groupIdx[g.Alias]; exists {
			return nil, fmt.Errorf("duplicate group alias %q", g.Alias)
		}
		reg.groupIdx[g.Alias] = len(reg.groups)
		reg.groups = append(reg.groups, g)
	}

	return reg, nil
}

// Option customises a Registry at construction time.
type Option func(*Registry)

// WithHeaders sets default request headers applied to every source. Keys use
// the snake_case names accepted in registry files (see HeaderKeys).
func WithHeaders(headers map[string]string) Option {
	return func(r *Registry) {
		r.headers = canonicalHeaders(headers)
	}
}

// Load builds a registry from a YAML or JSON file.
func Load(path string) (*Registry, error) {
	var rf registryFile
	if err := fileconf.ReadFile(path, &rf); err != nil {
		return nil, fmt.Errorf("load feeds file: %w", err)
	}
	return New(rf.Categories, rf.Groups, WithHeaders(rf.Headers))
}

func sanitizeCategory(c Category) Category {
	c.Key = strings.TrimSpace(c.Key)
	c.Name = strings.TrimSpace(c.Name)
	c.Icon = strings.TrimSpace(c.Icon)

	srcs := make([]Source, len(c.Sources))
	for i, s := range c.Sources {
		s.Name = strings.TrimSpace(s.Name)
		s.URL = strings.TrimSpace(s.URL)
		s.Headers = canonicalHeaders(s.Headers)
		srcs[i] = s
	}
	c.Sources = srcs
	return c
}

func sanitizeGroup(g Group) Group {
	g.Alias = strings.TrimSpace(g.Alias)
	g.Members = lo.Map(g.Members, func(m string, _ int) string { return strings.TrimSpace(m) })
	return g
}

func validateCategory(c Category) error {
	if c.Key == "" {
		return errors.New("key is required")
	}
	if c.Name == "" {
		return fmt.Errorf("name is required for category %q", c.Key)
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("category %q has no sources", c.Key)
	}
	for i, s := range c.Sources {
		if s.Name == "" {
			return fmt.Errorf("category %q sources[%d]: name is required", c.Key, i)
		}
		if s.URL == "" {
			return fmt.Errorf("category %q source %q: url is required", c.Key, s.Name)
		}
	}
	return nil
}

func (r *Registry) validateGroup(g Group) error {
	if g.Alias == "" {
		return errors.New("alias is required")
	}
	if len(g.Members) == 0 {
		return fmt.Errorf("group %q has no members", g.Alias)
	}
	if dups := lo.FindDuplicates(g.Members); len(dups) > 0 {
		return fmt.Errorf("group %q lists %q more than once", g.Alias, dups[0])
	}
	for _, m := range g.Members {
		if _, ok := r.catIdx[m]; !ok {
			return fmt.Errorf("group %q references unknown category %q", g.Alias, m)
		}
	}
	return nil
}

// Categories returns all categories in registry order.
func (r *Registry) Categories() []Category {
	out := make([]Category, len(r.categories))
	for i, c := range r.categories {
		out[i] = copyCategory(c)
	}
	return out
}

// Keys returns category keys in registry order.
func (r *Registry) Keys() []string {
	return lo.Map(r.categories, func(c Category, _ int) string { return c.Key })
}

// Category looks up a category by key.
func (r *Registry) Category(key string) (Category, bool) {
	idx, ok := r.catIdx[key]
	if !ok {
		return Category{}, false
	}
	return copyCategory(r.categories[idx]), true
}

// Group looks up a group alias.
func (r *Registry) Group(alias string) (Group, bool) {
	idx, ok := r.groupIdx[alias]
	if !ok {
		return Group{}, false
	}
	g := r.groups[idx]
	return Group{Alias: g.Alias, Members: append([]string(nil), g.Members...)}, true
}

// Groups returns all group aliases in registry order.
func (r *Registry) Groups() []Group {
	out := make([]Group, len(r.groups))
	for i, g := range r.groups {
		out[i] = Group{Alias: g.Alias, Members: append([]string(nil), g.Members...)}
	}
	return out
}

// RequestHeaders returns the headers to send when fetching src: registry-wide
// defaults overlaid with the source's own headers.
func (r *Registry) RequestHeaders(src Source) map[string]string {
	out := make(map[string]string, len(r.headers)+len(src.Headers))
	for k, v := range r.headers {
		out[k] = v
	}
	for k, v := range src.Headers {
		out[k] = v
	}
	return out
}

func copyCategory(c Category) Category {
	c.Sources = lo.Map(c.Sources, func(src Source, _ int) Source {
		src.Headers = maps.Clone(src.Headers)
		return src
	})
	return c
}
