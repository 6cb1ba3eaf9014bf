package publishers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/samvad-hq/samvad-news-aggregator/pkg/fileconf"
)

// Publisher types accepted in the publishers file.
const (
	TypeHTTP   = "http"
	TypeSQS    = "sqs"
	TypeSNS    = "sns"
	TypePubSub = "pubsub"
)

const (
	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

// File is a decoded publishers file.
type File struct {
	Publishers []PublisherConfig `json:"publishers" yaml:"publishers"`
}

// PublisherConfig declares one sink for category refresh events. Exactly the
// block matching Type is read.
type PublisherConfig struct {
	ID      string `json:"id" yaml:"id"`
	Type    string `json:"type" yaml:"type"`
	Enabled *bool  `json:"enabled" yaml:"enabled"`
	// Categories limits the publisher to refreshes of these category keys.
	// Empty means every category.
	Categories []string `json:"categories" yaml:"categories"`

	HTTP   *HTTPPublisherConfig   `json:"http" yaml:"http"`
	SQS    *SQSPublisherConfig    `json:"sqs" yaml:"sqs"`
	SNS    *SNSPublisherConfig    `json:"sns" yaml:"sns"`
	PubSub *PubSubPublisherConfig `json:"pubsub" yaml:"pubsub"`
}

// HTTPPublisherConfig posts events to a webhook.
type HTTPPublisherConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// SQSPublisherConfig sends events to an SQS queue.
type SQSPublisherConfig struct {
	QueueURL string `json:"uri" yaml:"uri"`
	Region   string `json:"region" yaml:"region"`
}

// SNSPublisherConfig publishes events to an SNS topic.
type SNSPublisherConfig struct {
	TopicARN string `json:"topic_arn" yaml:"topic_arn"`
	Region   string `json:"region" yaml:"region"`
}

// PubSubPublisherConfig publishes events to a Google Cloud Pub/Sub topic.
// Endpoint and CredentialsFile are optional overrides of the client defaults.
type PubSubPublisherConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// LoadFile reads a YAML or JSON publishers file, normalizes every entry and
// reports all invalid entries at once.
func LoadFile(path string) (File, error) {
	var f File
	if err := fileconf.ReadFile(path, &f); err != nil {
		return File{}, fmt.Errorf("load publishers file: %w", err)
	}
	if len(f.Publishers) == 0 {
		return File{}, errors.New("publishers file contains no publishers entries")
	}

	var errs []error
	seen := make(map[string]int, len(f.Publishers))
	for i, cfg := range f.Publishers {
		cfg = cfg.normalize()
		if err := cfg.validate(); err != nil {
			errs = append(errs, fmt.Errorf("publishers[%d]: %w", i, err))
		}
		if first, dup := seen[cfg.ID]; dup && cfg.ID != "" {
			errs = append(errs, fmt.Errorf("publishers[%d]: id %q already used by publishers[%d]", i, cfg.ID, first))
		}
		seen[cfg.ID] = i
		f.Publishers[i] = cfg
	}
	if err := errors.Join(errs...); err != nil {
		return File{}, err
	}
	return f, nil
}

// Enabled returns the enabled publishers in file order.
func (f File) Enabled() []PublisherConfig {
	return lo.Filter(f.Publishers, func(cfg PublisherConfig, _ int) bool {
		return cfg.EnabledValue()
	})
}

// CheckCategories fails when an enabled publisher subscribes to a category
// that is not in keys.
func (f File) CheckCategories(keys []string) error {
	var errs []error
	for _, cfg := range f.Enabled() {
		if unknown := lo.Without(cfg.Categories, keys...); len(unknown) > 0 {
			errs = append(errs, fmt.Errorf("publisher %q subscribes to unknown categories %v", cfg.ID, unknown))
		}
	}
	return errors.Join(errs...)
}

// EnabledValue returns the enabled flag, defaulting to true.
func (cfg PublisherConfig) EnabledValue() bool {
	return cfg.Enabled == nil || *cfg.Enabled
}

// Wants reports whether the publisher is subscribed to category.
func (cfg PublisherConfig) Wants(category string) bool {
	return len(cfg.Categories) == 0 || lo.Contains(cfg.Categories, category)
}

// normalize trims every field, lowercases the type and fills HTTP defaults.
// Nested blocks are copied so the caller's config is left untouched.
func (cfg PublisherConfig) normalize() PublisherConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))
	cfg.Categories = lo.Uniq(lo.Compact(lo.Map(cfg.Categories, func(k string, _ int) string {
		return strings.TrimSpace(k)
	})))

	if cfg.HTTP != nil {
		c := *cfg.HTTP
		c.URL = strings.TrimSpace(c.URL)
		c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
		if c.Method == "" {
			c.Method = httpDefaultMethod
		}
		if c.TimeoutSeconds <= 0 {
			c.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		c.Headers = lo.PickBy(lo.MapEntries(c.Headers, func(k, v string) (string, string) {
			return strings.TrimSpace(k), strings.TrimSpace(v)
		}), func(k, v string) bool { return k != "" && v != "" })
		cfg.HTTP = &c
	}
	if cfg.SQS != nil {
		c := *cfg.SQS
		c.QueueURL = strings.TrimSpace(c.QueueURL)
		c.Region = strings.TrimSpace(c.Region)
		cfg.SQS = &c
	}
	if cfg.SNS != nil {
		c := *cfg.SNS
		c.TopicARN = strings.TrimSpace(c.TopicARN)
		c.Region = strings.TrimSpace(c.Region)
		cfg.SNS = &c
	}
	if cfg.PubSub != nil {
		c := *cfg.PubSub
		c.ProjectID = strings.TrimSpace(c.ProjectID)
		c.Topic = strings.TrimSpace(c.Topic)
		c.Endpoint = strings.TrimSpace(c.Endpoint)
		c.CredentialsFile = strings.TrimSpace(c.CredentialsFile)
		cfg.PubSub = &c
	}
	return cfg
}

type field struct {
	name  string
	value string
}

// validate checks the block selected by Type. It expects a normalized config.
func (cfg PublisherConfig) validate() error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}

	switch cfg.Type {
	case TypeHTTP:
		if cfg.HTTP == nil {
			return cfg.missingBlock()
		}
		return cfg.require(field{"url", cfg.HTTP.URL})
	case TypeSQS:
		if cfg.SQS == nil {
			return cfg.missingBlock()
		}
		return cfg.require(field{"uri", cfg.SQS.QueueURL}, field{"region", cfg.SQS.Region})
	case TypeSNS:
		if cfg.SNS == nil {
			return cfg.missingBlock()
		}
		return cfg.require(field{"topic_arn", cfg.SNS.TopicARN}, field{"region", cfg.SNS.Region})
	case TypePubSub:
		if cfg.PubSub == nil {
			return cfg.missingBlock()
		}
		return cfg.require(field{"project_id", cfg.PubSub.ProjectID}, field{"topic", cfg.PubSub.Topic})
	case "":
		return fmt.Errorf("publisher %q: type is required", cfg.ID)
	default:
		return fmt.Errorf("publisher %q: unsupported type %q", cfg.ID, cfg.Type)
	}
}

func (cfg PublisherConfig) missingBlock() error {
	return fmt.Errorf("publisher %q: %s block is required", cfg.ID, cfg.Type)
}

func (cfg PublisherConfig) require(fields ...field) error {
	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, cfg.Type+"."+f.name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("publisher %q: %s required", cfg.ID, strings.Join(missing, ", "))
}
