package httpclient

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Options configures the resty-backed client.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// MaxBodyBytes caps how much of a response body is read; zero means unlimited.
	MaxBodyBytes int
}

const defaultTimeout = 15 * time.Second

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient from the given options.
func NewRestyClient(opts Options) *RestyClient {
	return &RestyClient{client: NewRestyHTTPClient(opts)}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(opts Options) *resty.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	c := resty.New()
	c.SetTimeout(opts.Timeout)
	c.SetRetryCount(0)
	if ua := strings.TrimSpace(opts.UserAgent); ua != "" {
		c.SetHeader("User-Agent", ua)
	}
	if opts.MaxBodyBytes > 0 {
		c.SetResponseBodyLimit(opts.MaxBodyBytes)
	}
	return c
}

// Get performs an HTTP GET request with the specified context, URL, and headers.
func (r *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := r.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte             { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int          { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header(key string) string { return r.resp.Header().Get(key) }
