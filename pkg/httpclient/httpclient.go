package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultUserAgent identifies the tool to HTTP servers.
const DefaultUserAgent = "capsule-to-epub/1.0"

// Response is the subset of an HTTP response the callers need.
// *resty.Response satisfies it directly.
type Response interface {
	StatusCode() int
	Body() []byte
	Header() http.Header
}

// Client issues GET requests with per-request headers.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}

type restyClient struct {
	client *resty.Client
}

// NewRestyClient builds a resty-backed Client with the given total request
// timeout and the default User-Agent.
func NewRestyClient(timeout time.Duration) Client {
	return NewRestyClientWithUserAgent(timeout, DefaultUserAgent)
}

// NewRestyClientWithUserAgent builds a resty-backed Client with an explicit
// User-Agent header.
func NewRestyClientWithUserAgent(timeout time.Duration, userAgent string) Client {
	c := resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	if userAgent != "" {
		c.SetHeader("User-Agent", userAgent)
	}
	return &restyClient{client: c}
}

func (c *restyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := c.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	return req.Get(url)
}
