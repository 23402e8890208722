// Package client talks to the dataset explore endpoint over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/rubiojr/explore/pkg/explore"
	"github.com/rubiojr/explore/pkg/log"
)

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP error! status: %d", e.Code)
	}
	return fmt.Sprintf("HTTP error! status: %d: %s", e.Code, e.Body)
}

// Client searches datasets. The zero value is not usable; use New.
type Client struct {
	baseURL  *url.URL
	endpoint string
	token    string
	http     *http.Client
	timeout  time.Duration
	log      *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its cookie jar, if any, must keep the
// session cookie the token is bound to.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithEndpoint changes the search path.
func WithEndpoint(path string) Option {
	return func(c *Client) { c.endpoint = path }
}

// WithToken sets the anti-forgery token without loading the page.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout bounds every request. Zero means no timeout. A client passed
// to WithHTTPClient is copied rather than changed.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New returns a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	c := &Client{
		baseURL:  u,
		endpoint: explore.DefaultEndpoint,
		http:     &http.Client{Jar: jar},
		log:      log.ForService("client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c, nil
}

// Token returns the anti-forgery token sent with searches.
func (c *Client) Token() string {
	return c.token
}

func (c *Client) endpointURL(params url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + c.endpoint
	u.RawQuery = params.Encode()
	return u.String()
}

// Search posts c as JSON and decodes the returned datasets.
func (c *Client) Search(ctx context.Context, criteria explore.Criteria) ([]explore.Item, error) {
	body, err := json.Marshal(criteria)
	if err != nil {
		return nil, fmt.Errorf("encoding criteria: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL(nil), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(explore.CSRFHeader, c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending search: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Warnf("closing response body: %v", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	items, err := explore.DecodeItems(resp.Body)
	if err != nil {
		return nil, err
	}
	c.log.Debugf("search returned %d items", len(items))
	return items, nil
}
