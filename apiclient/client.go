package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const defaultMaxResponseSize = 4 * datasize.MB

var ErrForeignTarget = errors.New("request target is outside the API base URL")

// CredentialSource supplies the bearer token for each request.
// It is consulted on every call, so the client never holds a stale header.
type CredentialSource interface {
	AccessToken() string
}

// StaticToken is a CredentialSource for a fixed token
type StaticToken string

func (t StaticToken) AccessToken() string {
	return string(t)
}

type credentialsKey struct{}

// ContextWithCredentials attaches src to ctx. Clients without their own
// credential source use it for calls made with that context.
func ContextWithCredentials(ctx context.Context, src CredentialSource) context.Context {
	return context.WithValue(ctx, credentialsKey{}, src)
}

func credentialsFromContext(ctx context.Context) CredentialSource {
	src, _ := ctx.Value(credentialsKey{}).(CredentialSource)
	return src
}

// Client calls the storefront REST API relative to a fixed base URL
type Client struct {
	baseURL         *url.URL
	httpClient      *http.Client
	credentials     CredentialSource
	observers       []Observer
	maxResponseSize datasize.ByteSize
	userAgent       string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets a per-request timeout. Zero keeps the transport default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = timeout
		c.httpClient = &hc
	}
}

// WithObserver adds an observation sink
func WithObserver(observers ...Observer) Option {
	return func(c *Client) {
		for _, o := range observers {
			if o != nil {
				c.observers = append(c.observers, o)
			}
		}
	}
}

// WithMaxResponseSize caps how much of a response body is read
func WithMaxResponseSize(size datasize.ByteSize) Option {
	return func(c *Client) {
		if size > 0 {
			c.maxResponseSize = size
		}
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// New creates a client for the API rooted at baseURL (origin plus path prefix)
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "[apiclient.New] invalid base URL")
	}
	if !base.IsAbs() || base.Host == "" {
		return nil, fmt.Errorf("[apiclient.New] base URL must be absolute: %q", baseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	base.RawQuery = ""
	base.Fragment = ""

	c := &Client{
		baseURL:         base,
		httpClient:      &http.Client{},
		maxResponseSize: defaultMaxResponseSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns a copy of the API base URL
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// WithCredentials returns a copy of the client that authenticates with src
func (c *Client) WithCredentials(src CredentialSource) *Client {
	clone := *c
	clone.credentials = src
	clone.observers = slices.Clone(c.observers)
	return &clone
}

// Resolve turns a request path into an absolute URL under the base.
// Leading slashes are ignored so every call keeps the base prefix.
func (c *Client) Resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimLeft(path, "/"))
	if err != nil {
		return nil, errors.Wrapf(err, "[Client.Resolve] invalid path %q", path)
	}
	if ref.IsAbs() || ref.Host != "" {
		if !strings.EqualFold(ref.Scheme, c.baseURL.Scheme) ||
			!strings.EqualFold(ref.Host, c.baseURL.Host) ||
			!strings.HasPrefix(ref.Path, c.baseURL.Path) {
			return nil, errors.Wrapf(ErrForeignTarget, "[Client.Resolve] %q", path)
		}
		return ref, nil
	}
	return c.baseURL.ResolveReference(ref), nil
}

// Get issues a GET and decodes the JSON response into out
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post sends body as JSON and decodes the JSON response into out
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Do performs one call. Non-2xx responses and transport failures are returned
// as *Error; nothing is retried.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	start := time.Now()
	status, err := c.do(ctx, method, path, body, out)

	event := Event{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Duration:   time.Since(start),
		Err:        err,
	}
	for _, o := range c.observers {
		o.Observe(ctx, event)
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	target, err := c.Resolve(path)
	if err != nil {
		return 0, err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, errors.Wrap(err, "[Client.Do] failed to marshal request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return 0, errors.Wrap(err, "[Client.Do] failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	credentials := c.credentials
	if credentials == nil {
		credentials = credentialsFromContext(ctx)
	}
	if credentials != nil {
		if accessToken := credentials.AccessToken(); accessToken != "" {
			(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}).SetAuthHeader(req)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &Error{Kind: KindNetwork, Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	limit := int64(c.maxResponseSize.Bytes())
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return resp.StatusCode, &Error{Kind: KindNetwork, Method: method, Path: path, StatusCode: resp.StatusCode, Err: err}
	}
	truncated := int64(len(data)) > limit
	if truncated {
		data = data[:limit]
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, &Error{
			Kind:       KindForStatus(resp.StatusCode),
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       data,
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return resp.StatusCode, nil
	}
	if truncated {
		return resp.StatusCode, &Error{
			Kind: KindDecode, Method: method, Path: path, StatusCode: resp.StatusCode, Body: data,
			Err: fmt.Errorf("response larger than %s", c.maxResponseSize.HumanReadable()),
		}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, &Error{Kind: KindDecode, Method: method, Path: path, StatusCode: resp.StatusCode, Body: data, Err: err}
	}
	return resp.StatusCode, nil
}
