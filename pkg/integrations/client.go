package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/nodecrawl/pkg/cache"
	"github.com/matzehuels/nodecrawl/pkg/httputil"
	"github.com/matzehuels/nodecrawl/pkg/observability"
)

// bodySnippetSize is how much of an error response body is kept for logging.
const bodySnippetSize = 200

// maxRetryAfter is the longest Retry-After wait honored. A 429 asking for more
// fails the request instead of holding a fetch slot.
const maxRetryAfter = time.Minute

// Config configures a [Client]. Zero values select defaults.
type Config struct {
	Cache    cache.Cache           // nil disables caching
	TTL      time.Duration         // cache entry lifetime
	Headers  map[string]string     // sent with every request
	Timeout  time.Duration         // per request
	Limiter  *httputil.HostLimiter // nil disables rate limiting
	Attempts int                   // retry attempts for transient failures (default 3)
	Delay    time.Duration         // initial retry delay (default 1s)
}

// Client provides shared HTTP functionality for API clients.
// It handles caching, retry logic, rate limiting, and common request headers.
type Client struct {
	http     *http.Client
	cache    cache.Cache
	ttl      time.Duration
	headers  map[string]string
	limiter  *httputil.HostLimiter
	attempts int
	delay    time.Duration
}

// NewClient creates a Client from cfg.
func NewClient(cfg Config) *Client {
	if cfg.Cache == nil {
		cfg.Cache = cache.NewNullCache()
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.Delay <= 0 {
		cfg.Delay = time.Second
	}
	return &Client{
		http:     NewHTTPClient(cfg.Timeout),
		cache:    cfg.Cache,
		ttl:      cfg.TTL,
		headers:  cfg.Headers,
		limiter:  cfg.Limiter,
		attempts: cfg.Attempts,
		delay:    cfg.Delay,
	}
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; on success, v is stored in the cache.
// kind labels the entry for observability hooks ("tree", "content").
func (c *Client) Cached(ctx context.Context, kind, key string, refresh bool, v any, fetch func() error) error {
	hooks := observability.Cache()
	if !refresh {
		if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			if json.Unmarshal(data, v) == nil {
				hooks.OnCacheHit(ctx, kind)
				return nil
			}
		}
		hooks.OnCacheMiss(ctx, kind)
	}

	if err := httputil.Retry(ctx, c.attempts, c.delay, fetch); err != nil {
		return err
	}

	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, key, data, c.ttl) == nil {
			hooks.OnCacheSet(ctx, kind, len(data))
		}
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	body, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// GetText performs an HTTP GET request and returns the response body as a string.
func (c *Client) GetText(ctx context.Context, url string, headers map[string]string) (string, error) {
	body, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return "", err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return "", httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	return string(data), nil
}

func (c *Client) doRequest(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	host, path := req.URL.Host, req.URL.Path
	if err := c.limiter.Wait(ctx, host); err != nil {
		return nil, err
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// checkStatus maps a response to nil or a classified error. It reads up to
// bodySnippetSize bytes of the body for non-200 responses.
func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	if code == http.StatusOK {
		return nil
	}
	if code == http.StatusNotFound {
		return ErrNotFound
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, bodySnippetSize))
	se := &StatusError{Code: code, Body: strings.TrimSpace(string(snippet))}

	switch {
	case code == http.StatusForbidden:
		se.Err = ErrRateLimited
		return se
	case code == http.StatusTooManyRequests:
		se.Err = ErrRateLimited
		if d := retryAfter(resp.Header.Get("Retry-After"), time.Now()); d > 0 && d <= maxRetryAfter {
			return &httputil.RetryableError{Err: se, After: d}
		}
		return se
	case code >= 500:
		se.Err = ErrNetwork
		return httputil.Retryable(se)
	default:
		se.Err = ErrNetwork
		return se
	}
}
