package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/nodecrawl/pkg/cache"
	"github.com/matzehuels/nodecrawl/pkg/errors"
	"github.com/matzehuels/nodecrawl/pkg/httputil"
	"github.com/matzehuels/nodecrawl/pkg/integrations"
)

// DefaultBaseURL is the public GitHub REST API.
const DefaultBaseURL = "https://api.github.com"

const (
	acceptJSON = "application/vnd.github.v3+json"
	acceptRaw  = "application/vnd.github.v3.raw"
)

// Options configures a [Client]. Zero values select defaults.
type Options struct {
	Token      string
	BaseURL    string
	Cache      cache.Cache
	Keyer      cache.Keyer
	TTL        time.Duration
	Timeout    time.Duration
	Limiter    *httputil.HostLimiter
	Refresh    bool // bypass cached responses
	Attempts   int
	RetryDelay time.Duration
}

// Client lists trees and fetches file contents.
// It handles HTTP requests with caching, automatic retries, and optional authentication.
type Client struct {
	*integrations.Client
	baseURL string
	keyer   cache.Keyer
	refresh bool
}

// NewClient creates a GitHub API client.
// An empty token makes unauthenticated requests (lower rate limits).
func NewClient(opts Options) *Client {
	headers := map[string]string{"Accept": acceptJSON}
	if opts.Token != "" {
		headers["Authorization"] = "token " + opts.Token
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.TTL <= 0 {
		opts.TTL = cache.DefaultTTL
	}

	return &Client{
		Client: integrations.NewClient(integrations.Config{
			Cache:    opts.Cache,
			TTL:      opts.TTL,
			Headers:  headers,
			Timeout:  opts.Timeout,
			Limiter:  opts.Limiter,
			Attempts: opts.Attempts,
			Delay:    opts.RetryDelay,
		}),
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		keyer:   opts.Keyer,
		refresh: opts.Refresh,
	}
}

// Tree returns the recursive tree listing of repo at branch.
// A missing branch yields [integrations.ErrNotFound].
func (c *Client) Tree(ctx context.Context, repo Repo, branch string) (*Tree, error) {
	if branch == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "branch is required")
	}
	u := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1",
		c.baseURL, url.PathEscape(repo.Owner), url.PathEscape(repo.Name), escapePath(branch))

	var t Tree
	err := c.Cached(ctx, "tree", c.keyer.TreeKey(repo.String(), branch), c.refresh, &t, func() error {
		var resp treeResponse
		if err := c.Get(ctx, u, &resp); err != nil {
			return err
		}
		t = resp.toTree()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FileContent returns the body of path in repo at branch.
//
// Base64 bodies are decoded. A plain string body is returned unchanged.
// Files over 1 MB come back with encoding "none" and no content; those are
// refetched with the raw media type. Decoded and raw bodies drop bytes that
// are not valid UTF-8.
// Any other shape yields [integrations.ErrUnknownFormat].
func (c *Client) FileContent(ctx context.Context, repo Repo, branch, path string) (string, error) {
	if err := errors.ValidatePath(path); err != nil {
		return "", err
	}
	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		c.baseURL, url.PathEscape(repo.Owner), url.PathEscape(repo.Name), escapePath(path))
	if branch != "" {
		u += "?ref=" + url.QueryEscape(branch)
	}

	var content string
	err := c.Cached(ctx, "content", c.keyer.ContentKey(repo.String(), branch, path), c.refresh, &content, func() error {
		var resp contentResponse
		if err := c.Get(ctx, u, &resp); err != nil {
			return err
		}
		s, err := c.decode(ctx, u, &resp)
		if err != nil {
			return err
		}
		content = s
		return nil
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

func (c *Client) decode(ctx context.Context, u string, resp *contentResponse) (string, error) {
	if resp.Content == nil {
		return "", fmt.Errorf("%w: no content for %s", integrations.ErrUnknownFormat, resp.Path)
	}
	switch {
	case resp.Encoding == "base64":
		data, err := base64.StdEncoding.DecodeString(stripNewlines(*resp.Content))
		if err != nil {
			return "", fmt.Errorf("%w: %v", integrations.ErrUnknownFormat, err)
		}
		return strings.ToValidUTF8(string(data), ""), nil
	case resp.Encoding == "none" && *resp.Content == "" && resp.Size > 0:
		raw, err := c.GetText(ctx, u, map[string]string{"Accept": acceptRaw})
		if err != nil {
			return "", err
		}
		return strings.ToValidUTF8(raw, ""), nil
	default:
		return *resp.Content, nil
	}
}

// escapePath escapes each segment of p, keeping the slashes.
func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
