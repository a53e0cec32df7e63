package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/nodecrawl/pkg/cache"
	"github.com/matzehuels/nodecrawl/pkg/crawl"
	"github.com/matzehuels/nodecrawl/pkg/httputil"
	"github.com/matzehuels/nodecrawl/pkg/integrations/github"
	nio "github.com/matzehuels/nodecrawl/pkg/io"
	"github.com/matzehuels/nodecrawl/pkg/observability"
	"github.com/matzehuels/nodecrawl/pkg/parse"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner holds no per-run state, so multiple goroutines can use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the crawl → export pipeline.
//
// A cancelled context returns the partial result together with ctx.Err();
// artifacts are still encoded so callers can save what was found. A format
// that fails to encode is logged and left out of Artifacts; the others are
// kept.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}
	logger := opts.Logger.With("run", result.RunID[:8])

	// Stage 1: Crawl
	crawlStart := time.Now()
	crawler := r.Crawler(opts)
	crawler.Logger = logger
	res, crawlErr := crawler.CrawlAll(ctx, opts.Repos)
	result.Nodes = res.Nodes
	result.Repos = res.Repos
	result.Invalid = res.Invalid
	result.Stats.CrawlTime = time.Since(crawlStart)
	result.Stats.Repos = len(res.Repos)
	result.Stats.Files = res.Stats.Files
	result.Stats.Fetched = res.Stats.Fetched
	result.Stats.Failed = res.Stats.Failed
	result.Stats.Nodes = res.Stats.Nodes
	result.Stats.Unique = res.Unique

	logger.Info("crawled repositories",
		"repos", result.Stats.Repos,
		"files", result.Stats.Files,
		"nodes", result.Stats.Nodes,
		"unique", result.Stats.Unique,
		"duration", result.Stats.CrawlTime.Round(time.Millisecond))

	// Stage 2: Export
	exportStart := time.Now()
	hooks := observability.Crawl()
	hooks.OnExportStart(ctx, opts.Formats)
	var exportErrs []error
	for _, format := range opts.Formats {
		data, err := nio.Encode(format, result.Nodes)
		if err != nil {
			logger.Warn("export failed", "format", format, "err", err)
			exportErrs = append(exportErrs, fmt.Errorf("export %s: %w", format, err))
			continue
		}
		result.Artifacts[format] = data
	}
	result.Stats.ExportTime = time.Since(exportStart)
	hooks.OnExportComplete(ctx, opts.Formats, result.Stats.ExportTime, errors.Join(exportErrs...))

	logger.Debug("encoded outputs", "formats", opts.Formats, "duration", result.Stats.ExportTime)

	return result, crawlErr
}

// Crawler builds the crawler Execute would use for opts, backed by a GitHub
// client that shares the runner's cache.
func (r *Runner) Crawler(opts Options) *crawl.Crawler {
	opts.SetDefaults()
	r.applyLogger(&opts)

	var limiter *httputil.HostLimiter
	if opts.RateLimit > 0 {
		limiter = httputil.NewHostLimiter(opts.RateLimit, max(1, int(opts.RateLimit)))
	}
	client := github.NewClient(github.Options{
		Token:   opts.Token,
		BaseURL: opts.BaseURL,
		Cache:   r.Cache,
		Keyer:   r.Keyer,
		TTL:     opts.CacheTTL,
		Timeout: opts.Timeout,
		Limiter: limiter,
		Refresh: opts.Refresh,
	})
	return &crawl.Crawler{
		Source:          client,
		Parsers:         parse.Default(opts.LinkSchemes),
		Logger:          opts.Logger,
		DefaultBranch:   opts.DefaultBranch,
		Extensions:      opts.Extensions,
		Concurrency:     opts.Concurrency,
		RepoConcurrency: opts.RepoConcurrency,
		MaxFileSize:     opts.MaxFileSize,
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
