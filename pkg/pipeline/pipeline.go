// Package pipeline runs a complete nodecrawl job for the CLI and any other
// entry point.
//
// # Stages
//
//  1. Crawl: list trees, fetch candidate files and parse them ([crawl.Crawler])
//  2. Export: encode the unique nodes in every requested format ([io.Encode])
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Repos:   []string{"freefq/free"},
//	    Formats: []string{"txt", "json"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	txt := result.Artifacts["txt"]
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"

	"github.com/matzehuels/nodecrawl/pkg/crawl"
	"github.com/matzehuels/nodecrawl/pkg/errors"
	"github.com/matzehuels/nodecrawl/pkg/integrations"
	nio "github.com/matzehuels/nodecrawl/pkg/io"
	"github.com/matzehuels/nodecrawl/pkg/node"
)

// Options configures a pipeline run. Zero values select defaults.
type Options struct {
	Repos           []string      `json:"repos"`
	DefaultBranch   string        `json:"default_branch,omitempty"`
	Extensions      []string      `json:"extensions,omitempty"`
	LinkSchemes     []string      `json:"link_schemes,omitempty"`
	Concurrency     int           `json:"concurrency,omitempty"`
	RepoConcurrency int           `json:"repo_concurrency,omitempty"`
	RateLimit       float64       `json:"rate_limit,omitempty"` // GitHub requests per second, 0 = unlimited
	Timeout         time.Duration `json:"timeout,omitempty"`    // per request
	MaxFileSize     int64         `json:"max_file_size,omitempty"`
	CacheTTL        time.Duration `json:"cache_ttl,omitempty"` // 0 = cache.DefaultTTL
	Refresh         bool          `json:"refresh,omitempty"`
	Formats         []string      `json:"formats,omitempty"`

	// Runtime options (not serialized)
	Token   string      `json:"-"`
	BaseURL string      `json:"-"` // GitHub API root; tests point this at a fake
	Logger  *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in stores and logs.
	RunID string

	// Nodes are the unique nodes in order of first appearance.
	Nodes []node.Node

	// Repos holds per-repository outcomes in input order.
	Repos []crawl.RepoResult

	// Invalid lists repository references that could not be parsed.
	Invalid []string

	// Artifacts contains encoded outputs keyed by format.
	Artifacts map[string][]byte

	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Repos      int
	Files      int
	Fetched    int
	Failed     int
	Nodes      int // parsed, before dedup
	Unique     int
	CrawlTime  time.Duration
	ExportTime time.Duration
}

// SetDefaults fills zero fields.
func (o *Options) SetDefaults() {
	o.Repos = lo.Compact(o.Repos)
	if o.DefaultBranch == "" {
		o.DefaultBranch = crawl.DefaultBranch
	}
	if o.Concurrency <= 0 {
		o.Concurrency = crawl.DefaultConcurrency
	}
	if o.RepoConcurrency <= 0 {
		o.RepoConcurrency = crawl.DefaultRepoConcurrency
	}
	if o.Timeout <= 0 {
		o.Timeout = integrations.DefaultTimeout
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{nio.FormatText, nio.FormatJSON}
	}
	o.Formats = lo.Uniq(o.Formats)
}

// Validate checks options after [Options.SetDefaults].
func (o *Options) Validate() error {
	if len(o.Repos) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no repositories given")
	}
	for _, f := range o.Formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	for _, ext := range o.Extensions {
		if err := errors.ValidateExtension(ext); err != nil {
			return err
		}
	}
	for _, s := range o.LinkSchemes {
		if err := errors.ValidateScheme(s); err != nil {
			return err
		}
	}
	if o.RateLimit < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "rate limit must not be negative")
	}
	return nil
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !lo.Contains(nio.Formats, format) {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: txt, json)", format)
	}
	return nil
}
