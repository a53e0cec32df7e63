package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecrawl/pkg/config"
	nio "github.com/matzehuels/nodecrawl/pkg/io"
	"github.com/matzehuels/nodecrawl/pkg/pipeline"
	"github.com/matzehuels/nodecrawl/pkg/store"
	"github.com/matzehuels/nodecrawl/pkg/store/mongo"
)

// crawlFlags holds the crawl command flags. Only flags the user set override
// the config file.
type crawlFlags struct {
	branch          string
	concurrency     int
	repoConcurrency int
	rateLimit       float64
	timeout         time.Duration
	extensions      []string
	schemes         []string
	maxFileSize     int64
	textOut         string
	jsonOut         string
	mongoURI        string
	merge           bool
	noCache         bool
	refresh         bool
}

// crawlCommand creates the crawl command.
func (c *CLI) crawlCommand() *cobra.Command {
	var flags crawlFlags

	cmd := &cobra.Command{
		Use:   "crawl [owner/repo ...]",
		Short: "Crawl GitHub repositories for proxy nodes",
		Long: `Crawl GitHub repositories for proxy nodes and write the unique ones.

Repositories given as arguments replace the configured list. Each may be
"owner/repo", a github.com URL or a git@github.com: remote. Set GITHUB_TOKEN
to raise the API rate limit.`,
		Example: `  nodecrawl crawl
  nodecrawl crawl freefq/free https://github.com/peasoft/NoMoreWalls
  nodecrawl crawl --json-out - --txt-out ""
  nodecrawl crawl --merge --json-out nodes.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			flags.apply(cmd, cfg, args)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return c.runCrawl(cmd.Context(), cfg, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.branch, "branch", "b", "", "branch tried before master and main")
	f.IntVarP(&flags.concurrency, "concurrency", "c", 0, "concurrent file fetches per repository")
	f.IntVar(&flags.repoConcurrency, "repo-concurrency", 0, "repositories crawled at once")
	f.Float64Var(&flags.rateLimit, "rate-limit", 0, "GitHub requests per second (0 = unlimited)")
	f.DurationVar(&flags.timeout, "timeout", 0, "per-request timeout")
	f.StringSliceVar(&flags.extensions, "ext", nil, "candidate file extensions (e.g. .yaml,.txt)")
	f.StringSliceVar(&flags.schemes, "scheme", nil, "share-link schemes (e.g. ss://,vmess://)")
	f.Int64Var(&flags.maxFileSize, "max-file-size", 0, "skip files larger than this many bytes")
	f.StringVar(&flags.textOut, "txt-out", "", `text output file ("-" for stdout, "" to skip)`)
	f.StringVar(&flags.jsonOut, "json-out", "", `JSON output file ("-" for stdout, "" to skip)`)
	f.StringVar(&flags.mongoURI, "mongo-uri", "", "also upsert nodes into MongoDB")
	f.BoolVar(&flags.merge, "merge", false, "merge into an existing JSON output file instead of overwriting it")
	f.BoolVar(&flags.noCache, "no-cache", false, "disable the response cache")
	f.BoolVar(&flags.refresh, "refresh", false, "ignore cached responses")

	return cmd
}

// apply overlays flags the user set and positional repositories onto cfg.
func (f *crawlFlags) apply(cmd *cobra.Command, cfg *config.Config, args []string) {
	changed := cmd.Flags().Changed
	if len(args) > 0 {
		cfg.Repos = args
	}
	if changed("branch") {
		cfg.DefaultBranch = f.branch
	}
	if changed("concurrency") {
		cfg.Concurrency = f.concurrency
	}
	if changed("repo-concurrency") {
		cfg.RepoConcurrency = f.repoConcurrency
	}
	if changed("rate-limit") {
		cfg.RateLimit = f.rateLimit
	}
	if changed("timeout") {
		cfg.Timeout = config.Duration{Duration: f.timeout}
	}
	if changed("ext") {
		cfg.Extensions = f.extensions
	}
	if changed("scheme") {
		cfg.LinkSchemes = f.schemes
	}
	if changed("max-file-size") {
		cfg.MaxFileSize = f.maxFileSize
	}
	if changed("txt-out") {
		cfg.Output.Text = f.textOut
	}
	if changed("json-out") {
		cfg.Output.JSON = f.jsonOut
	}
	if changed("mongo-uri") {
		cfg.Store.MongoURI = f.mongoURI
	}
	if changed("merge") {
		cfg.Output.Merge = f.merge
	}
}

// crawlOptions converts the resolved config into pipeline options.
func crawlOptions(cfg *config.Config, refresh bool) pipeline.Options {
	opts := pipeline.Options{
		Repos:           cfg.Repos,
		Token:           cfg.Token,
		BaseURL:         cfg.APIURL,
		DefaultBranch:   cfg.DefaultBranch,
		Extensions:      cfg.Extensions,
		LinkSchemes:     cfg.LinkSchemes,
		Concurrency:     cfg.Concurrency,
		RepoConcurrency: cfg.RepoConcurrency,
		RateLimit:       cfg.RateLimit,
		Timeout:         cfg.Timeout.Duration,
		MaxFileSize:     cfg.MaxFileSize,
		CacheTTL:        cfg.Cache.TTL.Duration,
		Refresh:         refresh,
	}
	if cfg.Output.Text != "" {
		opts.Formats = append(opts.Formats, nio.FormatText)
	}
	if cfg.Output.JSON != "" {
		opts.Formats = append(opts.Formats, nio.FormatJSON)
	}
	return opts
}

// runCrawl executes the pipeline and writes its outputs. An interrupted crawl
// still writes what was found before returning the cancellation error.
func (c *CLI) runCrawl(ctx context.Context, cfg *config.Config, flags crawlFlags) error {
	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	logger := loggerFromContext(ctx)
	logger.Infof("Crawling %d repositories", len(cfg.Repos))
	prog := newProgress(logger)

	result, err := runner.Execute(ctx, crawlOptions(cfg, flags.refresh))
	if result == nil {
		return err
	}
	crawlErr := err
	prog.done(fmt.Sprintf("Found %d unique nodes", result.Stats.Unique))

	outputs := []struct{ path, format string }{
		{cfg.Output.Text, nio.FormatText},
		{cfg.Output.JSON, nio.FormatJSON},
	}
	var written []string
	for _, out := range outputs {
		if out.path == "" {
			continue
		}
		data, ok := result.Artifacts[out.format]
		if !ok {
			printWarning("Skipped %s output, encoding failed", out.format)
			continue
		}
		if out.format == nio.FormatJSON && cfg.Output.Merge && out.path != "-" {
			if err := store.NewFile(out.path).Save(ctx, result.RunID, result.Nodes); err != nil {
				return fmt.Errorf("merge into %s: %w", out.path, err)
			}
		} else if err := writeArtifact(out.path, data); err != nil {
			return fmt.Errorf("write %s: %w", out.path, err)
		}
		if out.path != "-" {
			written = append(written, out.path)
		}
	}

	if cfg.Store.MongoURI != "" && len(result.Nodes) > 0 {
		spinner := newSpinner("Saving nodes to MongoDB...")
		spinner.Start()
		if err := saveToMongo(context.WithoutCancel(ctx), cfg.Store, result); err != nil {
			spinner.StopWithError("Save failed")
			return err
		}
		spinner.Stop()
		logger.Infof("Saved %d nodes to %s.%s", len(result.Nodes), cfg.Store.Database, cfg.Store.Collection)
	}

	if crawlErr != nil {
		printWarning("Crawl interrupted, wrote partial results")
	} else {
		printSuccess("Crawl complete")
	}
	for _, p := range written {
		printFile(p)
	}
	printCrawlStats(result.Stats)
	for _, ref := range result.Invalid {
		printDetail("skipped invalid repository %q", ref)
	}
	if cfg.Output.JSON != "" && cfg.Output.JSON != "-" && crawlErr == nil {
		printNewline()
		printNextStep("Serve", "nodecrawl serve --nodes "+cfg.Output.JSON)
	}
	return crawlErr
}

func saveToMongo(ctx context.Context, cfg config.Store, result *pipeline.Result) error {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	st, err := mongo.NewStore(ctx, mongo.Config{URI: cfg.MongoURI, Database: cfg.Database, Collection: cfg.Collection})
	if err != nil {
		return err
	}
	defer st.Close(ctx)
	return st.Save(ctx, result.RunID, result.Nodes)
}

// writeArtifact writes data to path, or to stdout when path is "-".
func writeArtifact(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
