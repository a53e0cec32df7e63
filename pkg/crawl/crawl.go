// Package crawl discovers proxy nodes published in GitHub repositories.
//
// For each repository the [Crawler] resolves a tree on the first branch that
// exists, keeps files whose extension is configured, fetches them
// concurrently, and parses each body with a [parse.Registry]. Results from
// all repositories are merged in input order into a [node.Set], so the first
// occurrence of a node identity wins.
//
// Failures never abort a crawl. A missing branch, a rate-limited request, or
// an unparseable file is logged and counted; only context cancellation stops
// the run.
package crawl

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/nodecrawl/pkg/cache"
	"github.com/matzehuels/nodecrawl/pkg/integrations"
	"github.com/matzehuels/nodecrawl/pkg/integrations/github"
	"github.com/matzehuels/nodecrawl/pkg/node"
	"github.com/matzehuels/nodecrawl/pkg/observability"
	"github.com/matzehuels/nodecrawl/pkg/parse"
)

// Defaults applied when the corresponding Crawler field is zero.
const (
	DefaultBranch          = "main"
	DefaultConcurrency     = 20
	DefaultRepoConcurrency = 4
)

// fallbackBranches are tried after the configured default branch.
var fallbackBranches = []string{"master", "main"}

// Source lists trees and fetches file bodies. [github.Client] implements it.
type Source interface {
	Tree(ctx context.Context, repo github.Repo, branch string) (*github.Tree, error)
	FileContent(ctx context.Context, repo github.Repo, branch, path string) (string, error)
}

// Crawler runs the crawl-fetch-parse-dedup pipeline.
type Crawler struct {
	Source  Source
	Parsers *parse.Registry // nil selects parse.Default(nil)
	Logger  *log.Logger     // nil selects log.Default()

	DefaultBranch   string   // tried first, then master, then main
	Extensions      []string // candidate file extensions; nil selects parse.DefaultExtensions
	Concurrency     int      // concurrent file fetches per repository
	RepoConcurrency int      // repositories crawled at once
	MaxFileSize     int64    // skip larger blobs; 0 means unlimited
}

// Stats counts what happened during a crawl.
type Stats struct {
	Files       int           `json:"files"`        // candidate files in the tree
	Fetched     int           `json:"fetched"`      // bodies retrieved
	Failed      int           `json:"failed"`       // fetches that errored
	Skipped     int           `json:"skipped"`      // oversized, empty or repeated bodies
	ParseErrors int           `json:"parse_errors"` // bodies a parser rejected
	Nodes       int           `json:"nodes"`        // nodes parsed, before cross-repo dedup
	Duration    time.Duration `json:"duration"`
}

func (s *Stats) add(o Stats) {
	s.Files += o.Files
	s.Fetched += o.Fetched
	s.Failed += o.Failed
	s.Skipped += o.Skipped
	s.ParseErrors += o.ParseErrors
	s.Nodes += o.Nodes
}

// RepoResult is the outcome of crawling one repository.
// Branch is empty when no branch could be listed.
type RepoResult struct {
	Repo   github.Repo `json:"repo"`
	Branch string      `json:"branch,omitempty"`
	Nodes  []node.Node `json:"-"`
	Stats  Stats       `json:"stats"`
}

// Result is the merged outcome of a crawl.
type Result struct {
	Nodes   []node.Node  `json:"nodes"`   // unique, in order of first appearance
	Repos   []RepoResult `json:"repos"`   // in input order
	Invalid []string     `json:"invalid"` // repository references that did not parse
	Stats   Stats        `json:"stats"`
	Unique  int          `json:"unique"`
}

// Branches returns the branches tried for every repository, in order, with
// duplicates and empty names removed.
func (c *Crawler) Branches() []string {
	return lo.Uniq(lo.Compact(append([]string{strings.TrimSpace(c.DefaultBranch)}, fallbackBranches...)))
}

// Candidates resolves the tree of repo and returns the branch it was listed
// on plus the candidate file paths in tree order. It returns ("", nil) when no
// branch could be listed.
func (c *Crawler) Candidates(ctx context.Context, repo github.Repo) (string, []string) {
	branch, entries, _ := c.candidates(ctx, repo)
	return branch, lo.Map(entries, func(e github.TreeEntry, _ int) string { return e.Path })
}

func (c *Crawler) candidates(ctx context.Context, repo github.Repo) (string, []github.TreeEntry, int) {
	logger := c.logger().With("repo", repo.String())

	for _, branch := range c.Branches() {
		if ctx.Err() != nil {
			return "", nil, 0
		}
		tree, err := c.Source.Tree(ctx, repo, branch)
		if err != nil {
			if ctx.Err() != nil {
				return "", nil, 0
			}
			logFailure(logger, "list tree", err, "branch", branch)
			continue
		}
		if tree.Truncated {
			logger.Warn("tree listing truncated, some files are missing", "branch", branch)
		}

		exts := c.extensions()
		var oversized int
		entries := lo.Filter(tree.Blobs(), func(e github.TreeEntry, _ int) bool {
			if !hasExtension(e.Path, exts) {
				return false
			}
			if c.MaxFileSize > 0 && e.Size > c.MaxFileSize {
				logger.Debug("skipping oversized file", "path", e.Path, "size", e.Size)
				oversized++
				return false
			}
			return true
		})
		logger.Debug("resolved tree", "branch", branch, "entries", len(tree.Entries), "candidates", len(entries))
		return branch, entries, oversized
	}

	logger.Warn("no branch could be listed", "tried", c.Branches())
	return "", nil, 0
}

// CrawlRepo crawls one repository. Nodes keep file order, then in-file order,
// and carry their Origin. Bodies identical to one already parsed for this
// repository are skipped.
func (c *Crawler) CrawlRepo(ctx context.Context, repo github.Repo) RepoResult {
	start := time.Now()
	hooks := observability.Crawl()
	hooks.OnRepoStart(ctx, repo.String())

	res := RepoResult{Repo: repo}
	branch, entries, oversized := c.candidates(ctx, repo)
	res.Branch = branch
	res.Stats.Files = len(entries) + oversized
	res.Stats.Skipped = oversized

	bodies, failed := c.fetch(ctx, repo, branch, entries)
	res.Stats.Failed = failed

	logger := c.logger().With("repo", repo.String())
	parsers := c.parsers()
	seen := make(map[uint64]bool)

	for i, e := range entries {
		body, ok := bodies[i]
		if !ok {
			continue
		}
		res.Stats.Fetched++
		if strings.TrimSpace(body) == "" {
			res.Stats.Skipped++
			continue
		}
		fp := cache.Fingerprint([]byte(body))
		if seen[fp] {
			logger.Debug("skipping repeated body", "path", e.Path)
			res.Stats.Skipped++
			continue
		}
		seen[fp] = true

		nodes, err := parsers.Parse(e.Path, body)
		if err != nil {
			logger.Warn("parse failed", "path", e.Path, "err", err)
			res.Stats.ParseErrors++
			continue
		}
		origin := node.Origin{Repo: repo.String(), Branch: branch, Path: e.Path}
		for _, n := range nodes {
			res.Nodes = append(res.Nodes, n.WithOrigin(origin))
		}
	}
	res.Stats.Nodes = len(res.Nodes)
	res.Stats.Duration = time.Since(start)

	if branch != "" {
		logger.Info("crawled repository",
			"branch", branch,
			"files", res.Stats.Files,
			"failed", res.Stats.Failed,
			"nodes", res.Stats.Nodes,
			"duration", res.Stats.Duration.Round(time.Millisecond))
	}
	hooks.OnRepoComplete(ctx, repo.String(), branch, res.Stats.Files, res.Stats.Nodes, res.Stats.Duration, ctx.Err())
	return res
}

// fetch retrieves bodies concurrently. The returned map holds an entry for
// every index whose fetch succeeded.
func (c *Crawler) fetch(ctx context.Context, repo github.Repo, branch string, entries []github.TreeEntry) (map[int]string, int) {
	var (
		mu     sync.Mutex
		bodies = make(map[int]string, len(entries))
		failed int
	)
	logger := c.logger().With("repo", repo.String())

	var g errgroup.Group
	g.SetLimit(positive(c.Concurrency, DefaultConcurrency))
	for i, e := range entries {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			body, err := c.Source.FileContent(ctx, repo, branch, e.Path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if ctx.Err() == nil {
					logFailure(logger, "fetch file", err, "path", e.Path)
					failed++
				}
				return nil
			}
			bodies[i] = body
			return nil
		})
	}
	_ = g.Wait()
	return bodies, failed
}

// CrawlAll crawls every repository reference and merges the results.
// References are normalized with [github.ParseRepo]; invalid ones are logged
// and listed in Result.Invalid, and duplicates are crawled once. The only
// error is ctx.Err() when the crawl is cancelled, returned with the partial
// result.
func (c *Crawler) CrawlAll(ctx context.Context, refs []string) (*Result, error) {
	start := time.Now()
	res := &Result{}

	var repos []github.Repo
	for _, ref := range refs {
		if strings.TrimSpace(ref) == "" {
			continue
		}
		repo, err := github.ParseRepo(ref)
		if err != nil {
			c.logger().Warn("skipping invalid repository", "ref", ref, "err", err)
			res.Invalid = append(res.Invalid, ref)
			continue
		}
		repos = append(repos, repo)
	}
	repos = lo.UniqBy(repos, func(r github.Repo) string { return strings.ToLower(r.String()) })

	hooks := observability.Crawl()
	hooks.OnCrawlStart(ctx, len(repos))

	res.Repos = make([]RepoResult, len(repos))
	var g errgroup.Group
	g.SetLimit(positive(c.RepoConcurrency, DefaultRepoConcurrency))
	for i, repo := range repos {
		g.Go(func() error {
			res.Repos[i] = c.CrawlRepo(ctx, repo)
			return nil
		})
	}
	_ = g.Wait()

	set := node.NewSet()
	for _, r := range res.Repos {
		set.AddAll(r.Nodes)
		res.Stats.add(r.Stats)
	}
	res.Nodes = set.Nodes()
	res.Unique = set.Len()
	res.Stats.Duration = time.Since(start)

	err := ctx.Err()
	hooks.OnCrawlComplete(ctx, len(repos), res.Unique, res.Stats.Duration, err)
	return res, err
}

func (c *Crawler) logger() *log.Logger {
	if c.Logger == nil {
		return log.Default()
	}
	return c.Logger
}

func (c *Crawler) parsers() *parse.Registry {
	if c.Parsers == nil {
		return parse.Default(nil)
	}
	return c.Parsers
}

func (c *Crawler) extensions() []string {
	exts := c.Extensions
	if len(exts) == 0 {
		exts = parse.DefaultExtensions
	}
	return lo.Uniq(lo.Map(exts, func(e string, _ int) string { return strings.ToLower(e) }))
}

func hasExtension(p string, exts []string) bool {
	lower := strings.ToLower(p)
	return lo.ContainsBy(exts, func(ext string) bool { return strings.HasSuffix(lower, ext) })
}

// logFailure logs err at the severity its class deserves: missing resources
// at debug, rate limiting and HTTP errors at warn, everything else at error.
func logFailure(logger *log.Logger, op string, err error, kv ...any) {
	var se *integrations.StatusError
	switch {
	case errors.Is(err, integrations.ErrNotFound):
		logger.Debug(op+": not found", kv...)
	case errors.Is(err, integrations.ErrRateLimited):
		logger.Warn(op+": rate limited", append(kv, "err", err)...)
	case errors.As(err, &se):
		logger.Warn(op+": request failed", append(kv, "status", se.Code, "body", se.Body)...)
	default:
		logger.Error(op+" failed", append(kv, "err", err)...)
	}
}

func positive(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
