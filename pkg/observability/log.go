package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event as a debug-level log line. The CLI registers it
// for all three hook kinds when --trace is set.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks creates hooks that log to logger (log.Default() when nil).
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger.WithPrefix("trace")}
}

func (h *LogHooks) OnCrawlStart(_ context.Context, repos int) {
	h.logger.Debug("crawl start", "repos", repos)
}

func (h *LogHooks) OnCrawlComplete(_ context.Context, repos, unique int, d time.Duration, err error) {
	h.logger.Debug("crawl complete", "repos", repos, "unique", unique, "took", d, "err", err)
}

func (h *LogHooks) OnRepoStart(_ context.Context, repo string) {
	h.logger.Debug("repo start", "repo", repo)
}

func (h *LogHooks) OnRepoComplete(_ context.Context, repo, branch string, files, nodes int, d time.Duration, err error) {
	h.logger.Debug("repo complete", "repo", repo, "branch", branch, "files", files, "nodes", nodes, "took", d, "err", err)
}

func (h *LogHooks) OnExportStart(_ context.Context, formats []string) {
	h.logger.Debug("export start", "formats", formats)
}

func (h *LogHooks) OnExportComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.logger.Debug("export complete", "formats", formats, "took", d, "err", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "kind", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "kind", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "kind", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "path", path, "status", status, "took", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}

var (
	_ CrawlHooks = (*LogHooks)(nil)
	_ CacheHooks = (*LogHooks)(nil)
	_ HTTPHooks  = (*LogHooks)(nil)
)
