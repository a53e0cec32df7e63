package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecrawl/pkg/observability"
)

// addGlobalFlags registers flags shared by every subcommand.
// --verbose is registered by main so it can adjust the level before any
// command runs.
func (c *CLI) addGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/nodecrawl/config.toml)")
	root.PersistentFlags().BoolVar(&c.trace, "trace", false, "log cache, HTTP and crawl events at debug level")
}

// preRun attaches the logger to the command context and installs trace hooks.
func (c *CLI) preRun(cmd *cobra.Command, args []string) error {
	if c.trace {
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetCrawlHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
	}
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}
