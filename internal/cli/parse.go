package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecrawl/pkg/errors"
	nio "github.com/matzehuels/nodecrawl/pkg/io"
	"github.com/matzehuels/nodecrawl/pkg/node"
	"github.com/matzehuels/nodecrawl/pkg/parse"
)

// parseOpts holds the command-line flags for the parse command.
type parseOpts struct {
	format  string   // txt or json
	output  string   // output file path (stdout if empty)
	schemes []string // share-link schemes
	as      string   // parse every file as if it had this extension
}

// parseCommand creates the parse command, which runs the parsers on local
// files. It is useful for checking what a crawl would extract from a file.
func (c *CLI) parseCommand() *cobra.Command {
	opts := parseOpts{format: nio.FormatText}

	cmd := &cobra.Command{
		Use:   "parse <file> [file ...]",
		Short: "Extract proxy nodes from local files",
		Long: `Extract proxy nodes from local Clash YAML, sing-box JSON or link-list files.

The parser is chosen by file extension. Nodes from all files are merged and
de-duplicated in argument order.`,
		Example: `  nodecrawl parse clash.yaml
  nodecrawl parse --format json sub.txt config.json
  cat sub | nodecrawl parse --as .txt -`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format (txt, json)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringSliceVar(&opts.schemes, "scheme", nil, "share-link schemes (default ss://,vmess://,trojan://,vless://)")
	cmd.Flags().StringVar(&opts.as, "as", "", `treat input as this extension (required for "-")`)

	return cmd
}

// runParse parses every file and writes the merged nodes. "-" reads stdin.
func runParse(ctx context.Context, stdin io.Reader, stdout io.Writer, opts parseOpts, files []string) error {
	logger := loggerFromContext(ctx)
	registry := parse.Default(opts.schemes)

	if opts.as != "" {
		if err := errors.ValidateExtension(opts.as); err != nil {
			return err
		}
	}

	prog := newProgress(logger)
	set := node.NewSet()
	for _, file := range files {
		name := file
		if opts.as != "" {
			name = file + opts.as
		}
		parser, ok := registry.For(name)
		if !ok {
			return errors.New(errors.ErrCodeUnsupported, "%s: unsupported file type %q", file, filepath.Ext(file))
		}

		content, err := readInput(stdin, file)
		if err != nil {
			return err
		}
		nodes, err := parser.Parse(string(content))
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		origin := node.Origin{Path: file}
		added := set.AddAll(lo.Map(nodes, func(n node.Node, _ int) node.Node { return n.WithOrigin(origin) }))
		logger.Debug("parsed file", "file", file, "parser", parser.Name(), "nodes", len(nodes), "new", added)
	}
	prog.done(fmt.Sprintf("Parsed %d unique nodes from %d files", set.Len(), len(files)))

	data, err := nio.Encode(opts.format, set.Nodes())
	if err != nil {
		return err
	}
	if opts.output == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return err
	}
	printFile(opts.output)
	return nil
}

func readInput(stdin io.Reader, file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(file)
}
