// Package pkg provides the libraries behind nodecrawl, which collects proxy
// node definitions published in public GitHub repositories.
//
// # Overview
//
// The pkg directory is organized into four areas:
//
//  1. Domain: [node] (record, identity, dedup set) and [parse] (Clash YAML,
//     share-link text, sing-box and Clash JSON)
//  2. Crawling: [crawl] (tree → fetch → parse → merge) and [pipeline]
//     (crawl → export with run statistics)
//  3. Integrations: [integrations] and [integrations/github] (cached,
//     rate-limited, retrying REST client)
//  4. Infrastructure: [cache], [store], [config], [io], [api],
//     [observability], [errors] and [httputil]
//
// # Architecture
//
// The data flow of a crawl:
//
//	repository list
//	       ↓
//	[integrations/github] git tree listing (default branch, master, main)
//	       ↓
//	candidate files by extension → contents API, fetched concurrently
//	       ↓
//	[parse] registry chooses a parser by extension
//	       ↓
//	[node.Set] keeps the first occurrence of each identity
//	       ↓
//	nodes.txt / nodes.json, optionally MongoDB
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Repos: []string{"freefq/free", "peasoft/NoMoreWalls"},
//	    Token: os.Getenv("GITHUB_TOKEN"),
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("nodes.txt", result.Artifacts["txt"], 0o644)
//
// [node]: https://pkg.go.dev/github.com/matzehuels/nodecrawl/pkg/node
// [parse]: https://pkg.go.dev/github.com/matzehuels/nodecrawl/pkg/parse
// [crawl]: https://pkg.go.dev/github.com/matzehuels/nodecrawl/pkg/crawl
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/nodecrawl/pkg/pipeline
// [integrations]: https://pkg.go.dev/github.com/matzehuels/nodecrawl/pkg/integrations
// [integrations/github]: https://pkg.go.dev/github.com/matzehuels/nodecrawl/pkg/integrations/github
// [cache]: https://pkg.go.dev/github.com/matzehuels/nodecrawl/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/nodecrawl/pkg/store
// [config]: https://pkg.go.dev/github.com/matzehuels/nodecrawl/pkg/config
// [io]: https://pkg.go.dev/github.com/matzehuels/nodecrawl/pkg/io
// [api]: https://pkg.go.dev/github.com/matzehuels/nodecrawl/pkg/api
// [observability]: https://pkg.go.dev/github.com/matzehuels/nodecrawl/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/nodecrawl/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/matzehuels/nodecrawl/pkg/httputil
// [node.Set]: https://pkg.go.dev/github.com/matzehuels/nodecrawl/pkg/node#Set
package pkg
