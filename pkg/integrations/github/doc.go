// Package github lists repository trees and fetches file contents from the
// GitHub REST API (https://api.github.com).
//
// # Usage
//
//	client := github.NewClient(github.Options{Token: token, Cache: c})
//
//	repo, err := github.ParseRepo("freefq/free")
//	tree, err := client.Tree(ctx, repo, "master")
//	for _, e := range tree.Blobs() {
//	    body, err := client.FileContent(ctx, repo, "master", e.Path)
//	}
//
// # Authentication
//
// A personal access token is optional. Without one the API allows 60
// requests per hour, which a single large repository can exhaust; with one
// the limit is 5000 per hour.
//
// # Caching
//
// Tree listings and decoded file bodies are cached under keys produced by a
// [cache.Keyer]. Set Options.Refresh to bypass cached entries.
package github
