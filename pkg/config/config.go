// Package config loads nodecrawl settings.
//
// Settings come from three layers, later ones winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML file ([Load])
//  3. environment variables ([Config.ApplyEnv])
//
// The CLI applies its flags on top and calls [Config.Validate].
//
// Example file:
//
//	repos = ["freefq/free", "peasoft/NoMoreWalls"]
//	default_branch = "main"
//	timeout = "10s"
//	concurrency = 20
//
//	[output]
//	text = "nodes.txt"
//	json = "nodes.json"
//
//	[cache]
//	ttl = "1h"
//	redis_addr = "localhost:6379"
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/samber/lo"

	"github.com/matzehuels/nodecrawl/pkg/errors"
	"github.com/matzehuels/nodecrawl/pkg/parse"
)

const appName = "nodecrawl"

// DefaultRepos are crawled when no repositories are configured.
var DefaultRepos = []string{
	"freefq/free",
	"peasoft/NoMoreWalls",
	"ripaojiedian/free-ssr-ss-v2ray-vless-clash",
}

// Environment variables read by [Config.ApplyEnv].
const (
	EnvRepos         = "GITHUB_REPOS"
	EnvToken         = "GITHUB_TOKEN"
	EnvDefaultBranch = "DEFAULT_BRANCH"
	EnvRedisAddr     = "NODECRAWL_REDIS_ADDR"
	EnvMongoURI      = "NODECRAWL_MONGO_URI"
)

// Config holds every setting.
type Config struct {
	Repos           []string `toml:"repos"`
	Token           string   `toml:"token"`
	DefaultBranch   string   `toml:"default_branch"`
	Timeout         Duration `toml:"timeout"`
	Concurrency     int      `toml:"concurrency"`
	RepoConcurrency int      `toml:"repo_concurrency"`
	RateLimit       float64  `toml:"rate_limit"` // requests per second, 0 = unlimited
	Extensions      []string `toml:"extensions"`
	LinkSchemes     []string `toml:"link_schemes"`
	MaxFileSize     int64    `toml:"max_file_size"` // bytes, 0 = unlimited
	APIURL          string   `toml:"api_url"`       // GitHub REST root; empty selects api.github.com

	Output Output `toml:"output"`
	Cache  Cache  `toml:"cache"`
	Store  Store  `toml:"store"`
	Serve  Serve  `toml:"serve"`
}

// Output names the files a crawl writes. An empty name skips that format.
type Output struct {
	Text  string `toml:"text"`
	JSON  string `toml:"json"`
	Merge bool   `toml:"merge"` // merge into an existing JSON file instead of overwriting
}

// Cache selects the response cache backend.
type Cache struct {
	Dir       string   `toml:"dir"`
	TTL       Duration `toml:"ttl"`
	RedisAddr string   `toml:"redis_addr"` // selects Redis when set
	Disabled  bool     `toml:"disabled"`
}

// Store configures node persistence.
type Store struct {
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Serve configures the HTTP server.
type Serve struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration that decodes from "10s"-style strings.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() *Config {
	cacheDir, _ := DefaultCacheDir()
	return &Config{
		Repos:           append([]string(nil), DefaultRepos...),
		DefaultBranch:   "main",
		Timeout:         Duration{10 * time.Second},
		Concurrency:     20,
		RepoConcurrency: 4,
		Extensions:      append([]string(nil), parse.DefaultExtensions...),
		LinkSchemes:     append([]string(nil), parse.DefaultSchemes...),
		MaxFileSize:     5 << 20,
		Output:          Output{Text: "nodes.txt", JSON: "nodes.json"},
		Cache:           Cache{Dir: cacheDir, TTL: Duration{time.Hour}},
		Store:           Store{Database: appName, Collection: "nodes"},
		Serve:           Serve{Addr: ":8080"},
	}
}

// Load returns defaults overlaid with the TOML file at path. An empty path
// reads [DefaultPath] if that file exists. Unknown keys are an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		if _, err := os.Stat(p); err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := lo.Map(undecoded, func(k toml.Key, _ int) string { return k.String() })
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables. GITHUB_REPOS is a comma-separated
// list; blank entries are ignored.
func (c *Config) ApplyEnv() {
	if v, ok := os.LookupEnv(EnvRepos); ok {
		if repos := SplitList(v); len(repos) > 0 {
			c.Repos = repos
		}
	}
	if v := os.Getenv(EnvToken); v != "" {
		c.Token = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDefaultBranch)); v != "" {
		c.DefaultBranch = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv(EnvMongoURI); v != "" {
		c.Store.MongoURI = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if len(lo.Compact(c.Repos)) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "no repositories configured")
	}
	if c.Concurrency <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "concurrency must be positive, got %d", c.Concurrency)
	}
	if c.RepoConcurrency <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "repo_concurrency must be positive, got %d", c.RepoConcurrency)
	}
	if c.Timeout.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "timeout must be positive")
	}
	if c.RateLimit < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "rate_limit cannot be negative")
	}
	if c.MaxFileSize < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_file_size cannot be negative")
	}
	if c.APIURL != "" {
		if err := errors.ValidateURL(c.APIURL); err != nil {
			return err
		}
	}
	if len(c.Extensions) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "no extensions configured")
	}
	for _, ext := range c.Extensions {
		if err := errors.ValidateExtension(ext); err != nil {
			return err
		}
	}
	for _, s := range c.LinkSchemes {
		if err := errors.ValidateScheme(s); err != nil {
			return err
		}
	}
	return nil
}

// SplitList splits a comma-separated list, trimming entries and dropping
// blanks and duplicates.
func SplitList(s string) []string {
	parts := lo.Map(strings.Split(s, ","), func(p string, _ int) string { return strings.TrimSpace(p) })
	return lo.Uniq(lo.Compact(parts))
}

// DefaultPath returns ~/.config/nodecrawl/config.toml (honoring XDG_CONFIG_HOME).
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// DefaultCacheDir returns ~/.cache/nodecrawl (honoring XDG_CACHE_HOME).
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
