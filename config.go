package pubindex

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for a pubindex site.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Content ContentConfig `yaml:"content"`
	Listing ListingConfig `yaml:"listing"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// SiteConfig carries site-wide branding used by views, feeds and sitemaps.
type SiteConfig struct {
	Name        string `yaml:"name"`        // default "Blog"
	URL         string `yaml:"url"`         // canonical base URL, default "http://localhost:3000"
	Description string `yaml:"description"` // RSS and meta description
	Author      string `yaml:"author"`      // JSON-LD author
}

// ContentConfig describes where documents live and how their URLs are built.
type ContentConfig struct {
	Dir        string   `yaml:"dir"`        // default "content"
	Extensions []string `yaml:"extensions"` // default [".md", ".markdown"]
	URLPrefix  string   `yaml:"url_prefix"` // default "/"
}

// ListingConfig mirrors Options in file form.
type ListingConfig struct {
	SortOrder     string `yaml:"sort_order"`
	Limit         int    `yaml:"limit"`
	DateFormat    string `yaml:"date_format"`
	Locale        string `yaml:"locale"`
	ExcerptLength int    `yaml:"excerpt_length"`
	ExcerptMarker string `yaml:"excerpt_marker"`
	IncludeDrafts bool   `yaml:"include_drafts"`
}

// ServerConfig configures the preview server.
type ServerConfig struct {
	Addr      string        `yaml:"addr"`       // default ":3000"
	StaticDir string        `yaml:"static_dir"` // default "public"
	CacheTTL  time.Duration `yaml:"cache_ttl"`  // default 5m
	Watch     bool          `yaml:"watch"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Options converts the file form into BuildListing options.
func (c ListingConfig) Options() Options {
	return Options{
		SortOrder:     SortOrder(c.SortOrder),
		Limit:         c.Limit,
		DateFormat:    c.DateFormat,
		Locale:        c.Locale,
		ExcerptLength: c.ExcerptLength,
		ExcerptMarker: c.ExcerptMarker,
		IncludeDrafts: c.IncludeDrafts,
	}
}

// LoaderConfig derives loader settings from the content section.
func (c ContentConfig) LoaderConfig() LoaderConfig {
	return LoaderConfig{
		Extensions: c.Extensions,
		URLPrefix:  c.URLPrefix,
	}
}

func (c *Config) setDefaults() {
	if c.Site.Name == "" {
		c.Site.Name = "Blog"
	}
	if c.Site.URL == "" {
		c.Site.URL = "http://localhost:3000"
	}
	if c.Content.Dir == "" {
		c.Content.Dir = "content"
	}
	if len(c.Content.Extensions) == 0 {
		c.Content.Extensions = []string{".md", ".markdown"}
	}
	if c.Content.URLPrefix == "" {
		c.Content.URLPrefix = "/"
	}
	if c.Listing.SortOrder == "" {
		c.Listing.SortOrder = string(SortDateDesc)
	}
	if c.Listing.DateFormat == "" {
		c.Listing.DateFormat = DefaultDateFormat
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Server.StaticDir == "" {
		c.Server.StaticDir = "public"
	}
	if c.Server.CacheTTL == 0 {
		c.Server.CacheTTL = 5 * time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// applyEnv overrides file values with PUBINDEX_* environment variables.
func (c *Config) applyEnv() error {
	c.Site.Name = EnvOr("PUBINDEX_SITE_NAME", c.Site.Name)
	c.Site.URL = EnvOr("PUBINDEX_SITE_URL", c.Site.URL)
	c.Site.Description = EnvOr("PUBINDEX_SITE_DESCRIPTION", c.Site.Description)
	c.Site.Author = EnvOr("PUBINDEX_SITE_AUTHOR", c.Site.Author)
	c.Content.Dir = EnvOr("PUBINDEX_CONTENT_DIR", c.Content.Dir)
	c.Content.URLPrefix = EnvOr("PUBINDEX_URL_PREFIX", c.Content.URLPrefix)
	c.Listing.SortOrder = EnvOr("PUBINDEX_SORT_ORDER", c.Listing.SortOrder)
	c.Listing.DateFormat = EnvOr("PUBINDEX_DATE_FORMAT", c.Listing.DateFormat)
	c.Listing.Locale = EnvOr("PUBINDEX_LOCALE", c.Listing.Locale)
	c.Server.Addr = EnvOr("PUBINDEX_ADDR", c.Server.Addr)
	c.Log.Level = EnvOr("PUBINDEX_LOG_LEVEL", c.Log.Level)
	c.Log.Format = EnvOr("PUBINDEX_LOG_FORMAT", c.Log.Format)

	if v := os.Getenv("PUBINDEX_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PUBINDEX_LIMIT: %w", err)
		}
		c.Listing.Limit = n
	}
	if v := os.Getenv("PUBINDEX_EXCERPT_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PUBINDEX_EXCERPT_LENGTH: %w", err)
		}
		c.Listing.ExcerptLength = n
	}
	return nil
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	var c Config
	c.setDefaults()
	return c
}

// LoadConfig reads a YAML config file, applies environment overrides and
// fills defaults. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	var c Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &c); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := c.applyEnv(); err != nil {
		return Config{}, err
	}
	c.setDefaults()
	if _, err := c.Listing.Options().normalize(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}
