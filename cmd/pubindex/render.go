package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/pubindex"
	"github.com/eringen/pubindex/markdown"
	"github.com/eringen/pubindex/site"
	"github.com/eringen/pubindex/views"
)

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	Output string `short:"o" help:"Output directory" default:"site"`
}

func (r *RenderCmd) Run(g *Global, cli *CLI) error {
	cfg, err := cli.setup(g)
	if err != nil {
		return err
	}
	listing, res, err := index(cfg, g, cfg.Listing.Options())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(r.Output, 0o755); err != nil {
		return err
	}

	entries := listing.Entries()
	ctx := context.Background()
	tags := pubindex.CollectTags(listing.Documents())

	if err := writeFile(r.Output, "index.html", func(w io.Writer) error {
		return views.Index(cfg.Site, entries, "", tags).Render(ctx, w)
	}); err != nil {
		return err
	}
	if err := writeFile(r.Output, "feed.xml", func(w io.Writer) error {
		return site.WriteRSS(w, cfg.Site, entries)
	}); err != nil {
		return err
	}
	if err := writeFile(r.Output, "sitemap.xml", func(w io.Writer) error {
		return site.WriteSitemap(w, cfg.Site, entries)
	}); err != nil {
		return err
	}

	conv := markdown.New()
	opts := cfg.Listing.Options()
	pages := 0
	for _, d := range res.Documents {
		if d.Draft && !cfg.Listing.IncludeDrafts {
			continue
		}
		entry, err := pubindex.EntryFor(d, opts)
		if err != nil {
			return err
		}
		body, err := conv.ToHTML([]byte(d.Body))
		if err != nil {
			return fmt.Errorf("render %s: %w", d.ID, err)
		}
		related := views.RelatedEntries(entry, entries)
		page := views.Post(cfg.Site, entry, templ.Raw(string(body)), related)
		// Pages live where their URL points, url_prefix included.
		dir := filepath.Join(r.Output, filepath.FromSlash(strings.Trim(d.URL, "/")))
		if err := writeFile(dir, "index.html", func(w io.Writer) error {
			return page.Render(ctx, w)
		}); err != nil {
			return err
		}
		pages++
	}

	g.Logger.Info("Site rendered",
		slog.String("output", r.Output), slog.Int("entries", len(entries)), slog.Int("pages", pages))
	return nil
}

// writeFile renders into memory first so a failed render leaves no partial file.
func writeFile(dir, name string, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644)
}
