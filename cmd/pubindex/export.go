package main

import (
	"context"
	"log/slog"

	"github.com/eringen/pubindex/store"
)

// ExportCmd implements the 'export' command.
type ExportCmd struct {
	Database string `short:"d" help:"SQLite database path" default:"data/posts.db"`
}

func (e *ExportCmd) Run(g *Global, cli *CLI) error {
	cfg, err := cli.setup(g)
	if err != nil {
		return err
	}
	// Drafts are exported unpublished so the table mirrors the directory.
	opts := cfg.Listing.Options()
	opts.IncludeDrafts = true
	opts.Limit = 0
	listing, _, err := index(cfg, g, opts)
	if err != nil {
		return err
	}

	s, err := store.Open(e.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	posts := store.PostsFromListing(listing)
	if err := s.Replace(context.Background(), posts); err != nil {
		return err
	}
	g.Logger.Info("Listing exported", slog.String("database", e.Database), slog.Int("count", len(posts)))
	return nil
}
