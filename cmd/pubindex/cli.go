package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/eringen/pubindex"
	"github.com/eringen/pubindex/markdown"
)

// Global carries state shared by every command.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config      string           `short:"c" help:"Configuration file path" default:"pubindex.yaml"`
	Verbose     bool             `short:"v" help:"Enable verbose logging"`
	ShowVersion kong.VersionFlag `name:"version" help:"Show version and exit"`

	List    ListCmd    `cmd:"" help:"Print the listing"`
	Render  RenderCmd  `cmd:"" help:"Write the site as static files"`
	Serve   ServeCmd   `cmd:"" help:"Run the preview server"`
	Export  ExportCmd  `cmd:"" help:"Export the listing to a SQLite database"`
	New     NewCmd     `cmd:"" help:"Create a new content directory and config"`
	Version VersionCmd `cmd:"" help:"Print the pubindex version"`
}

// setup loads the configuration and installs the logger it describes.
func (c *CLI) setup(g *Global) (pubindex.Config, error) {
	cfg, err := pubindex.LoadConfig(c.Config)
	if err != nil {
		return pubindex.Config{}, fmt.Errorf("load config: %w", err)
	}
	if c.Verbose {
		cfg.Log.Level = "debug"
	}
	if g.Logger == nil {
		g.Logger = pubindex.NewLogger(os.Stderr, cfg.Log)
		slog.SetDefault(g.Logger)
	}
	if g.Out == nil {
		g.Out = os.Stdout
	}
	return cfg, nil
}

// index loads the content directory and builds a listing with opts.
func index(cfg pubindex.Config, g *Global, opts pubindex.Options) (*pubindex.Listing, pubindex.LoadResult, error) {
	lc := cfg.Content.LoaderConfig()
	lc.Logger = g.Logger
	opts.Converter = markdown.New()
	l, res, err := pubindex.Index(cfg.Content.Dir, lc, opts)
	if err != nil {
		return nil, res, err
	}
	pubindex.LogExcluded(g.Logger, l)
	return l, res, nil
}

// VersionCmd implements the 'version' command.
type VersionCmd struct{}

func (VersionCmd) Run(g *Global) error {
	out := g.Out
	if out == nil {
		out = os.Stdout
	}
	_, err := fmt.Fprintf(out, "pubindex %s\n", version)
	return err
}
