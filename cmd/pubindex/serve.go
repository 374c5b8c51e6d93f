package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/eringen/pubindex/site"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr  string `short:"a" help:"Listen address (overrides server.addr)"`
	Watch bool   `short:"w" help:"Reload content when files change"`
}

func (s *ServeCmd) Run(g *Global, cli *CLI) error {
	cfg, err := cli.setup(g)
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}
	if s.Watch {
		cfg.Server.Watch = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := site.New(cfg, site.WithLogger(g.Logger))
	defer app.Close()
	return app.Start(ctx)
}
