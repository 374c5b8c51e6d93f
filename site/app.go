// Package site serves an indexed content directory over HTTP: the listing,
// one page per document, RSS, sitemap and metrics. It is the preview
// server behind "pubindex serve".
package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/eringen/pubindex"
	"github.com/eringen/pubindex/markdown"
)

// App wires together the document cache, handlers, middleware and views.
type App struct {
	Config  pubindex.Config
	Echo    *echo.Echo
	Cache   *DocumentCache
	Logger  *slog.Logger
	Metrics *pubindex.Metrics

	converter    *markdown.Converter
	registry     *prometheus.Registry
	staticDir    string
	customRoutes []func(*App)

	initOnce sync.Once
	initErr  error
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger used for requests, loading and watching.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.Logger = l }
}

// WithRegistry registers metrics on reg and serves it at /metrics.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(a *App) { a.registry = reg }
}

// WithConverter replaces the markdown converter used for post bodies and excerpts.
func WithConverter(c *markdown.Converter) Option {
	return func(a *App) { a.converter = c }
}

// WithRoutes registers extra routes after the built-in ones.
func WithRoutes(fn func(*App)) Option {
	return func(a *App) { a.customRoutes = append(a.customRoutes, fn) }
}

// New creates an App for cfg. Nothing is loaded until the first request.
func New(cfg pubindex.Config, opts ...Option) *App {
	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		staticDir: cfg.Server.StaticDir,
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true
	for _, opt := range opts {
		opt(a)
	}
	if a.Logger == nil {
		a.Logger = slog.Default()
	}
	if a.converter == nil {
		a.converter = markdown.New()
	}
	if a.registry == nil {
		a.registry = prometheus.NewRegistry()
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	if a.staticDir == "" {
		a.staticDir = "public"
	}
	return a
}

func (a *App) init() error {
	a.initOnce.Do(func() {
		m, err := pubindex.NewMetrics(a.registry)
		if err != nil {
			a.initErr = fmt.Errorf("site: register metrics: %w", err)
			return
		}
		a.Metrics = m

		lc := a.Config.Content.LoaderConfig()
		lc.Logger = a.Logger
		lc.Metrics = m
		opts := a.Config.Listing.Options()
		opts.Converter = a.converter
		if _, err := pubindex.BuildListing(nil, opts); err != nil {
			a.initErr = fmt.Errorf("site: %w", err)
			return
		}
		a.Cache = NewDocumentCache(pubindex.NewLoader(lc), a.Config.Content.Dir, opts, a.Config.Server.CacheTTL, m)

		a.setupMiddleware()
		a.setupRoutes()
		for _, fn := range a.customRoutes {
			fn(a)
		}
	})
	return a.initErr
}

// Handler returns the fully configured HTTP handler.
func (a *App) Handler() (http.Handler, error) {
	if err := a.init(); err != nil {
		return nil, err
	}
	return a.Echo, nil
}

// Start serves on Config.Server.Addr until ctx is cancelled, then shuts
// down gracefully. With Config.Server.Watch set, content changes
// invalidate the cache.
func (a *App) Start(ctx context.Context) error {
	if err := a.init(); err != nil {
		return err
	}
	if a.Config.Server.Watch {
		go func() {
			if err := Watch(ctx, a.Config.Content.Dir, a.Cache, a.Logger); err != nil {
				a.Logger.Warn("Content watcher stopped", slog.String("error", err.Error()))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("Preview server listening", slog.String("addr", a.Config.Server.Addr))
		errCh <- a.Echo.Start(a.Config.Server.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		a.Logger.Info("Shutting down preview server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.Echo.Shutdown(shutdownCtx)
	}
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/metrics", a.handleMetrics())
	e.GET("/", a.handleHome)
	e.GET("/*", a.handlePost)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	return a.Echo.Close()
}
