package site

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eringen/pubindex"
	"github.com/eringen/pubindex/views"
)

const maxRelated = 5

func (a *App) handleHome(c echo.Context) error {
	tag := c.QueryParam("tag")
	l, err := a.Cache.Listing(tag)
	if err != nil {
		return err
	}
	tags, err := a.Cache.Tags()
	if err != nil {
		return err
	}
	return Render(c, views.Index(a.Config.Site, l.Entries(), tag, tags))
}

func (a *App) handlePost(c echo.Context) error {
	doc, err := a.Cache.DocumentByURL(c.Request().URL.Path)
	if errors.Is(err, ErrNotFound) {
		return RenderStatus(c, http.StatusNotFound, views.NotFound(a.Config.Site))
	}
	if err != nil {
		return err
	}
	entry, err := pubindex.EntryFor(doc, a.Cache.Options())
	if err != nil {
		return err
	}
	body, err := a.converter.ToHTML([]byte(doc.Body))
	if err != nil {
		return fmt.Errorf("render %s: %w", doc.ID, err)
	}

	l, err := a.Cache.Listing("")
	if err != nil {
		return err
	}
	related := views.RelatedEntries(entry, l.Entries())
	if len(related) > maxRelated {
		related = related[:maxRelated]
	}
	return Render(c, views.Post(a.Config.Site, entry, templ.Raw(string(body)), related))
}

func (a *App) handleSitemap(c echo.Context) error {
	l, err := a.Cache.Listing("")
	if err != nil {
		return err
	}
	return a.renderSitemap(c, l.Entries())
}

func (a *App) handleFeed(c echo.Context) error {
	l, err := a.Cache.Listing("")
	if err != nil {
		return err
	}
	return a.renderRSS(c, l.Entries())
}

func (a *App) handleRobots(c echo.Context) error {
	p := filepath.Join(a.staticDir, "robots.txt")
	if _, err := os.Stat(p); err == nil {
		return c.File(p)
	}
	base := strings.TrimSuffix(pubindex.BuildURL(a.Config.Site.URL), "/")
	return c.String(http.StatusOK, "User-agent: *\nAllow: /\nSitemap: "+base+"/sitemap.xml\n")
}

func (a *App) handleMetrics() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound(a.Config.Site))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("Server error",
			slog.String("path", c.Request().URL.Path), slog.String("error", err.Error()))
		_ = RenderStatus(c, code, views.ServerError(a.Config.Site))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
