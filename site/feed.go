package site

import (
	"encoding/xml"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pubindex"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`
}

// WriteRSS writes an RSS 2.0 feed of entries, in the order given.
func WriteRSS(w io.Writer, site pubindex.SiteConfig, entries []pubindex.ListingEntry) error {
	items := make([]rssItem, 0, len(entries))
	for _, e := range entries {
		pubDate := ""
		if !e.PublishedAt.IsZero() {
			pubDate = e.PublishedAt.Format(time.RFC1123Z)
		}
		postURL := pubindex.BuildURL(site.URL, e.URL)
		items = append(items, rssItem{
			Title:       e.Title,
			Link:        postURL,
			Description: e.Excerpt,
			PubDate:     pubDate,
			GUID:        postURL,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       site.Name,
			Link:        site.URL,
			Description: site.Description,
			Items:       items,
		},
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(feed)
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// WriteSitemap writes a sitemap with the site root followed by entries.
func WriteSitemap(w io.Writer, site pubindex.SiteConfig, entries []pubindex.ListingEntry) error {
	urls := []sitemapURL{
		{Loc: pubindex.BuildURL(site.URL)},
	}
	for _, e := range entries {
		u := sitemapURL{Loc: pubindex.BuildURL(site.URL, e.URL)}
		if !e.PublishedAt.IsZero() {
			u.LastMod = e.PublishedAt.Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(sitemap)
}

func (a *App) renderRSS(c echo.Context, entries []pubindex.ListingEntry) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return WriteRSS(c.Response(), a.Config.Site, entries)
}

func (a *App) renderSitemap(c echo.Context, entries []pubindex.ListingEntry) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return WriteSitemap(c.Response(), a.Config.Site, entries)
}
