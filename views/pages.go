// Package views holds the HTML components the preview server and the render
// command write. Components only read the listing entries they are given.
package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/pubindex"
	"github.com/eringen/pubindex/markdown"
)

// page writes the shared document shell around body.
func page(site pubindex.SiteConfig, meta PageMeta, jsonLD string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		title := meta.Title
		if title == "" {
			title = site.Name
		} else if title != site.Name {
			title += " | " + site.Name
		}
		desc := meta.Description
		if desc == "" {
			desc = site.Description
		}
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}

		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		fmt.Fprintf(&b, `<title>%s</title>`, templ.EscapeString(title))
		if desc != "" {
			fmt.Fprintf(&b, `<meta name="description" content="%s">`, templ.EscapeString(desc))
			fmt.Fprintf(&b, `<meta property="og:description" content="%s">`, templ.EscapeString(desc))
		}
		fmt.Fprintf(&b, `<meta property="og:title" content="%s">`, templ.EscapeString(title))
		fmt.Fprintf(&b, `<meta property="og:type" content="%s">`, templ.EscapeString(ogType))
		if meta.URL != "" {
			fmt.Fprintf(&b, `<link rel="canonical" href="%s">`, templ.EscapeString(meta.URL))
			fmt.Fprintf(&b, `<meta property="og:url" content="%s">`, templ.EscapeString(meta.URL))
		}
		fmt.Fprintf(&b, `<link rel="alternate" type="application/rss+xml" title="%s" href="/feed.xml">`,
			templ.EscapeString(site.Name))
		b.WriteString(`<link rel="stylesheet" href="/public/styles.css">`)
		if jsonLD != "" {
			fmt.Fprintf(&b, `<script type="application/ld+json">%s</script>`, jsonLD)
		}
		fmt.Fprintf(&b, `</head><body><header><a href="/" class="site-name">%s</a></header><main>`,
			templ.EscapeString(site.Name))

		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

func writeTags(b *strings.Builder, tags []string, active string) {
	if len(tags) == 0 {
		return
	}
	b.WriteString(`<nav class="tags">`)
	for _, t := range tags {
		fmt.Fprintf(b, `<a href="/?tag=%s" class="%s">%s</a>`,
			QueryEscape(t), TagClass(pubindex.NormalizeTag(t) == pubindex.NormalizeTag(active)), templ.EscapeString(t))
	}
	b.WriteString(`</nav>`)
}

func writeEntry(b *strings.Builder, e pubindex.ListingEntry) {
	b.WriteString(`<article class="entry">`)
	fmt.Fprintf(b, `<h2><a href="%s">%s</a></h2>`, markdown.SafeURL(e.URL), templ.EscapeString(e.Title))
	if e.FormattedDate != "" {
		fmt.Fprintf(b, `<time datetime="%s">%s</time>`,
			e.PublishedAt.Format("2006-01-02"), templ.EscapeString(e.FormattedDate))
	}
	if e.Excerpt != "" {
		fmt.Fprintf(b, `<p class="excerpt">%s</p>`, templ.EscapeString(e.Excerpt))
	}
	b.WriteString(`</article>`)
}

// Index renders the listing page. Entries are written in the order given.
func Index(site pubindex.SiteConfig, entries []pubindex.ListingEntry, activeTag string, tags []string) templ.Component {
	meta := PageMeta{Title: site.Name, URL: pubindex.BuildURL(site.URL), OGType: "website"}
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		writeTags(&b, tags, activeTag)
		b.WriteString(`<section class="listing">`)
		if len(entries) == 0 {
			b.WriteString(`<p class="empty">No posts yet.</p>`)
		}
		for _, e := range entries {
			writeEntry(&b, e)
		}
		b.WriteString(`</section>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
	return page(site, meta, WebsiteJsonLD(site), body)
}

// Post renders a single post. content is the rendered body; related entries
// are listed below it.
func Post(site pubindex.SiteConfig, entry pubindex.ListingEntry, content templ.Component, related []pubindex.ListingEntry) templ.Component {
	meta := PageMeta{
		Title:       entry.Title,
		Description: entry.Excerpt,
		URL:         pubindex.BuildURL(site.URL, entry.URL),
		OGType:      "article",
	}
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<article class="post"><h1>%s</h1>`, templ.EscapeString(entry.Title))
		if entry.FormattedDate != "" {
			fmt.Fprintf(&b, `<time datetime="%s">%s</time>`,
				entry.PublishedAt.Format("2006-01-02"), templ.EscapeString(entry.FormattedDate))
		}
		writeTags(&b, entry.Tags, "")
		b.WriteString(`<div class="content">`)
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if err := content.Render(ctx, w); err != nil {
			return err
		}

		b.Reset()
		b.WriteString(`</div></article>`)
		if len(related) > 0 {
			b.WriteString(`<aside class="related"><h2>Related</h2>`)
			for _, e := range related {
				writeEntry(&b, e)
			}
			b.WriteString(`</aside>`)
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
	return page(site, meta, BlogPostingJsonLD(site, entry), body)
}

// NotFound renders the 404 page.
func NotFound(site pubindex.SiteConfig) templ.Component {
	return page(site, PageMeta{Title: "Not found"}, "", templ.Raw(
		`<section class="error"><h1>Page not found</h1><p><a href="/">Back to the index</a></p></section>`))
}

// ServerError renders the 500 page.
func ServerError(site pubindex.SiteConfig) templ.Component {
	return page(site, PageMeta{Title: "Error"}, "", templ.Raw(
		`<section class="error"><h1>Something went wrong</h1><p>Please try again later.</p></section>`))
}
