package views

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/eringen/pubindex"
)

// RelatedEntries returns entries that share at least one tag with current,
// in listing order, excluding current itself.
func RelatedEntries(current pubindex.ListingEntry, entries []pubindex.ListingEntry) []pubindex.ListingEntry {
	tagSet := make(map[string]struct{})
	for _, t := range current.Tags {
		if tag := pubindex.NormalizeTag(t); tag != "" {
			tagSet[tag] = struct{}{}
		}
	}
	var related []pubindex.ListingEntry
	for _, e := range entries {
		if e.ID == current.ID {
			continue
		}
		for _, t := range e.Tags {
			if _, ok := tagSet[pubindex.NormalizeTag(t)]; ok {
				related = append(related, e)
				break
			}
		}
	}
	return related
}

// QueryEscape escapes a tag for use in a "?tag=" query.
func QueryEscape(s string) string {
	return url.QueryEscape(s)
}

// TagClass returns the class list for a tag link.
func TagClass(active bool) string {
	if active {
		return "tag active"
	}
	return "tag"
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block using cfg values.
func WebsiteJsonLD(cfg pubindex.SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      pubindex.BuildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for an entry.
func BlogPostingJsonLD(cfg pubindex.SiteConfig, entry pubindex.ListingEntry) string {
	postURL := pubindex.BuildURL(cfg.URL, entry.URL)
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      entry.Title,
		"description":   entry.Excerpt,
		"datePublished": entry.PublishedAt.Format("2006-01-02"),
		"url":           postURL,
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if entry.PublishedAt.IsZero() {
		delete(data, "datePublished")
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	if len(entry.Tags) > 0 {
		data["keywords"] = strings.Join(entry.Tags, ", ")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
