package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/eringen/pubindex"
)

// ListCmd implements the 'list' command.
type ListCmd struct {
	Tag   string `short:"t" help:"Only list documents with this tag"`
	Limit int    `short:"n" help:"Override listing.limit" default:"-1"`
	JSON  bool   `name:"json" help:"Print entries as JSON"`
}

type jsonEntry struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Date          string   `json:"date"`
	FormattedDate string   `json:"formattedDate"`
	Excerpt       string   `json:"excerpt"`
	Tags          []string `json:"tags,omitempty"`
}

func (l *ListCmd) Run(g *Global, cli *CLI) error {
	cfg, err := cli.setup(g)
	if err != nil {
		return err
	}
	opts := cfg.Listing.Options()
	opts.Tag = l.Tag
	if l.Limit >= 0 {
		opts.Limit = l.Limit
	}
	listing, _, err := index(cfg, g, opts)
	if err != nil {
		return err
	}

	if l.JSON {
		entries := make([]jsonEntry, 0, listing.Len())
		for e := range listing.All() {
			entries = append(entries, jsonEntry{
				ID:            e.ID,
				Title:         e.Title,
				URL:           e.URL,
				Date:          e.PublishedAt.Format("2006-01-02"),
				FormattedDate: e.FormattedDate,
				Excerpt:       e.Excerpt,
				Tags:          e.Tags,
			})
		}
		enc := json.NewEncoder(g.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	return writeTable(g, listing)
}

func writeTable(g *Global, listing *pubindex.Listing) error {
	tw := tabwriter.NewWriter(g.Out, 0, 4, 2, ' ', 0)
	for e := range listing.All() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.FormattedDate, e.Title, e.URL)
	}
	return tw.Flush()
}
