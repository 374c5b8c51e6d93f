package pubindex

import "time"

// Document is a single source post as produced by the Loader. Documents are
// never modified after loading; the index builder only reads them.
type Document struct {
	ID              string    // relative source path without extension, slug applied
	Title           string
	PublishedAt     time.Time // calendar date at UTC midnight, zero when missing
	URL             string
	Body            string // markdown source without front matter
	ExcerptOverride string // front matter "excerpt", empty when absent
	Layout          string
	Tags            []string
	Draft           bool
	SourcePath      string
}

// HasDate reports whether the document carries a publication date.
func (d *Document) HasDate() bool {
	return !d.PublishedAt.IsZero()
}

// ListingEntry is the render-ready projection of a Document. Entries are
// recomputed on every pass over a Listing.
type ListingEntry struct {
	ID            string
	Title         string
	URL           string
	FormattedDate string
	Excerpt       string
	PublishedAt   time.Time
	Tags          []string
}
