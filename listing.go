package pubindex

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/eringen/pubindex/excerpt"
)

// SortOrder selects the direction of the date sort.
type SortOrder string

const (
	SortDateDesc SortOrder = "dateDesc"
	SortDateAsc  SortOrder = "dateAsc"
)

// Converter renders a markdown body to HTML before excerpting.
type Converter interface {
	ToHTML(source []byte) ([]byte, error)
}

// Options configures BuildListing. The zero value lists every dated,
// non-draft document newest first.
type Options struct {
	SortOrder     SortOrder
	Limit         int    // 0 means no limit
	DateFormat    string // Go layout or strftime spec, default DefaultDateFormat
	Locale        string // e.g. "en_US", "fr_FR"
	ExcerptLength int    // default excerpt.DefaultMaxLength
	ExcerptMarker string
	Tag           string // only documents carrying this tag
	IncludeDrafts bool
	Converter     Converter // nil treats bodies as HTML or plain text
}

func (o Options) normalize() (Options, error) {
	switch o.SortOrder {
	case "":
		o.SortOrder = SortDateDesc
	case SortDateDesc, SortDateAsc:
	default:
		return o, fmt.Errorf("%w: unknown sort order %q", ErrInvalidOptions, o.SortOrder)
	}
	if o.Limit < 0 {
		return o, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidOptions, o.Limit)
	}
	if o.ExcerptLength < 0 {
		return o, fmt.Errorf("%w: excerpt length must be positive, got %d", ErrInvalidOptions, o.ExcerptLength)
	}
	if o.ExcerptLength == 0 {
		o.ExcerptLength = excerpt.DefaultMaxLength
	}
	if o.DateFormat == "" {
		o.DateFormat = DefaultDateFormat
	}
	if !ValidLocale(o.Locale) {
		return o, fmt.Errorf("%w: unknown locale %q", ErrInvalidOptions, o.Locale)
	}
	return o, nil
}

// Exclusion records a document left out of a listing and why.
type Exclusion struct {
	ID     string
	Reason error
}

// Listing is an ordered, truncated selection of documents. Entries are
// produced lazily and a Listing may be iterated any number of times.
type Listing struct {
	docs     []*Document
	excluded []Exclusion
	opts     Options
}

// BuildListing selects, sorts and truncates docs. Documents without a
// publication date never appear in the result.
func BuildListing(docs []*Document, opts Options) (*Listing, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	kept := make([]*Document, 0, len(docs))
	var excluded []Exclusion
	for _, d := range docs {
		switch {
		case d == nil:
		case !d.HasDate():
			excluded = append(excluded, Exclusion{ID: d.ID, Reason: ErrMissingPublicationDate})
		case d.Draft && !opts.IncludeDrafts:
			excluded = append(excluded, Exclusion{ID: d.ID, Reason: ErrDraft})
		case opts.Tag != "" && !HasTag(d.Tags, opts.Tag):
		default:
			kept = append(kept, d)
		}
	}

	desc := opts.SortOrder == SortDateDesc
	slices.SortStableFunc(kept, func(a, b *Document) int {
		c := a.PublishedAt.Compare(b.PublishedAt)
		if desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	if opts.Limit > 0 && len(kept) > opts.Limit {
		kept = kept[:opts.Limit]
	}
	slices.SortFunc(excluded, func(a, b Exclusion) int {
		return strings.Compare(a.ID, b.ID)
	})

	return &Listing{docs: kept, excluded: excluded, opts: opts}, nil
}

// All yields one entry per listed document in order.
func (l *Listing) All() iter.Seq[ListingEntry] {
	return func(yield func(ListingEntry) bool) {
		for _, d := range l.docs {
			if !yield(l.entry(d)) {
				return
			}
		}
	}
}

// Entries materialises the listing.
func (l *Listing) Entries() []ListingEntry {
	return slices.Collect(l.All())
}

// Len is the number of entries All will yield.
func (l *Listing) Len() int {
	return len(l.docs)
}

// Documents returns the listed documents in listing order.
func (l *Listing) Documents() []*Document {
	return slices.Clone(l.docs)
}

// Excluded returns the documents left out for a reason, ordered by id.
func (l *Listing) Excluded() []Exclusion {
	return slices.Clone(l.excluded)
}

func (l *Listing) entry(d *Document) ListingEntry {
	formatted := ""
	if d.HasDate() {
		formatted = FormatDate(d.PublishedAt, l.opts.DateFormat, l.opts.Locale)
	}
	return ListingEntry{
		ID:            d.ID,
		Title:         d.Title,
		URL:           d.URL,
		FormattedDate: formatted,
		Excerpt:       l.excerpt(d),
		PublishedAt:   d.PublishedAt,
		Tags:          slices.Clone(d.Tags),
	}
}

func (l *Listing) excerpt(d *Document) string {
	opts := excerpt.Options{MaxLength: l.opts.ExcerptLength, Marker: l.opts.ExcerptMarker}
	if d.ExcerptOverride != "" {
		return excerpt.ExtractWith(d.ExcerptOverride, opts)
	}
	body := d.Body
	if l.opts.Converter != nil {
		// A failed conversion falls back to stripping the raw body.
		if out, err := l.opts.Converter.ToHTML([]byte(body)); err == nil {
			body = string(out)
		}
	}
	return excerpt.ExtractWith(body, opts)
}

// ExtractExcerpt returns the excerpt a listing would show for d. conv turns
// a markdown body into HTML first; with a nil conv the body is treated as
// HTML or plain text, so markdown syntax is kept.
func ExtractExcerpt(d *Document, maxLength int, conv Converter) string {
	l := &Listing{opts: Options{ExcerptLength: maxLength, Converter: conv}}
	if maxLength <= 0 {
		l.opts.ExcerptLength = excerpt.DefaultMaxLength
	}
	return l.excerpt(d)
}

// EntryFor projects a single document with the formatting options of a
// listing, whether or not the document would be listed. An undated
// document gets an empty FormattedDate.
func EntryFor(d *Document, opts Options) (ListingEntry, error) {
	opts, err := opts.normalize()
	if err != nil {
		return ListingEntry{}, err
	}
	l := &Listing{opts: opts}
	return l.entry(d), nil
}
