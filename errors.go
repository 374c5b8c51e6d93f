package pubindex

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedDocument marks a document that was skipped while loading:
	// unparsable front matter, a missing title, an unreadable file or a
	// duplicate id.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrMissingPublicationDate marks a document left out of a listing
	// because it has no date. It is an exclusion reason, not a failure.
	ErrMissingPublicationDate = errors.New("missing publication date")

	// ErrDraft marks a draft document left out of a listing.
	ErrDraft = errors.New("draft")

	// ErrDirectoryUnreadable is returned when the source directory cannot be
	// walked. No partial collection accompanies it.
	ErrDirectoryUnreadable = errors.New("directory unreadable")

	// ErrInvalidOptions is returned by BuildListing for options it cannot honour.
	ErrInvalidOptions = errors.New("invalid listing options")
)

// DocumentError describes a per-document problem. It unwraps to both Kind
// and the underlying cause.
type DocumentError struct {
	Path string
	Kind error
	Err  error
}

func (e *DocumentError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Path, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Path, e.Kind, e.Err)
}

func (e *DocumentError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// reason returns the short snake_case label used in logs and metrics.
func reason(kind error) string {
	switch {
	case errors.Is(kind, ErrMalformedDocument):
		return "malformed_document"
	case errors.Is(kind, ErrMissingPublicationDate):
		return "missing_publication_date"
	case errors.Is(kind, ErrDraft):
		return "draft"
	default:
		return "unknown"
	}
}
