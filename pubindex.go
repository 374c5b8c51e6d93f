// Package pubindex indexes a directory of markdown posts and projects it into
// render-ready listings: loading documents with front matter, ordering them
// by publication date and deriving plain-text excerpts.
//
// Rendering, feeds and the preview server live in the views and site
// packages; this package has no HTTP or template dependencies.
package pubindex

// Index loads dir and builds a listing from it in one pass. Documents
// skipped while loading are reported in the returned LoadResult.
func Index(dir string, cfg LoaderConfig, opts Options) (*Listing, LoadResult, error) {
	res, err := NewLoader(cfg).Load(dir)
	if err != nil {
		return nil, LoadResult{}, err
	}
	l, err := BuildListing(res.Documents, opts)
	if err != nil {
		return nil, res, err
	}
	cfg.Metrics.ObserveListing(l)
	return l, res, nil
}
