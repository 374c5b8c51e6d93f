package site

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/eringen/pubindex"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

// DocumentCache is an in-memory cache of loaded documents with TTL. The
// source directory is re-read when the TTL expires or after Invalidate.
type DocumentCache struct {
	mu   sync.RWMutex
	snap *snapshot
	ttl  time.Duration

	loader  *pubindex.Loader
	dir     string
	opts    pubindex.Options
	metrics *pubindex.Metrics
}

// snapshot is one load of the directory. It is never modified once built.
type snapshot struct {
	docs    []*pubindex.Document
	byURL   map[string]*pubindex.Document
	byID    map[string]*pubindex.Document
	tags    []string
	fetched time.Time
}

// NewDocumentCache creates a DocumentCache reading dir through loader.
// opts are applied to every listing the cache builds.
func NewDocumentCache(loader *pubindex.Loader, dir string, opts pubindex.Options, ttl time.Duration, metrics *pubindex.Metrics) *DocumentCache {
	return &DocumentCache{loader: loader, dir: dir, opts: opts, ttl: ttl, metrics: metrics}
}

func (c *DocumentCache) valid() bool {
	return c.snap != nil && (c.ttl <= 0 || time.Since(c.snap.fetched) < c.ttl)
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *DocumentCache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.mu.Unlock()
}

func (c *DocumentCache) load() (*snapshot, error) {
	res, err := c.loader.Load(c.dir)
	if err != nil {
		return nil, err
	}
	docs := res.Documents
	if docs == nil {
		docs = []*pubindex.Document{}
	}
	snap := &snapshot{
		docs:    docs,
		byURL:   make(map[string]*pubindex.Document, len(docs)),
		byID:    make(map[string]*pubindex.Document, len(docs)),
		fetched: time.Now(),
	}
	var visible []*pubindex.Document
	for _, d := range docs {
		if d.Draft && !c.opts.IncludeDrafts {
			continue
		}
		snap.byURL[d.URL] = d
		snap.byID[d.ID] = d
		visible = append(visible, d)
	}
	snap.tags = pubindex.CollectTags(visible)
	return snap, nil
}

// ensureLoaded returns a fresh snapshot, reloading if needed. It tries a
// read lock first; only takes a write lock if a reload is needed. Callers
// keep using the returned snapshot even if Invalidate runs meanwhile.
func (c *DocumentCache) ensureLoaded() (*snapshot, error) {
	c.mu.RLock()
	if c.valid() {
		snap := c.snap
		c.mu.RUnlock()
		return snap, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.snap, nil
	}
	snap, err := c.load()
	if err != nil {
		return nil, err
	}
	c.snap = snap
	return snap, nil
}

// Listing builds a listing of the cached documents, optionally filtered by tag.
func (c *DocumentCache) Listing(tag string) (*pubindex.Listing, error) {
	snap, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	opts := c.opts
	opts.Tag = tag
	l, err := pubindex.BuildListing(snap.docs, opts)
	if err != nil {
		return nil, err
	}
	c.metrics.ObserveListing(l)
	return l, nil
}

// Tags returns all unique tags from visible documents.
func (c *DocumentCache) Tags() ([]string, error) {
	snap, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	return snap.tags, nil
}

// Document returns a visible document by id.
func (c *DocumentCache) Document(id string) (*pubindex.Document, error) {
	return c.lookup(func(s *snapshot) *pubindex.Document { return s.byID[strings.Trim(id, "/")] })
}

// DocumentByURL returns the visible document served at urlPath.
func (c *DocumentCache) DocumentByURL(urlPath string) (*pubindex.Document, error) {
	if !strings.HasSuffix(urlPath, "/") {
		urlPath += "/"
	}
	return c.lookup(func(s *snapshot) *pubindex.Document { return s.byURL[urlPath] })
}

func (c *DocumentCache) lookup(find func(*snapshot) *pubindex.Document) (*pubindex.Document, error) {
	snap, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	if d := find(snap); d != nil {
		return d, nil
	}
	return nil, ErrNotFound
}

// Options returns the listing options the cache applies.
func (c *DocumentCache) Options() pubindex.Options {
	return c.opts
}
