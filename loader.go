package pubindex

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
)

// LoaderConfig configures document discovery.
type LoaderConfig struct {
	// Extensions lists the file extensions treated as documents
	// (default ".md" and ".markdown").
	Extensions []string
	// URLPrefix is prepended to every document id to form its URL (default "/").
	URLPrefix string
	Logger    *slog.Logger
	Metrics   *Metrics
}

// Loader turns a directory of markdown files into Documents.
type Loader struct {
	extensions map[string]struct{}
	urlPrefix  string
	logger     *slog.Logger
	metrics    *Metrics
}

// LoadResult is the outcome of a load: the documents that parsed and the
// ones that were skipped.
type LoadResult struct {
	Documents []*Document
	Skipped   []*DocumentError
}

// frontMatter is the recognised subset of a document's front matter.
type frontMatter struct {
	Title     string `yaml:"title" toml:"title" json:"title"`
	Date      any    `yaml:"date" toml:"date" json:"date"`
	Layout    string `yaml:"layout" toml:"layout" json:"layout"`
	Excerpt   string `yaml:"excerpt" toml:"excerpt" json:"excerpt"`
	Slug      string `yaml:"slug" toml:"slug" json:"slug"`
	Tags      any    `yaml:"tags" toml:"tags" json:"tags"`
	Draft     bool   `yaml:"draft" toml:"draft" json:"draft"`
	Published *bool  `yaml:"published" toml:"published" json:"published"`
}

// NewLoader constructs a Loader, filling defaults for unset fields.
func NewLoader(cfg LoaderConfig) *Loader {
	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = []string{".md", ".markdown"}
	}
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = struct{}{}
	}
	prefix := cfg.URLPrefix
	if prefix == "" {
		prefix = "/"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		extensions: set,
		urlPrefix:  prefix,
		logger:     logger,
		metrics:    cfg.Metrics,
	}
}

// LoadDocuments loads every document under dir with default settings.
// Skipped documents are logged, not returned.
func LoadDocuments(dir string) ([]*Document, error) {
	res, err := NewLoader(LoaderConfig{}).Load(dir)
	if err != nil {
		return nil, err
	}
	return res.Documents, nil
}

// Load reads documents from the directory dir on the local filesystem.
func (l *Loader) Load(dir string) (LoadResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return LoadResult{}, fmt.Errorf("%w: %s: %w", ErrDirectoryUnreadable, dir, err)
	}
	if !info.IsDir() {
		return LoadResult{}, fmt.Errorf("%w: %s: not a directory", ErrDirectoryUnreadable, dir)
	}
	return l.LoadFS(os.DirFS(dir), ".")
}

// LoadFS reads documents below root in fsys. A failure to read any
// directory aborts the load; per-file problems only skip that file.
func (l *Loader) LoadFS(fsys fs.FS, root string) (LoadResult, error) {
	var res LoadResult
	seen := make(map[string]string)

	walkErr := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !l.matches(d.Name()) {
			return nil
		}

		doc, derr := l.loadFile(fsys, root, p)
		if derr != nil {
			l.skip(&res, derr)
			return nil
		}
		if prev, dup := seen[doc.ID]; dup {
			l.skip(&res, &DocumentError{
				Path: p,
				Kind: ErrMalformedDocument,
				Err:  fmt.Errorf("duplicate id %q, already loaded from %s", doc.ID, prev),
			})
			return nil
		}
		seen[doc.ID] = p
		res.Documents = append(res.Documents, doc)
		l.metrics.documentLoaded()
		l.logger.Debug("Document loaded", logPath(p), logDocument(doc.ID))
		return nil
	})
	if walkErr != nil {
		return LoadResult{}, fmt.Errorf("%w: %w", ErrDirectoryUnreadable, walkErr)
	}

	l.logger.Info("Documents loaded",
		logCount(len(res.Documents)), slog.Int("skipped", len(res.Skipped)))
	return res, nil
}

func (l *Loader) matches(name string) bool {
	_, ok := l.extensions[strings.ToLower(path.Ext(name))]
	return ok
}

func (l *Loader) skip(res *LoadResult, derr *DocumentError) {
	res.Skipped = append(res.Skipped, derr)
	l.metrics.documentSkipped(derr.Kind)
	l.logger.Warn("Skipping document",
		logPath(derr.Path), logReason(reason(derr.Kind)), logError(derr.Err))
}

func (l *Loader) loadFile(fsys fs.FS, root, p string) (*Document, *DocumentError) {
	malformed := func(err error) *DocumentError {
		return &DocumentError{Path: p, Kind: ErrMalformedDocument, Err: err}
	}

	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, malformed(err)
	}

	var fm frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(data), &fm)
	if err != nil {
		return nil, malformed(fmt.Errorf("parse front matter: %w", err))
	}
	title := strings.TrimSpace(fm.Title)
	if title == "" {
		return nil, malformed(errors.New("front matter has no title"))
	}

	id, prefixDate, hasPrefixDate := documentID(relPath(root, p), fm.Slug)

	published, ok := ParseDate(fm.Date)
	if !ok {
		if fm.Date != nil {
			l.logger.Warn("Unparsable date in front matter", logPath(p), slog.Any("date", fm.Date))
		}
		if hasPrefixDate {
			published = prefixDate
		}
	}

	return &Document{
		ID:              id,
		Title:           title,
		PublishedAt:     published,
		URL:             l.documentURL(id),
		Body:            string(body),
		ExcerptOverride: strings.TrimSpace(fm.Excerpt),
		Layout:          fm.Layout,
		Tags:            parseTags(fm.Tags),
		Draft:           fm.Draft || (fm.Published != nil && !*fm.Published),
		SourcePath:      p,
	}, nil
}

func (l *Loader) documentURL(id string) string {
	return path.Join("/", l.urlPrefix, id) + "/"
}

func relPath(root, p string) string {
	if root == "." || root == "" {
		return p
	}
	return strings.TrimPrefix(p, strings.TrimSuffix(root, "/")+"/")
}

// documentID derives the id from a relative path: directory segments and
// the base name are slugified, a Jekyll date prefix is dropped from the
// base name and a front matter slug replaces it.
func documentID(rel, slug string) (string, time.Time, bool) {
	dir, file := path.Split(rel)
	base := strings.TrimSuffix(file, path.Ext(file))

	date, rest, hasDate := datePrefix(base)
	if hasDate && rest != "" {
		base = rest
	}
	if s := Slugify(slug); s != "" {
		base = s
	} else if s := Slugify(base); s != "" {
		base = s
	}

	var segments []string
	for _, seg := range strings.Split(strings.Trim(dir, "/"), "/") {
		if seg == "" {
			continue
		}
		if s := Slugify(seg); s != "" {
			seg = s
		}
		segments = append(segments, seg)
	}
	segments = append(segments, base)
	return strings.Join(segments, "/"), date, hasDate
}

func parseTags(v any) []string {
	switch val := v.(type) {
	case string:
		if strings.Contains(val, ",") {
			return FilterEmpty(strings.Split(val, ","))
		}
		return FilterEmpty(strings.Fields(val))
	case []any:
		out := make([]string, 0, len(val))
		for _, t := range val {
			out = append(out, fmt.Sprint(t))
		}
		return FilterEmpty(out)
	case []string:
		return FilterEmpty(val)
	}
	return nil
}
