// Package store exports a listing to a SQLite posts table, so an indexed
// directory can be served by anything that reads that schema.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/eringen/pubindex"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = sql.ErrNoRows

// Post is one row of the posts table.
type Post struct {
	Slug      string
	Title     string
	Date      string // YYYY-MM-DD
	Tags      []string
	Summary   string
	Content   string
	URL       string
	Published bool
}

// Store wraps a SQLite database holding exported posts.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the preview server read while an export writes.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    slug TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    date TEXT NOT NULL,
    tags TEXT NOT NULL,
    summary TEXT NOT NULL,
    content TEXT NOT NULL,
    published INTEGER NOT NULL DEFAULT 1,
    url TEXT NOT NULL DEFAULT ''
);
`)
	return err
}

// Replace swaps the table contents for posts in a single transaction.
// Readers see either the previous export or the new one.
func (s *Store) Replace(ctx context.Context, posts []Post) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin export: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM posts`); err != nil {
		return fmt.Errorf("clear posts: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO posts (slug, title, date, tags, summary, content, published, url) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range posts {
		published := 0
		if p.Published {
			published = 1
		}
		if _, err := stmt.ExecContext(ctx, p.Slug, p.Title, p.Date, joinTags(p.Tags),
			p.Summary, p.Content, published, p.URL); err != nil {
			return fmt.Errorf("insert %s: %w", p.Slug, err)
		}
	}
	return tx.Commit()
}

const postColumns = `slug, title, date, tags, summary, content, published, url`

func scanPost(row interface{ Scan(...any) error }) (Post, error) {
	var p Post
	var tags string
	var published int
	if err := row.Scan(&p.Slug, &p.Title, &p.Date, &tags, &p.Summary, &p.Content, &published, &p.URL); err != nil {
		return Post{}, err
	}
	p.Tags = ParseTags(tags)
	p.Published = published == 1
	if p.URL == "" {
		p.URL = "/" + p.Slug + "/"
	}
	return p, nil
}

// ListPosts returns all published posts ordered by date descending, then by
// slug. If tag is non-empty, results are filtered to posts carrying it.
func (s *Store) ListPosts(tag string) ([]Post, error) {
	var rows *sql.Rows
	var err error
	if tag == "" {
		rows, err = s.db.Query(`SELECT ` + postColumns + ` FROM posts WHERE published = 1 ORDER BY date DESC, slug ASC`)
	} else {
		rows, err = s.db.Query(`SELECT `+postColumns+` FROM posts WHERE published = 1 AND instr(tags, ',' || ? || ',') > 0 ORDER BY date DESC, slug ASC`,
			pubindex.NormalizeTag(tag))
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ListTags returns a sorted, deduplicated slice of all tags from published posts.
func (s *Store) ListTags() ([]string, error) {
	rows, err := s.db.Query(`SELECT tags FROM posts WHERE published = 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		for _, t := range ParseTags(tags) {
			set[t] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	result := make([]string, 0, len(set))
	for t := range set {
		result = append(result, t)
	}
	sort.Strings(result)
	return result, nil
}

// GetPost returns a single published post by slug.
func (s *Store) GetPost(slug string) (Post, error) {
	return scanPost(s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = ? AND published = 1`, slug))
}

// PostsFromListing converts a built listing into rows. Dates are written as
// YYYY-MM-DD so the table sorts chronologically as text.
func PostsFromListing(l *pubindex.Listing) []Post {
	docs := l.Documents()
	posts := make([]Post, 0, len(docs))
	i := 0
	for e := range l.All() {
		d := docs[i]
		i++
		posts = append(posts, Post{
			Slug:      e.ID,
			Title:     e.Title,
			Date:      e.PublishedAt.Format("2006-01-02"),
			Tags:      e.Tags,
			Summary:   e.Excerpt,
			Content:   d.Body,
			URL:       e.URL,
			Published: !d.Draft,
		})
	}
	return posts
}

func joinTags(tags []string) string {
	normalized := make([]string, 0, len(tags))
	for _, t := range tags {
		if n := pubindex.NormalizeTag(t); n != "" {
			normalized = append(normalized, n)
		}
	}
	if len(normalized) == 0 {
		return ""
	}
	return "," + strings.Join(normalized, ",") + ","
}

// ParseTags splits a comma-delimited tag string (e.g. ",go,web,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
