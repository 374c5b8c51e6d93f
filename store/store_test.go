package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/eringen/pubindex"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "blog.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePosts() []Post {
	return []Post{
		{Slug: "older", Title: "Older", Date: "2024-01-10", Tags: []string{"Go", "testing"}, Summary: "old", Content: "# Old", Published: true},
		{Slug: "newer", Title: "Newer", Date: "2024-02-01", Tags: []string{"go"}, Summary: "new", Content: "# New", URL: "/blog/newer/", Published: true},
		{Slug: "draft", Title: "Draft", Date: "2024-03-01", Tags: []string{"secret"}, Published: false},
		{Slug: "alpha", Title: "Alpha", Date: "2024-01-10", Published: true},
	}
}

func TestOpenCreatesSchema(t *testing.T) {
	s := setupTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
	// Re-running the migration on an existing schema is a no-op.
	if err := s.ensureSchema(); err != nil {
		t.Fatalf("ensureSchema again: %v", err)
	}

	var cols []string
	rows, err := s.db.Query(`SELECT name FROM pragma_table_info('posts')`)
	if err != nil {
		t.Fatalf("table info: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan: %v", err)
		}
		cols = append(cols, name)
	}
	want := []string{"slug", "title", "date", "tags", "summary", "content", "published", "url"}
	if !reflect.DeepEqual(cols, want) {
		t.Errorf("columns = %v, want %v", cols, want)
	}
}

func TestReplaceAndGetPost(t *testing.T) {
	s := setupTestStore(t)
	if err := s.Replace(context.Background(), samplePosts()); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	got, err := s.GetPost("older")
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.Title != "Older" || got.Date != "2024-01-10" || got.Content != "# Old" {
		t.Errorf("GetPost = %+v", got)
	}
	if !reflect.DeepEqual(got.Tags, []string{"go", "testing"}) {
		t.Errorf("Tags = %v, want normalized [go testing]", got.Tags)
	}
	if got.URL != "/older/" {
		t.Errorf("URL = %q, want default /older/", got.URL)
	}

	newer, err := s.GetPost("newer")
	if err != nil {
		t.Fatal(err)
	}
	if newer.URL != "/blog/newer/" {
		t.Errorf("URL = %q, want /blog/newer/", newer.URL)
	}
}

func TestGetPostNotFound(t *testing.T) {
	s := setupTestStore(t)
	if err := s.Replace(context.Background(), samplePosts()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetPost("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPost(missing) err = %v, want ErrNotFound", err)
	}
	if _, err := s.GetPost("draft"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPost(draft) err = %v, want ErrNotFound", err)
	}
}

func TestReplaceRemovesStaleRows(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	if err := s.Replace(ctx, samplePosts()); err != nil {
		t.Fatal(err)
	}
	if err := s.Replace(ctx, []Post{{Slug: "only", Title: "Only", Date: "2024-05-05", Published: true}}); err != nil {
		t.Fatal(err)
	}
	posts, err := s.ListPosts("")
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 1 || posts[0].Slug != "only" {
		t.Errorf("ListPosts after replace = %+v", posts)
	}
}

func TestReplaceRollsBackOnError(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	if err := s.Replace(ctx, samplePosts()); err != nil {
		t.Fatal(err)
	}
	dup := []Post{
		{Slug: "same", Title: "One", Date: "2024-01-01", Published: true},
		{Slug: "same", Title: "Two", Date: "2024-01-01", Published: true},
	}
	if err := s.Replace(ctx, dup); err == nil {
		t.Fatal("expected primary key violation")
	}
	posts, err := s.ListPosts("")
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 3 {
		t.Errorf("previous export should survive a failed replace, got %d posts", len(posts))
	}
}

func TestListPosts(t *testing.T) {
	s := setupTestStore(t)
	if err := s.Replace(context.Background(), samplePosts()); err != nil {
		t.Fatal(err)
	}
	posts, err := s.ListPosts("")
	if err != nil {
		t.Fatal(err)
	}
	var slugs []string
	for _, p := range posts {
		slugs = append(slugs, p.Slug)
	}
	want := []string{"newer", "alpha", "older"}
	if !reflect.DeepEqual(slugs, want) {
		t.Errorf("ListPosts order = %v, want %v", slugs, want)
	}
}

func TestListPostsByTag(t *testing.T) {
	s := setupTestStore(t)
	if err := s.Replace(context.Background(), samplePosts()); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		tag  string
		want int
	}{
		{"go", 2},
		{"GO", 2},
		{" testing ", 1},
		{"secret", 0},
		{"te", 0},
	}
	for _, tt := range tests {
		posts, err := s.ListPosts(tt.tag)
		if err != nil {
			t.Fatal(err)
		}
		if len(posts) != tt.want {
			t.Errorf("ListPosts(%q) = %d posts, want %d", tt.tag, len(posts), tt.want)
		}
	}
}

func TestListTags(t *testing.T) {
	s := setupTestStore(t)
	if err := s.Replace(context.Background(), samplePosts()); err != nil {
		t.Fatal(err)
	}
	tags, err := s.ListTags()
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"go", "testing"}; !reflect.DeepEqual(tags, want) {
		t.Errorf("ListTags = %v, want %v", tags, want)
	}
}

func TestPostsFromListing(t *testing.T) {
	day := func(s string) time.Time {
		d, _ := time.Parse("2006-01-02", s)
		return d
	}
	docs := []*pubindex.Document{
		{ID: "a", Title: "A", URL: "/a/", PublishedAt: day("2024-08-27"), Body: "Alpha body", Tags: []string{"go"}},
		{ID: "b", Title: "B", URL: "/b/", PublishedAt: day("2024-08-20"), Body: "Beta body", Draft: true},
		{ID: "c", Title: "C", URL: "/c/"},
	}
	l, err := pubindex.BuildListing(docs, pubindex.Options{IncludeDrafts: true})
	if err != nil {
		t.Fatal(err)
	}
	posts := PostsFromListing(l)
	if len(posts) != 2 {
		t.Fatalf("PostsFromListing = %d posts, want 2", len(posts))
	}
	if posts[0].Slug != "a" || posts[0].Date != "2024-08-27" || posts[0].Content != "Alpha body" || !posts[0].Published {
		t.Errorf("posts[0] = %+v", posts[0])
	}
	if posts[1].Slug != "b" || posts[1].Published {
		t.Errorf("posts[1] = %+v", posts[1])
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{",go,web,", []string{"go", "web"}},
		{"go", []string{"go"}},
		{"", nil},
		{",,", nil},
	}
	for _, tt := range tests {
		if got := ParseTags(tt.input); !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("ParseTags(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestEmptyTags(t *testing.T) {
	if got := joinTags(nil); got != "" {
		t.Errorf("joinTags(nil) = %q", got)
	}
	if got := joinTags([]string{" Go ", ""}); got != ",go," {
		t.Errorf("joinTags = %q", got)
	}
}
