package pubindex

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func doc(id, title, published string) *Document {
	d := &Document{ID: id, Title: title, URL: "/" + id + "/", Body: "Body of " + title + "."}
	if published != "" {
		d.PublishedAt = date(published)
	}
	return d
}

func titles(entries []ListingEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Title
	}
	return out
}

func TestBuildListing_DateDescending(t *testing.T) {
	docs := []*Document{
		doc("b", "B", "2024-08-20"),
		doc("a", "A", "2024-08-27"),
	}
	l, err := BuildListing(docs, Options{SortOrder: SortDateDesc})
	require.NoError(t, err)

	entries := l.Entries()
	require.Equal(t, []string{"A", "B"}, titles(entries))
	assert.Equal(t, "August 27, 2024", entries[0].FormattedDate)
	assert.Equal(t, "August 20, 2024", entries[1].FormattedDate)
	assert.Equal(t, "/a/", entries[0].URL)
}

func TestBuildListing_DefaultsToDescending(t *testing.T) {
	docs := []*Document{
		doc("old", "Old", "2020-01-01"),
		doc("new", "New", "2024-01-01"),
		doc("mid", "Mid", "2022-01-01"),
	}
	l, err := BuildListing(docs, Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"New", "Mid", "Old"}, titles(l.Entries()))
}

func TestBuildListing_Ascending(t *testing.T) {
	docs := []*Document{
		doc("new", "New", "2024-01-01"),
		doc("old", "Old", "2020-01-01"),
	}
	l, err := BuildListing(docs, Options{SortOrder: SortDateAsc})
	require.NoError(t, err)
	require.Equal(t, []string{"Old", "New"}, titles(l.Entries()))
}

func TestBuildListing_TiesBrokenByID(t *testing.T) {
	docs := []*Document{
		doc("c", "C", "2024-05-05"),
		doc("a", "A", "2024-05-05"),
		doc("b", "B", "2024-05-05"),
		doc("z", "Z", "2024-06-01"),
	}
	for _, order := range []SortOrder{SortDateDesc, SortDateAsc} {
		l, err := BuildListing(docs, Options{SortOrder: order})
		require.NoError(t, err)
		got := titles(l.Entries())
		if order == SortDateDesc {
			require.Equal(t, []string{"Z", "A", "B", "C"}, got)
		} else {
			require.Equal(t, []string{"A", "B", "C", "Z"}, got)
		}
	}
}

func TestBuildListing_IsIdempotent(t *testing.T) {
	var docs []*Document
	for i := 0; i < 20; i++ {
		docs = append(docs, doc(fmt.Sprintf("post-%02d", i), fmt.Sprintf("Post %d", i),
			fmt.Sprintf("2024-0%d-1%d", i%9+1, i%10)))
	}
	opts := Options{Limit: 7, ExcerptLength: 10}

	first, err := BuildListing(docs, opts)
	require.NoError(t, err)
	second, err := BuildListing(docs, opts)
	require.NoError(t, err)

	require.Equal(t, first.Entries(), second.Entries())
	// Iterating the same listing again yields the same sequence.
	require.Equal(t, first.Entries(), first.Entries())
}

func TestBuildListing_LimitKeepsMostRecent(t *testing.T) {
	docs := []*Document{
		doc("a", "A", "2024-01-01"),
		doc("b", "B", "2024-03-01"),
		doc("c", "C", "2024-02-01"),
		doc("d", "D", "2024-04-01"),
		doc("e", "E", "2023-12-01"),
	}
	l, err := BuildListing(docs, Options{Limit: 3})
	require.NoError(t, err)
	require.Equal(t, 3, l.Len())
	require.Equal(t, []string{"D", "B", "C"}, titles(l.Entries()))
}

func TestBuildListing_LimitLargerThanSet(t *testing.T) {
	docs := []*Document{doc("a", "A", "2024-01-01")}
	l, err := BuildListing(docs, Options{Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, l.Len())
}

func TestBuildListing_ExcludesMissingDate(t *testing.T) {
	docs := []*Document{
		doc("dated", "Dated", "2024-01-01"),
		doc("undated", "Undated", ""),
	}
	for _, opts := range []Options{{}, {SortOrder: SortDateAsc}, {Limit: 1}, {IncludeDrafts: true}} {
		l, err := BuildListing(docs, opts)
		require.NoError(t, err)
		for e := range l.All() {
			require.NotEqual(t, "undated", e.ID)
		}
		excluded := l.Excluded()
		require.Len(t, excluded, 1)
		require.Equal(t, "undated", excluded[0].ID)
		require.True(t, errors.Is(excluded[0].Reason, ErrMissingPublicationDate))
	}
}

func TestBuildListing_Drafts(t *testing.T) {
	draft := doc("draft", "Draft", "2024-02-01")
	draft.Draft = true
	docs := []*Document{doc("live", "Live", "2024-01-01"), draft}

	l, err := BuildListing(docs, Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"Live"}, titles(l.Entries()))
	require.ErrorIs(t, l.Excluded()[0].Reason, ErrDraft)

	l, err = BuildListing(docs, Options{IncludeDrafts: true})
	require.NoError(t, err)
	require.Equal(t, []string{"Draft", "Live"}, titles(l.Entries()))
}

func TestBuildListing_TagFilter(t *testing.T) {
	goPost := doc("go", "Go", "2024-01-01")
	goPost.Tags = []string{"Go", "web"}
	other := doc("other", "Other", "2024-02-01")
	other.Tags = []string{"life"}

	l, err := BuildListing([]*Document{goPost, other}, Options{Tag: "go"})
	require.NoError(t, err)
	require.Equal(t, []string{"Go"}, titles(l.Entries()))
	require.Empty(t, l.Excluded())
}

func TestBuildListing_InvalidOptions(t *testing.T) {
	docs := []*Document{doc("a", "A", "2024-01-01")}
	cases := []Options{
		{SortOrder: "random"},
		{Limit: -1},
		{ExcerptLength: -5},
		{Locale: "xx_YY"},
	}
	for _, opts := range cases {
		_, err := BuildListing(docs, opts)
		require.ErrorIs(t, err, ErrInvalidOptions, "%+v", opts)
	}
}

func TestBuildListing_EmptyInput(t *testing.T) {
	l, err := BuildListing(nil, Options{})
	require.NoError(t, err)
	require.Zero(t, l.Len())
	require.Empty(t, l.Entries())
}

func TestBuildListing_DoesNotMutateInput(t *testing.T) {
	docs := []*Document{
		doc("a", "A", "2020-01-01"),
		doc("b", "B", "2024-01-01"),
	}
	_, err := BuildListing(docs, Options{})
	require.NoError(t, err)
	require.Equal(t, "a", docs[0].ID)
	require.Equal(t, "b", docs[1].ID)
}

func TestListing_AllStopsEarly(t *testing.T) {
	docs := []*Document{
		doc("a", "A", "2024-01-01"),
		doc("b", "B", "2024-01-02"),
		doc("c", "C", "2024-01-03"),
	}
	l, err := BuildListing(docs, Options{})
	require.NoError(t, err)

	var seen []string
	for e := range l.All() {
		seen = append(seen, e.ID)
		if len(seen) == 2 {
			break
		}
	}
	require.Equal(t, []string{"c", "b"}, seen)
}

func TestListing_ExcerptFromBody(t *testing.T) {
	d := doc("a", "A", "2024-01-01")
	d.Body = "Hello <b>world</b>, this is a test."
	l, err := BuildListing([]*Document{d}, Options{ExcerptLength: 12})
	require.NoError(t, err)
	require.Equal(t, "Hello world,", l.Entries()[0].Excerpt)
}

func TestListing_ExcerptOverride(t *testing.T) {
	d := doc("a", "A", "2024-01-01")
	d.Body = "This body is ignored."
	d.ExcerptOverride = "A <em>hand written</em> summary"
	l, err := BuildListing([]*Document{d}, Options{})
	require.NoError(t, err)
	require.Equal(t, "A hand written summary", l.Entries()[0].Excerpt)

	long := doc("b", "B", "2024-01-01")
	long.ExcerptOverride = strings.Repeat("override ", 10)
	l, err = BuildListing([]*Document{long}, Options{ExcerptLength: 20})
	require.NoError(t, err)
	got := l.Entries()[0].Excerpt
	require.Equal(t, "override override", got)
}

type upperConverter struct{ fail bool }

func (c upperConverter) ToHTML(src []byte) ([]byte, error) {
	if c.fail {
		return nil, errors.New("boom")
	}
	return []byte("<p>" + strings.ToUpper(string(src)) + "</p>"), nil
}

func TestListing_ExcerptUsesConverter(t *testing.T) {
	d := doc("a", "A", "2024-01-01")
	d.Body = "shout"

	l, err := BuildListing([]*Document{d}, Options{Converter: upperConverter{}})
	require.NoError(t, err)
	require.Equal(t, "SHOUT", l.Entries()[0].Excerpt)

	l, err = BuildListing([]*Document{d}, Options{Converter: upperConverter{fail: true}})
	require.NoError(t, err)
	require.Equal(t, "shout", l.Entries()[0].Excerpt)
}

func TestListing_ExcerptNeverExceedsLength(t *testing.T) {
	d := doc("a", "A", "2024-01-01")
	d.Body = strings.Repeat("<p>lorem ipsum dolor sit amet</p>", 30)
	for _, n := range []int{1, 5, 17, 64, 200} {
		l, err := BuildListing([]*Document{d}, Options{ExcerptLength: n, ExcerptMarker: "…"})
		require.NoError(t, err)
		require.LessOrEqual(t, utf8.RuneCountInString(l.Entries()[0].Excerpt), n)
	}
}

func TestListing_DateFormatAndLocale(t *testing.T) {
	d := doc("a", "A", "2024-08-27")

	l, err := BuildListing([]*Document{d}, Options{DateFormat: "%Y-%m-%d"})
	require.NoError(t, err)
	require.Equal(t, "2024-08-27", l.Entries()[0].FormattedDate)

	l, err = BuildListing([]*Document{d}, Options{DateFormat: "2 January 2006", Locale: "fr_FR"})
	require.NoError(t, err)
	require.Equal(t, "27 août 2024", l.Entries()[0].FormattedDate)
}

func TestListing_EntryTagsAreCopies(t *testing.T) {
	d := doc("a", "A", "2024-01-01")
	d.Tags = []string{"go"}
	l, err := BuildListing([]*Document{d}, Options{})
	require.NoError(t, err)
	e := l.Entries()[0]
	e.Tags[0] = "changed"
	require.Equal(t, "go", d.Tags[0])
}

func TestExtractExcerpt(t *testing.T) {
	d := &Document{Body: "<p>one two three</p>"}
	require.Equal(t, "one two", ExtractExcerpt(d, 8, nil))
	require.Equal(t, "one two three", ExtractExcerpt(d, 0, nil))
}

func TestExtractExcerpt_Converter(t *testing.T) {
	d := &Document{Body: "quiet words"}
	require.Equal(t, "QUIET WORDS", ExtractExcerpt(d, 0, upperConverter{}))
	require.Equal(t, "quiet words", ExtractExcerpt(d, 0, upperConverter{fail: true}))
}

func TestEntryFor(t *testing.T) {
	d := doc("about", "About", "")
	e, err := EntryFor(d, Options{})
	require.NoError(t, err)
	assert.Equal(t, "About", e.Title)
	assert.Empty(t, e.FormattedDate)

	_, err = EntryFor(d, Options{SortOrder: "sideways"})
	require.ErrorIs(t, err, ErrInvalidOptions)
}
