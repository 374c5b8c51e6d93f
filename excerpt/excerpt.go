// Package excerpt derives short plain-text previews from HTML or markdown
// bodies.
package excerpt

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultMaxLength is used when a non-positive length is requested.
const DefaultMaxLength = 200

// Options configures ExtractWith.
type Options struct {
	MaxLength int    // in characters (runes)
	Marker    string // appended when text was cut, counted toward MaxLength
}

// Extract strips markup from body and truncates the result to maxLength
// characters on a word boundary.
func Extract(body string, maxLength int) string {
	return ExtractWith(body, Options{MaxLength: maxLength})
}

// ExtractWith is Extract with an optional truncation marker.
func ExtractWith(body string, opts Options) string {
	max := opts.MaxLength
	if max <= 0 {
		max = DefaultMaxLength
	}
	return Truncate(StripTags(body), max, opts.Marker)
}

// StripTags removes all markup from s and collapses runs of whitespace to a
// single space. Script and style contents and comments are dropped; block
// level elements separate the words on either side of them.
func StripTags(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if a == atom.Script || a == atom.Style {
				skip++
			}
			if breaksWords(a) {
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if (a == atom.Script || a == atom.Style) && skip > 0 {
				skip--
			}
			if breaksWords(a) {
				b.WriteByte(' ')
			}
		case html.SelfClosingTagToken:
			name, _ := z.TagName()
			if breaksWords(atom.Lookup(name)) {
				b.WriteByte(' ')
			}
		}
	}
}

func breaksWords(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Br, atom.Div, atom.Li, atom.Ul, atom.Ol, atom.Blockquote,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Pre, atom.Hr,
		atom.Table, atom.Tr, atom.Td, atom.Th, atom.Section, atom.Article,
		atom.Header, atom.Footer, atom.Figure, atom.Figcaption, atom.Dd, atom.Dt:
		return true
	}
	return false
}

// Truncate shortens text to at most maxLength characters without splitting a
// word. When text is cut and marker is non-empty the marker is appended and
// counted toward maxLength. When no whole word fits beside the marker the
// marker is dropped. A first word longer than maxLength yields "".
func Truncate(text string, maxLength int, marker string) string {
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}
	runes := []rune(text)
	if budget := maxLength - utf8.RuneCountInString(marker); marker != "" && budget > 0 {
		if out := cutAtWord(runes, budget); out != "" {
			return out + marker
		}
	}
	return cutAtWord(runes, maxLength)
}

// cutAtWord returns the longest run of whole words within the first budget
// runes, with trailing space removed. len(runes) must exceed budget.
func cutAtWord(runes []rune, budget int) string {
	if unicode.IsSpace(runes[budget]) {
		return strings.TrimRightFunc(string(runes[:budget]), unicode.IsSpace)
	}
	i := budget - 1
	for i >= 0 && !unicode.IsSpace(runes[i]) {
		i--
	}
	if i < 0 {
		return ""
	}
	return strings.TrimRightFunc(string(runes[:i]), unicode.IsSpace)
}
