// Package markdown renders post bodies to HTML with goldmark and exposes the
// result as a templ component.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Converter turns markdown into HTML. It is safe for concurrent use.
type Converter struct {
	md goldmark.Markdown
}

type options struct {
	unsafe    bool
	hardWraps bool
}

// Option configures a Converter.
type Option func(*options)

// WithUnsafe passes raw HTML in the source through to the output.
func WithUnsafe() Option { return func(o *options) { o.unsafe = true } }

// WithHardWraps renders single newlines as <br>.
func WithHardWraps() Option { return func(o *options) { o.hardWraps = true } }

// New builds a Converter with GitHub flavoured markdown, footnotes and
// heading ids enabled.
func New(opts ...Option) *Converter {
	var o options
	for _, fn := range opts {
		fn(&o)
	}

	var rendererOpts []renderer.Option
	rendererOpts = append(rendererOpts,
		renderer.WithNodeRenderers(util.Prioritized(codeBlockRenderer{}, 100)))
	if o.unsafe {
		rendererOpts = append(rendererOpts, gmhtml.WithUnsafe())
	}
	if o.hardWraps {
		rendererOpts = append(rendererOpts, gmhtml.WithHardWraps())
	}

	return &Converter{md: goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(util.Prioritized(mediaTransformer{}, 100)),
		),
		goldmark.WithRendererOptions(rendererOpts...),
	)}
}

var defaultConverter = New()

// ToHTML converts src to HTML.
func (c *Converter) ToHTML(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("markdown convert: %w", err)
	}
	return buf.Bytes(), nil
}

// Render writes the HTML for md to w.
func (c *Converter) Render(w io.Writer, md string) error {
	if err := c.md.Convert([]byte(md), w); err != nil {
		return fmt.Errorf("markdown convert: %w", err)
	}
	return nil
}

// Markdown returns a templ.Component that renders content as HTML.
func Markdown(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return defaultConverter.Render(w, content)
	})
}

// RenderMarkdown writes the HTML representation of md to buf.
func RenderMarkdown(buf *bytes.Buffer, md string) error {
	return defaultConverter.Render(buf, md)
}

// ToHTML converts src with the default converter.
func ToHTML(src []byte) ([]byte, error) {
	return defaultConverter.ToHTML(src)
}

// mediaTransformer decorates images and links. The first image on a page
// loads eagerly, later ones lazily; off-site links open in a new tab.
type mediaTransformer struct{}

func (mediaTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	images := 0
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Image:
			images++
			if images == 1 {
				node.SetAttributeString("loading", []byte("eager"))
			} else {
				node.SetAttributeString("loading", []byte("lazy"))
			}
			node.SetAttributeString("decoding", []byte("async"))
		case *ast.Link:
			node.SetAttributeString("class", []byte("underline decoration-2 underline-offset-4"))
			if isExternal(string(node.Destination)) {
				node.SetAttributeString("target", []byte("_blank"))
				node.SetAttributeString("rel", []byte("noopener noreferrer"))
			}
		}
		return ast.WalkContinue, nil
	})
}

func isExternal(dest string) bool {
	u, err := url.Parse(dest)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// codeBlockRenderer wraps fenced code in a container with a language badge.
type codeBlockRenderer struct{}

func (r codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)
	lang := html.EscapeString(string(n.Language(source)))

	if lang != "" {
		_, _ = fmt.Fprintf(w, `<div class="code-block-wrapper"><span class="code-lang code-lang-%s">%s</span>`, lang, lang)
		_, _ = fmt.Fprintf(w, `<pre class="code-block"><code class="language-%s">`, lang)
	} else {
		_, _ = w.WriteString(`<pre class="code-block"><code>`)
	}
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		gmhtml.DefaultWriter.RawWrite(w, line.Value(source))
	}
	_, _ = w.WriteString("</code></pre>")
	if lang != "" {
		_, _ = w.WriteString("</div>")
	}
	_ = w.WriteByte('\n')
	return ast.WalkSkipChildren, nil
}

// SafeURL validates and sanitizes a URL for use in HTML attributes.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
