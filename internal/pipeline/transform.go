package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"path/filepath"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/rackerlabs/cloudpdf/internal/fileutil"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrTransform indicates the source could not be turned into a formatting document.
var ErrTransform = errors.New("transformation failed")

// highlightStyle is the chroma style used for code listings.
const highlightStyle = "github"

// documentTemplate is the XHTML skeleton of the formatting document.
const documentTemplate = `<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
<meta charset="utf-8"/>
<title></title>
<style></style>
</head>
<body>
%s
</body>
</html>`

// Transformer turns a source document into a formatting document.
type Transformer interface {
	Transform(ctx context.Context, tc *TransformContext, src io.Reader, dst io.Writer) error
}

// DocTransformer converts Markdown to the XHTML formatting document.
type DocTransformer struct {
	md       goldmark.Markdown
	resolver Resolver
	css      string
	cover    *template.Template
}

// Compile-time interface check.
var _ Transformer = (*DocTransformer)(nil)

// NewDocTransformer creates a DocTransformer. css is inlined into every
// document; coverTemplate is an html/template used when a background image
// parameter is set. A nil resolver resolves against the source directory only.
func NewDocTransformer(resolver Resolver, css, coverTemplate string) (*DocTransformer, error) {
	if resolver == nil {
		resolver = NewResolver()
	}

	cover, err := template.New("cover").Parse(coverTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing cover template: %v", ErrTransform, err)
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithStyle(highlightStyle),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false), // inline styles: the renderer sees no external stylesheet
					chromahtml.TabWidth(4),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithXHTML(),
		),
	)

	return &DocTransformer{md: md, resolver: resolver, css: css, cover: cover}, nil
}

// Transform reads Markdown from src and writes the formatting document to dst.
func (t *DocTransformer) Transform(ctx context.Context, tc *TransformContext, src io.Reader, dst io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	content, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("%w: reading source: %v", ErrTransform, err)
	}

	body, err := t.toHTML(ctx, preprocess(string(content)))
	if err != nil {
		return err
	}

	doc, err := html.Parse(strings.NewReader(fmt.Sprintf(documentTemplate, body)))
	if err != nil {
		return fmt.Errorf("%w: parsing converted document: %v", ErrTransform, err)
	}

	setStyle(doc, t.css)

	params := tc.Params
	if params == nil {
		params = Params{}
	}

	ResolveReferences(doc, t.resolver, filepath.Dir(tc.SourcePath))
	decorateAdmonitions(doc, params.Get(ParamAdmonGraphicsPath))
	decorateCallouts(doc, params.Get(ParamCalloutGraphicsPath), params.Int(ParamCalloutGraphicsLimit, DefaultCalloutGraphicsLimit), false)

	title := documentTitle(doc, tc.SourcePath)
	setTitle(doc, title)

	if bg := params.Get(ParamBackgroundImage); bg != "" {
		data := coverData{
			Title:      title,
			Subtitle:   params.Get(ParamSubtitle),
			Background: template.URL(toURL(bg)), // #nosec G203 -- path set by the orchestrator
		}
		if err := t.injectCover(doc, data); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := html.Render(dst, doc); err != nil {
		return fmt.Errorf("%w: writing formatting document: %v", ErrTransform, err)
	}
	return nil
}

// toHTML runs Goldmark, which has no context support, in a goroutine so that
// cancellation is honored.
func (t *DocTransformer) toHTML(ctx context.Context, content string) (string, error) {
	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := t.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrTransform, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// coverData feeds the cover template.
type coverData struct {
	Title      string
	Subtitle   string
	Background template.URL
}

// injectCover renders the cover template as the first content of <body>.
func (t *DocTransformer) injectCover(doc *html.Node, data coverData) error {
	var buf bytes.Buffer
	if err := t.cover.Execute(&buf, data); err != nil {
		return fmt.Errorf("%w: rendering cover: %v", ErrTransform, err)
	}

	body := findElement(doc, atom.Body)
	if body == nil {
		return fmt.Errorf("%w: document has no body", ErrTransform)
	}

	bodyCtx := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(&buf, bodyCtx)
	if err != nil {
		return fmt.Errorf("%w: parsing cover: %v", ErrTransform, err)
	}

	first := body.FirstChild
	for _, n := range nodes {
		body.InsertBefore(n, first)
	}
	return nil
}

// documentTitle returns the text of the first h1, or the source file name
// without extension.
func documentTitle(doc *html.Node, sourcePath string) string {
	if h1 := findElement(doc, atom.H1); h1 != nil {
		if title := strings.TrimSpace(textContent(h1)); title != "" {
			return title
		}
	}
	base := filepath.Base(sourcePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// setStyle fills the head <style> with css. html.Render writes style text
// raw, so the rules travel in a CDATA section behind CSS comments: XML
// readers see "&" and "<" as text and CSS parsers see two empty comments.
func setStyle(doc *html.Node, css string) {
	style := findElement(doc, atom.Style)
	if style == nil || css == "" {
		return
	}
	css = strings.ReplaceAll(css, cdataEnd, "]]"+cdataEnd+cdataStart+">")
	style.AppendChild(&html.Node{
		Type: html.TextNode,
		Data: "/*" + cdataStart + "*/\n" + css + "\n/*" + cdataEnd + "*/",
	})
}

const (
	cdataStart = "<![CDATA["
	cdataEnd   = "]]>"
)

func setTitle(doc *html.Node, title string) {
	if t := findElement(doc, atom.Title); t != nil {
		t.AppendChild(&html.Node{Type: html.TextNode, Data: title})
	}
}

// findElement returns the first element with the given atom in document order.
func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}

// toURL converts an absolute path to a file:// URL and leaves URLs alone.
func toURL(ref string) string {
	if strings.Contains(ref, "://") || strings.HasPrefix(ref, "data:") {
		return ref
	}
	return fileutil.FileURL(ref)
}
