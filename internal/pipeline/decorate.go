package pipeline

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rackerlabs/cloudpdf/internal/fileutil"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// alertMarker matches the GFM alert syntax opening a blockquote.
var alertMarker = regexp.MustCompile(`^\s*\[!(NOTE|TIP|IMPORTANT|WARNING|CAUTION)\][ \t]*\n?`)

// decorateAdmonitions turns alert blockquotes into admonition blocks with an
// icon taken from graphicsPath. No icon is added when graphicsPath is empty.
func decorateAdmonitions(n *html.Node, graphicsPath string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && c.DataAtom == atom.Blockquote {
			if kind, ok := takeAlertKind(c); ok {
				body := replaceWithAdmonition(c, kind, graphicsPath)
				decorateAdmonitions(body, graphicsPath)
				c = next
				continue
			}
		}
		decorateAdmonitions(c, graphicsPath)
		c = next
	}
}

// takeAlertKind reports the alert kind of a blockquote and strips the marker.
func takeAlertKind(bq *html.Node) (string, bool) {
	p := firstElementChild(bq)
	if p == nil || p.DataAtom != atom.P || p.FirstChild == nil || p.FirstChild.Type != html.TextNode {
		return "", false
	}

	text := p.FirstChild
	m := alertMarker.FindStringSubmatch(text.Data)
	if m == nil {
		return "", false
	}

	text.Data = text.Data[len(m[0]):]
	if strings.TrimSpace(text.Data) == "" {
		after := text.NextSibling
		p.RemoveChild(text)
		if after != nil && after.Type == html.ElementNode && after.DataAtom == atom.Br {
			p.RemoveChild(after)
		}
		if p.FirstChild != nil && p.FirstChild.Type == html.TextNode {
			p.FirstChild.Data = strings.TrimLeft(p.FirstChild.Data, " \t\n")
		}
	}
	if strings.TrimSpace(textContent(p)) == "" && firstElementChild(p) == nil {
		bq.RemoveChild(p)
	}

	return strings.ToLower(m[1]), true
}

func replaceWithAdmonition(bq *html.Node, kind, graphicsPath string) *html.Node {
	title := strings.ToUpper(kind[:1]) + kind[1:]

	div := element(atom.Div, "class", "admonition "+kind)
	if graphicsPath != "" {
		icon := filepath.Join(graphicsPath, kind+".svg")
		div.AppendChild(element(atom.Img, "class", "admonition-icon", "src", fileutil.FileURL(icon), "alt", title))
	}

	body := element(atom.Div, "class", "admonition-body")
	heading := element(atom.P, "class", "admonition-title")
	heading.AppendChild(&html.Node{Type: html.TextNode, Data: title})
	body.AppendChild(heading)

	for c := bq.FirstChild; c != nil; {
		next := c.NextSibling
		bq.RemoveChild(c)
		body.AppendChild(c)
		c = next
	}
	div.AppendChild(body)

	bq.Parent.InsertBefore(div, bq)
	bq.Parent.RemoveChild(bq)
	return body
}

// decorateCallouts replaces callout placeholder runes inside <pre> with
// callout images from graphicsPath, or with "(N)" when it is empty or N is
// above limit.
// Placeholders outside code blocks are restored to their "<N>" form.
func decorateCallouts(n *html.Node, graphicsPath string, limit int, inPre bool) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch c.Type {
		case html.TextNode:
			if strings.ContainsFunc(c.Data, isCalloutRune) {
				expandCallouts(c, graphicsPath, limit, inPre)
			}
		case html.ElementNode:
			decorateCallouts(c, graphicsPath, limit, inPre || c.DataAtom == atom.Pre)
		}
		c = next
	}
}

func expandCallouts(text *html.Node, graphicsPath string, limit int, inPre bool) {
	parent := text.Parent
	if inPre && parent.DataAtom == atom.Span && strings.TrimFunc(text.Data, isCalloutOrSpace) == "" {
		// Highlighters style unknown runes as errors.
		removeAttr(parent, "style")
		removeAttr(parent, "class")
	}
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			parent.InsertBefore(&html.Node{Type: html.TextNode, Data: buf.String()}, text)
			buf.Reset()
		}
	}

	for _, r := range text.Data {
		n, ok := calloutNumber(r)
		if !ok {
			buf.WriteRune(r)
			continue
		}
		label := strconv.Itoa(n)
		switch {
		case !inPre:
			buf.WriteString("<" + label + ">")
		case graphicsPath == "" || n > limit:
			buf.WriteString("(" + label + ")")
		default:
			flush()
			src := fileutil.FileURL(filepath.Join(graphicsPath, label+".svg"))
			parent.InsertBefore(element(atom.Img, "class", "callout", "src", src, "alt", "("+label+")"), text)
		}
	}
	flush()
	parent.RemoveChild(text)
}

func isCalloutRune(r rune) bool {
	_, ok := calloutNumber(r)
	return ok
}

func isCalloutOrSpace(r rune) bool {
	return isCalloutRune(r) || r == ' ' || r == '\t'
}

func removeAttr(n *html.Node, key string) {
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			attrs = append(attrs, a)
		}
	}
	n.Attr = attrs
}

// element creates an element node with attributes given as key/value pairs.
func element(a atom.Atom, kv ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return n
}

func firstElementChild(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}
