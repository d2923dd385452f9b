package site

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// el creates an element node. Nil children are skipped.
func el(tag atom.Atom, attrs []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: tag, Data: tag.String(), Attr: attrs}
	for _, c := range children {
		if c != nil {
			n.AppendChild(c)
		}
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attrs(kv ...string) []html.Attribute {
	out := make([]html.Attribute, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return out
}

func anchor(href, label string) *html.Node {
	return el(atom.A, attrs("href", href), text(label))
}

func heading(tag atom.Atom, s string) *html.Node {
	return el(tag, nil, text(s))
}

// list wraps each node in an li element.
func list(items []*html.Node) *html.Node {
	ul := el(atom.Ul, nil)
	for _, item := range items {
		ul.AppendChild(el(atom.Li, nil, item))
	}
	return ul
}

// document wraps body in a complete HTML5 document.
func document(title string, body ...*html.Node) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(el(atom.Html, attrs("lang", "en"),
		el(atom.Head, nil,
			el(atom.Meta, attrs("charset", "utf-8")),
			el(atom.Meta, attrs("name", "viewport", "content", "width=device-width, initial-scale=1")),
			el(atom.Title, nil, text(title)),
		),
		el(atom.Body, nil, body...),
	))
	return doc
}

// writePage renders doc to path.
func writePage(path string, doc *html.Node) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path) //nolint:gosec // path is under the site root
	if err != nil {
		return err
	}
	if err := html.Render(f, doc); err != nil {
		_ = f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}
