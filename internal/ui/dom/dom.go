// Package dom is a small document model over golang.org/x/net/html: views are
// rendered to markup, mounted into a Document, and controllers react to the
// events dispatched on its elements.
package dom

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"billed/internal/domain/model"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TestIDAttr is the attribute used to locate elements.
const TestIDAttr = "data-testid"

var ErrElementNotFound = errors.New("element not found")

type Document struct {
	root      *html.Node
	body      *html.Node
	title     *html.Node
	listeners map[*html.Node]map[string][]Listener
	files     map[*html.Node][]model.FileAttachment
}

// NewDocument returns an empty document with a <head> and an empty <body>.
func NewDocument() *Document {
	root, err := html.Parse(strings.NewReader(`<!DOCTYPE html><html lang="fr"><head><meta charset="utf-8"><title>Billed</title></head><body></body></html>`))
	if err != nil {
		// The literal above always parses.
		panic(err)
	}
	d := &Document{
		root:      root,
		listeners: map[*html.Node]map[string][]Listener{},
		files:     map[*html.Node][]model.FileAttachment{},
	}
	walk(root, func(n *html.Node) bool {
		switch n.DataAtom {
		case atom.Body:
			d.body = n
		case atom.Title:
			d.title = n
		}
		return true
	})
	return d
}

func (d *Document) wrap(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	return &Element{Node: n, doc: d}
}

func (d *Document) Body() *Element {
	return d.wrap(d.body)
}

// SetTitle replaces the text of the <title> element.
func (d *Document) SetTitle(title string) {
	d.wrap(d.title).SetText(title)
}

// CreateRoot appends <div id="root"> to the body and returns it.
func (d *Document) CreateRoot() *Element {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr:     []html.Attribute{{Key: "id", Val: "root"}},
	}
	d.body.AppendChild(n)
	return d.wrap(n)
}

// GetByID finds the first element with the given id attribute.
func (d *Document) GetByID(id string) (*Element, error) {
	if el := d.Body().QueryByAttr("id", id); el != nil {
		return el, nil
	}
	return nil, fmt.Errorf("id %q: %w", id, ErrElementNotFound)
}

// GetByTestID finds the first element with the given data-testid.
func (d *Document) GetByTestID(testID string) (*Element, error) {
	if el := d.QueryByTestID(testID); el != nil {
		return el, nil
	}
	return nil, fmt.Errorf("%s %q: %w", TestIDAttr, testID, ErrElementNotFound)
}

// QueryByTestID is GetByTestID returning nil when nothing matches.
func (d *Document) QueryByTestID(testID string) *Element {
	return d.Body().QueryByAttr(TestIDAttr, testID)
}

// QueryAllByTestID returns every element with the given data-testid.
func (d *Document) QueryAllByTestID(testID string) []*Element {
	var out []*Element
	walk(d.body, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attr(n, TestIDAttr) == testID {
			out = append(out, d.wrap(n))
		}
		return true
	})
	return out
}

// GetByText finds the innermost element whose trimmed text content equals text.
func (d *Document) GetByText(text string) (*Element, error) {
	var found *html.Node
	walk(d.body, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		if strings.TrimSpace(textContent(n)) == text && (found == nil || contains(found, n)) {
			found = n
		}
		return true
	})
	if found == nil {
		return nil, fmt.Errorf("text %q: %w", text, ErrElementNotFound)
	}
	return d.wrap(found), nil
}

// HTML renders the whole document.
func (d *Document) HTML() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return "", fmt.Errorf("rendering document: %w", err)
	}
	return buf.String(), nil
}

// walk visits n and its descendants depth-first; fn returns false to skip the
// children of a node.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

// contains reports whether n is a descendant of ancestor.
func contains(ancestor, n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}
