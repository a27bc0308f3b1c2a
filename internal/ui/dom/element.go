package dom

import (
	"fmt"
	"strings"

	"billed/internal/domain/model"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element is an element node of a Document.
type Element struct {
	Node *html.Node
	doc  *Document
}

func (e *Element) Tag() string {
	return e.Node.Data
}

func (e *Element) Attr(key string) string {
	return attr(e.Node, key)
}

func (e *Element) HasAttr(key string) bool {
	return hasAttr(e.Node, key)
}

func (e *Element) SetAttr(key, val string) {
	for i, a := range e.Node.Attr {
		if a.Key == key {
			e.Node.Attr[i].Val = val
			return
		}
	}
	e.Node.Attr = append(e.Node.Attr, html.Attribute{Key: key, Val: val})
}

func (e *Element) RemoveAttr(key string) {
	attrs := e.Node.Attr[:0]
	for _, a := range e.Node.Attr {
		if a.Key != key {
			attrs = append(attrs, a)
		}
	}
	e.Node.Attr = attrs
}

func (e *Element) ID() string     { return e.Attr("id") }
func (e *Element) TestID() string { return e.Attr(TestIDAttr) }

func (e *Element) ClassName() string {
	return e.Attr("class")
}

func (e *Element) SetClassName(class string) {
	e.SetAttr("class", class)
}

// Text returns the text content of the element and its descendants.
func (e *Element) Text() string {
	return textContent(e.Node)
}

// SetText replaces the children of the element with a single text node.
func (e *Element) SetText(text string) {
	e.removeChildren()
	e.Node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// InnerHTML renders the children of the element.
func (e *Element) InnerHTML() (string, error) {
	var sb strings.Builder
	for c := e.Node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return "", fmt.Errorf("rendering children of <%s>: %w", e.Tag(), err)
		}
	}
	return sb.String(), nil
}

// SetInnerHTML parses markup in the context of the element and mounts it as
// the element's new children. Listeners of the replaced nodes are dropped.
func (e *Element) SetInnerHTML(markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.Node)
	if err != nil {
		return fmt.Errorf("parsing markup for <%s>: %w", e.Tag(), err)
	}
	e.removeChildren()
	for _, n := range nodes {
		e.Node.AppendChild(n)
	}
	return nil
}

func (e *Element) removeChildren() {
	for c := e.Node.FirstChild; c != nil; {
		next := c.NextSibling
		walk(c, func(n *html.Node) bool {
			delete(e.doc.listeners, n)
			delete(e.doc.files, n)
			return true
		})
		e.Node.RemoveChild(c)
		c = next
	}
}

// QueryByAttr returns the first descendant (or the element itself) whose
// attribute key equals val, or nil.
func (e *Element) QueryByAttr(key, val string) *Element {
	var found *html.Node
	walk(e.Node, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && hasAttr(n, key) && attr(n, key) == val {
			found = n
			return false
		}
		return true
	})
	return e.doc.wrap(found)
}

// Closest returns the nearest ancestor (or the element itself) with the tag.
func (e *Element) Closest(tag string) *Element {
	for n := e.Node; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && n.Data == tag {
			return e.doc.wrap(n)
		}
	}
	return nil
}

// Value returns the current value of a form control.
func (e *Element) Value() string {
	if e.HasAttr("value") || e.Node.DataAtom == atom.Input {
		return e.Attr("value")
	}
	switch e.Node.DataAtom {
	case atom.Textarea:
		return e.Text()
	case atom.Select:
		var first, selected *html.Node
		walk(e.Node, func(n *html.Node) bool {
			if n.DataAtom == atom.Option {
				if first == nil {
					first = n
				}
				if selected == nil && hasAttr(n, "selected") {
					selected = n
				}
			}
			return true
		})
		if selected == nil {
			selected = first
		}
		if selected == nil {
			return ""
		}
		if hasAttr(selected, "value") {
			return attr(selected, "value")
		}
		return strings.TrimSpace(textContent(selected))
	}
	return ""
}

// SetValue sets the value of a form control. An empty value on a file input
// also clears its file list.
func (e *Element) SetValue(v string) {
	e.SetAttr("value", v)
	if v == "" {
		delete(e.doc.files, e.Node)
	}
}

// Files returns the files picked in a file input.
func (e *Element) Files() []model.FileAttachment {
	return e.doc.files[e.Node]
}

func (e *Element) setFiles(files []model.FileAttachment) {
	e.doc.files[e.Node] = files
	if len(files) > 0 {
		// Browsers expose a fake path for the picked file.
		e.SetAttr("value", `C:\fakepath\`+files[0].Name)
	} else {
		e.SetAttr("value", "")
	}
}
