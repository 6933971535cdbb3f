package htmlutil

import (
	"strings"

	"golang.org/x/net/html"
)

// Node is a read-only view over a parsed element. Text and Tail follow the
// element-tree convention: Text is the character data before the first child
// element, Tail is the character data after the element's end tag up to its
// next element sibling.
type Node interface {
	Tag() string
	Attr(key string) (string, bool)
	AttrOr(key, fallback string) string
	ID() string
	Classes() []string
	HasClass(class string) bool

	Text() string
	Tail() string
	Children() []Node
	Parent() Node

	Find(q Query) []Node
	First(q Query) Node

	TextContent() string
	HTML() string
	Unwrap() *html.Node
}

type element struct {
	n *html.Node
}

// Wrap returns a Node for an element node, or nil for anything else.
func Wrap(n *html.Node) Node {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	return element{n: n}
}

func (e element) Tag() string {
	return e.n.Data
}

func (e element) Attr(key string) (string, bool) {
	for _, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func (e element) AttrOr(key, fallback string) string {
	val, ok := e.Attr(key)
	if !ok {
		return fallback
	}
	return val
}

func (e element) ID() string {
	return e.AttrOr("id", "")
}

func (e element) Classes() []string {
	return strings.Fields(e.AttrOr("class", ""))
}

func (e element) HasClass(class string) bool {
	for _, c := range e.Classes() {
		if c == class {
			return true
		}
	}
	return false
}

func collectText(start *html.Node) string {
	var out strings.Builder
	for n := start; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode {
			break
		}
		if n.Type == html.TextNode {
			out.WriteString(n.Data)
		}
	}
	return out.String()
}

func (e element) Text() string {
	return collectText(e.n.FirstChild)
}

func (e element) Tail() string {
	return collectText(e.n.NextSibling)
}

func (e element) Children() []Node {
	var children []Node
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			children = append(children, element{n: c})
		}
	}
	return children
}

func (e element) Parent() Node {
	return Wrap(e.n.Parent)
}

func (e element) Find(q Query) []Node {
	matches := q.all(e.n)
	nodes := make([]Node, len(matches))
	for i, m := range matches {
		nodes[i] = element{n: m}
	}
	return nodes
}

func (e element) First(q Query) Node {
	return Wrap(q.first(e.n))
}

func (e element) TextContent() string {
	return GetText(e.n)
}

func (e element) HTML() string {
	var out strings.Builder
	err := html.Render(&out, e.n)
	if err != nil {
		return ""
	}
	return out.String()
}

func (e element) Unwrap() *html.Node {
	return e.n
}
