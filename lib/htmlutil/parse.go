package htmlutil

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse parses a full document and returns its <html> element.
func Parse(data []byte) (Node, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return element{n: c}, nil
		}
	}
	return nil, fmt.Errorf("document has no root element")
}

// ParseFragment parses markup as the contents of a <div> and returns that div.
func ParseFragment(markup string) (Node, error) {
	container := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), container)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return element{n: container}, nil
}

// InnerHTML renders the children of a node, without the node's own tags.
func InnerHTML(n Node) (string, error) {
	var out strings.Builder
	for c := n.Unwrap().FirstChild; c != nil; c = c.NextSibling {
		err := html.Render(&out, c)
		if err != nil {
			return "", err
		}
	}
	return out.String(), nil
}
