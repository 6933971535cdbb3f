package htmlutil

import (
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Query is a precompiled descendant search. Packages declare the handful of
// queries they need up front with MustQuery instead of building selectors
// at runtime.
type Query struct {
	source   string
	selector cascadia.Selector
}

func MustQuery(selector string) Query {
	return Query{
		source:   selector,
		selector: cascadia.MustCompile(selector),
	}
}

func (q Query) String() string {
	return q.source
}

func (q Query) all(n *html.Node) []*html.Node {
	return cascadia.QueryAll(n, q.selector)
}

func (q Query) first(n *html.Node) *html.Node {
	return cascadia.Query(n, q.selector)
}
