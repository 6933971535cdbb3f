package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

type Anchor struct {
	Name string
	Href string
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText collapses whitespace runs and drops non-printable characters,
// which is what labels scraped out of templates usually need.
func CleanText(s string) string {
	s = removeNonPrintable(s)
	s = strings.Trim(s, " \t\n")
	return innerWhitespace.ReplaceAllString(s, " ")
}

// GetAnchors returns the cleaned label and href of every anchor node given,
// anchors without an href are skipped.
func GetAnchors(nodes []Node) []Anchor {
	anchors := []Anchor{}
	for _, n := range nodes {
		href, ok := n.Attr("href")
		if !ok {
			continue
		}
		anchors = append(anchors, Anchor{
			Name: CleanText(n.TextContent()),
			Href: href,
		})
	}
	return anchors
}

// AnchorNames is GetAnchors but only keeps the labels.
func AnchorNames(nodes []Node) []string {
	anchors := GetAnchors(nodes)
	names := make([]string, 0, len(anchors))
	for _, a := range anchors {
		if a.Name == "" {
			continue
		}
		names = append(names, a.Name)
	}
	return names
}
