package markup

import (
	"regexp"
	"strings"

	"tabun-api/lib/htmlutil"
)

// Corrections applied after rendering so the output matches the way the site
// itself stores bodies. The result is not guaranteed to be byte-identical to
// what the site served: attribute order, entity choice and markup that was
// malformed at the source can still differ. Raw bodies are hashed for change
// detection, so these rules must not change between versions.
var (
	breakRun = regexp.MustCompile(`<br/>\n?`)

	rawCorrections = strings.NewReplacer(
		"&#34;", "&quot;",
		"&#39;", "'",
		`<a name="cut"></a>`, `<a name="cut"/>`,
		`allowfullscreen=""`, "allowfullscreen",
	)
	treeCorrections = strings.NewReplacer(
		`<a name="cut"/>`, `<a name="cut"></a>`,
	)
)

// ToRaw serializes the children of a body tree into its canonical markup.
func ToRaw(tree htmlutil.Node) string {
	if tree == nil {
		return ""
	}
	inner, err := htmlutil.InnerHTML(tree)
	if err != nil {
		return ""
	}
	raw := rawCorrections.Replace(inner)
	raw = breakRun.ReplaceAllString(raw, "<br/>\n")
	return strings.TrimSpace(raw)
}

// ToTree parses canonical markup into a body tree rooted at a <div>.
func ToTree(raw string) (htmlutil.Node, error) {
	return htmlutil.ParseFragment(treeCorrections.Replace(raw))
}
