// Package textformat renders post and comment bodies as plain text.
package textformat

import (
	"regexp"
	"strings"
	"unicode"

	"tabun-api/lib/htmlutil"

	"golang.org/x/net/html"
)

type StrikeMode int

const (
	// StrikePlain renders struck-through text as ordinary text.
	StrikePlain StrikeMode = iota
	// StrikeCombining overlays every visible rune with U+0336.
	StrikeCombining
	// StrikeMarkup keeps the text wrapped in <s></s>.
	StrikeMarkup
)

type Options struct {
	// WithCut renders the part of a teaser after the cut marker.
	WithCut bool
	// Fancy drops spoiler titles and the label of the "read more" link.
	Fancy  bool
	Strike StrikeMode
	// VKLinks rewrites links to vk.com profiles into [id|label].
	VKLinks          bool
	DisableAutolinks bool
}

func DefaultOptions() Options {
	return Options{
		WithCut: true,
		Fancy:   true,
		Strike:  StrikePlain,
	}
}

const maxPendingNewlines = 2

var blockTags = map[string]bool{
	"p":          true,
	"div":        true,
	"blockquote": true,
	"li":         true,
	"ul":         true,
	"ol":         true,
	"h1":         true,
	"h2":         true,
	"h3":         true,
	"h4":         true,
	"h5":         true,
	"h6":         true,
	"pre":        true,
	"table":      true,
	"tr":         true,
	"hr":         true,
	"section":    true,
	"article":    true,
	"header":     true,
	"footer":     true,
}

var vkLink = regexp.MustCompile(`^(https?://)?(m\.)?vk\.com/([A-Za-z0-9_.\-]+)/?$`)

var vkDynamicPages = map[string]bool{
	"feed":     true,
	"im":       true,
	"away.php": true,
	"search":   true,
}

var vkDynamicPrefixes = []string{
	"wall", "photo", "video", "album", "audio",
	"topic", "doc", "board", "app", "write",
}

type formatter struct {
	opts    Options
	buf     []byte
	pending int
	started bool
	pre     int
	// opened is set right after a bullet or an opening quote, the first
	// nested block then continues on the same line.
	opened bool
}

// Format walks the tree depth first and returns its text. When WithCut is
// false the output stops at the teaser cut marker wherever it is nested.
func Format(tree htmlutil.Node, opts Options) string {
	if tree == nil {
		return ""
	}
	f := &formatter{opts: opts}
	f.children(tree.Unwrap())
	return strings.TrimSpace(string(f.buf))
}

func (f *formatter) newline() {
	if !f.started {
		return
	}
	f.opened = false
	f.pending++
	if f.pending > maxPendingNewlines {
		f.pending = maxPendingNewlines
	}
}

func (f *formatter) block() {
	if f.opened {
		return
	}
	if f.started && f.pending == 0 {
		f.pending = 1
	}
}

func (f *formatter) write(s string) {
	if s == "" {
		return
	}
	if f.opened && f.pre == 0 {
		s = strings.TrimLeft(s, " \t")
		if s == "" {
			return
		}
	}
	f.opened = false
	if f.pending > 0 {
		if f.pre == 0 {
			s = strings.TrimLeft(s, " \t")
			if s == "" {
				return
			}
		}
		for len(f.buf) > 0 && (f.buf[len(f.buf)-1] == ' ' || f.buf[len(f.buf)-1] == '\t') {
			f.buf = f.buf[:len(f.buf)-1]
		}
		f.buf = append(f.buf, strings.Repeat("\n", f.pending)...)
		f.pending = 0
	}
	f.buf = append(f.buf, s...)
	f.started = true
}

func (f *formatter) text(data string) {
	if f.pre == 0 {
		data = strings.NewReplacer("\r", "", "\n", " ").Replace(data)
	}
	f.write(data)
}

// children reports whether the cut marker was reached.
func (f *formatter) children(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			f.text(c.Data)
		case html.ElementNode:
			if f.element(c) {
				return true
			}
		}
	}
	return false
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	val, _ := attr(n, "class")
	for _, c := range strings.Fields(val) {
		if c == class {
			return true
		}
	}
	return false
}

func isCutMarker(n *html.Node) bool {
	name, _ := attr(n, "name")
	return n.Data == "a" && name == "cut"
}

func isReadMore(n *html.Node) bool {
	if n.Data != "a" {
		return false
	}
	if title, _ := attr(n, "title"); title == "Читать дальше" {
		return true
	}
	href, _ := attr(n, "href")
	return strings.HasSuffix(href, "#cut")
}

func (f *formatter) element(n *html.Node) bool {
	switch n.Data {
	case "img", "script", "style":
		return false
	case "br":
		f.newline()
		return false
	case "a":
		if isCutMarker(n) {
			return !f.opts.WithCut
		}
		if f.opts.Fancy && isReadMore(n) {
			return false
		}
		return f.anchor(n)
	case "span":
		if f.opts.Fancy && hasClass(n, "spoiler-title") {
			return false
		}
	case "s", "strike", "del":
		return f.strike(n)
	}

	if !blockTags[n.Data] {
		return f.children(n)
	}

	f.block()
	if n.Data == "pre" {
		f.pre++
		defer func() { f.pre-- }()
	}
	switch n.Data {
	case "li":
		f.write("• ")
		f.opened = true
	case "blockquote":
		f.write("«")
		f.opened = true
	}
	if f.children(n) {
		return true
	}
	f.opened = false
	if n.Data == "blockquote" {
		f.pending = 0
		f.write("»")
		f.newline()
	}
	f.block()
	return false
}

func (f *formatter) anchor(n *html.Node) bool {
	href, _ := attr(n, "href")
	label := htmlutil.CleanText(htmlutil.GetText(n))

	if f.opts.DisableAutolinks && href != "" && label == strings.TrimSpace(href) {
		return false
	}
	if f.opts.VKLinks {
		if id, ok := vkProfile(href); ok {
			if label == "" {
				label = id
			}
			f.write("[" + id + "|" + label + "]")
			return false
		}
	}
	return f.children(n)
}

func vkProfile(href string) (string, bool) {
	match := vkLink.FindStringSubmatch(strings.TrimSpace(href))
	if match == nil {
		return "", false
	}
	id := match[3]
	if vkDynamicPages[id] {
		return "", false
	}
	for _, prefix := range vkDynamicPrefixes {
		if strings.HasPrefix(id, prefix) {
			return "", false
		}
	}
	return id, true
}

func (f *formatter) strike(n *html.Node) bool {
	switch f.opts.Strike {
	case StrikeMarkup:
		f.write("<s>")
		stopped := f.children(n)
		f.buf = append(f.buf, "</s>"...)
		return stopped
	case StrikeCombining:
		start := len(f.buf)
		stopped := f.children(n)
		if start < len(f.buf) {
			struck := strikeThrough(string(f.buf[start:]))
			f.buf = append(f.buf[:start], struck...)
		}
		return stopped
	}
	return f.children(n)
}

func strikeThrough(s string) string {
	var out strings.Builder
	for _, r := range s {
		out.WriteRune(r)
		if !unicode.IsSpace(r) {
			out.WriteRune('\u0336')
		}
	}
	return out.String()
}
