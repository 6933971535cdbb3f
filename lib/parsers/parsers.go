// Package parsers turns pages of the site into models. Item parsers return
// nil when the markup does not have the expected shape, page parsers skip
// such items and count them.
package parsers

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"tabun-api/lib/htmlutil"
	"tabun-api/lib/models"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("tabun-api/lib/parsers")
var skippedCounter, _ = meter.Int64Counter(
	"parsers.skipped_items",
	metric.WithDescription("page items that did not have the expected markup"),
)

func skipped(kind string) {
	skippedCounter.Add(context.Background(), 1, metric.WithAttributes(attribute.String("kind", kind)))
	slog.Debug("skipped page item", "kind", kind)
}

// PageContext is what every page says about who is looking at it.
type PageContext struct {
	// Username is empty for anonymous visitors.
	Username    string
	Host        string
	URL         string
	SecurityKey string
}

var securityKeyRegex = regexp.MustCompile(`LIVESTREET_SECURITY_KEY\s*=\s*['"]([0-9a-fA-F]+)['"]`)

// ParsePageContext reads the viewer and the anti-forgery key out of a full
// page. pageURL is the address the page was fetched from.
func ParsePageContext(page []byte, pageURL string) PageContext {
	ctx := PageContext{URL: pageURL}
	if u, err := url.Parse(pageURL); err == nil {
		ctx.Host = u.Host
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return ctx
	}
	ctx.Username = htmlutil.CleanText(doc.Find("#dropdown-user a.username").First().Text())

	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		groups := securityKeyRegex.FindStringSubmatch(s.Text())
		if len(groups) < 2 {
			return true
		}
		ctx.SecurityKey = groups[1]
		return false
	})
	return ctx
}

func (c PageContext) context() models.Context {
	return models.Context{
		models.CtxUsername: c.Username,
		models.CtxHTTPHost: c.Host,
		models.CtxURL:      c.URL,
	}
}

// guard runs a parser and turns both its error and any panic from walking
// unexpected markup into the zero value.
func guard[T any](kind string, parse func() (T, error)) (out T) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		slog.Debug("parser panicked", "kind", kind, "panic", r)
		var zero T
		out = zero
	}()

	v, err := parse()
	if err != nil {
		slog.Debug("parser mismatch", "kind", kind, "err", err)
		var zero T
		return zero
	}
	return v
}

// strategy is one way of finding a value, resolve tries them in order and
// the first one that finds something wins.
type strategy[T any] func() (T, bool)

func resolve[T any](strategies ...strategy[T]) (T, bool) {
	for _, s := range strategies {
		if v, ok := s(); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

type mismatch struct {
	kind string
	what string
}

func (m mismatch) Error() string {
	return fmt.Sprintf("%s: %s", m.kind, m.what)
}

func first(kind string, n htmlutil.Node, q htmlutil.Query) (htmlutil.Node, error) {
	found := n.First(q)
	if found == nil {
		return nil, mismatch{kind: kind, what: "missing " + q.String()}
	}
	return found, nil
}

// text is the cleaned text of the first match, empty when nothing matches.
func text(n htmlutil.Node, q htmlutil.Query) string {
	found := n.First(q)
	if found == nil {
		return ""
	}
	return htmlutil.CleanText(found.TextContent())
}

func href(n htmlutil.Node, q htmlutil.Query) string {
	found := n.First(q)
	if found == nil {
		return ""
	}
	return found.AttrOr("href", "")
}

var signs = strings.NewReplacer("−", "-", "+", "", " ", "", ",", ".")

// parseNumber reads ratings and counters as the site prints them:
// "+15", "−3" (with a minus sign), "12,5".
func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(signs.Replace(strings.TrimSpace(s)), 64)
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(signs.Replace(strings.TrimSpace(s)))
}

func optionalInt(s string) *int {
	v, err := parseInt(s)
	if err != nil {
		return nil
	}
	return &v
}

// idSuffix returns the number at the end of an id like vote_area_topic_12.
func idSuffix(id, prefix string) (int, bool) {
	if !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	v, err := strconv.Atoi(id[len(prefix):])
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

var (
	postLinkRegex    = regexp.MustCompile(`/blog/(?:([A-Za-z0-9_\-]+)/)?(\d+)\.html`)
	commentLinkRegex = regexp.MustCompile(`/blog/(?:([A-Za-z0-9_\-]+)/)?(\d+)\.html#comment(\d+)`)
	blogLinkRegex    = regexp.MustCompile(`/blog/([A-Za-z0-9_\-]+)/?$`)
	profileLinkRegex = regexp.MustCompile(`/profile/([^/]+)/?`)
	numberRegex      = regexp.MustCompile(`\d+`)
)

// postLink extracts the blog and post id from a post permalink, blog is
// empty for personal blogs.
func postLink(link string) (blog string, postID int, ok bool) {
	groups := postLinkRegex.FindStringSubmatch(link)
	if groups == nil {
		return "", 0, false
	}
	id, err := strconv.Atoi(groups[2])
	if err != nil {
		return "", 0, false
	}
	return groups[1], id, true
}

// ParsePostURL is postLink for callers outside the package, used on the
// redirect that follows a submitted post.
func ParsePostURL(link string) (blog string, postID int, ok bool) {
	return postLink(link)
}

func commentLink(link string) (blog string, postID, commentID int, ok bool) {
	groups := commentLinkRegex.FindStringSubmatch(link)
	if groups == nil {
		return "", 0, 0, false
	}
	postID, err1 := strconv.Atoi(groups[2])
	commentID, err2 := strconv.Atoi(groups[3])
	if err1 != nil || err2 != nil {
		return "", 0, 0, false
	}
	return groups[1], postID, commentID, true
}

func blogLink(link string) (string, bool) {
	groups := blogLinkRegex.FindStringSubmatch(link)
	if groups == nil {
		return "", false
	}
	return groups[1], true
}

func profileLink(link string) (string, bool) {
	groups := profileLinkRegex.FindStringSubmatch(link)
	if groups == nil {
		return "", false
	}
	name, err := url.PathUnescape(groups[1])
	if err != nil {
		return "", false
	}
	return name, true
}

func firstNumber(s string) (int, bool) {
	match := numberRegex.FindString(s)
	if match == "" {
		return 0, false
	}
	v, err := strconv.Atoi(match)
	return v, err == nil
}
