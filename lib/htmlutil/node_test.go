package htmlutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	queryItems = MustQuery("li.item")
	queryLink  = MustQuery("a[href]")
)

func TestTextAndTail(t *testing.T) {
	root, err := ParseFragment(`lead <b>bold</b> tail <i>it</i> end`)
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, "div", root.Tag())
	require.Equal(t, "lead ", root.Text())

	children := root.Children()
	require.Len(t, children, 2)
	require.Equal(t, "b", children[0].Tag())
	require.Equal(t, "bold", children[0].Text())
	require.Equal(t, " tail ", children[0].Tail())
	require.Equal(t, " end", children[1].Tail())
	require.Equal(t, "lead bold tail it end", root.TextContent())
}

func TestFind(t *testing.T) {
	root, err := ParseFragment(`<ul class="x">
		<li class="item first"><a href="/a">A</a></li>
		<li class="other">skip</li>
		<li class="item"><a>no href</a></li>
	</ul>`)
	if err != nil {
		t.Fatal(err)
	}

	items := root.Find(queryItems)
	require.Len(t, items, 2)
	require.True(t, items[0].HasClass("first"))
	require.False(t, items[1].HasClass("first"))
	require.Equal(t, "ul", items[0].Parent().Tag())

	require.NotNil(t, items[0].First(queryLink))
	require.Nil(t, items[1].First(queryLink))

	// the node itself is never part of its own search results
	require.Empty(t, items[0].Find(queryItems))
}

func TestGetAnchors(t *testing.T) {
	root, err := ParseFragment(`<a href="/profile/one/">  one
		</a><a>skip</a><a href="/profile/two/">two</a>`)
	if err != nil {
		t.Fatal(err)
	}

	anchors := GetAnchors(root.Children())
	require.Equal(t, []Anchor{
		{Name: "one", Href: "/profile/one/"},
		{Name: "two", Href: "/profile/two/"},
	}, anchors)
	require.Equal(t, []string{"one", "two"}, AnchorNames(root.Children()))
}

func TestParse(t *testing.T) {
	root, err := Parse([]byte(`<!DOCTYPE html><html><body><p id="x">hi</p></body></html>`))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "html", root.Tag())
	p := root.First(MustQuery("#x"))
	require.NotNil(t, p)
	require.Equal(t, `<p id="x">hi</p>`, p.HTML())
}
