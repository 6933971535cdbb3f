package textformat

import (
	"strings"
	"testing"

	"tabun-api/lib/htmlutil"
	"tabun-api/lib/markup"

	"github.com/stretchr/testify/require"
)

func mustFragment(t testing.TB, src string) htmlutil.Node {
	t.Helper()
	tree, err := htmlutil.ParseFragment(src)
	require.NoError(t, err)
	return tree
}

func TestFormat(t *testing.T) {
	plain := Options{}
	testCases := []struct {
		name     string
		src      string
		opts     Options
		expected string
	}{
		{
			name:     "paragraphs and breaks",
			src:      "<p>one</p><p>two<br/>\nthree</p>",
			opts:     plain,
			expected: "one\ntwo\nthree",
		},
		{
			name:     "break runs are capped",
			src:      "a<br/><br/><br/><br/>b",
			opts:     plain,
			expected: "a\n\nb",
		},
		{
			name:     "list items",
			src:      "<ul><li>x</li><li>y</li></ul>",
			opts:     plain,
			expected: "• x\n• y",
		},
		{
			name:     "blockquote",
			src:      "<blockquote>q</blockquote>after",
			opts:     plain,
			expected: "«q»\nafter",
		},
		{
			name:     "paragraph inside list item",
			src:      "<ul><li><p>item</p></li><li><p>next</p></li></ul>",
			opts:     plain,
			expected: "• item\n• next",
		},
		{
			name:     "paragraph inside blockquote",
			src:      "<blockquote><p>quoted</p></blockquote>after",
			opts:     plain,
			expected: "«quoted»\nafter",
		},
		{
			name:     "blockquote inside list item",
			src:      "<ul><li><blockquote><div>q</div></blockquote></li></ul>",
			opts:     plain,
			expected: "• «q»",
		},
		{
			name:     "empty list item",
			src:      "<ul><li></li><li>x</li></ul>",
			opts:     plain,
			expected: "•\n• x",
		},
		{
			name:     "newline inside text is a space",
			src:      "<b>line one\nline two</b>",
			opts:     plain,
			expected: "line one line two",
		},
		{
			name:     "images are dropped",
			src:      `a<img src="/x.png"/>b`,
			opts:     plain,
			expected: "ab",
		},
		{
			name:     "leading and trailing whitespace",
			src:      "<br/>  <p>  text  </p><br/><br/>",
			opts:     plain,
			expected: "text",
		},
		{
			name:     "read more label kept",
			src:      `text <a href="/blog/1.html#cut" title="Читать дальше">Read more</a>`,
			opts:     plain,
			expected: "text Read more",
		},
		{
			name:     "read more label dropped when fancy",
			src:      `text <a href="/blog/1.html#cut" title="Читать дальше">Read more</a>`,
			opts:     Options{Fancy: true},
			expected: "text",
		},
		{
			name:     "spoiler title kept",
			src:      `<span class="spoiler"><span class="spoiler-title">Title</span><span class="spoiler-body">Body</span></span>`,
			opts:     plain,
			expected: "TitleBody",
		},
		{
			name:     "spoiler title dropped when fancy",
			src:      `<span class="spoiler"><span class="spoiler-title">Title</span><span class="spoiler-body">Body</span></span>`,
			opts:     Options{Fancy: true},
			expected: "Body",
		},
		{
			name:     "strike plain",
			src:      "<s>ab</s> c",
			opts:     plain,
			expected: "ab c",
		},
		{
			name:     "strike combining",
			src:      "<s>ab</s> c",
			opts:     Options{Strike: StrikeCombining},
			expected: "a\u0336b\u0336 c",
		},
		{
			name:     "strike markup",
			src:      "<s>ab</s> c",
			opts:     Options{Strike: StrikeMarkup},
			expected: "<s>ab</s> c",
		},
		{
			name:     "vk profile link",
			src:      `<a href="https://vk.com/durov">Pavel</a>`,
			opts:     Options{VKLinks: true},
			expected: "[durov|Pavel]",
		},
		{
			name:     "vk dynamic page",
			src:      `<a href="https://vk.com/feed">Feed</a> <a href="https://m.vk.com/wall-1_2">Wall</a>`,
			opts:     Options{VKLinks: true},
			expected: "Feed Wall",
		},
		{
			name:     "vk links untouched by default",
			src:      `<a href="https://vk.com/durov">Pavel</a>`,
			opts:     plain,
			expected: "Pavel",
		},
		{
			name:     "autolink kept",
			src:      `see <a href="http://example.org/">http://example.org/</a>`,
			opts:     plain,
			expected: "see http://example.org/",
		},
		{
			name:     "autolink dropped",
			src:      `see <a href="http://example.org/">http://example.org/</a>`,
			opts:     Options{DisableAutolinks: true},
			expected: "see",
		},
		{
			name:     "pre keeps newlines",
			src:      "<pre>a\n  b</pre>c",
			opts:     plain,
			expected: "a\n  b\nc",
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, Format(mustFragment(t, test.src), test.opts))
		})
	}
}

func TestFormatCut(t *testing.T) {
	body := `<div>before<p>inner <b>deep <a name="cut"></a>hidden</b> tail</p>more</div>after`
	tree := mustFragment(t, body)

	require.Equal(t, "before\ninner deep", Format(tree, Options{}))
	require.Equal(t, "before\ninner deep hidden tail\nmore\nafter", Format(tree, Options{WithCut: true}))
}

func TestFormatCutNeverLeaks(t *testing.T) {
	bodies := []string{
		`<a name="cut"></a>secret`,
		`visible<div><div><div><a name="cut"></a>secret</div>secret</div>secret</div>secret`,
		`<ul><li>visible</li><li><blockquote>visible <a name="cut"></a>secret</blockquote></li><li>secret</li></ul>`,
		`<s>visible <a name="cut"></a>secret</s> secret`,
	}
	for _, body := range bodies {
		out := Format(mustFragment(t, body), Options{Strike: StrikeMarkup})
		require.NotContains(t, out, "secret", body)
	}
}

func TestFormatNil(t *testing.T) {
	require.Equal(t, "", Format(nil, DefaultOptions()))
}

func TestFormatSurvivesRawRoundTrip(t *testing.T) {
	bodies := []string{
		"Hello<br/>\nworld <a name=\"cut\"></a>and more",
		`<blockquote>quoted "text" it's</blockquote><ul><li>one</li><li>two</li></ul>`,
		`<span class="spoiler"><span class="spoiler-title">t</span><span class="spoiler-body">b &amp; c</span></span>`,
		`<iframe src="https://example.org/embed" allowfullscreen></iframe>after<br><br><br>end`,
	}
	for _, opts := range []Options{DefaultOptions(), {}} {
		for _, body := range bodies {
			tree := mustFragment(t, body)
			again, err := markup.ToTree(markup.ToRaw(tree))
			require.NoError(t, err)
			require.Equal(t, Format(tree, opts), Format(again, opts), body)
		}
	}
}

func TestStrikeThrough(t *testing.T) {
	out := strikeThrough("a b\n")
	require.Equal(t, 2, strings.Count(out, "\u0336"))
}
