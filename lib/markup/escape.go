package markup

import (
	"bytes"
	"html"
	"strings"

	"tabun-api/lib/htmlutil"
)

// EscapedAttr marks a container whose text is escaped markup.
const EscapedAttr = "data-escaped"

// ShortTextAttr carries the label of the "read more" link of a teaser.
const ShortTextAttr = "data-short-text"

var (
	divClose    = []byte("</div>")
	anchorClose = []byte("</a>")

	topicContentOpen = []byte(`<div class="topic-content text">`)
	topicFooter      = []byte(`<footer class="topic-footer">`)
	topicURLBlock    = []byte(`<div class="topic-url">`)
	topicFileBlock   = []byte(`<div class="topic-file">`)
	readMoreMarker   = []byte(`title="Читать дальше">`)

	commentContentOpen = []byte(`<div id="comment_content_id_`)
	commentTextOpen    = []byte(`<div class="text">`)
	commentInfoDiv     = []byte(`<div class="comment-info">`)
	commentInfoList    = []byte(`<ul class="comment-info">`)
)

func escapeBytes(b []byte) []byte {
	return []byte(html.EscapeString(string(b)))
}

func indexFrom(data, sep []byte, from int) int {
	if from > len(data) {
		return -1
	}
	i := bytes.Index(data[from:], sep)
	if i < 0 {
		return -1
	}
	return i + from
}

// earliest returns the smallest non-negative index, or -1.
func earliest(indexes ...int) int {
	best := -1
	for _, i := range indexes {
		if i < 0 {
			continue
		}
		if best < 0 || i < best {
			best = i
		}
	}
	return best
}

func splice(data []byte, from, to int, replacement []byte) []byte {
	out := make([]byte, 0, len(data)-(to-from)+len(replacement))
	out = append(out, data[:from]...)
	out = append(out, replacement...)
	out = append(out, data[to:]...)
	return out
}

func extractCutText(body []byte) (string, bool) {
	m := bytes.LastIndex(body, readMoreMarker)
	if m < 0 {
		return "", false
	}
	label := body[m+len(readMoreMarker):]
	end := bytes.Index(label, anchorClose)
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(html.UnescapeString(string(label[:end]))), true
}

// EscapeTopicContents rewrites every post body on the page into escaped text
// so that broken user markup cannot leak into the page structure. A body
// ends at the last </div> before the post footer, or before a legacy link
// block or file attachment block when one sits between body and footer.
// Candidates whose markers can't be found are left as they are.
func EscapeTopicContents(data []byte, mayBeShort bool) []byte {
	pos := 0
	for {
		f := indexFrom(data, topicContentOpen, pos)
		if f < 0 {
			return data
		}
		bodyStart := f + len(topicContentOpen)
		next := indexFrom(data, topicContentOpen, bodyStart)

		bound := earliest(
			indexFrom(data, topicFooter, bodyStart),
			indexFrom(data, topicURLBlock, bodyStart),
			indexFrom(data, topicFileBlock, bodyStart),
		)
		if bound < 0 || (next >= 0 && bound > next) {
			pos = bodyStart
			continue
		}
		closing := bytes.LastIndex(data[bodyStart:bound], divClose)
		if closing < 0 {
			pos = bodyStart
			continue
		}
		closing += bodyStart
		body := data[bodyStart:closing]

		var replacement bytes.Buffer
		replacement.WriteString(`<div class="topic-content text" ` + EscapedAttr + `="1"`)
		if mayBeShort {
			if cut, ok := extractCutText(body); ok {
				replacement.WriteString(` ` + ShortTextAttr + `="`)
				replacement.WriteString(html.EscapeString(cut))
				replacement.WriteString(`"`)
			}
		}
		replacement.WriteString(">")
		replacement.Write(escapeBytes(body))
		replacement.Write(divClose)

		data = splice(data, f, closing+len(divClose), replacement.Bytes())
		pos = f + replacement.Len()
	}
}

// EscapeCommentContents does the same as EscapeTopicContents for the text
// block of every comment. Deleted comments have no content block and are
// never touched.
func EscapeCommentContents(data []byte) []byte {
	pos := 0
	for {
		f := indexFrom(data, commentContentOpen, pos)
		if f < 0 {
			return data
		}
		scanFrom := f + len(commentContentOpen)
		next := indexFrom(data, commentContentOpen, scanFrom)
		limit := len(data)
		if next >= 0 {
			limit = next
		}

		textOpen := indexFrom(data[:limit], commentTextOpen, scanFrom)
		if textOpen < 0 {
			pos = scanFrom
			continue
		}
		bodyStart := textOpen + len(commentTextOpen)
		info := earliest(
			indexFrom(data[:limit], commentInfoDiv, bodyStart),
			indexFrom(data[:limit], commentInfoList, bodyStart),
		)
		if info < 0 {
			pos = scanFrom
			continue
		}

		// the block ends with the text div close followed by the content div close
		outer := bytes.LastIndex(data[bodyStart:info], divClose)
		if outer < 0 {
			pos = scanFrom
			continue
		}
		inner := bytes.LastIndex(data[bodyStart:bodyStart+outer], divClose)
		if inner < 0 {
			pos = scanFrom
			continue
		}
		inner += bodyStart

		var replacement bytes.Buffer
		replacement.WriteString(`<div class="text" ` + EscapedAttr + `="1">`)
		replacement.Write(escapeBytes(data[bodyStart:inner]))
		replacement.Write(divClose)

		data = splice(data, textOpen, inner+len(divClose), replacement.Bytes())
		pos = textOpen + replacement.Len()
	}
}

// IsEscaped reports whether the node was produced by one of the escapers.
func IsEscaped(n htmlutil.Node) bool {
	return n.AttrOr(EscapedAttr, "") == "1"
}

// Unescaped returns the original markup held by an escaped node. Nodes that
// weren't escaped are rendered back to markup instead.
func Unescaped(n htmlutil.Node) string {
	if IsEscaped(n) {
		return n.TextContent()
	}
	inner, err := htmlutil.InnerHTML(n)
	if err != nil {
		return ""
	}
	return inner
}

// EscapedBody parses the markup held by an escaped node into a body tree.
func EscapedBody(n htmlutil.Node) (htmlutil.Node, error) {
	return ToTree(strings.TrimSpace(Unescaped(n)))
}
