package parsers

import (
	"tabun-api/lib/htmlutil"
	"tabun-api/lib/models"
)

// ParseStream parses the html fragment of the sidebar stream, fresh
// comments or fresh posts depending on the tab it came from.
func ParseStream(fragment []byte) []*models.StreamItem {
	root, err := htmlutil.ParseFragment(string(fragment))
	if err != nil {
		return nil
	}
	var items []*models.StreamItem
	for _, li := range root.Find(qStreamItems) {
		item := guard("stream", func() (*models.StreamItem, error) {
			return parseStreamItem(li)
		})
		if item == nil {
			skipped("stream")
			continue
		}
		items = append(items, item)
	}
	return items
}

func parseStreamItem(n htmlutil.Node) (*models.StreamItem, error) {
	topic, err := first("stream", n, qStreamTopic)
	if err != nil {
		return nil, err
	}
	link := topic.AttrOr("href", "")

	item := models.StreamItem{
		Title:     htmlutil.CleanText(topic.TextContent()),
		Author:    text(n, qStreamAuthor),
		BlogTitle: text(n, qStreamBlog),
	}
	if blog, postID, commentID, ok := commentLink(link); ok {
		item.Blog, item.PostID, item.CommentID = blog, postID, commentID
	} else if blog, postID, ok := postLink(link); ok {
		item.Blog, item.PostID = blog, postID
	} else {
		return nil, mismatch{kind: "stream", what: "bad topic link " + link}
	}
	if blog, ok := blogLink(href(n, qStreamBlog)); ok {
		item.Blog = blog
	}
	item.CommentsCount, _ = parseInt(text(n, qStreamComments))
	return models.NewStreamItem(item)
}
