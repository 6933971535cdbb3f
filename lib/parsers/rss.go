package parsers

import (
	"bytes"
	"encoding/xml"
	"strings"
	"time"

	"tabun-api/lib/models"

	"golang.org/x/net/html/charset"
)

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate"`
	Creator     string   `xml:"http://purl.org/dc/elements/1.1/ creator"`
	Categories  []string `xml:"category"`
}

type rssFeed struct {
	Items []rssItem `xml:"channel>item"`
}

var rssDateLayouts = []string{time.RFC1123Z, time.RFC1123}

// ParseRSSPosts reads the posts of an RSS 2.0 feed in feed order. Items
// without a post permalink or an author are skipped.
func ParseRSSPosts(data []byte) ([]*models.Post, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charset.NewReaderLabel
	var feed rssFeed
	err := decoder.Decode(&feed)
	if err != nil {
		return nil, err
	}

	var posts []*models.Post
	for _, item := range feed.Items {
		post := guard("rss-item", func() (*models.Post, error) {
			return parseRSSItem(item)
		})
		if post == nil {
			skipped("rss-item")
			continue
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func parseRSSItem(item rssItem) (*models.Post, error) {
	blog, id, ok := postLink(item.Link)
	if !ok {
		return nil, mismatch{kind: "rss-item", what: "bad link " + item.Link}
	}
	post := models.Post{
		Blog:    blog,
		PostID:  id,
		Author:  strings.TrimSpace(item.Creator),
		Title:   strings.TrimSpace(item.Title),
		Tags:    item.Categories,
		RawBody: strings.TrimSpace(item.Description),
	}
	for _, layout := range rssDateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(item.PubDate)); err == nil {
			post.Time = t
			break
		}
	}
	return models.NewPost(post)
}
