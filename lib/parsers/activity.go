package parsers

import (
	"strings"

	"tabun-api/lib/htmlutil"
	"tabun-api/lib/models"
)

const activityTypePrefix = "stream-item-type-"

// ParseActivity parses the events of an activity page or of a "more"
// fragment in page order. lastID is the id to continue from, -1 when the
// page does not carry it.
func ParseActivity(page []byte) (items []*models.ActivityItem, lastID int) {
	lastID = -1
	root, err := htmlutil.Parse(page)
	if err != nil {
		return nil, lastID
	}
	for _, li := range root.Find(qActivityItems) {
		item := ParseActivityItem(li)
		if item == nil {
			skipped("activity")
			continue
		}
		items = append(items, item)
	}
	if input := root.First(qActivityLastID); input != nil {
		if id, err := parseInt(input.AttrOr("value", "")); err == nil {
			lastID = id
		}
	}
	return items, lastID
}

// ParseActivityItem parses one <li class="stream-item">, nil for event
// types it does not know.
func ParseActivityItem(n htmlutil.Node) *models.ActivityItem {
	return guard("activity", func() (*models.ActivityItem, error) {
		return parseActivityItem(n)
	})
}

func activityType(n htmlutil.Node) (models.ActivityType, bool) {
	for _, class := range n.Classes() {
		token, ok := strings.CutPrefix(class, activityTypePrefix)
		if ok {
			return models.ParseActivityType(token)
		}
	}
	return "", false
}

func parseActivityItem(n htmlutil.Node) (*models.ActivityItem, error) {
	kind, ok := activityType(n)
	if !ok {
		return nil, mismatch{kind: "activity", what: "unknown event type"}
	}
	links := n.Find(qActivityLinks)
	if len(links) == 0 {
		return nil, mismatch{kind: "activity", what: "no target link"}
	}
	target := links[len(links)-1]
	link := target.AttrOr("href", "")

	item := models.ActivityItem{
		Type:     kind,
		Username: text(n, qActivityUser),
		Title:    htmlutil.CleanText(target.TextContent()),
	}
	if created, ok := datetime(n); ok {
		item.Time = created
	}

	switch kind {
	case models.ActivityAddPost, models.ActivityVotePost:
		item.Blog, item.PostID, _ = postLink(link)
	case models.ActivityAddComment, models.ActivityVoteComment:
		item.Blog, item.PostID, item.CommentID, _ = commentLink(link)
		if kind == models.ActivityAddComment {
			item.Data = text(n, qActivityText)
		}
	case models.ActivityAddBlog, models.ActivityVoteBlog, models.ActivityJoinBlog:
		item.Blog, _ = blogLink(link)
	case models.ActivityVoteUser, models.ActivityAddFriend, models.ActivityAddWall:
		item.Data, _ = profileLink(link)
		item.Title = ""
	}
	return models.NewActivityItem(item)
}
