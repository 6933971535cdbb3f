package parsers

import (
	"regexp"

	"tabun-api/lib/htmlutil"
	"tabun-api/lib/markup"
	"tabun-api/lib/models"
)

var talkLinkRegex = regexp.MustCompile(`/talk/read/(\d+)`)

// ParseTalkList parses the inbox table. Items have no body.
func ParseTalkList(page []byte) []*models.TalkItem {
	root, err := htmlutil.Parse(contentRegion(page))
	if err != nil {
		return nil
	}
	var talks []*models.TalkItem
	for _, row := range root.Find(qTalkRows) {
		talk := guard("talk-row", func() (*models.TalkItem, error) {
			return parseTalkRow(row)
		})
		if talk == nil {
			skipped("talk-row")
			continue
		}
		talks = append(talks, talk)
	}
	return talks
}

func parseTalkRow(row htmlutil.Node) (*models.TalkItem, error) {
	link, err := first("talk-row", row, qTalkTitle)
	if err != nil {
		return nil, err
	}
	id, ok := submatchInt(talkLinkRegex, link.AttrOr("href", ""), 1)
	if !ok {
		return nil, mismatch{kind: "talk-row", what: "bad talk link"}
	}
	talk := models.TalkItem{
		TalkID:     id,
		Title:      htmlutil.CleanText(link.TextContent()),
		Recipients: usernames(row.Find(qTalkRecipients)),
		Unread:     row.HasClass("talk-unread"),
	}
	talk.CommentsCount, _ = parseInt(text(row, qTalkComments))
	if created, ok := datetime(row); ok {
		talk.Time = created
	}
	return models.NewTalkItem(talk)
}

// ParseTalk parses a conversation page together with its replies.
func ParseTalk(page []byte, ctx PageContext) (*models.TalkItem, map[int]*models.Comment) {
	escaped := markup.EscapeCommentContents(markup.EscapeTopicContents(page, false))
	root, err := htmlutil.Parse(escaped)
	if err != nil {
		return nil, nil
	}
	talk := guard("talk", func() (*models.TalkItem, error) {
		return parseTalk(root, ctx)
	})
	if talk == nil {
		return nil, nil
	}
	return talk, parseComments(root, ctx, talk.TalkID, "")
}

// talkIDStrategies: the target of the reply form, then the page address.
func talkIDStrategies(root htmlutil.Node, ctx PageContext) []strategy[int] {
	return []strategy[int]{
		func() (int, bool) {
			input := root.First(qCommentTargetID)
			if input == nil {
				return 0, false
			}
			id, err := parseInt(input.AttrOr("value", ""))
			return id, err == nil && id > 0
		},
		func() (int, bool) { return submatchInt(talkLinkRegex, ctx.URL, 1) },
	}
}

func parseTalk(root htmlutil.Node, ctx PageContext) (*models.TalkItem, error) {
	article, err := first("talk", root, qArticle)
	if err != nil {
		return nil, err
	}
	id, ok := resolve(talkIDStrategies(root, ctx)...)
	if !ok {
		return nil, mismatch{kind: "talk", what: "no id"}
	}
	content, err := first("talk", article, qTopicContent)
	if err != nil {
		return nil, err
	}
	body, err := markup.EscapedBody(content)
	if err != nil {
		return nil, err
	}

	talk := models.TalkItem{
		TalkID:     id,
		Title:      text(article, qTopicTitle),
		Author:     text(article, qAuthorLink),
		Recipients: usernames(root.Find(qTalkPeople)),
		Body:       body,
		Context:    ctx.context(),
	}
	if created, ok := datetime(article); ok {
		talk.Time = created
	}
	talk.CommentsCount = len(root.Find(qCommentSection))
	return models.NewTalkItem(talk)
}
