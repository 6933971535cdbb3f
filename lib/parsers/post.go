package parsers

import (
	"math"
	"regexp"
	"slices"
	"strings"

	"tabun-api/lib/htmlutil"
	"tabun-api/lib/markup"
	"tabun-api/lib/models"
)

var (
	contentStart = []byte(`<div id="content"`)
	contentEnd   = []byte(`<!-- /content -->`)
)

// contentRegion narrows a page to its main column, the whole page is used
// when the markers are missing.
func contentRegion(page []byte) []byte {
	region, ok := markup.FindSubstring(page, contentStart, contentEnd)
	if !ok {
		return page
	}
	return region
}

type postIdentity struct {
	blog   string
	postID int
}

// postIdentityStrategies finds the blog and id of a post: first from the
// title permalink, then (drafts have no permalink) from the blog link and
// the id of the vote widget.
func postIdentityStrategies(n htmlutil.Node) []strategy[postIdentity] {
	return []strategy[postIdentity]{
		func() (postIdentity, bool) {
			blog, id, ok := postLink(href(n, qTopicTitleLink))
			return postIdentity{blog: blog, postID: id}, ok
		},
		func() (postIdentity, bool) {
			area := n.First(qTopicVoteArea)
			if area == nil {
				return postIdentity{}, false
			}
			id, ok := idSuffix(area.ID(), "vote_area_topic_")
			if !ok {
				return postIdentity{}, false
			}
			blog, _ := blogLink(href(n, qTopicBlog))
			return postIdentity{blog: blog, postID: id}, true
		},
	}
}

// voteState sets can_vote and vote_value from the css classes of a vote
// widget. Voting is open only while the widget is not-voted and
// vote-not-expired. Combinations the site is not known to produce leave
// both nil.
func voteState(area htmlutil.Node, c models.Context) {
	c[models.CtxCanVote] = nil
	c[models.CtxVoteValue] = nil
	if area == nil {
		return
	}
	switch {
	case area.HasClass("voted-up"):
		c[models.CtxCanVote] = false
		c[models.CtxVoteValue] = 1
	case area.HasClass("voted-down"):
		c[models.CtxCanVote] = false
		c[models.CtxVoteValue] = -1
	case area.HasClass("voted-zero"):
		c[models.CtxCanVote] = false
		c[models.CtxVoteValue] = 0
	case area.HasClass("not-voted") && area.HasClass("vote-nobuttons"):
		c[models.CtxCanVote] = false
	case area.HasClass("not-voted") && area.HasClass("vote-not-expired"):
		c[models.CtxCanVote] = true
	case area.HasClass("not-voted"):
		c[models.CtxCanVote] = false
	}
}

// ParsePost parses an <article class="topic"> whose body went through
// markup.EscapeTopicContents.
func ParsePost(n htmlutil.Node, ctx PageContext) *models.Post {
	return guard("post", func() (*models.Post, error) {
		return parsePost(n, ctx)
	})
}

func parsePost(n htmlutil.Node, ctx PageContext) (*models.Post, error) {
	identity, ok := resolve(postIdentityStrategies(n)...)
	if !ok {
		return nil, mismatch{kind: "post", what: "no permalink and no vote widget"}
	}
	author := text(n, qAuthorLink)
	if author == "" {
		return nil, mismatch{kind: "post", what: "no author"}
	}
	content, err := first("post", n, qTopicContent)
	if err != nil {
		return nil, err
	}
	body, err := markup.EscapedBody(content)
	if err != nil {
		return nil, err
	}

	post := models.Post{
		Blog:   identity.blog,
		PostID: identity.postID,
		Author: author,
		Title:  text(n, qTopicTitle),
		Draft:  n.First(qDraftIcon) != nil,
		Tags:   htmlutil.AnchorNames(n.Find(qTopicTags)),
		Body:   body,
	}
	if cut, ok := content.Attr(markup.ShortTextAttr); ok {
		post.Short = true
		post.CutText = &cut
	}
	if created, ok := datetime(n); ok {
		post.Time = created
	}
	if chip := n.First(qTopicBlog); chip != nil {
		post.BlogName = htmlutil.CleanText(chip.TextContent())
		post.Private = chip.HasClass("private-blog")
	}
	if total := n.First(qVoteTotal); total != nil {
		post.VoteTotal = optionalInt(total.TextContent())
	}
	if count := n.First(qVoteCount); count != nil {
		post.VoteCount, _ = firstNumber(count.AttrOr("title", ""))
	}
	if area := n.First(qPollArea); area != nil {
		post.Poll = ParsePoll(area)
	}
	post.Download, err = parseDownload(n, identity.postID)
	if err != nil {
		return nil, err
	}

	c := ctx.context()
	voteState(n.First(qTopicVoteArea), c)
	c[models.CtxCanEdit] = n.First(qActionsEdit) != nil
	c[models.CtxCanDelete] = n.First(qActionsDelete) != nil
	if fav := n.First(qFavourite); fav != nil {
		c[models.CtxFavourited] = fav.HasClass("active")
	}
	if count := n.First(qFavouriteCount); count != nil {
		c[models.CtxFavouriteCount] = optionalIntValue(count.TextContent())
	}
	if count := n.First(qCommentsTotal); count != nil {
		c[models.CtxCommentsCount] = optionalIntValue(count.TextContent())
	}
	if count := n.First(qCommentsNew); count != nil {
		c[models.CtxUnreadComments] = optionalIntValue(count.TextContent())
	}
	post.Context = c

	return models.NewPost(post)
}

// optionalIntValue is optionalInt for Context values, where nil means
// unknown.
func optionalIntValue(s string) any {
	v := optionalInt(s)
	if v == nil {
		return nil
	}
	return *v
}

// ParsePosts parses every post of a listing page, oldest first.
func ParsePosts(page []byte, ctx PageContext) []*models.Post {
	escaped := markup.EscapeTopicContents(contentRegion(page), true)
	root, err := htmlutil.Parse(escaped)
	if err != nil {
		return nil
	}

	var posts []*models.Post
	for _, article := range root.Find(qArticle) {
		post := ParsePost(article, ctx)
		if post == nil {
			skipped("post")
			continue
		}
		posts = append(posts, post)
	}
	slices.Reverse(posts)
	return posts
}

// ParsePostPage parses the single post of a post page together with its
// comments.
func ParsePostPage(page []byte, ctx PageContext) (*models.Post, map[int]*models.Comment) {
	escaped := markup.EscapeCommentContents(markup.EscapeTopicContents(page, false))
	root, err := htmlutil.Parse(escaped)
	if err != nil {
		return nil, nil
	}
	article := root.First(qArticle)
	if article == nil {
		return nil, nil
	}
	post := ParsePost(article, ctx)
	if post == nil {
		return nil, nil
	}
	return post, parseComments(root, ctx, post.PostID, post.Blog)
}

// ParsePoll reads the poll block of a question post, either the results
// or, when the viewer has not voted yet, the ballot.
func ParsePoll(n htmlutil.Node) *models.Poll {
	return guard("poll", func() (*models.Poll, error) {
		return parsePoll(n)
	})
}

var (
	pollVotedRegex   = regexp.MustCompile(`Проголосовало:\s*(\d+)`)
	pollAbstainRegex = regexp.MustCompile(`Воздержалось:\s*(\d+)`)
)

func parsePoll(n htmlutil.Node) (*models.Poll, error) {
	if ballot := n.Find(qPollBallot); len(ballot) > 0 {
		items := make([]models.PollItem, len(ballot))
		for i, li := range ballot {
			items[i] = models.PollItem{
				Title: htmlutil.CleanText(li.TextContent()),
				Votes: -1,
			}
		}
		return models.NewPoll(models.Poll{Items: items, Total: -1, NotVoted: -1})
	}

	results := n.Find(qPollResult)
	items := make([]models.PollItem, len(results))
	for i, li := range results {
		percent, err := parseNumber(strings.TrimSuffix(text(li, qPollPercent), "%"))
		if err != nil {
			return nil, err
		}
		votes, ok := firstNumber(text(li, qPollVotes))
		if !ok {
			return nil, mismatch{kind: "poll", what: "no vote count"}
		}
		items[i] = models.PollItem{
			Title:   text(li, qPollItemTitle),
			Percent: percent,
			Votes:   votes,
		}
	}

	summary := text(n, qPollTotal)
	poll := models.Poll{Items: items}
	if groups := pollVotedRegex.FindStringSubmatch(summary); groups != nil {
		poll.Total, _ = parseInt(groups[1])
	}
	if groups := pollAbstainRegex.FindStringSubmatch(summary); groups != nil {
		poll.NotVoted, _ = parseInt(groups[1])
	}
	return models.NewPoll(poll)
}

var (
	fileSizeRegex  = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(кб|мб|kb|mb|б|b)`)
	downloadsRegex = regexp.MustCompile(`Скачано:\s*(\d+)`)
	transfersRegex = regexp.MustCompile(`\((\d+)\)`)
)

var sizeUnits = map[string]float64{
	"б":  1,
	"b":  1,
	"кб": 1024,
	"kb": 1024,
	"мб": 1024 * 1024,
	"mb": 1024 * 1024,
}

func parseFileSize(label string) *int {
	groups := fileSizeRegex.FindStringSubmatch(label)
	if groups == nil {
		return nil
	}
	value, err := parseNumber(groups[1])
	if err != nil {
		return nil
	}
	size := int(math.Round(value * sizeUnits[strings.ToLower(groups[2])]))
	return &size
}

// parseDownload reads the attachment of a file post or the target of a
// legacy link post, nil for other posts.
func parseDownload(n htmlutil.Node, postID int) (*models.Download, error) {
	if file := n.First(qTopicFile); file != nil {
		link, err := first("download", file, qAnchor)
		if err != nil {
			return nil, err
		}
		label := htmlutil.CleanText(file.TextContent())
		d := models.Download{
			Type:     models.DownloadFile,
			PostID:   postID,
			Filename: htmlutil.CleanText(link.TextContent()),
			Link:     link.AttrOr("href", ""),
			Filesize: parseFileSize(label),
		}
		if groups := downloadsRegex.FindStringSubmatch(label); groups != nil {
			d.Count, _ = parseInt(groups[1])
		}
		return models.NewDownload(d)
	}

	if block := n.First(qTopicURL); block != nil {
		link, err := first("download", block, qAnchor)
		if err != nil {
			return nil, err
		}
		d := models.Download{
			Type:   models.DownloadLink,
			PostID: postID,
			Link:   link.AttrOr("href", ""),
		}
		if groups := transfersRegex.FindStringSubmatch(block.TextContent()); groups != nil {
			d.Count, _ = parseInt(groups[1])
		}
		return models.NewDownload(d)
	}
	return nil, nil
}
