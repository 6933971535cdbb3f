package parsers

import (
	"regexp"
	"strconv"

	"tabun-api/lib/htmlutil"
	"tabun-api/lib/markup"
	"tabun-api/lib/models"
)

var (
	gotoParentRegex  = regexp.MustCompile(`goToParentComment\(\s*(\d+)\s*,\s*(\d+)\s*\)`)
	commentPathRegex = regexp.MustCompile(`/comments/(\d+)`)
	commentFragRegex = regexp.MustCompile(`#comment(\d+)$`)
	commentsStart    = []byte(`<div class="comments" id="comments">`)
	commentsEnd      = []byte(`<!-- /comments -->`)
)

func submatchInt(re *regexp.Regexp, s string, group int) (int, bool) {
	groups := re.FindStringSubmatch(s)
	if groups == nil {
		return 0, false
	}
	v, err := strconv.Atoi(groups[group])
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// commentIDStrategies: the permalink fragment, the permalink path, then
// the id of the section itself.
func commentIDStrategies(n htmlutil.Node) []strategy[int] {
	permalink := href(n, qCommentLink)
	return []strategy[int]{
		func() (int, bool) { return submatchInt(commentFragRegex, permalink, 1) },
		func() (int, bool) { return submatchInt(commentPathRegex, permalink, 1) },
		func() (int, bool) { return idSuffix(n.ID(), "comment_id_") },
	}
}

// commentParentStrategies: the parent the caller already knows, the
// argument of the inline "go to parent" handler, then the path of the
// "go to parent" link.
func commentParentStrategies(n htmlutil.Node, explicit int) []strategy[int] {
	return []strategy[int]{
		func() (int, bool) { return explicit, explicit > 0 },
		func() (int, bool) {
			link := n.First(qCommentParent)
			if link == nil {
				return 0, false
			}
			return submatchInt(gotoParentRegex, link.AttrOr("onclick", ""), 2)
		},
		func() (int, bool) {
			return submatchInt(commentPathRegex, href(n, qCommentParent), 1)
		},
	}
}

// ParseComment parses a <section class="comment"> whose text went through
// markup.EscapeCommentContents. postID and blog are used when the comment
// itself does not link to its post, parentID when it is positive.
func ParseComment(n htmlutil.Node, ctx PageContext, postID int, blog string, parentID int) *models.Comment {
	return guard("comment", func() (*models.Comment, error) {
		return parseComment(n, ctx, postID, blog, parentID)
	})
}

func parseComment(n htmlutil.Node, ctx PageContext, postID int, blog string, parentID int) (*models.Comment, error) {
	id, ok := resolve(commentIDStrategies(n)...)
	if !ok {
		return nil, mismatch{kind: "comment", what: "no id"}
	}
	author := text(n, qCommentAuthor)
	if author == "" {
		return nil, mismatch{kind: "comment", what: "no author"}
	}
	content, err := first("comment", n, qCommentText)
	if err != nil {
		return nil, err
	}
	body, err := markup.EscapedBody(content)
	if err != nil {
		return nil, err
	}

	if linkBlog, linkPost, _, ok := commentLink(href(n, qCommentLink)); ok {
		blog, postID = linkBlog, linkPost
	}
	parent, _ := resolve(commentParentStrategies(n, parentID)...)

	comment := models.Comment{
		CommentID: id,
		ParentID:  parent,
		PostID:    postID,
		Blog:      blog,
		Author:    author,
		Unread:    n.HasClass("comment-new"),
		Deleted:   n.HasClass("comment-deleted"),
		IsAuthor:  n.HasClass("comment-author"),
		IsSelf:    n.HasClass("comment-self"),
		Body:      body,
	}
	if created, ok := datetime(n); ok {
		comment.Time = created
	}

	c := ctx.context()
	area := n.First(qCommentVoteArea)
	voteState(area, c)
	if area != nil {
		comment.Vote = optionalInt(text(area, qCommentVoteCount))
	}
	if fav := n.First(qFavourite); fav != nil {
		c[models.CtxFavourited] = fav.HasClass("active")
	}
	comment.Context = c
	return models.NewComment(comment)
}

// ParseDeletedComment handles sections of deleted comments, which have
// neither content nor info block. The parent is recovered from the wrapper
// of the wrapper the section sits in.
func ParseDeletedComment(n htmlutil.Node, ctx PageContext, postID int, blog string) *models.Comment {
	return guard("deleted-comment", func() (*models.Comment, error) {
		return parseDeletedComment(n, ctx, postID, blog)
	})
}

func parseDeletedComment(n htmlutil.Node, ctx PageContext, postID int, blog string) (*models.Comment, error) {
	id, ok := idSuffix(n.ID(), "comment_id_")
	if !ok {
		return nil, mismatch{kind: "deleted-comment", what: "no id"}
	}
	if !n.HasClass("comment-deleted") {
		return nil, mismatch{kind: "deleted-comment", what: "not deleted"}
	}

	parent := 0
	wrapper := n.Parent()
	if wrapper == nil {
		return nil, mismatch{kind: "deleted-comment", what: "no wrapper"}
	}
	if outer := wrapper.Parent(); outer != nil {
		parent, _ = idSuffix(outer.ID(), "comment_wrapper_id_")
	}

	return models.NewComment(models.Comment{
		CommentID: id,
		ParentID:  parent,
		PostID:    postID,
		Blog:      blog,
		Deleted:   true,
		Context:   ctx.context(),
	})
}

// ParseComments parses every comment of a post or talk page.
func ParseComments(page []byte, ctx PageContext, postID int, blog string) map[int]*models.Comment {
	region, ok := markup.FindSubstring(page, commentsStart, commentsEnd)
	if !ok {
		region = page
	}
	root, err := htmlutil.Parse(markup.EscapeCommentContents(region))
	if err != nil {
		return nil
	}
	return parseComments(root, ctx, postID, blog)
}

func parseComments(root htmlutil.Node, ctx PageContext, postID int, blog string) map[int]*models.Comment {
	comments := map[int]*models.Comment{}
	for _, section := range root.Find(qCommentSection) {
		comment := ParseComment(section, ctx, postID, blog, 0)
		if comment == nil {
			comment = ParseDeletedComment(section, ctx, postID, blog)
		}
		if comment == nil {
			skipped("comment")
			continue
		}
		comments[comment.CommentID] = comment
	}
	return comments
}
