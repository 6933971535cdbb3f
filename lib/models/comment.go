package models

import (
	"time"

	"tabun-api/lib/htmlutil"
	"tabun-api/lib/timezone"
)

// Comment is a comment under a post or a private talk. Deleted comments
// keep their position (ids, parent, post) but have no author, body or vote.
type Comment struct {
	Time      time.Time
	CommentID int
	// ParentID is 0 for top level comments.
	ParentID int
	// PostID is 0 when the page did not link the comment to a post, Blog is
	// empty for personal blogs.
	PostID    int
	Blog      string
	PostTitle string

	Author string
	Vote   *int

	Unread   bool
	Deleted  bool
	IsAuthor bool
	IsSelf   bool

	Context Context

	Body    htmlutil.Node
	RawBody string
}

func NewComment(c Comment) (*Comment, error) {
	if c.CommentID <= 0 {
		return nil, invalid("comment: id must be positive, got %d", c.CommentID)
	}
	if c.ParentID < 0 || c.ParentID == c.CommentID {
		return nil, invalid("comment %d: bad parent id %d", c.CommentID, c.ParentID)
	}
	if c.Deleted {
		if c.Author != "" || c.Body != nil || c.RawBody != "" || c.Vote != nil {
			return nil, invalid("comment %d: deleted comment carries content", c.CommentID)
		}
	} else if c.Author == "" {
		return nil, invalid("comment %d: author is empty", c.CommentID)
	}

	body, raw, err := resolveOptionalBody("comment body", c.Body, c.RawBody)
	if err != nil {
		return nil, err
	}
	if body == nil && !c.Deleted {
		body, raw, err = resolveBody("comment body", nil, "")
		if err != nil {
			return nil, err
		}
	}
	c.Body = body
	c.RawBody = raw

	if !c.Time.IsZero() {
		c.Time = c.Time.In(timezone.Location)
	}
	if c.Context == nil {
		c.Context = Context{}
	}
	return &c, nil
}
