// Package legacy keeps the old flat accessors of posts and comments working
// on top of models.Context. Every accessor logs a deprecation warning the
// first time it is used.
package legacy

import (
	"log/slog"
	"sync"

	"tabun-api/lib/models"
)

var warned sync.Map

func deprecated(name, replacement string) {
	if _, seen := warned.LoadOrStore(name, struct{}{}); seen {
		return
	}
	slog.Warn("deprecated accessor", "name", name, "use", replacement)
}

func optionalBool(ctx models.Context, key string) *bool {
	v, ok := ctx.Bool(key)
	if !ok {
		return nil
	}
	return &v
}

func optionalInt(ctx models.Context, key string) *int {
	v, ok := ctx.Int(key)
	if !ok {
		return nil
	}
	return &v
}

type PostAccessor struct {
	post *models.Post
}

func Post(p *models.Post) PostAccessor {
	return PostAccessor{post: p}
}

func (a PostAccessor) CanVote() *bool {
	deprecated("Post.CanVote", `Context["can_vote"]`)
	return optionalBool(a.post.Context, models.CtxCanVote)
}

func (a PostAccessor) VoteValue() *int {
	deprecated("Post.VoteValue", `Context["vote_value"]`)
	return optionalInt(a.post.Context, models.CtxVoteValue)
}

func (a PostAccessor) Favourited() bool {
	deprecated("Post.Favourited", `Context["favourited"]`)
	v, _ := a.post.Context.Bool(models.CtxFavourited)
	return v
}

func (a PostAccessor) FavouriteCount() *int {
	deprecated("Post.FavouriteCount", `Context["favourite_count"]`)
	return optionalInt(a.post.Context, models.CtxFavouriteCount)
}

func (a PostAccessor) CommentsCount() *int {
	deprecated("Post.CommentsCount", `Context["comments_count"]`)
	return optionalInt(a.post.Context, models.CtxCommentsCount)
}

type CommentAccessor struct {
	comment *models.Comment
}

func Comment(c *models.Comment) CommentAccessor {
	return CommentAccessor{comment: c}
}

func (a CommentAccessor) CanVote() *bool {
	deprecated("Comment.CanVote", `Context["can_vote"]`)
	return optionalBool(a.comment.Context, models.CtxCanVote)
}

func (a CommentAccessor) VoteValue() *int {
	deprecated("Comment.VoteValue", `Context["vote_value"]`)
	return optionalInt(a.comment.Context, models.CtxVoteValue)
}

func (a CommentAccessor) Favourited() bool {
	deprecated("Comment.Favourited", `Context["favourited"]`)
	v, _ := a.comment.Context.Bool(models.CtxFavourited)
	return v
}
