package models

import (
	"testing"
	"time"

	"tabun-api/lib/htmlutil"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func TestNewPostDerivesBody(t *testing.T) {
	tree, err := htmlutil.ParseFragment("Hello<br>world")
	require.NoError(t, err)

	fromTree, err := NewPost(Post{PostID: 1, Author: "pony", Body: tree})
	require.NoError(t, err)
	require.Equal(t, "Hello<br/>\nworld", fromTree.RawBody)

	fromRaw, err := NewPost(Post{PostID: 1, Author: "pony", RawBody: fromTree.RawBody})
	require.NoError(t, err)
	require.NotNil(t, fromRaw.Body)
	require.Equal(t, fromTree.Hash(), fromRaw.Hash())

	_, err = NewPost(Post{PostID: 1, Author: "pony", Body: tree, RawBody: "x"})
	require.ErrorIs(t, err, ErrInvalid)
}

func TestNewPostValidation(t *testing.T) {
	cases := []struct {
		name string
		post Post
	}{
		{name: "no id", post: Post{Author: "a"}},
		{name: "no author", post: Post{PostID: 1}},
		{name: "short without cut text", post: Post{PostID: 1, Author: "a", Short: true}},
		{name: "cut text without short", post: Post{PostID: 1, Author: "a", CutText: ptr("more")}},
		{
			name: "foreign download",
			post: Post{PostID: 1, Author: "a", Download: &Download{Type: DownloadLink, PostID: 2}},
		},
	}
	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewPost(test.post)
			require.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestNewPostTime(t *testing.T) {
	at := time.Date(2015, time.January, 20, 18, 0, 0, 0, time.UTC)
	post, err := NewPost(Post{PostID: 1, Author: "a", Time: at, Short: true, CutText: ptr("Читать дальше")})
	require.NoError(t, err)
	require.Equal(t, 21, post.Time.Hour())
	require.Equal(t, 18, post.UTCTime.Hour())
	require.True(t, post.Time.Equal(post.UTCTime))
	require.Equal(t, "/blog/1.html", post.URL())
	require.Equal(t, []string{}, post.Tags)
	require.NotNil(t, post.Context)
}

func TestNewComment(t *testing.T) {
	deleted, err := NewComment(Comment{CommentID: 5, ParentID: 3, PostID: 1, Deleted: true})
	require.NoError(t, err)
	require.Nil(t, deleted.Body)
	require.Empty(t, deleted.Author)
	require.Nil(t, deleted.Vote)

	_, err = NewComment(Comment{CommentID: 5, Deleted: true, Author: "a"})
	require.ErrorIs(t, err, ErrInvalid)
	_, err = NewComment(Comment{CommentID: 5, ParentID: 5, Author: "a"})
	require.ErrorIs(t, err, ErrInvalid)
	_, err = NewComment(Comment{CommentID: 5})
	require.ErrorIs(t, err, ErrInvalid)

	empty, err := NewComment(Comment{CommentID: 6, Author: "a"})
	require.NoError(t, err)
	require.NotNil(t, empty.Body)
	require.Equal(t, "", empty.RawBody)
}

func TestBlogStatus(t *testing.T) {
	for status, closed := range map[BlogStatus]bool{
		BlogOpen:       false,
		BlogClosed:     true,
		BlogHalfClosed: true,
	} {
		blog, err := NewBlog(Blog{BlogID: 1, Name: "news", Status: status})
		require.NoError(t, err)
		require.Equal(t, closed, blog.Closed(), status.String())
		require.Nil(t, blog.Description)
	}

	_, err := NewBlog(Blog{BlogID: 1, Name: "news", Status: BlogStatus(7)})
	require.ErrorIs(t, err, ErrInvalid)
}

func TestNewPoll(t *testing.T) {
	_, err := NewPoll(Poll{
		Items:    []PollItem{{Title: "yes", Votes: -1}, {Title: "no", Votes: -1}},
		Total:    -1,
		NotVoted: -1,
	})
	require.NoError(t, err)

	_, err = NewPoll(Poll{
		Items:    []PollItem{{Title: "yes", Votes: 3, Percent: 75}},
		Total:    -1,
		NotVoted: 2,
	})
	require.ErrorIs(t, err, ErrInvalid)

	_, err = NewPoll(Poll{})
	require.ErrorIs(t, err, ErrInvalid)
}

func TestNewActivityItem(t *testing.T) {
	_, err := NewActivityItem(ActivityItem{Type: "add_something", Username: "a"})
	require.ErrorIs(t, err, ErrInvalid)

	_, err = NewActivityItem(ActivityItem{Type: ActivityAddComment, Username: "a", PostID: 1})
	require.ErrorIs(t, err, ErrInvalid)

	item, err := NewActivityItem(ActivityItem{Type: ActivityAddFriend, Username: "a", Data: "b"})
	require.NoError(t, err)
	require.Equal(t, "b", item.Data)

	typ, ok := ParseActivityType("join_blog")
	require.True(t, ok)
	require.Equal(t, ActivityJoinBlog, typ)
	_, ok = ParseActivityType("stream-item")
	require.False(t, ok)
}

func TestNewDownload(t *testing.T) {
	_, err := NewDownload(Download{Type: DownloadFile, PostID: 1})
	require.ErrorIs(t, err, ErrInvalid)
	_, err = NewDownload(Download{Type: DownloadLink, PostID: 1, Filesize: ptr(10)})
	require.ErrorIs(t, err, ErrInvalid)
	_, err = NewDownload(Download{Type: "torrent", PostID: 1})
	require.ErrorIs(t, err, ErrInvalid)

	d, err := NewDownload(Download{Type: DownloadFile, PostID: 1, Filename: "a.zip", Filesize: ptr(2048)})
	require.NoError(t, err)
	require.Equal(t, 2048, *d.Filesize)
}

func TestContext(t *testing.T) {
	ctx := Context{
		CtxCanVote:       nil,
		CtxVoteValue:     1,
		CtxFavouriteTags: []string{"a"},
		CtxUsername:      "pony",
		CtxSubscribed:    true,
	}
	_, ok := ctx.Bool(CtxCanVote)
	require.False(t, ok)
	v, ok := ctx.Int(CtxVoteValue)
	require.True(t, ok)
	require.Equal(t, 1, v)
	tags, _ := ctx.Strings(CtxFavouriteTags)
	require.Equal(t, []string{"a"}, tags)
	name, _ := ctx.String(CtxUsername)
	require.Equal(t, "pony", name)

	clone := ctx.Clone()
	clone[CtxSubscribed] = false
	subscribed, _ := ctx.Bool(CtxSubscribed)
	require.True(t, subscribed)
}
