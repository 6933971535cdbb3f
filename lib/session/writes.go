package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"tabun-api/lib/htmlutil"
	"tabun-api/lib/models"
	"tabun-api/lib/parsers"
	"tabun-api/lib/textutil"

	"go.opentelemetry.io/otel/attribute"
)

type ratingResult struct {
	Rating json.Number `json:"iRating"`
}

func (c *Client) vote(ctx context.Context, kind, idField string, id, value int) (float64, error) {
	if err := c.CheckLogin(); err != nil {
		return 0, err
	}
	if value < -1 || value > 1 {
		return 0, fmt.Errorf("vote value must be -1, 0 or 1, got %d", value)
	}
	var res ratingResult
	err := c.Ajax(ctx, "/ajax/vote/"+kind+"/", url.Values{
		idField: {strconv.Itoa(id)},
		"value": {strconv.Itoa(value)},
	}, &res)
	if err != nil {
		return 0, err
	}
	if res.Rating == "" {
		return 0, nil
	}
	return res.Rating.Float64()
}

// Vote votes for a post and returns its new rating. Zero abstains.
func (c *Client) Vote(ctx context.Context, postID, value int) (int, error) {
	ctx, span := tracer.Start(ctx, "client:Vote")
	defer span.End()

	rating, err := c.vote(ctx, "topic", "idTopic", postID, value)
	if err != nil {
		fail(span, err, "failed to vote for post")
	}
	return int(rating), err
}

func (c *Client) VoteComment(ctx context.Context, commentID, value int) (int, error) {
	ctx, span := tracer.Start(ctx, "client:VoteComment")
	defer span.End()

	rating, err := c.vote(ctx, "comment", "idComment", commentID, value)
	if err != nil {
		fail(span, err, "failed to vote for comment")
	}
	return int(rating), err
}

func (c *Client) VoteUser(ctx context.Context, userID, value int) (float64, error) {
	ctx, span := tracer.Start(ctx, "client:VoteUser")
	defer span.End()

	rating, err := c.vote(ctx, "user", "idUser", userID, value)
	if err != nil {
		fail(span, err, "failed to vote for user")
	}
	return rating, err
}

func (c *Client) VoteBlog(ctx context.Context, blogID, value int) (float64, error) {
	ctx, span := tracer.Start(ctx, "client:VoteBlog")
	defer span.End()

	rating, err := c.vote(ctx, "blog", "idBlog", blogID, value)
	if err != nil {
		fail(span, err, "failed to vote for blog")
	}
	return rating, err
}

type CommentTarget int

const (
	TargetPost CommentTarget = iota
	TargetTalk
)

type commentResult struct {
	CommentID json.Number `json:"sCommentId"`
}

// Comment adds a comment to a post or a talk and returns its id. reply is
// the parent comment, zero for a top level comment.
func (c *Client) Comment(ctx context.Context, target CommentTarget, targetID int, body string, reply int) (int, error) {
	ctx, span := tracer.Start(ctx, "client:Comment")
	defer span.End()
	span.SetAttributes(attribute.Int("target_id", targetID), attribute.Int("reply", reply))

	if err := c.CheckLogin(); err != nil {
		fail(span, err, "not logged in")
		return 0, err
	}
	path := "/blog/ajaxaddcomment/"
	if target == TargetTalk {
		path = "/talk/ajaxaddcomment/"
	}

	var res commentResult
	err := c.Ajax(ctx, path, url.Values{
		"comment_text":  {body},
		"reply":         {strconv.Itoa(reply)},
		"cmt_target_id": {strconv.Itoa(targetID)},
	}, &res)
	if err != nil {
		fail(span, err, "failed to add comment")
		return 0, err
	}
	id, err := strconv.Atoi(res.CommentID.String())
	if err != nil {
		err = &TransportError{Code: CodeHTTP, URL: path, Err: fmt.Errorf("comment id %q: %w", res.CommentID, err)}
		fail(span, err, "bad comment id")
		return 0, err
	}
	return id, nil
}

type NewPost struct {
	// BlogID is the numeric id of the target blog, zero for the personal
	// blog.
	BlogID int
	Title  string
	Body   string
	Tags   []string
	Draft  bool
	// ForbidComments closes the post for comments.
	ForbidComments bool
}

// AddPost submits a post and returns where it was published. When the
// submission fails in a way that leaves its outcome unknown, recent posts
// are listed and a post with the same title by the current user is taken
// as the result.
func (c *Client) AddPost(ctx context.Context, post NewPost) (blog string, postID int, err error) {
	ctx, span := tracer.Start(ctx, "client:AddPost")
	defer span.End()

	if err := c.CheckLogin(); err != nil {
		fail(span, err, "not logged in")
		return "", 0, err
	}

	form := url.Values{
		tokenField:    {c.Tokens().SecurityKey},
		"topic_type":  {"topic"},
		"blog_id":     {strconv.Itoa(post.BlogID)},
		"topic_title": {post.Title},
		"topic_text":  {post.Body},
		"topic_tags":  {strings.Join(post.Tags, ", ")},
	}
	if post.Draft {
		form.Set("submit_topic_save", "1")
	} else {
		form.Set("submit_topic_publish", "1")
	}
	if post.ForbidComments {
		form.Set("topic_forbid_comment", "1")
	}

	res, err := c.Post(ctx, "/topic/add/", form)
	if err == nil {
		if blog, postID, ok := parsers.ParsePostURL(res.Header.Get("Location")); ok {
			return blog, postID, nil
		}
		if msg := submitError(res.Body); msg != "" {
			err = &ResultError{Message: msg}
			fail(span, err, "post rejected")
			return "", 0, err
		}
		err = &TransportError{Code: CodeHTTP, URL: res.URL, Err: errors.New("no redirect to the new post")}
	}
	if !ambiguous(err) {
		fail(span, err, "failed to add post")
		return "", 0, err
	}

	c.tel.ReportWarning("client.add-post", "verifying by relisting", err)
	blog, postID, found := c.findOwnPost(ctx, post.Title)
	if !found {
		fail(span, err, "failed to add post")
		return "", 0, err
	}
	return blog, postID, nil
}

// ambiguous tells if the site may have created the content even though
// the request failed.
func ambiguous(err error) bool {
	var terr *TransportError
	if !errors.As(err, &terr) {
		return false
	}
	return terr.Code == CodeTimeout || terr.Code == CodeIO || terr.Code == CodeHTTP || terr.Code >= 500
}

// findOwnPost looks for the newest post with the given title by the
// logged in user. Without a known username nothing matches.
func (c *Client) findOwnPost(ctx context.Context, title string) (string, int, bool) {
	posts, err := c.GetPosts(ctx, "/index/newall/")
	if err != nil {
		return "", 0, false
	}
	username := c.Tokens().Username
	if username == "" {
		return "", 0, false
	}
	for i := len(posts) - 1; i >= 0; i-- {
		p := posts[i]
		if textutil.SameTitle(p.Title, title) && p.Author == username {
			return p.Blog, p.PostID, true
		}
	}
	return "", 0, false
}

var qSubmitError = htmlutil.MustQuery("ul.system-message-error li")

func submitError(page []byte) string {
	root, err := htmlutil.Parse(page)
	if err != nil {
		return ""
	}
	var messages []string
	for _, li := range root.Find(qSubmitError) {
		if msg := htmlutil.CleanText(li.TextContent()); msg != "" {
			messages = append(messages, msg)
		}
	}
	return strings.Join(messages, "; ")
}

func (c *Client) DeletePost(ctx context.Context, postID int) error {
	ctx, span := tracer.Start(ctx, "client:DeletePost")
	defer span.End()

	if err := c.CheckLogin(); err != nil {
		fail(span, err, "not logged in")
		return err
	}
	path := "/topic/delete/" + strconv.Itoa(postID) + "/?" + url.Values{tokenField: {c.Tokens().SecurityKey}}.Encode()
	res, err := c.Request(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		fail(span, err, "failed to delete post")
		return err
	}
	if res.StatusCode == http.StatusOK {
		if msg := submitError(res.Body); msg != "" {
			err = &ResultError{Message: msg}
			fail(span, err, "delete rejected")
			return err
		}
	}
	return nil
}

type stateResult struct {
	State bool `json:"bState"`
}

// ToggleBlogSubscribe joins or leaves a blog and returns whether the user
// is a member afterwards.
func (c *Client) ToggleBlogSubscribe(ctx context.Context, blogID int) (bool, error) {
	ctx, span := tracer.Start(ctx, "client:ToggleBlogSubscribe")
	defer span.End()

	if err := c.CheckLogin(); err != nil {
		fail(span, err, "not logged in")
		return false, err
	}
	var res stateResult
	if err := c.Ajax(ctx, "/blog/ajaxblogjoin/", url.Values{"idBlog": {strconv.Itoa(blogID)}}, &res); err != nil {
		fail(span, err, "failed to toggle subscription")
		return false, err
	}
	return res.State, nil
}

type favouriteResult struct {
	State bool `json:"bState"`
	Count int  `json:"iCount"`
}

func (c *Client) favourite(ctx context.Context, kind, idField string, id int, add bool) (int, error) {
	if err := c.CheckLogin(); err != nil {
		return 0, err
	}
	kindValue := "0"
	if add {
		kindValue = "1"
	}
	var res favouriteResult
	err := c.Ajax(ctx, "/ajax/favourite/"+kind+"/", url.Values{
		idField: {strconv.Itoa(id)},
		"type":  {kindValue},
	}, &res)
	return res.Count, err
}

// FavouriteTopic adds a post to or removes it from the favourites and
// returns how many users have it there.
func (c *Client) FavouriteTopic(ctx context.Context, postID int, add bool) (int, error) {
	ctx, span := tracer.Start(ctx, "client:FavouriteTopic")
	defer span.End()

	count, err := c.favourite(ctx, "topic", "idTopic", postID, add)
	if err != nil {
		fail(span, err, "failed to favourite post")
	}
	return count, err
}

func (c *Client) FavouriteComment(ctx context.Context, commentID int, add bool) (int, error) {
	ctx, span := tracer.Start(ctx, "client:FavouriteComment")
	defer span.End()

	count, err := c.favourite(ctx, "comment", "idComment", commentID, add)
	if err != nil {
		fail(span, err, "failed to favourite comment")
	}
	return count, err
}

// AbstainAnswer is the PollAnswer answer that only looks at the results.
const AbstainAnswer = -1

type pollResult struct {
	Text string `json:"sText"`
}

// PollAnswer votes in the poll of a post and returns the results.
func (c *Client) PollAnswer(ctx context.Context, postID, answer int) (*models.Poll, error) {
	ctx, span := tracer.Start(ctx, "client:PollAnswer")
	defer span.End()

	if err := c.CheckLogin(); err != nil {
		fail(span, err, "not logged in")
		return nil, err
	}
	var res pollResult
	err := c.Ajax(ctx, "/ajax/vote/question/", url.Values{
		"idTopic":  {strconv.Itoa(postID)},
		"idAnswer": {strconv.Itoa(answer)},
	}, &res)
	if err != nil {
		fail(span, err, "failed to answer poll")
		return nil, err
	}
	fragment, err := htmlutil.ParseFragment(res.Text)
	if err != nil {
		fail(span, err, "failed to parse poll")
		return nil, &TransportError{Code: CodeHTTP, URL: "/ajax/vote/question/", Err: err}
	}
	return parsers.ParsePoll(fragment), nil
}
