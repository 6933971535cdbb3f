package session

import (
	"context"
	"net/url"
	"strconv"

	"tabun-api/lib/models"
	"tabun-api/lib/parsers"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func fail(span trace.Span, err error, msg string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
}

func pagePath(prefix string, page int) string {
	if page <= 1 {
		return prefix
	}
	return prefix + "page" + strconv.Itoa(page) + "/"
}

// GetPosts parses a listing page, "/index/" when path is empty. Posts are
// returned oldest first.
func (c *Client) GetPosts(ctx context.Context, path string) ([]*models.Post, error) {
	ctx, span := tracer.Start(ctx, "client:GetPosts")
	defer span.End()

	if path == "" {
		path = "/index/"
	}
	span.SetAttributes(attribute.String("path", path))

	page, pctx, err := c.getPage(ctx, path)
	if err != nil {
		fail(span, err, "failed to fetch posts")
		return nil, err
	}
	return parsers.ParsePosts(page, pctx), nil
}

// GetPost returns nil without an error when the page does not hold a post
// the parsers understand.
func (c *Client) GetPost(ctx context.Context, blog string, postID int) (*models.Post, error) {
	post, _, err := c.GetPostAndComments(ctx, blog, postID)
	return post, err
}

func (c *Client) GetPostAndComments(ctx context.Context, blog string, postID int) (*models.Post, map[int]*models.Comment, error) {
	ctx, span := tracer.Start(ctx, "client:GetPostAndComments")
	defer span.End()
	span.SetAttributes(attribute.String("blog", blog), attribute.Int("post_id", postID))

	page, pctx, err := c.getPage(ctx, models.PostPath(blog, postID))
	if err != nil {
		fail(span, err, "failed to fetch post")
		return nil, nil, err
	}
	post, comments := parsers.ParsePostPage(page, pctx)
	if post == nil {
		c.tel.ReportWarning("client.get-post", "post did not parse", blog, postID)
	}
	return post, comments, nil
}

// GetComments parses only the comments of a post page.
func (c *Client) GetComments(ctx context.Context, blog string, postID int) (map[int]*models.Comment, error) {
	ctx, span := tracer.Start(ctx, "client:GetComments")
	defer span.End()

	page, pctx, err := c.getPage(ctx, models.PostPath(blog, postID))
	if err != nil {
		fail(span, err, "failed to fetch comments")
		return nil, err
	}
	return parsers.ParseComments(page, pctx, postID, blog), nil
}

func (c *Client) GetBlog(ctx context.Context, name string) (*models.Blog, error) {
	ctx, span := tracer.Start(ctx, "client:GetBlog")
	defer span.End()

	page, pctx, err := c.getPage(ctx, "/blog/"+url.PathEscape(name)+"/")
	if err != nil {
		fail(span, err, "failed to fetch blog")
		return nil, err
	}
	return parsers.ParseBlog(page, pctx), nil
}

func (c *Client) GetBlogsList(ctx context.Context, page int) ([]*models.Blog, error) {
	ctx, span := tracer.Start(ctx, "client:GetBlogsList")
	defer span.End()

	body, pctx, err := c.getPage(ctx, pagePath("/blogs/", page))
	if err != nil {
		fail(span, err, "failed to fetch blogs")
		return nil, err
	}
	return parsers.ParseBlogsList(body, pctx), nil
}

func (c *Client) GetProfile(ctx context.Context, username string) (*models.UserInfo, error) {
	ctx, span := tracer.Start(ctx, "client:GetProfile")
	defer span.End()

	page, pctx, err := c.getPage(ctx, "/profile/"+url.PathEscape(username)+"/")
	if err != nil {
		fail(span, err, "failed to fetch profile")
		return nil, err
	}
	return parsers.ParseProfile(page, pctx), nil
}

func (c *Client) GetPeopleList(ctx context.Context, page int) ([]*models.UserInfo, error) {
	ctx, span := tracer.Start(ctx, "client:GetPeopleList")
	defer span.End()

	path := "/people/"
	if page > 1 {
		path = pagePath("/people/index/", page)
	}
	body, pctx, err := c.getPage(ctx, path)
	if err != nil {
		fail(span, err, "failed to fetch people")
		return nil, err
	}
	return parsers.ParsePeopleList(body, pctx), nil
}

func (c *Client) GetTalkList(ctx context.Context, page int) ([]*models.TalkItem, error) {
	ctx, span := tracer.Start(ctx, "client:GetTalkList")
	defer span.End()

	if err := c.CheckLogin(); err != nil {
		fail(span, err, "not logged in")
		return nil, err
	}
	path := "/talk/"
	if page > 1 {
		path = pagePath("/talk/inbox/", page)
	}
	body, _, err := c.getPage(ctx, path)
	if err != nil {
		fail(span, err, "failed to fetch talks")
		return nil, err
	}
	return parsers.ParseTalkList(body), nil
}

func (c *Client) GetTalk(ctx context.Context, talkID int) (*models.TalkItem, map[int]*models.Comment, error) {
	ctx, span := tracer.Start(ctx, "client:GetTalk")
	defer span.End()

	if err := c.CheckLogin(); err != nil {
		fail(span, err, "not logged in")
		return nil, nil, err
	}
	body, pctx, err := c.getPage(ctx, "/talk/read/"+strconv.Itoa(talkID)+"/")
	if err != nil {
		fail(span, err, "failed to fetch talk")
		return nil, nil, err
	}
	talk, comments := parsers.ParseTalk(body, pctx)
	return talk, comments, nil
}

// GetActivity parses the first page of the activity stream, lastID is
// what GetMoreActivity continues from.
func (c *Client) GetActivity(ctx context.Context) (items []*models.ActivityItem, lastID int, err error) {
	ctx, span := tracer.Start(ctx, "client:GetActivity")
	defer span.End()

	page, _, err := c.getPage(ctx, "/stream/all/")
	if err != nil {
		fail(span, err, "failed to fetch activity")
		return nil, -1, err
	}
	items, lastID = parsers.ParseActivity(page)
	return items, lastID, nil
}

type moreActivityResult struct {
	Result string `json:"result"`
	LastID int    `json:"iStreamLastId"`
}

// GetMoreActivity loads the events older than lastID.
func (c *Client) GetMoreActivity(ctx context.Context, lastID int) ([]*models.ActivityItem, int, error) {
	ctx, span := tracer.Start(ctx, "client:GetMoreActivity")
	defer span.End()
	span.SetAttributes(attribute.Int("last_id", lastID))

	var res moreActivityResult
	err := c.Ajax(ctx, "/stream/get_more_all/", url.Values{"last_id": {strconv.Itoa(lastID)}}, &res)
	if err != nil {
		fail(span, err, "failed to fetch more activity")
		return nil, -1, err
	}
	items, _ := parsers.ParseActivity([]byte(res.Result))
	return items, res.LastID, nil
}

type streamResult struct {
	Text string `json:"sText"`
}

func (c *Client) getStream(ctx context.Context, kind string) ([]*models.StreamItem, error) {
	var res streamResult
	if err := c.Ajax(ctx, "/ajax/stream/"+kind+"/", nil, &res); err != nil {
		return nil, err
	}
	return parsers.ParseStream([]byte(res.Text)), nil
}

// GetStreamComments returns the sidebar stream of fresh comments.
func (c *Client) GetStreamComments(ctx context.Context) ([]*models.StreamItem, error) {
	ctx, span := tracer.Start(ctx, "client:GetStreamComments")
	defer span.End()

	items, err := c.getStream(ctx, "comment")
	if err != nil {
		fail(span, err, "failed to fetch comment stream")
	}
	return items, err
}

// GetStreamTopics returns the sidebar stream of fresh posts.
func (c *Client) GetStreamTopics(ctx context.Context) ([]*models.StreamItem, error) {
	ctx, span := tracer.Start(ctx, "client:GetStreamTopics")
	defer span.End()

	items, err := c.getStream(ctx, "topic")
	if err != nil {
		fail(span, err, "failed to fetch topic stream")
	}
	return items, err
}

// GetRSSPosts reads a feed, "/rss/new/" when path is empty.
func (c *Client) GetRSSPosts(ctx context.Context, path string) ([]*models.Post, error) {
	ctx, span := tracer.Start(ctx, "client:GetRSSPosts")
	defer span.End()

	if path == "" {
		path = "/rss/new/"
	}
	res, err := c.Get(ctx, path)
	if err != nil {
		fail(span, err, "failed to fetch feed")
		return nil, err
	}
	posts, err := parsers.ParseRSSPosts(res.Body)
	if err != nil {
		fail(span, err, "failed to decode feed")
		return nil, &TransportError{Code: CodeHTTP, URL: res.URL, Err: err}
	}
	return posts, nil
}
