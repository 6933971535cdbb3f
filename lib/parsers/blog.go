package parsers

import (
	"regexp"
	"strings"

	"tabun-api/lib/htmlutil"
	"tabun-api/lib/markup"
	"tabun-api/lib/models"
)

var rssBlogRegex = regexp.MustCompile(`/rss/blog/([A-Za-z0-9_\-]+)/?`)

// dotted reads a list of "<span>label:</span> <strong>value</strong>" rows
// into label -> value node.
func dotted(rows []htmlutil.Node) map[string]htmlutil.Node {
	out := map[string]htmlutil.Node{}
	for _, row := range rows {
		label := strings.TrimSuffix(text(row, qDottedLabel), ":")
		value := row.First(qDottedValue)
		if label == "" || value == nil {
			continue
		}
		out[label] = value
	}
	return out
}

// usernames are the profile names behind a list of user links.
func usernames(links []htmlutil.Node) []string {
	out := []string{}
	for _, a := range links {
		if name, ok := profileLink(a.AttrOr("href", "")); ok {
			out = append(out, name)
			continue
		}
		if name := htmlutil.CleanText(a.TextContent()); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// ParseBlog parses the header of a blog page.
func ParseBlog(page []byte, ctx PageContext) *models.Blog {
	return guard("blog", func() (*models.Blog, error) {
		root, err := htmlutil.Parse(contentRegion(page))
		if err != nil {
			return nil, err
		}
		return parseBlog(root, ctx)
	})
}

func parseBlog(root htmlutil.Node, ctx PageContext) (*models.Blog, error) {
	area, err := first("blog", root, qBlogVoteArea)
	if err != nil {
		return nil, err
	}
	id, ok := idSuffix(area.ID(), "vote_area_blog_")
	if !ok {
		return nil, mismatch{kind: "blog", what: "bad vote widget id " + area.ID()}
	}
	groups := rssBlogRegex.FindStringSubmatch(href(root, qBlogRSS))
	if groups == nil {
		return nil, mismatch{kind: "blog", what: "no rss link"}
	}

	blog := models.Blog{
		BlogID: id,
		Name:   groups[1],
		Title:  text(root, qBlogHeader),
		Status: models.BlogOpen,
	}
	switch {
	case root.First(qBlogClosed) != nil:
		blog.Status = models.BlogClosed
	case root.First(qBlogHalfClosed) != nil:
		blog.Status = models.BlogHalfClosed
	}
	if img := root.First(qBlogAvatar); img != nil {
		blog.Avatar = img.AttrOr("src", "")
	}
	if total := area.First(qVoteTotal); total != nil {
		blog.Rating, _ = parseNumber(total.TextContent())
	}
	if count := area.First(qVoteCount); count != nil {
		blog.VoteCount, _ = firstNumber(count.AttrOr("title", ""))
	}
	if desc := root.First(qBlogDesc); desc != nil {
		blog.Description, err = markup.EscapedBody(desc)
		if err != nil {
			return nil, err
		}
	}

	info := dotted(root.Find(qBlogInfo))
	if v, ok := info["Создан"]; ok {
		blog.Created, _ = parseRussianDate(v.TextContent())
	}
	if v, ok := info["Топиков"]; ok {
		blog.PostsCount, _ = parseInt(v.TextContent())
	}
	if v, ok := info["Подписчиков"]; ok {
		blog.ReadersCount, _ = parseInt(v.TextContent())
	}
	if owner := usernames(root.Find(qBlogOwner)); len(owner) > 0 {
		blog.Creator = owner[0]
	}
	blog.Admins = usernames(root.Find(qBlogAdmins))
	blog.Moderators = usernames(root.Find(qBlogModerators))

	c := ctx.context()
	voteState(area, c)
	if join := root.First(qBlogJoin); join != nil {
		c[models.CtxCanJoin] = true
		c[models.CtxSubscribed] = join.HasClass("active")
		c[models.CtxNeedJoinRequest] = strings.Contains(strings.ToLower(join.TextContent()), "заявк")
	} else {
		c[models.CtxCanJoin] = false
	}
	blog.Context = c

	return models.NewBlog(blog)
}

// ParseBlogsList parses the table of the blogs page. List rows carry no
// description and no vote state.
func ParseBlogsList(page []byte, ctx PageContext) []*models.Blog {
	root, err := htmlutil.Parse(contentRegion(page))
	if err != nil {
		return nil
	}
	var blogs []*models.Blog
	for _, row := range root.Find(qBlogRows) {
		blog := guard("blog-row", func() (*models.Blog, error) {
			return parseBlogRow(row, ctx)
		})
		if blog == nil {
			skipped("blog-row")
			continue
		}
		blogs = append(blogs, blog)
	}
	return blogs
}

func parseBlogRow(row htmlutil.Node, ctx PageContext) (*models.Blog, error) {
	link, err := first("blog-row", row, qBlogRowName)
	if err != nil {
		return nil, err
	}
	name, ok := blogLink(link.AttrOr("href", ""))
	if !ok {
		return nil, mismatch{kind: "blog-row", what: "bad blog link"}
	}
	readers, err := first("blog-row", row, qBlogRowReaders)
	if err != nil {
		return nil, err
	}
	id, ok := idSuffix(readers.ID(), "blog_user_count_")
	if !ok {
		return nil, mismatch{kind: "blog-row", what: "bad readers id " + readers.ID()}
	}

	blog := models.Blog{
		BlogID:  id,
		Name:    name,
		Title:   htmlutil.CleanText(link.TextContent()),
		Status:  models.BlogOpen,
		Context: ctx.context(),
	}
	blog.ReadersCount, _ = parseInt(readers.TextContent())
	blog.Rating, _ = parseNumber(text(row, qBlogRowRating))
	if row.First(qBlogRowPrivate) != nil {
		blog.Status = models.BlogClosed
	}
	return models.NewBlog(blog)
}
