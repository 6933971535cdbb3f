package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"tabun-api/lib/htmlutil"
	"tabun-api/lib/timezone"
)

type Post struct {
	// Time is site local, UTCTime is the same instant in UTC.
	Time    time.Time
	UTCTime time.Time

	// Blog is the url name of the blog, empty for personal blogs.
	Blog   string
	PostID int
	Author string
	Title  string
	Draft  bool

	VoteCount int
	// VoteTotal is nil while the rating is hidden.
	VoteTotal *int

	Tags []string
	// Short is set for teasers, CutText is then the "read more" label.
	Short   bool
	CutText *string
	Private bool
	// BlogName is the display title of the blog.
	BlogName string

	Poll     *Poll
	Download *Download
	Context  Context

	Body    htmlutil.Node
	RawBody string
}

// NewPost validates p and derives the half of the body that was not given.
func NewPost(p Post) (*Post, error) {
	if p.PostID <= 0 {
		return nil, invalid("post: id must be positive, got %d", p.PostID)
	}
	if p.Author == "" {
		return nil, invalid("post %d: author is empty", p.PostID)
	}
	if p.Short != (p.CutText != nil) {
		return nil, invalid("post %d: short is %v but cut text presence is %v", p.PostID, p.Short, p.CutText != nil)
	}
	if p.Download != nil && p.Download.PostID != p.PostID {
		return nil, invalid("post %d: download belongs to post %d", p.PostID, p.Download.PostID)
	}

	body, raw, err := resolveBody("post body", p.Body, p.RawBody)
	if err != nil {
		return nil, err
	}
	p.Body = body
	p.RawBody = raw

	if !p.Time.IsZero() {
		p.Time = p.Time.In(timezone.Location)
		p.UTCTime = p.Time.UTC()
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Context == nil {
		p.Context = Context{}
	}
	return &p, nil
}

// Hash is the hex sha256 of the raw body, used to detect edits.
func (p *Post) Hash() string {
	sum := sha256.Sum256([]byte(p.RawBody))
	return hex.EncodeToString(sum[:])
}

// URL is the post's path on the site.
func (p *Post) URL() string {
	return PostPath(p.Blog, p.PostID)
}

func PostPath(blog string, postID int) string {
	if blog == "" {
		return "/blog/" + strconv.Itoa(postID) + ".html"
	}
	return "/blog/" + blog + "/" + strconv.Itoa(postID) + ".html"
}

type DownloadType string

const (
	DownloadFile DownloadType = "file"
	DownloadLink DownloadType = "link"
)

// Download is the attachment of a file post or the target of a link post.
type Download struct {
	Type   DownloadType
	PostID int
	// Filename is only known for files, Link for links.
	Filename string
	Link     string
	Count    int
	// Filesize is in bytes, nil when unknown.
	Filesize *int
}

func NewDownload(d Download) (*Download, error) {
	switch d.Type {
	case DownloadFile:
		if d.Filename == "" {
			return nil, invalid("download: file without a name")
		}
	case DownloadLink:
		if d.Filesize != nil {
			return nil, invalid("download: link with a file size")
		}
	default:
		return nil, invalid("download: unknown type %q", d.Type)
	}
	if d.PostID <= 0 {
		return nil, invalid("download: post id must be positive, got %d", d.PostID)
	}
	if d.Count < 0 {
		return nil, invalid("download: negative count %d", d.Count)
	}
	return &d, nil
}

type PollItem struct {
	Title   string
	Percent float64
	// Votes is -1 on a ballot.
	Votes int
}

// Poll is either a result view or a ballot. Ballots have not been voted in
// by the viewer and carry no numbers: Total, NotVoted and every Votes is -1.
type Poll struct {
	Items    []PollItem
	Total    int
	NotVoted int
}

func NewPoll(p Poll) (*Poll, error) {
	if len(p.Items) == 0 {
		return nil, invalid("poll: no items")
	}
	ballot := p.Total == -1
	if ballot != (p.NotVoted == -1) {
		return nil, invalid("poll: total is %d but not voted is %d", p.Total, p.NotVoted)
	}
	for i, item := range p.Items {
		if ballot && item.Votes != -1 {
			return nil, invalid("poll: ballot item %d has votes", i)
		}
		if !ballot && (item.Votes < 0 || item.Percent < 0 || item.Percent > 100) {
			return nil, invalid("poll: item %d has %d votes at %v%%", i, item.Votes, item.Percent)
		}
	}
	return &p, nil
}

func (p *Poll) Ballot() bool {
	return p.Total == -1
}
