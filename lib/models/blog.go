package models

import (
	"time"

	"tabun-api/lib/htmlutil"
	"tabun-api/lib/timezone"
)

type BlogStatus int

const (
	BlogOpen BlogStatus = iota
	BlogClosed
	// BlogHalfClosed is readable by anyone but only members may post.
	// Older code treats it as closed, see Closed.
	BlogHalfClosed
)

func (s BlogStatus) String() string {
	switch s {
	case BlogOpen:
		return "open"
	case BlogClosed:
		return "closed"
	case BlogHalfClosed:
		return "half-closed"
	}
	return "unknown"
}

type Blog struct {
	BlogID int
	// Name is the url name, Title the display name.
	Name    string
	Title   string
	Creator string
	Avatar  string
	Status  BlogStatus
	Rating  float64

	VoteCount    int
	PostsCount   int
	ReadersCount int

	Admins     []string
	Moderators []string
	Created    time.Time

	Context Context

	// Description is nil on pages that do not show it.
	Description    htmlutil.Node
	RawDescription string
}

// Closed reports whether posting is restricted, half closed blogs count.
func (b *Blog) Closed() bool {
	return b.Status != BlogOpen
}

func NewBlog(b Blog) (*Blog, error) {
	if b.BlogID <= 0 {
		return nil, invalid("blog: id must be positive, got %d", b.BlogID)
	}
	if b.Name == "" {
		return nil, invalid("blog %d: name is empty", b.BlogID)
	}
	switch b.Status {
	case BlogOpen, BlogClosed, BlogHalfClosed:
	default:
		return nil, invalid("blog %s: unknown status %d", b.Name, int(b.Status))
	}
	if b.PostsCount < 0 || b.ReadersCount < 0 {
		return nil, invalid("blog %s: negative counts", b.Name)
	}

	desc, raw, err := resolveOptionalBody("blog description", b.Description, b.RawDescription)
	if err != nil {
		return nil, err
	}
	b.Description = desc
	b.RawDescription = raw

	if b.Admins == nil {
		b.Admins = []string{}
	}
	if b.Moderators == nil {
		b.Moderators = []string{}
	}
	if !b.Created.IsZero() {
		b.Created = b.Created.In(timezone.Location)
	}
	if b.Context == nil {
		b.Context = Context{}
	}
	return &b, nil
}
