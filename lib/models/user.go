package models

import (
	"time"

	"tabun-api/lib/htmlutil"
)

// UserBlogs splits the blogs a user belongs to by role.
type UserBlogs struct {
	Owner     []string
	Admin     []string
	Moderator []string
	Member    []string
}

// UserCounts are the numbers shown on profile tabs, nil when the page
// did not show them.
type UserCounts struct {
	Publications *int
	Favourites   *int
	Friends      *int
}

// UserInfo is a profile. Full is set when it was parsed from the profile
// page itself, list pages only give a part and leave the rest (UserID
// included) zero or nil.
type UserInfo struct {
	UserID   int
	Username string
	Realname string
	Avatar   string

	Skill  float64
	Rating float64

	// Gender is "M", "F" or empty.
	Gender       string
	Birthday     *time.Time
	Registered   *time.Time
	LastActivity *time.Time

	Blogs  UserBlogs
	Counts UserCounts
	Full   bool

	Context Context

	Description    htmlutil.Node
	RawDescription string
}

func NewUserInfo(u UserInfo) (*UserInfo, error) {
	if u.Username == "" {
		return nil, invalid("user %d: username is empty", u.UserID)
	}
	if u.UserID < 0 || (u.Full && u.UserID == 0) {
		return nil, invalid("user %s: bad id %d", u.Username, u.UserID)
	}
	switch u.Gender {
	case "", "M", "F":
	default:
		return nil, invalid("user %s: unknown gender %q", u.Username, u.Gender)
	}

	desc, raw, err := resolveOptionalBody("user description", u.Description, u.RawDescription)
	if err != nil {
		return nil, err
	}
	u.Description = desc
	u.RawDescription = raw

	for _, list := range []*[]string{&u.Blogs.Owner, &u.Blogs.Admin, &u.Blogs.Moderator, &u.Blogs.Member} {
		if *list == nil {
			*list = []string{}
		}
	}
	if u.Context == nil {
		u.Context = Context{}
	}
	return &u, nil
}
