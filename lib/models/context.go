package models

// Keys of the Context map set by the parsers. Not every page carries every
// key, a missing key means the page did not say.
const (
	CtxCanEdit         = "can_edit"
	CtxCanDelete       = "can_delete"
	CtxCanVote         = "can_vote"
	CtxVoteValue       = "vote_value"
	CtxCanComment      = "can_comment"
	CtxSubscribed      = "subscribed"
	CtxFavourited      = "favourited"
	CtxFavouriteCount  = "favourite_count"
	CtxFavouriteTags   = "favourite_tags"
	CtxUnreadComments  = "unread_comments_count"
	CtxCommentsCount   = "comments_count"
	CtxUsername        = "username"
	CtxHTTPHost        = "http_host"
	CtxURL             = "url"
	CtxCanJoin         = "can_join"
	CtxNeedJoinRequest = "need_join_request"
)

// Context is per-entity metadata that depends on the viewer or the page
// the entity was parsed from. A key holding nil means "unknown".
type Context map[string]any

func (c Context) Bool(key string) (bool, bool) {
	v, ok := c[key].(bool)
	return v, ok
}

func (c Context) Int(key string) (int, bool) {
	v, ok := c[key].(int)
	return v, ok
}

func (c Context) String(key string) (string, bool) {
	v, ok := c[key].(string)
	return v, ok
}

func (c Context) Strings(key string) ([]string, bool) {
	v, ok := c[key].([]string)
	return v, ok
}

// Clone returns a shallow copy, nil for a nil context.
func (c Context) Clone() Context {
	if c == nil {
		return nil
	}
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
