package models

import (
	"time"

	"tabun-api/lib/timezone"
)

type ActivityType string

const (
	ActivityAddPost     ActivityType = "add_topic"
	ActivityAddComment  ActivityType = "add_comment"
	ActivityAddBlog     ActivityType = "add_blog"
	ActivityVotePost    ActivityType = "vote_topic"
	ActivityVoteComment ActivityType = "vote_comment"
	ActivityVoteBlog    ActivityType = "vote_blog"
	ActivityVoteUser    ActivityType = "vote_user"
	ActivityAddFriend   ActivityType = "add_friend"
	ActivityJoinBlog    ActivityType = "join_blog"
	ActivityAddWall     ActivityType = "add_wall"
)

var activityTypes = map[ActivityType]bool{
	ActivityAddPost:     true,
	ActivityAddComment:  true,
	ActivityAddBlog:     true,
	ActivityVotePost:    true,
	ActivityVoteComment: true,
	ActivityVoteBlog:    true,
	ActivityVoteUser:    true,
	ActivityAddFriend:   true,
	ActivityJoinBlog:    true,
	ActivityAddWall:     true,
}

// ParseActivityType maps a css token of an activity event to its type.
func ParseActivityType(token string) (ActivityType, bool) {
	t := ActivityType(token)
	return t, activityTypes[t]
}

// ActivityItem is one event of the activity stream. Which fields are set
// depends on Type: post events carry Blog, PostID and Title, comment events
// add CommentID, blog events only Blog and Title, user events (votes,
// friends, wall messages) put the target username in Data and comment
// events put the comment preview there.
type ActivityItem struct {
	Type      ActivityType
	Time      time.Time
	Username  string
	Blog      string
	PostID    int
	CommentID int
	Title     string
	Data      string
}

func NewActivityItem(a ActivityItem) (*ActivityItem, error) {
	if !activityTypes[a.Type] {
		return nil, invalid("activity: unknown type %q", a.Type)
	}
	if a.Username == "" {
		return nil, invalid("activity %s: username is empty", a.Type)
	}
	switch a.Type {
	case ActivityAddPost, ActivityVotePost:
		if a.PostID <= 0 {
			return nil, invalid("activity %s: no post id", a.Type)
		}
	case ActivityAddComment, ActivityVoteComment:
		if a.PostID <= 0 || a.CommentID <= 0 {
			return nil, invalid("activity %s: no post or comment id", a.Type)
		}
	}
	if !a.Time.IsZero() {
		a.Time = a.Time.In(timezone.Location)
	}
	return &a, nil
}

// StreamItem is an entry of the sidebar "live" stream, either a fresh
// comment (CommentID set) or a fresh post.
type StreamItem struct {
	Blog          string
	BlogTitle     string
	PostID        int
	Title         string
	Author        string
	CommentID     int
	CommentsCount int
}

func NewStreamItem(s StreamItem) (*StreamItem, error) {
	if s.PostID <= 0 {
		return nil, invalid("stream item: post id must be positive, got %d", s.PostID)
	}
	if s.CommentID < 0 || s.CommentsCount < 0 {
		return nil, invalid("stream item %d: negative counts", s.PostID)
	}
	return &s, nil
}
