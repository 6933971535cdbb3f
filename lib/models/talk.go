package models

import (
	"time"

	"tabun-api/lib/htmlutil"
	"tabun-api/lib/timezone"
)

// TalkItem is a private conversation. Items from the inbox list have no
// body, items from the conversation page do.
type TalkItem struct {
	TalkID     int
	Recipients []string
	Author     string
	Title      string
	Time       time.Time
	Unread     bool

	CommentsCount int
	Context       Context

	Body    htmlutil.Node
	RawBody string
}

func NewTalkItem(t TalkItem) (*TalkItem, error) {
	if t.TalkID <= 0 {
		return nil, invalid("talk: id must be positive, got %d", t.TalkID)
	}
	if t.Title == "" {
		return nil, invalid("talk %d: title is empty", t.TalkID)
	}
	body, raw, err := resolveOptionalBody("talk body", t.Body, t.RawBody)
	if err != nil {
		return nil, err
	}
	t.Body = body
	t.RawBody = raw

	if t.Recipients == nil {
		t.Recipients = []string{}
	}
	if !t.Time.IsZero() {
		t.Time = t.Time.In(timezone.Location)
	}
	if t.Context == nil {
		t.Context = Context{}
	}
	return &t, nil
}
