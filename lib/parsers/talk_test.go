package parsers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseTalkList(t *testing.T) {
	talks := ParseTalkList(fixture(t, "talks.html"))
	require.Len(t, talks, 2)

	require.Equal(t, 77, talks[0].TalkID)
	require.Equal(t, "Hello there", talks[0].Title)
	require.Equal(t, []string{"Viewer", "Pony"}, talks[0].Recipients)
	require.True(t, talks[0].Unread)
	require.Equal(t, 3, talks[0].CommentsCount)
	require.Nil(t, talks[0].Body)
	require.True(t, moscow(2016, time.March, 3, 18, 20).Equal(talks[0].Time))

	require.Equal(t, 70, talks[1].TalkID)
	require.False(t, talks[1].Unread)
	require.Equal(t, 0, talks[1].CommentsCount)
	require.Equal(t, []string{"Viewer"}, talks[1].Recipients)
}

func TestParseTalk(t *testing.T) {
	ctx := viewer
	ctx.URL = "https://tabun.everypony.ru/talk/read/77/"

	talk, comments := ParseTalk(fixture(t, "talk.html"), ctx)
	require.NotNil(t, talk)
	require.Equal(t, 77, talk.TalkID)
	require.Equal(t, "Hello there", talk.Title)
	require.Equal(t, "Pony", talk.Author)
	require.Equal(t, []string{"Viewer", "Pony"}, talk.Recipients)
	require.Equal(t, "Private <b>message</b>", talk.RawBody)
	require.Equal(t, 1, talk.CommentsCount)

	require.Len(t, comments, 1)
	reply := comments[9001]
	require.NotNil(t, reply)
	require.Equal(t, 77, reply.PostID)
	require.Equal(t, "", reply.Blog)
	require.Equal(t, "Viewer", reply.Author)
	require.Equal(t, "Answer", reply.RawBody)
}

func TestParseTalkIDFromURL(t *testing.T) {
	page := []byte(`<html><body><article class="topic">
<h1 class="topic-title">t</h1>
<div class="topic-content text">b</div>
<footer class="topic-footer"></footer>
</article></body></html>`)
	ctx := viewer
	ctx.URL = "https://tabun.everypony.ru/talk/read/5/"

	talk, comments := ParseTalk(page, ctx)
	require.NotNil(t, talk)
	require.Equal(t, 5, talk.TalkID)
	require.Empty(t, comments)

	ctx.URL = "https://tabun.everypony.ru/talk/inbox/"
	talk, _ = ParseTalk(page, ctx)
	require.Nil(t, talk)
}
