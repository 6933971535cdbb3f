package parsers

import "tabun-api/lib/htmlutil"

// every query the parsers run, nothing else is searched for
var (
	qAnchor = htmlutil.MustQuery("a")
	qTime   = htmlutil.MustQuery("time[datetime]")

	qArticle         = htmlutil.MustQuery("article.topic")
	qTopicTitle      = htmlutil.MustQuery("h1.topic-title")
	qTopicTitleLink  = htmlutil.MustQuery("h1.topic-title a")
	qDraftIcon       = htmlutil.MustQuery("h1.topic-title i.icon-synio-topic-draft")
	qTopicBlog       = htmlutil.MustQuery("a.topic-blog")
	qTopicContent    = htmlutil.MustQuery("div.topic-content")
	qTopicTags       = htmlutil.MustQuery("ul.topic-tags a[rel=tag]")
	qAuthorLink      = htmlutil.MustQuery("a[rel=author]")
	qTopicVoteArea   = htmlutil.MustQuery(`div[id^="vote_area_topic_"]`)
	qVoteTotal       = htmlutil.MustQuery(`span[id^="vote_total_"]`)
	qVoteCount       = htmlutil.MustQuery("div.vote-count")
	qActionsEdit     = htmlutil.MustQuery("a.actions-edit")
	qActionsDelete   = htmlutil.MustQuery("a.actions-delete")
	qFavourite       = htmlutil.MustQuery("div.favourite")
	qFavouriteCount  = htmlutil.MustQuery("span.favourite-count")
	qCommentsTotal   = htmlutil.MustQuery("li.topic-info-comments a span")
	qCommentsNew     = htmlutil.MustQuery("li.topic-info-comments span.count")
	qTopicFile       = htmlutil.MustQuery("div.topic-file")
	qTopicURL        = htmlutil.MustQuery("div.topic-url")
	qPollArea        = htmlutil.MustQuery(`div[id^="topic_question_area_"]`)
	qPollBallot      = htmlutil.MustQuery("ul.poll-vote li")
	qPollResult      = htmlutil.MustQuery("ul.poll-result li")
	qPollPercent     = htmlutil.MustQuery("dt strong")
	qPollVotes       = htmlutil.MustQuery("dt span")
	qPollItemTitle   = htmlutil.MustQuery("dd")
	qPollTotal       = htmlutil.MustQuery("div.poll-total")
	qCommentTargetID = htmlutil.MustQuery("input[name=cmt_target_id]")

	qCommentSection   = htmlutil.MustQuery("section.comment")
	qCommentText      = htmlutil.MustQuery("div.comment-content div.text")
	qCommentAuthor    = htmlutil.MustQuery("li.comment-author a")
	qCommentLink      = htmlutil.MustQuery("li.comment-link a")
	qCommentParent    = htmlutil.MustQuery("li.goto-comment-parent a")
	qCommentVoteArea  = htmlutil.MustQuery(`[id^="vote_area_comment_"]`)
	qCommentVoteCount = htmlutil.MustQuery("span.vote-count")

	qBlogHeader     = htmlutil.MustQuery("div.blog-top h2.page-header")
	qBlogClosed     = htmlutil.MustQuery("div.blog-top span.blog-closed")
	qBlogHalfClosed = htmlutil.MustQuery("div.blog-top span.blog-half-closed")
	qBlogVoteArea   = htmlutil.MustQuery(`div[id^="vote_area_blog_"]`)
	qBlogRSS        = htmlutil.MustQuery("a.rss")
	qBlogAvatar     = htmlutil.MustQuery("header.blog-header img.avatar")
	qBlogDesc       = htmlutil.MustQuery("div.blog-description")
	qBlogInfo       = htmlutil.MustQuery("ul.blog-info li")
	qBlogOwner      = htmlutil.MustQuery(".blog-owner a")
	qBlogAdmins     = htmlutil.MustQuery("ul.blog-admins a")
	qBlogModerators = htmlutil.MustQuery("ul.blog-moderators a")
	qBlogJoin       = htmlutil.MustQuery(`button[id^="button-blog-join-"]`)
	qBlogRows       = htmlutil.MustQuery("table.table-blogs tbody tr")
	qBlogRowName    = htmlutil.MustQuery("td.cell-name a.blog-name")
	qBlogRowReaders = htmlutil.MustQuery(`td.cell-readers[id^="blog_user_count_"]`)
	qBlogRowRating  = htmlutil.MustQuery("td.cell-rating")
	qBlogRowPrivate = htmlutil.MustQuery("td.cell-name i.icon-synio-topic-private")

	qProfile        = htmlutil.MustQuery("div.profile")
	qProfileLogin   = htmlutil.MustQuery("h2.user-login")
	qProfileName    = htmlutil.MustQuery("p.user-name")
	qProfileAvatar  = htmlutil.MustQuery("img.avatar")
	qUserVoteArea   = htmlutil.MustQuery(`div[id^="vote_area_user_"]`)
	qUserSkill      = htmlutil.MustQuery(`div.strength div.count`)
	qProfileAbout   = htmlutil.MustQuery("div.profile-info-about div.text")
	qProfileDotted  = htmlutil.MustQuery("ul.profile-dotted-list li")
	qDottedLabel    = htmlutil.MustQuery("span")
	qDottedValue    = htmlutil.MustQuery("strong")
	qProfileNav     = htmlutil.MustQuery("ul.nav-profile a")
	qPeopleRows     = htmlutil.MustQuery("table.table-users tbody tr")
	qPeopleName     = htmlutil.MustQuery("td.cell-name p.username a")
	qPeopleRealname = htmlutil.MustQuery("td.cell-name p.realname")
	qPeopleSkill    = htmlutil.MustQuery("td.cell-skill")
	qPeopleRating   = htmlutil.MustQuery("td.cell-rating")

	qTalkRows       = htmlutil.MustQuery("table.table-talk tbody tr")
	qTalkTitle      = htmlutil.MustQuery(`td.cell-title a[href*="/talk/read/"]`)
	qTalkRecipients = htmlutil.MustQuery("td.cell-recipients a.username")
	qTalkComments   = htmlutil.MustQuery("td.cell-title span.comments-count")
	qTalkPeople     = htmlutil.MustQuery("div.talk-recipients a.username")

	qActivityItems  = htmlutil.MustQuery("li.stream-item")
	qActivityUser   = htmlutil.MustQuery("p.info a strong")
	qActivityLinks  = htmlutil.MustQuery("li.stream-item > a:not(.avatar)")
	qActivityText   = htmlutil.MustQuery("div.stream-comment-preview")
	qActivityLastID = htmlutil.MustQuery("input#activity_last_id")

	qStreamItems    = htmlutil.MustQuery("ul.latest-list li")
	qStreamAuthor   = htmlutil.MustQuery("a.author")
	qStreamBlog     = htmlutil.MustQuery("a.stream-blog")
	qStreamTopic    = htmlutil.MustQuery("a.stream-topic")
	qStreamComments = htmlutil.MustQuery("span.block-item-comments")
)
