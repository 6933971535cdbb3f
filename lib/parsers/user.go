package parsers

import (
	"regexp"
	"strings"
	"time"

	"tabun-api/lib/htmlutil"
	"tabun-api/lib/markup"
	"tabun-api/lib/models"
)

var navCountRegex = regexp.MustCompile(`\((\d+)\)`)

var genders = map[string]string{
	"мужской": "M",
	"женский": "F",
}

func blogNames(n htmlutil.Node) []string {
	out := []string{}
	for _, a := range n.Find(qAnchor) {
		if name, ok := blogLink(a.AttrOr("href", "")); ok {
			out = append(out, name)
		}
	}
	return out
}

func russianDate(n htmlutil.Node) *time.Time {
	t, err := parseRussianDate(htmlutil.CleanText(n.TextContent()))
	if err != nil {
		return nil
	}
	return &t
}

// ParseProfile parses a profile page ("whois" tab).
func ParseProfile(page []byte, ctx PageContext) *models.UserInfo {
	return guard("profile", func() (*models.UserInfo, error) {
		root, err := htmlutil.Parse(contentRegion(page))
		if err != nil {
			return nil, err
		}
		return parseProfile(root, ctx)
	})
}

func parseProfile(root htmlutil.Node, ctx PageContext) (*models.UserInfo, error) {
	profile, err := first("profile", root, qProfile)
	if err != nil {
		return nil, err
	}
	username := text(profile, qProfileLogin)
	if username == "" {
		return nil, mismatch{kind: "profile", what: "no login"}
	}
	area, err := first("profile", profile, qUserVoteArea)
	if err != nil {
		return nil, err
	}
	id, ok := idSuffix(area.ID(), "vote_area_user_")
	if !ok {
		return nil, mismatch{kind: "profile", what: "bad vote widget id " + area.ID()}
	}

	user := models.UserInfo{
		UserID:   id,
		Username: username,
		Realname: text(profile, qProfileName),
		Full:     true,
	}
	if total := area.First(qVoteTotal); total != nil {
		user.Rating, _ = parseNumber(total.TextContent())
	}
	user.Skill, _ = parseNumber(text(profile, qUserSkill))
	if img := root.First(qProfileAvatar); img != nil {
		user.Avatar = img.AttrOr("src", "")
	}
	if about := root.First(qProfileAbout); about != nil {
		user.Description, err = markup.EscapedBody(about)
		if err != nil {
			return nil, err
		}
	}

	for label, value := range dotted(root.Find(qProfileDotted)) {
		switch label {
		case "Пол":
			user.Gender = genders[strings.ToLower(htmlutil.CleanText(value.TextContent()))]
		case "Дата рождения":
			user.Birthday = russianDate(value)
		case "Зарегистрирован":
			user.Registered = russianDate(value)
		case "Последний визит":
			user.LastActivity = russianDate(value)
		case "Создал":
			user.Blogs.Owner = blogNames(value)
		case "Администрирует":
			user.Blogs.Admin = blogNames(value)
		case "Модерирует":
			user.Blogs.Moderator = blogNames(value)
		case "Состоит в":
			user.Blogs.Member = blogNames(value)
		}
	}

	for _, a := range root.Find(qProfileNav) {
		label := htmlutil.CleanText(a.TextContent())
		groups := navCountRegex.FindStringSubmatch(label)
		if groups == nil {
			continue
		}
		count := optionalInt(groups[1])
		switch {
		case strings.HasPrefix(label, "Публикации"):
			user.Counts.Publications = count
		case strings.HasPrefix(label, "Избранное"):
			user.Counts.Favourites = count
		case strings.HasPrefix(label, "Друзья"):
			user.Counts.Friends = count
		}
	}

	c := ctx.context()
	voteState(area, c)
	user.Context = c

	return models.NewUserInfo(user)
}

// ParsePeopleList parses the table of the people page into partial
// profiles.
func ParsePeopleList(page []byte, ctx PageContext) []*models.UserInfo {
	root, err := htmlutil.Parse(contentRegion(page))
	if err != nil {
		return nil
	}
	var users []*models.UserInfo
	for _, row := range root.Find(qPeopleRows) {
		user := guard("people-row", func() (*models.UserInfo, error) {
			return parsePeopleRow(row, ctx)
		})
		if user == nil {
			skipped("people-row")
			continue
		}
		users = append(users, user)
	}
	return users
}

func parsePeopleRow(row htmlutil.Node, ctx PageContext) (*models.UserInfo, error) {
	link, err := first("people-row", row, qPeopleName)
	if err != nil {
		return nil, err
	}
	username, ok := profileLink(link.AttrOr("href", ""))
	if !ok {
		username = htmlutil.CleanText(link.TextContent())
	}
	user := models.UserInfo{
		Username: username,
		Realname: text(row, qPeopleRealname),
		Context:  ctx.context(),
	}
	user.Skill, _ = parseNumber(text(row, qPeopleSkill))
	user.Rating, _ = parseNumber(text(row, qPeopleRating))
	if img := row.First(qProfileAvatar); img != nil {
		user.Avatar = img.AttrOr("src", "")
	}
	return models.NewUserInfo(user)
}
