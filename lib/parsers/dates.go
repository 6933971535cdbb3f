package parsers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"tabun-api/lib/htmlutil"
	"tabun-api/lib/timezone"
)

var russianMonths = map[string]time.Month{
	"января":   time.January,
	"февраля":  time.February,
	"марта":    time.March,
	"апреля":   time.April,
	"мая":      time.May,
	"июня":     time.June,
	"июля":     time.July,
	"августа":  time.August,
	"сентября": time.September,
	"октября":  time.October,
	"ноября":   time.November,
	"декабря":  time.December,
}

var russianDateRegex = regexp.MustCompile(`^(\d{1,2})\s+(\S+)\s+(\d{4})(?:,\s*(\d{1,2}):(\d{2}))?`)

// parseRussianDate reads dates like "15 января 1990" or
// "21 января 2015, 13:44" in the site's timezone.
func parseRussianDate(s string) (time.Time, error) {
	groups := russianDateRegex.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if groups == nil {
		return time.Time{}, fmt.Errorf("not a date: %q", s)
	}
	month, ok := russianMonths[groups[2]]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown month %q", groups[2])
	}
	day, _ := strconv.Atoi(groups[1])
	year, _ := strconv.Atoi(groups[3])
	hour, minute := 0, 0
	if groups[4] != "" {
		hour, _ = strconv.Atoi(groups[4])
		minute, _ = strconv.Atoi(groups[5])
	}
	return time.Date(year, month, day, hour, minute, 0, 0, timezone.Location), nil
}

// datetime reads the datetime attribute of the first <time> under n.
func datetime(n htmlutil.Node) (time.Time, bool) {
	found := n.First(qTime)
	if found == nil {
		return time.Time{}, false
	}
	t, err := timezone.ParseDatetime(found.AttrOr("datetime", ""))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
