package timezone

import (
	"time"
	_ "time/tzdata"
)

// Location is the timezone the site renders its dates in.
var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/Moscow")
	if err != nil {
		panic(err)
	}
}

// Now is the current time on the site's clock.
func Now() time.Time {
	return time.Now().In(Location)
}

// ParseDatetime parses the datetime attribute of a <time> element, values
// without an offset are taken to be site local.
func ParseDatetime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return t.In(Location), nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05", value, Location)
}

// Date is midnight of the given day on the site's clock.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, Location)
}
