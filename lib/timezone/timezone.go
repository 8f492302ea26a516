package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("America/New_York")
	if err != nil {
		panic(err)
	}
}

// force timezone to be in NY because the portals render due dates
// in school-local time, and a server placed elsewhere would skew
// date math based on <time.Time>.Year()/Month()/Day()/Hour()/...
func Now() time.Time {
	return time.Now().In(Location)
}
