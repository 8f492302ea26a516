package consolidation

import (
	"slices"
	"time"

	"hwboard-backend/lib/timezone"
)

// records without a usable date sort after everything real
var maxSortTime = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

func dueDateSortKey(record Assignment) time.Time {
	date, ok := record.DueDateParsed.Date()
	if !ok {
		return maxSortTime
	}
	if record.DueDateParsed.hasTime {
		return date
	}
	// a date-only value counts as end of day so same-day items sort
	// after any precise morning timestamp from another source
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		23, 59, 59, 0, timezone.Location,
	)
}

// SortByDueDate orders records chronologically, in place and stable:
// ties and unusable dates keep their input order.
func SortByDueDate(records []Assignment) {
	slices.SortStableFunc(records, func(a, b Assignment) int {
		au := dueDateSortKey(a).Unix()
		bu := dueDateSortKey(b).Unix()
		if au < bu {
			return -1
		}
		if au > bu {
			return 1
		}
		return 0
	})
}
