package consolidation

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// ColorSlotCount is the size of the CSS palette the dashboard ships.
const ColorSlotCount = 15

var colorSlotRegex = regexp.MustCompile(`course-color-(\d+)$`)

func parseColorSlot(value string) (int, bool) {
	match := colorSlotRegex.FindStringSubmatch(value)
	if len(match) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ReconcileColors assigns a stable course-color-N slot to every course.
// Existing bindings are never touched, even for courses that no longer
// appear; new courses are processed in case-insensitive alphabetical
// order and get the lowest unused slot. Once all slots are bound every
// further course reuses slot 1 rather than growing the palette.
func ReconcileColors(existing map[string]string, courses []string) map[string]string {
	mapping := make(map[string]string, len(existing)+len(courses))
	for course, color := range existing {
		mapping[course] = color
	}

	used := make(map[int]bool)
	for _, color := range mapping {
		n, ok := parseColorSlot(color)
		if ok {
			used[n] = true
		}
	}

	ordered := make([]string, 0, len(courses))
	for _, course := range courses {
		if course != "" {
			ordered = append(ordered, course)
		}
	}
	slices.SortFunc(ordered, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})

	for _, course := range ordered {
		_, bound := mapping[course]
		if bound {
			continue
		}

		n := 1
		for n <= ColorSlotCount && used[n] {
			n++
		}
		if n > ColorSlotCount {
			// palette exhausted: wrap and accept the duplicate
			n = 1
		}
		used[n] = true
		mapping[course] = fmt.Sprintf("course-color-%d", n)
	}

	return mapping
}
