package consolidation

import (
	"hwboard-backend/lib/textutil"

	"github.com/antzucaro/matchr"
)

// two normalized course names this close are probably the same course
const similarCourseThreshold = 0.93

// WarnSimilarCourses flags course names from different sources that
// look like two spellings of the same course. Records are never merged
// across sources; this only gives the operator something to act on.
func WarnSimilarCourses(diag *Diagnostics, coursesBySource map[string][]string) {
	type entry struct {
		source string
		course string
		norm   string
	}

	var entries []entry
	for source, courses := range coursesBySource {
		for _, course := range courses {
			entries = append(entries, entry{
				source: source,
				course: course,
				norm:   textutil.NormalizeName(course),
			})
		}
	}

	for i, a := range entries {
		for _, b := range entries[i+1:] {
			if a.source == b.source || a.norm == b.norm {
				continue
			}
			similarity := matchr.JaroWinkler(a.norm, b.norm, false)
			if similarity >= similarCourseThreshold {
				diag.Warnf(
					"course '%s' (%s) and '%s' (%s) may be the same course reported by both sources",
					a.course, a.source, b.course, b.source,
				)
			}
		}
	}
}
