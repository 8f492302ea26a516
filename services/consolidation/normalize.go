package consolidation

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"hwboard-backend/lib/timezone"

	"github.com/araddon/dateparse"
)

// Bias controls how a bare weekday name resolves. A "missing" listing
// refers to work already past, an "assigned" listing to work ahead.
type Bias int

const (
	BiasFuture Bias = iota
	BiasPast
)

// substrings that mark a value as carrying no due date at all
var dueDateSentinels = []string{"posted", "no due date", "unknown"}

var referenceMonths = []string{
	"january",
	"february",
	"march",
	"april",
	"may",
	"june",
	"july",
	"august",
	"september",
	"october",
	"november",
	"december",
}

// Monday first, matching the weekday math below.
var referenceWeekdays = []string{
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
	"sunday",
}

// date-shaped numeric tokens: D/D, D-D, an ordinal day before a comma,
// or a bare 4-digit year
var dateShapedRegex = regexp.MustCompile(`\b\d{1,2}[/\-]\d{1,2}|\b\d{1,2}\s*(st|nd|rd|th)?\s*,|\b\d{4}\b`)

var yearRegex = regexp.MustCompile(`\d{4}`)
var monthDayRegex = regexp.MustCompile(`([A-Za-z]{3,9})\.? *(\d{1,2})`)
var leadingWeekdayRegex = regexp.MustCompile(`(?i)^(monday|tuesday|wednesday|thursday|friday|saturday|sunday)[,\s]+`)

// NormalizeDueDate converts free-text due date expressions from the
// portals into a DueDate. Malformed text is not an error: it degrades
// to a fallback value carrying the original text, with a WARNING.
func NormalizeDueDate(diag *Diagnostics, text string, bias Bias) DueDate {
	return normalizeDueDateAt(diag, text, bias, timezone.Now())
}

func normalizeDueDateAt(diag *Diagnostics, text string, bias Bias, now time.Time) DueDate {
	clean := strings.TrimSpace(text)
	if clean == "" || clean == "Unknown" || clean == "No due date" {
		return AbsentDueDate()
	}

	lower := strings.ToLower(clean)
	for _, sentinel := range dueDateSentinels {
		if strings.Contains(lower, sentinel) {
			return AbsentDueDate()
		}
	}

	// relative day keywords win over anything else in the string
	if strings.Contains(lower, "today") {
		return CanonicalDueDate(now)
	}
	if strings.Contains(lower, "yesterday") {
		return CanonicalDueDate(now.AddDate(0, 0, -1))
	}
	if strings.Contains(lower, "tomorrow") {
		return CanonicalDueDate(now.AddDate(0, 0, 1))
	}

	// a weekday name only counts when nothing else in the string looks
	// like an actual date
	if !containsMonthName(lower) && !dateShapedRegex.MatchString(lower) {
		for target, weekday := range referenceWeekdays {
			if strings.Contains(lower, weekday) {
				return CanonicalDueDate(resolveWeekday(now, target, bias))
			}
		}
	}

	// "Monday, March 17, 2025" should parse as the date it names, so a
	// decorative leading weekday is dropped before the general parse
	parsed, err := dateparse.ParseIn(leadingWeekdayRegex.ReplaceAllString(clean, ""), timezone.Location)
	if err == nil {
		// dateparse accepts a bare month-day like "March 5" but leaves
		// the year zeroed, which would sort before every real record
		if parsed.Year() == 0 {
			parsed = parsed.AddDate(now.Year(), 0, 0)
		}
		return CanonicalDueDate(parsed)
	}

	// a month-day with no year fills in from "now",
	// e.g. "March 5" in 2025 resolves to 2025-03-05
	resolved, ok := resolveMonthDay(lower, now)
	if ok {
		return CanonicalDueDate(resolved)
	}

	diag.Warnf("could not parse date '%s': %v", text, err)
	return FallbackDueDate(text)
}

func containsMonthName(lower string) bool {
	for _, month := range referenceMonths {
		if strings.Contains(lower, month) || strings.Contains(lower, month[:3]) {
			return true
		}
	}
	return false
}

func parseMonth(text string) time.Month {
	text = strings.ToLower(text)
	for i, month := range referenceMonths {
		if strings.Contains(month, text) {
			return time.January + time.Month(i)
		}
	}
	return -1
}

// resolveWeekday finds the nearest occurrence of a weekday strictly in
// the past or future. An exact same-weekday match resolves a full week
// out, never to today. `target` is Monday-indexed.
func resolveWeekday(now time.Time, target int, bias Bias) time.Time {
	current := (int(now.Weekday()) + 6) % 7

	if bias == BiasPast {
		daysAgo := (current - target + 7) % 7
		if daysAgo == 0 {
			daysAgo = 7
		}
		return now.AddDate(0, 0, -daysAgo)
	}

	daysAhead := (target - current + 7) % 7
	if daysAhead == 0 {
		daysAhead = 7
	}
	return now.AddDate(0, 0, daysAhead)
}

func resolveMonthDay(lower string, now time.Time) (time.Time, bool) {
	if yearRegex.MatchString(lower) {
		return time.Time{}, false
	}

	match := monthDayRegex.FindStringSubmatch(lower)
	if len(match) < 3 {
		return time.Time{}, false
	}
	month := parseMonth(match[1])
	if month < time.January {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(match[2])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}

	return time.Date(now.Year(), month, day, 0, 0, 0, 0, timezone.Location), true
}
