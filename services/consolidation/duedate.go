package consolidation

import (
	"encoding/json"
	"time"

	"hwboard-backend/lib/timezone"
)

type DueDateKind int

const (
	// DueDateAbsent means the source never gave a date, or gave a known
	// non-date sentinel.
	DueDateAbsent DueDateKind = iota
	// DueDateCanonical means the raw text resolved to a calendar date.
	DueDateCanonical
	// DueDateFallback means parsing failed and the original text is
	// retained verbatim. Consumers must treat it as non-canonical.
	DueDateFallback
)

// DueDate is the three-state result of due date normalization.
// A canonical value is date-only unless it was deserialized from a
// payload that carried a time component.
type DueDate struct {
	kind    DueDateKind
	date    time.Time
	hasTime bool
	raw     string
}

func AbsentDueDate() DueDate {
	return DueDate{kind: DueDateAbsent}
}

func CanonicalDueDate(t time.Time) DueDate {
	t = t.In(timezone.Location)
	return DueDate{
		kind: DueDateCanonical,
		date: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, timezone.Location),
	}
}

func FallbackDueDate(raw string) DueDate {
	return DueDate{kind: DueDateFallback, raw: raw}
}

func (d DueDate) Kind() DueDateKind {
	return d.kind
}

// Date reports the resolved calendar date, valid only for canonical values.
func (d DueDate) Date() (time.Time, bool) {
	return d.date, d.kind == DueDateCanonical
}

// Raw reports the retained original text of a fallback value.
func (d DueDate) Raw() string {
	return d.raw
}

func (d DueDate) String() string {
	switch d.kind {
	case DueDateCanonical:
		if d.hasTime {
			return d.date.Format("2006-01-02T15:04:05")
		}
		return d.date.Format("2006-01-02")
	case DueDateFallback:
		return d.raw
	}
	return ""
}

func (d DueDate) MarshalJSON() ([]byte, error) {
	if d.kind == DueDateAbsent {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *DueDate) UnmarshalJSON(raw []byte) error {
	if string(raw) == "null" {
		*d = AbsentDueDate()
		return nil
	}

	var text string
	err := json.Unmarshal(raw, &text)
	if err != nil {
		return err
	}
	if text == "" {
		*d = AbsentDueDate()
		return nil
	}

	t, err := time.ParseInLocation("2006-01-02T15:04:05", text, timezone.Location)
	if err == nil {
		*d = DueDate{kind: DueDateCanonical, date: t, hasTime: true}
		return nil
	}
	t, err = time.ParseInLocation("2006-01-02", text, timezone.Location)
	if err == nil {
		*d = DueDate{kind: DueDateCanonical, date: t}
		return nil
	}

	*d = FallbackDueDate(text)
	return nil
}
