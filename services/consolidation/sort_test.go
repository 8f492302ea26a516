package consolidation

import (
	"testing"
	"time"

	"hwboard-backend/lib/telemetry"
	"hwboard-backend/lib/timezone"

	"github.com/stretchr/testify/require"
)

func TestSortByDueDate(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:services/consolidation")
	defer cleanup()

	march14 := CanonicalDueDate(time.Date(2025, time.March, 14, 0, 0, 0, 0, timezone.Location))
	march3 := CanonicalDueDate(time.Date(2025, time.March, 3, 0, 0, 0, 0, timezone.Location))

	records := []Assignment{
		{Name: "fallback", DueDateParsed: FallbackDueDate("see syllabus")},
		{Name: "later", DueDateParsed: march14},
		{Name: "absent", DueDateParsed: AbsentDueDate()},
		{Name: "sooner", DueDateParsed: march3},
	}

	SortByDueDate(records)

	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Name
	}
	// both non-canonical entries sort last, keeping their input order
	require.Equal(t, []string{"sooner", "later", "fallback", "absent"}, names)
}

func TestSortDateOnlyCountsAsEndOfDay(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:services/consolidation")
	defer cleanup()

	var withTime DueDate
	err := withTime.UnmarshalJSON([]byte(`"2025-03-14T08:00:00"`))
	require.NoError(t, err)

	records := []Assignment{
		{Name: "date-only", DueDateParsed: CanonicalDueDate(
			time.Date(2025, time.March, 14, 0, 0, 0, 0, timezone.Location),
		)},
		{Name: "morning", DueDateParsed: withTime},
	}

	SortByDueDate(records)
	// the morning deadline comes before the same day's implicit 23:59:59
	require.Equal(t, "morning", records[0].Name)
	require.Equal(t, "date-only", records[1].Name)
}

func TestSortStability(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:services/consolidation")
	defer cleanup()

	day := CanonicalDueDate(time.Date(2025, time.March, 14, 0, 0, 0, 0, timezone.Location))
	records := []Assignment{
		{Name: "first", DueDateParsed: day},
		{Name: "second", DueDateParsed: day},
		{Name: "third", DueDateParsed: day},
	}
	SortByDueDate(records)
	require.Equal(t, "first", records[0].Name)
	require.Equal(t, "second", records[1].Name)
	require.Equal(t, "third", records[2].Name)
}
