package consolidation

import (
	"fmt"
	"math/rand"
	"testing"

	"hwboard-backend/lib/telemetry"
	"hwboard-backend/lib/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestReconcileColorsAllocation(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:services/consolidation")
	defer cleanup()

	got := ReconcileColors(nil, []string{"Zoo", "art", "Bio"})
	expected := map[string]string{
		"art": "course-color-1",
		"Bio": "course-color-2",
		"Zoo": "course-color-3",
	}
	diff := cmp.Diff(expected, got)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestReconcileColorsDeterministicOrder(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:services/consolidation")
	defer cleanup()

	rndm := rand.New(rand.NewSource(4))
	courses := []string{"art", "Bio", "Chem", "drama", "English", "Zoo"}
	for i := 0; i < 6; i++ {
		courses = append(courses, testutil.RandomString(rndm, 8))
	}
	baseline := ReconcileColors(nil, courses)

	for i := 0; i < 10; i++ {
		shuffled := testutil.Shuffle(rndm, courses)
		got := ReconcileColors(nil, shuffled)
		diff := cmp.Diff(baseline, got)
		if diff != "" {
			t.Fatal(diff)
		}
	}
}

func TestReconcileColorsIdempotent(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:services/consolidation")
	defer cleanup()

	courses := []string{"AP Physics", "English 10", "Geometry"}
	first := ReconcileColors(nil, courses)
	second := ReconcileColors(first, courses)
	diff := cmp.Diff(first, second)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestReconcileColorsNeverReassigns(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:services/consolidation")
	defer cleanup()

	existing := map[string]string{
		// stale course that no longer appears
		"Latin": "course-color-1",
	}
	got := ReconcileColors(existing, []string{"Algebra II"})
	require.Equal(t, "course-color-1", got["Latin"])
	require.Equal(t, "course-color-2", got["Algebra II"])
}

func TestReconcileColorsFillsGaps(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:services/consolidation")
	defer cleanup()

	existing := map[string]string{
		"A": "course-color-1",
		"C": "course-color-3",
	}
	got := ReconcileColors(existing, []string{"A", "B", "C"})
	require.Equal(t, "course-color-2", got["B"])
}

func TestReconcileColorsWraparound(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:services/consolidation")
	defer cleanup()

	existing := map[string]string{}
	for i := 1; i <= ColorSlotCount; i++ {
		existing[fmt.Sprintf("Course %02d", i)] = fmt.Sprintf("course-color-%d", i)
	}

	// the 16th and 17th distinct courses both land on slot 1, the
	// palette wraps rather than growing
	got := ReconcileColors(existing, []string{"Overflow A", "Overflow B"})
	require.Equal(t, "course-color-1", got["Overflow A"])
	require.Equal(t, "course-color-1", got["Overflow B"])
	require.Len(t, got, ColorSlotCount+2)
}

func TestReconcileColorsIgnoresCorruptValues(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:services/consolidation")
	defer cleanup()

	existing := map[string]string{
		"Broken": "sparkly-purple",
	}
	got := ReconcileColors(existing, []string{"Fresh"})
	// the corrupt binding is preserved verbatim but does not occupy a slot
	require.Equal(t, "sparkly-purple", got["Broken"])
	require.Equal(t, "course-color-1", got["Fresh"])
}
