package jupiter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hwboard-backend/lib/telemetry"
	"hwboard-backend/lib/timezone"
	"hwboard-backend/services/consolidation"

	"github.com/stretchr/testify/require"
)

const todoPage = `<html><body>
<div class="classbox"><table>
<tr class="hi" click="gogrades(5667307,4)"><td><div class="big wrap">Geometry</div></td></tr>
</table></div>
<div class="classbox"><table>
<tr class="hi" click="gogrades(5667308,4)"><td><div class="big wrap">Chemistry</div></td></tr>
</table></div>
</body></html>`

const geometryPage = `<html><body><table>
<tr>
<td><img src="/img/dot_green.svg"></td><td>3/20/2099</td>
<td><div class="big">Problem set</div><div class="small">Chapters 4 and 5</div></td>
<td></td><td></td><td></td><td></td><td>25 pts</td>
</tr>
<tr>
<td><img src="/img/dot_green.svg"></td><td>1/15/2020</td>
<td><div class="big">Old worksheet</div></td>
<td></td><td></td><td></td><td></td><td>10</td>
</tr>
<tr>
<td><img src="/img/dot_green.svg"></td><td></td>
<td><div class="big">Semester project</div></td>
<td></td><td></td><td></td><td></td><td>100</td>
</tr>
<tr>
<td><img src="/img/dot_gray.svg"></td><td>3/21/2099</td>
<td><div class="big">Graded already</div></td>
<td></td><td></td><td></td><td></td><td>10</td>
</tr>
</table></body></html>`

func fixtureServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc(loginPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if r.FormValue("studid1") != "Student Name" || r.FormValue("password1") != "hunter2" {
				w.Write([]byte(`<html><body>Invalid login</body></html>`))
				return
			}
			w.Write([]byte(`<html><body><div class="btn">To Do</div></body></html>`))
			return
		}
		w.Write([]byte(`<html><body>login form</body></html>`))
	})
	mux.HandleFunc(todoPath, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(todoPage))
	})
	mux.HandleFunc(gradesPath, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("classid") == "5667307" {
			w.Write([]byte(geometryPage))
			return
		}
		w.Write([]byte(`<html><body><table></table></body></html>`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestExtract(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/jupiter")
	defer cleanup()

	server := fixtureServer(t)
	diag := consolidation.NewDiagnostics()

	source, err := NewSource(Options{
		BaseUrl:  server.URL,
		Student:  "Student Name",
		Password: "hunter2",
		Classes:  []string{"Geometry"},
	}, diag)
	require.NoError(t, err)
	require.Equal(t, "jupiter", source.Name())

	result, err := source.Extract(context.Background())
	require.NoError(t, err)

	// the gray-dot row never shows up at all
	require.Len(t, result.Assigned, 1)
	require.Equal(t, "Problem set", result.Assigned[0].Name)
	require.Equal(t, "Geometry", result.Assigned[0].Class)
	require.Equal(t, "3/20/2099", result.Assigned[0].DueDate)
	require.Equal(t, "2099-03-20", result.Assigned[0].DueDateParsed.String())
	require.Equal(t, "Chapters 4 and 5", result.Assigned[0].Description)
	require.Equal(t, 25, result.Assigned[0].MaxPoints)
	require.Empty(t, result.Assigned[0].Url)

	// a past date and a dateless row both classify as missing
	require.Len(t, result.Missing, 2)
	require.Equal(t, "Old worksheet", result.Missing[0].Name)
	require.Equal(t, "Semester project", result.Missing[1].Name)
	require.Equal(t, consolidation.DueDateAbsent, result.Missing[1].DueDateParsed.Kind())
}

func TestExtractBadCredentials(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/jupiter")
	defer cleanup()

	server := fixtureServer(t)
	source, err := NewSource(Options{
		BaseUrl:  server.URL,
		Student:  "Student Name",
		Password: "wrong",
	}, consolidation.NewDiagnostics())
	require.NoError(t, err)

	_, err = source.Extract(context.Background())
	require.ErrorIs(t, err, ErrLoginFailed)
}

func TestParseClasses(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/jupiter")
	defer cleanup()

	classes, err := parseClasses([]byte(todoPage))
	require.NoError(t, err)
	require.Len(t, classes, 2)
	require.Equal(t, classInfo{name: "Geometry", classId: "5667307", termId: "4"}, classes[0])
	require.Equal(t, classInfo{name: "Chemistry", classId: "5667308", termId: "4"}, classes[1])
}

func TestClassifyByDueDate(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/jupiter")
	defer cleanup()

	now := time.Date(2025, time.March, 12, 10, 0, 0, 0, timezone.Location)
	records := []consolidation.Assignment{
		{Name: "future", DueDateParsed: consolidation.CanonicalDueDate(now.AddDate(0, 0, 3))},
		{Name: "past", DueDateParsed: consolidation.CanonicalDueDate(now.AddDate(0, 0, -3))},
		// a date-only deadline of today resolved to midnight, which is
		// already behind a mid-morning clock
		{Name: "today", DueDateParsed: consolidation.CanonicalDueDate(now)},
		{Name: "absent", DueDateParsed: consolidation.AbsentDueDate()},
		{Name: "fallback", DueDateParsed: consolidation.FallbackDueDate("idk")},
	}

	result := classifyByDueDate(records, now)
	require.Len(t, result.Assigned, 1)
	require.Equal(t, "future", result.Assigned[0].Name)
	require.Len(t, result.Missing, 4)
}
