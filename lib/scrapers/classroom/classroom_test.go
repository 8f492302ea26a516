package classroom

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"hwboard-backend/lib/telemetry"
	"hwboard-backend/services/consolidation"

	"github.com/stretchr/testify/require"
)

const assignedListing = `<html><body><main>
<ol>
<li><a href="/c/abc/a/100/details"><p>Essay draft</p><p>English 10</p></a></li>
<li><a href="/c/abc/a/101/details"><p>Problem set 4</p><p>Geometry</p></a></li>
<li><a href="/c/abc">Not an assignment link</a></li>
</ol>
</main></body></html>`

const missingListing = `<html><body><main>
<ol>
<li><a href="/c/def/a/200/details"><p>Lab writeup</p><p>Chemistry</p></a></li>
</ol>
</main></body></html>`

const doneListing = `<html><body><main>
<ol>
<li><a href="/c/def/a/200/details"><p>Lab writeup</p><p>Chemistry</p></a> Not turned in</li>
<li><a href="/c/def/a/201/details"><p>Vocab quiz</p><p>Spanish</p></a> 0/20</li>
<li><a href="/c/def/a/202/details"><p>Homework 7</p><p>Spanish</p></a> 20/20</li>
</ol>
</main></body></html>`

const detailsPage = `<html><body>
<div role="main">
Essay draft
Due Mar 20, 2025
<div guidedhelpid="assignmentInstructions-1"><span>Write three pages on the assigned topic.</span></div>
100 points
</div>
</body></html>`

func fixtureServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc(assignedPath, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(assignedListing))
	})
	mux.HandleFunc(missingPath, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(missingListing))
	})
	mux.HandleFunc(donePath, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(doneListing))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(detailsPage))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func writeCookieFile(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "cookies.json")
	err := os.WriteFile(path, []byte(
		`[{"name":"SID","value":"abc123","domain":"classroom.google.com","path":"/"}]`,
	), 0644)
	require.NoError(t, err)
	return path
}

func TestExtract(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/classroom")
	defer cleanup()

	server := fixtureServer(t)
	diag := consolidation.NewDiagnostics()

	source, err := NewSource(Options{
		BaseUrl:     server.URL,
		Account:     "school",
		CookiesFile: writeCookieFile(t),
	}, diag)
	require.NoError(t, err)
	require.Equal(t, "school", source.Name())

	result, err := source.Extract(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Assigned, 2)
	require.Equal(t, "Essay draft", result.Assigned[0].Name)
	require.Equal(t, "English 10", result.Assigned[0].Class)
	require.Equal(t, server.URL+"/c/abc/a/100/details", result.Assigned[0].Url)
	require.Equal(t, "Mar 20, 2025", result.Assigned[0].DueDate)
	require.Equal(t, consolidation.DueDateCanonical, result.Assigned[0].DueDateParsed.Kind())
	require.Equal(t, "2025-03-20", result.Assigned[0].DueDateParsed.String())
	require.Equal(t, "Write three pages on the assigned topic.", result.Assigned[0].Description)
	require.Equal(t, 100, result.Assigned[0].MaxPoints)

	// the done tab contributes the 0-score quiz but not the item the
	// missing tab already covers, and never the full-score one
	require.Len(t, result.Missing, 2)
	require.Equal(t, "Lab writeup", result.Missing[0].Name)
	require.Equal(t, "Vocab quiz", result.Missing[1].Name)
}

func TestNewSourceWithoutCookies(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/classroom")
	defer cleanup()

	_, err := NewSource(Options{
		CookiesFile: filepath.Join(t.TempDir(), "missing.json"),
	}, consolidation.NewDiagnostics())
	require.ErrorIs(t, err, ErrLoginRequired)
}

func TestParseListingDoneFilter(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/classroom")
	defer cleanup()

	source, _ := url.Parse("https://classroom.google.com")
	items, err := parseListing([]byte(doneListing), source, true)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "Lab writeup", items[0].name)
	require.Equal(t, "Vocab quiz", items[1].name)
}

func TestParseDetails(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/classroom")
	defer cleanup()

	details, err := parseDetails([]byte(detailsPage))
	require.NoError(t, err)
	require.Equal(t, "Mar 20, 2025", details.dueText)
	require.Equal(t, 100, details.maxPoints)
	require.Equal(t, "Write three pages on the assigned topic.", details.description)
}
