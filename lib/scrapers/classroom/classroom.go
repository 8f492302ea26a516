package classroom

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"hwboard-backend/lib/jsonstore"
	"hwboard-backend/lib/restyutil"
	"hwboard-backend/lib/telemetry"
	"hwboard-backend/services/consolidation"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("hwboard.scrapers.classroom")

const (
	assignedPath = "/u/0/a/not-turned-in/all"
	missingPath  = "/u/0/a/missing/all"
	donePath     = "/u/0/a/turned-in/all"
)

var ErrLoginRequired = fmt.Errorf("saved cookies are missing or expired, log in again")

// savedCookie is one entry of the cookie file exported by the login
// helper.
type savedCookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
	Path   string `json:"path"`
}

type Options struct {
	// BaseUrl defaults to the public classroom host.
	BaseUrl string
	// Account names the upstream account the cookie file belongs to.
	Account string
	// CookiesFile holds the session cookies captured at login time.
	CookiesFile string
	// HttpDebugDir, when set, dumps every request/response pair to disk.
	HttpDebugDir string
}

type Source struct {
	options Options
	baseUrl *url.URL
	http    *resty.Client
	diag    *consolidation.Diagnostics
}

func NewSource(opts Options, diag *consolidation.Diagnostics) (*Source, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = "https://classroom.google.com"
	}
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	client.SetTimeout(time.Second * 30)

	var output restyutil.InstrumentOutput
	if opts.HttpDebugDir != "" {
		output = restyutil.NewFilesystemOutput(opts.HttpDebugDir)
	}
	restyutil.InstrumentClient(client, tracer, output)

	cookies, ok := jsonstore.Load[[]savedCookie](opts.CookiesFile)
	if !ok || len(cookies) == 0 {
		return nil, ErrLoginRequired
	}
	for _, c := range cookies {
		client.SetCookie(&http.Cookie{
			Name:   c.Name,
			Value:  c.Value,
			Domain: c.Domain,
			Path:   c.Path,
		})
	}

	return &Source{
		options: opts,
		baseUrl: baseUrl,
		http:    client,
		diag:    diag,
	}, nil
}

func (s *Source) Name() string {
	if s.options.Account != "" {
		return s.options.Account
	}
	return "classroom"
}

// Extract pulls the assigned and missing listings, plus the done
// listing filtered down to items that are really still missing. Done
// items already present in the missing tab are dropped.
func (s *Source) Extract(ctx context.Context) (consolidation.SourceResult, error) {
	ctx, span := tracer.Start(ctx, "Extract")
	defer span.End()

	err := s.checkSession(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "session check failed")
		return consolidation.SourceResult{}, err
	}

	assigned, err := s.extractListing(ctx, assignedPath, consolidation.BiasFuture, false)
	if err != nil {
		return consolidation.SourceResult{}, err
	}
	missing, err := s.extractListing(ctx, missingPath, consolidation.BiasPast, false)
	if err != nil {
		return consolidation.SourceResult{}, err
	}
	doneMissing, err := s.extractListing(ctx, donePath, consolidation.BiasPast, true)
	if err != nil {
		return consolidation.SourceResult{}, err
	}

	extra := consolidation.Dedupe(missing, doneMissing)
	if len(extra) > 0 {
		s.diag.Infof("%s: %d additional missing assignments found in the done tab", s.Name(), len(extra))
		missing = append(missing, extra...)
	}

	return consolidation.SourceResult{
		Assigned: assigned,
		Missing:  missing,
	}, nil
}

// checkSession loads the landing page and fails fast when the saved
// cookies redirect into the sign-in flow.
func (s *Source) checkSession(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "checkSession")
	defer span.End()

	res, err := s.http.R().
		SetContext(ctx).
		Get("/")
	if err != nil {
		return err
	}

	final := res.RawResponse.Request.URL.String()
	if strings.Contains(final, "signin") || strings.Contains(final, "accounts.google.com") {
		return ErrLoginRequired
	}
	return nil
}

func (s *Source) extractListing(ctx context.Context, path string, bias consolidation.Bias, doneOnlyMissing bool) ([]consolidation.Assignment, error) {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("extractListing %s", path))
	defer span.End()

	res, err := s.http.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch listing")
		return nil, err
	}

	items, err := parseListing(res.Body(), s.baseUrl, doneOnlyMissing)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse listing")
		return nil, err
	}

	var out []consolidation.Assignment
	for _, item := range items {
		details := s.fetchDetails(ctx, item.url)
		out = append(out, consolidation.NewAssignment(
			item.name,
			item.class,
			details.dueText,
			consolidation.NormalizeDueDate(s.diag, details.dueText, bias),
			item.url,
			details.description,
			details.maxPoints,
		))
	}
	return out, nil
}

// fetchDetails visits an assignment's details page for the due date,
// description and point value. A failed details fetch degrades to an
// empty record rather than losing the listing entry.
func (s *Source) fetchDetails(ctx context.Context, link string) assignmentDetails {
	ctx, span := tracer.Start(ctx, "fetchDetails")
	defer span.End()

	res, err := s.http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch details page")
		s.diag.Warnf("failed to fetch details page %s: %v", link, err)
		return assignmentDetails{}
	}

	details, err := parseDetails(res.Body())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse details page")
		s.diag.Warnf("failed to parse details page %s: %v", link, err)
		return assignmentDetails{}
	}
	return details
}
