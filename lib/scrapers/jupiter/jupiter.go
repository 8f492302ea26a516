package jupiter

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"slices"
	"strings"
	"time"

	"hwboard-backend/lib/restyutil"
	"hwboard-backend/lib/telemetry"
	"hwboard-backend/lib/timezone"
	"hwboard-backend/services/consolidation"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("hwboard.scrapers.jupiter")

const (
	loginPath  = "/login/index.php"
	todoPath   = "/todo/index.php"
	gradesPath = "/grades/index.php"
)

var ErrLoginFailed = fmt.Errorf("failed to log in to jupiter")

type Options struct {
	// BaseUrl defaults to the public jupiter host.
	BaseUrl string
	// Student and Password are the parent-portal credentials.
	Student  string
	Password string
	// Classes restricts extraction to the named classes. Empty means
	// every class discovered on the To Do page.
	Classes []string
	// HttpDebugDir, when set, dumps every request/response pair to disk.
	HttpDebugDir string
}

type Source struct {
	options Options
	http    *resty.Client
	diag    *consolidation.Diagnostics
}

func NewSource(opts Options, diag *consolidation.Diagnostics) (*Source, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = "https://login.jupitered.com"
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetTimeout(time.Second * 30)

	var output restyutil.InstrumentOutput
	if opts.HttpDebugDir != "" {
		output = restyutil.NewFilesystemOutput(opts.HttpDebugDir)
	}
	restyutil.InstrumentClient(client, tracer, output)

	return &Source{
		options: opts,
		http:    client,
		diag:    diag,
	}, nil
}

func (s *Source) Name() string {
	return "jupiter"
}

// Extract logs in, walks the configured classes on the To Do page and
// classifies every row by its normalized due date: a date already past
// (or one that never resolved) counts as missing.
func (s *Source) Extract(ctx context.Context) (consolidation.SourceResult, error) {
	ctx, span := tracer.Start(ctx, "Extract")
	defer span.End()

	err := s.login(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
		return consolidation.SourceResult{}, err
	}

	classes, err := s.discoverClasses(ctx)
	if err != nil {
		return consolidation.SourceResult{}, err
	}
	if len(s.options.Classes) > 0 {
		classes = slices.DeleteFunc(classes, func(c classInfo) bool {
			return !slices.Contains(s.options.Classes, c.name)
		})
	}
	if len(classes) == 0 {
		s.diag.Warnf("jupiter: no classes matched the configuration")
	}

	var records []consolidation.Assignment
	for _, class := range classes {
		classRecords, err := s.extractClass(ctx, class)
		if err != nil {
			return consolidation.SourceResult{}, err
		}
		records = append(records, classRecords...)
	}

	return classifyByDueDate(records, timezone.Now()), nil
}

func (s *Source) login(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "login")
	defer span.End()

	// the login page sets the session cookie the form post requires
	_, err := s.http.R().
		SetContext(ctx).
		Get(loginPath)
	if err != nil {
		return err
	}

	res, err := s.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"tab":       "parent",
			"studid1":   s.options.Student,
			"password1": s.options.Password,
		}).
		Post(loginPath)
	if err != nil {
		return err
	}

	if !strings.Contains(string(res.Body()), "To Do") {
		return ErrLoginFailed
	}
	return nil
}

func (s *Source) discoverClasses(ctx context.Context) ([]classInfo, error) {
	ctx, span := tracer.Start(ctx, "discoverClasses")
	defer span.End()

	res, err := s.http.R().
		SetContext(ctx).
		Get(todoPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch todo page")
		return nil, err
	}
	return parseClasses(res.Body())
}

func (s *Source) extractClass(ctx context.Context, class classInfo) ([]consolidation.Assignment, error) {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("extractClass %s", class.name))
	defer span.End()

	res, err := s.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"classid": class.classId,
			"term":    class.termId,
		}).
		Get(gradesPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch class page")
		return nil, err
	}

	rows, err := parseTodoRows(res.Body())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse class page")
		return nil, err
	}

	var records []consolidation.Assignment
	for _, row := range rows {
		records = append(records, consolidation.NewAssignment(
			row.name,
			class.name,
			row.dueText,
			consolidation.NormalizeDueDate(s.diag, row.dueText, consolidation.BiasFuture),
			"", // jupiter has no per-item deep links
			row.description,
			row.maxPoints,
		))
	}
	return records, nil
}

// classifyByDueDate splits rows the way the dashboard expects: a
// resolved date earlier than "now" is missing work, and so is any row
// whose date never resolved.
func classifyByDueDate(records []consolidation.Assignment, now time.Time) consolidation.SourceResult {
	result := consolidation.SourceResult{}
	for _, record := range records {
		date, ok := record.DueDateParsed.Date()
		if ok && !date.Before(now) {
			result.Assigned = append(result.Assigned, record)
			continue
		}
		result.Missing = append(result.Missing, record)
	}
	return result
}
