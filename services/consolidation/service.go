package consolidation

import (
	"context"
	"fmt"

	"hwboard-backend/lib/jsonstore"
	"hwboard-backend/lib/telemetry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("hwboard.services.consolidation")

type Options struct {
	// ColorsFile is the persisted course -> course-color-N map.
	ColorsFile string
}

type Service struct {
	options Options
}

func NewService(options Options) Service {
	return Service{options: options}
}

// Consolidate merges the output of every source into one payload:
// assigned and missing lists are concatenated per source (no
// cross-source dedup), sorted chronologically, the persisted course
// color map is reconciled against the full course set, and collected
// diagnostics are attached. A failing source contributes an empty
// result and an error entry; nothing here aborts the run.
func (s Service) Consolidate(ctx context.Context, diag *Diagnostics, sources []Source) Payload {
	ctx, span := tracer.Start(ctx, "Consolidate")
	defer span.End()

	payload := Payload{
		Assigned: []Assignment{},
		Missing:  []Assignment{},
	}
	coursesBySource := make(map[string][]string)

	for _, source := range sources {
		result := s.extractOne(ctx, diag, source)

		diag.Infof(
			"%s: %d assigned, %d missing",
			source.Name(), len(result.Assigned), len(result.Missing),
		)

		for i := range result.Assigned {
			if result.Assigned[i].Account == "" {
				result.Assigned[i].Account = source.Name()
			}
		}
		for i := range result.Missing {
			if result.Missing[i].Account == "" {
				result.Missing[i].Account = source.Name()
			}
		}

		payload.Assigned = append(payload.Assigned, result.Assigned...)
		payload.Missing = append(payload.Missing, result.Missing...)

		coursesBySource[source.Name()] = courseNames(result.Assigned, result.Missing)
	}

	SortByDueDate(payload.Assigned)
	SortByDueDate(payload.Missing)

	s.reconcileColors(ctx, diag, payload)
	WarnSimilarCourses(diag, coursesBySource)

	payload.Errors = diag.Errors()

	span.SetAttributes(
		attribute.Int("assigned", len(payload.Assigned)),
		attribute.Int("missing", len(payload.Missing)),
		attribute.Int("errors", len(payload.Errors)),
	)
	return payload
}

func (s Service) extractOne(ctx context.Context, diag *Diagnostics, source Source) (result SourceResult) {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("extract %s", source.Name()))
	defer span.End()

	defer func() {
		r := recover()
		if r != nil {
			err := fmt.Errorf("%v", r)
			span.RecordError(err)
			span.SetStatus(codes.Error, "extractor panicked")
			diag.Errorf("error extracting %s assignments: %v", source.Name(), r)
			result = SourceResult{}
		}
	}()

	diag.Infof("extracting %s assignments...", source.Name())

	result, err := source.Extract(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction failed")
		diag.Errorf("error extracting %s assignments: %v", source.Name(), err)
		return SourceResult{}
	}
	return result
}

func (s Service) reconcileColors(ctx context.Context, diag *Diagnostics, payload Payload) {
	_, span := tracer.Start(ctx, "reconcileColors")
	defer span.End()

	if s.options.ColorsFile == "" {
		return
	}

	// a corrupt or missing map is rebuilt from scratch, never fatal
	existing, ok := jsonstore.Load[map[string]string](s.options.ColorsFile)
	if !ok {
		diag.Warnf("could not read course color map, rebuilding from scratch")
	}

	updated := ReconcileColors(existing, courseNames(payload.Assigned, payload.Missing))

	err := jsonstore.Save(s.options.ColorsFile, updated)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save course color map")
		diag.Errorf("failed to update course color mapping: %v", err)
		return
	}
	diag.Infof("course color mapping updated: %s", s.options.ColorsFile)
}

func courseNames(lists ...[]Assignment) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, record := range list {
			if record.Class == "" {
				continue
			}
			_, ok := seen[record.Class]
			if ok {
				continue
			}
			seen[record.Class] = struct{}{}
			out = append(out, record.Class)
		}
	}
	return out
}
