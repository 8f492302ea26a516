package consolidation

import "context"

// Assignment is the canonical unit shared by every source. JSON field
// names match the payload the dashboard frontend reads.
type Assignment struct {
	Name          string  `json:"name"`
	Class         string  `json:"class"`
	DueDate       string  `json:"due_date"`
	DueDateParsed DueDate `json:"due_date_parsed"`
	Url           string  `json:"url"`
	Description   string  `json:"description"`
	MaxPoints     int     `json:"max_points"`
	// Account identifies which upstream account/source produced the
	// record. It is attached by the orchestrator, never by a source.
	Account string `json:"account,omitempty"`
}

// NewAssignment is pure construction, no validation beyond typing.
func NewAssignment(
	name string,
	class string,
	dueDate string,
	dueDateParsed DueDate,
	url string,
	description string,
	maxPoints int,
) Assignment {
	return Assignment{
		Name:          name,
		Class:         class,
		DueDate:       dueDate,
		DueDateParsed: dueDateParsed,
		Url:           url,
		Description:   description,
		MaxPoints:     maxPoints,
	}
}

type SourceResult struct {
	Assigned []Assignment
	Missing  []Assignment
}

// Source is an upstream portal extractor. A failed extraction must not
// abort the run; the orchestrator substitutes an empty result and
// records the error as a diagnostic.
type Source interface {
	Name() string
	Extract(ctx context.Context) (SourceResult, error)
}

type Payload struct {
	Assigned []Assignment `json:"assigned"`
	Missing  []Assignment `json:"missing"`
	Errors   []string     `json:"errors"`
}
