package query

import (
	"github.com/hirelens/hirelens/internal/catalog"
)

// StructuredQuery is the normalized form of a raw role description. It lives
// only for the duration of one request.
type StructuredQuery struct {
	RawText       string
	RewrittenText string

	// DurationConstraints are upper bounds in minutes, in extraction order.
	DurationConstraints []int
	JobLevelConstraints []catalog.JobLevel
	LanguageConstraints []string
	TestTypeConstraints []string
}

// Degraded returns the query used when structured extraction is unavailable:
// the rewritten text equals the raw text and every constraint is empty, so
// ranking falls back to pure hybrid search with no boosts.
func Degraded(raw string) StructuredQuery {
	return StructuredQuery{RawText: raw, RewrittenText: raw}
}

// MinDuration returns the smallest duration constraint, if any.
func (q StructuredQuery) MinDuration() (int, bool) {
	if len(q.DurationConstraints) == 0 {
		return 0, false
	}
	min := q.DurationConstraints[0]
	for _, d := range q.DurationConstraints[1:] {
		if d < min {
			min = d
		}
	}
	return min, true
}

// HasJobLevel reports whether the constraint set contains the given level.
func (q StructuredQuery) HasJobLevel(level catalog.JobLevel) bool {
	for _, l := range q.JobLevelConstraints {
		if l == level {
			return true
		}
	}
	return false
}
