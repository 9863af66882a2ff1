package ranking

import (
	"strings"

	"github.com/hirelens/hirelens/internal/catalog"
	"github.com/hirelens/hirelens/internal/query"
)

// BoostWeights are the additive score adjustments applied on query/record
// signal matches. The defaults are empirically tuned against the (cos+1)/2
// vector scale; they are configuration, not invariants.
type BoostWeights struct {
	Duration              float64 `mapstructure:"duration"`
	JobLevel              float64 `mapstructure:"job-level"`
	Language              float64 `mapstructure:"language"`
	TestType              float64 `mapstructure:"test-type"`
	DeveloperCoding       float64 `mapstructure:"developer-coding"`
	CultureFitPersonality float64 `mapstructure:"culture-personality"`
	SeniorCognitive       float64 `mapstructure:"senior-cognitive"`
}

// DefaultBoostWeights returns the tuned defaults.
func DefaultBoostWeights() BoostWeights {
	return BoostWeights{
		Duration:              0.12,
		JobLevel:              0.08,
		Language:              0.05,
		TestType:              0.06,
		DeveloperCoding:       0.20,
		CultureFitPersonality: 0.20,
		SeniorCognitive:       0.15,
	}
}

// BoostRule pairs a query signal with a record signal. Rules are evaluated
// independently and their weights summed; no rule is ever negative, absence
// of a signal contributes zero.
type BoostRule struct {
	Name   string
	Weight func(w BoostWeights) float64
	Match  func(q *query.StructuredQuery, r *catalog.AssessmentRecord) bool
}

// boostRules is the full rule table. Adding a boost means appending a row.
var boostRules = []BoostRule{
	{
		Name:   "duration_fit",
		Weight: func(w BoostWeights) float64 { return w.Duration },
		Match: func(q *query.StructuredQuery, r *catalog.AssessmentRecord) bool {
			limit, ok := q.MinDuration()
			return ok && r.HasDuration() && r.DurationMax <= limit
		},
	},
	{
		Name:   "job_level_overlap",
		Weight: func(w BoostWeights) float64 { return w.JobLevel },
		Match: func(q *query.StructuredQuery, r *catalog.AssessmentRecord) bool {
			for _, level := range q.JobLevelConstraints {
				if r.HasJobLevel(level) {
					return true
				}
			}
			return false
		},
	},
	{
		Name:   "language_overlap",
		Weight: func(w BoostWeights) float64 { return w.Language },
		Match: func(q *query.StructuredQuery, r *catalog.AssessmentRecord) bool {
			if len(q.LanguageConstraints) == 0 || len(r.Languages) == 0 {
				return false
			}
			recordLangs := strings.ToLower(strings.Join(r.Languages, " "))
			for _, lang := range q.LanguageConstraints {
				if strings.Contains(recordLangs, strings.ToLower(lang)) {
					return true
				}
			}
			return false
		},
	},
	{
		Name:   "test_type_overlap",
		Weight: func(w BoostWeights) float64 { return w.TestType },
		Match: func(q *query.StructuredQuery, r *catalog.AssessmentRecord) bool {
			if len(q.TestTypeConstraints) == 0 {
				return false
			}
			codes := make(map[string]bool, len(r.TestTypeCodes))
			for _, code := range r.TestTypeCodes {
				codes[strings.ToUpper(strings.TrimSpace(code))] = true
			}
			for _, want := range q.TestTypeConstraints {
				if codes[strings.ToUpper(want)] {
					return true
				}
			}
			return false
		},
	},
	{
		Name:   "developer_coding",
		Weight: func(w BoostWeights) float64 { return w.DeveloperCoding },
		Match: func(q *query.StructuredQuery, r *catalog.AssessmentRecord) bool {
			return r.Category == catalog.CategoryPracticalCoding && hasDeveloperIntent(q)
		},
	},
	{
		Name:   "culture_personality",
		Weight: func(w BoostWeights) float64 { return w.CultureFitPersonality },
		Match: func(q *query.StructuredQuery, r *catalog.AssessmentRecord) bool {
			return r.Category == catalog.CategoryPersonality && hasCultureFitIntent(q)
		},
	},
	{
		Name:   "senior_cognitive",
		Weight: func(w BoostWeights) float64 { return w.SeniorCognitive },
		Match: func(q *query.StructuredQuery, r *catalog.AssessmentRecord) bool {
			return r.Category == catalog.CategoryCognitive && hasSeniorIntent(q)
		},
	},
}

// BoostTotal sums the weights of every matching rule for one record.
func BoostTotal(q *query.StructuredQuery, r *catalog.AssessmentRecord, w BoostWeights) float64 {
	var total float64
	for _, rule := range boostRules {
		if rule.Match(q, r) {
			total += rule.Weight(w)
		}
	}
	return total
}

// Intent detection is deliberately plain keyword matching over the rewritten
// text, not another model call.

var developerKeywords = []string{
	"developer", "engineer", "programmer", "coding", "software", "full stack", "full-stack",
}

var cultureFitKeywords = []string{
	"cultural fit", "culture fit", "personality", "values", "behavioral fit", "team fit",
}

var seniorKeywords = []string{
	"senior", "executive", "leadership", "principal", "director",
}

func hasDeveloperIntent(q *query.StructuredQuery) bool {
	return containsAny(q.RewrittenText, developerKeywords)
}

func hasCultureFitIntent(q *query.StructuredQuery) bool {
	return containsAny(q.RewrittenText, cultureFitKeywords)
}

func hasSeniorIntent(q *query.StructuredQuery) bool {
	if q.HasJobLevel(catalog.JobLevelSenior) || q.HasJobLevel(catalog.JobLevelExecutive) {
		return true
	}
	return containsAny(q.RewrittenText, seniorKeywords)
}

func containsAny(text string, keywords []string) bool {
	text = strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
