package catalog

import (
	"strings"
)

// JobLevel is the catalog's seniority taxonomy.
type JobLevel string

const (
	JobLevelEntry     JobLevel = "Entry"
	JobLevelMid       JobLevel = "Mid-Professional"
	JobLevelSenior    JobLevel = "Senior"
	JobLevelExecutive JobLevel = "Executive"
)

// jobLevelSynonyms maps free-form seniority words, as they appear in queries
// and scraped catalog data, onto the fixed taxonomy.
var jobLevelSynonyms = map[string]JobLevel{
	"entry":              JobLevelEntry,
	"entry-level":        JobLevelEntry,
	"graduate":           JobLevelEntry,
	"junior":             JobLevelEntry,
	"mid":                JobLevelMid,
	"mid-level":          JobLevelMid,
	"mid-professional":   JobLevelMid,
	"experienced":        JobLevelMid,
	"professional":       JobLevelMid,
	"senior":             JobLevelSenior,
	"lead":               JobLevelSenior,
	"manager":            JobLevelSenior,
	"supervisor":         JobLevelSenior,
	"executive":          JobLevelExecutive,
	"director":           JobLevelExecutive,
	"general population": JobLevelEntry,
}

// ParseJobLevel normalizes a free-form seniority string into a JobLevel.
func ParseJobLevel(s string) (JobLevel, bool) {
	level, ok := jobLevelSynonyms[strings.ToLower(strings.TrimSpace(s))]
	return level, ok
}

// testTypeLabels is the catalog-defined short-code taxonomy.
var testTypeLabels = map[string]string{
	"A": "Ability & Aptitude",
	"B": "Biodata & Situational Judgement",
	"C": "Competencies",
	"D": "Development & 360",
	"E": "Assessment Exercises",
	"K": "Knowledge & Skills",
	"P": "Personality & Behavior",
	"S": "Simulations",
}

// TestTypeLabel returns the human-readable name for a test type code.
// Unknown codes are returned as-is so scraped data never disappears silently.
func TestTypeLabel(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if label, ok := testTypeLabels[code]; ok {
		return label
	}
	return code
}

// AssessmentRecord is one catalog entry. Records are loaded once at startup
// and never mutated afterwards; everything downstream holds references only.
type AssessmentRecord struct {
	ID            string     `json:"id"`
	URL           string     `json:"url"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	DurationMin   int        `json:"duration_min"` // 0 means unknown
	DurationMax   int        `json:"duration_max"` // 0 means unknown
	JobLevels     []JobLevel `json:"job_levels"`
	Languages     []string   `json:"languages"`
	TestTypeCodes []string   `json:"test_type_codes"`
	Tags          []string   `json:"tags"`

	AdaptiveSupport string `json:"adaptive_support"`
	RemoteSupport   string `json:"remote_support"`

	// Embedding is precomputed at catalog build time with the same model
	// used for query encoding.
	Embedding []float32 `json:"embedding"`

	// Category is derived from the classification rules at load time,
	// never read from the artifact.
	Category Category `json:"-"`
}

// HasDuration reports whether the record carries usable duration data.
func (r *AssessmentRecord) HasDuration() bool {
	return r.DurationMax > 0
}

// HasJobLevel reports whether any of the record's levels matches the given one.
func (r *AssessmentRecord) HasJobLevel(level JobLevel) bool {
	for _, l := range r.JobLevels {
		if l == level {
			return true
		}
	}
	return false
}

// JobLevelsDisplay renders the record's job levels as a single display string.
func (r *AssessmentRecord) JobLevelsDisplay() string {
	if len(r.JobLevels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(r.JobLevels))
	for _, l := range r.JobLevels {
		parts = append(parts, string(l))
	}
	return strings.Join(parts, ", ")
}

// TestTypeLabels resolves the record's short codes to display names.
func (r *AssessmentRecord) TestTypeLabels() []string {
	if len(r.TestTypeCodes) == 0 {
		return nil
	}
	labels := make([]string, 0, len(r.TestTypeCodes))
	for _, code := range r.TestTypeCodes {
		labels = append(labels, TestTypeLabel(code))
	}
	return labels
}

// SearchableText concatenates the fields the lexical index is built over:
// name, description, tags, category label and test type labels.
func (r *AssessmentRecord) SearchableText() string {
	parts := make([]string, 0, 4+len(r.Tags))
	if r.Name != "" {
		parts = append(parts, r.Name)
	}
	if r.Description != "" {
		parts = append(parts, r.Description)
	}
	parts = append(parts, r.Tags...)
	if r.Category != "" {
		parts = append(parts, r.Category.Label())
	}
	parts = append(parts, r.TestTypeLabels()...)
	return strings.Join(parts, " ")
}

// ShortDescription returns the first sentence of the description, truncated to
// limit runes. Used for candidate summaries sent to the reranker and for
// response views.
func (r *AssessmentRecord) ShortDescription(limit int) string {
	desc := strings.TrimSpace(r.Description)
	if idx := strings.Index(desc, ". "); idx > 0 {
		desc = desc[:idx+1]
	}
	runes := []rune(desc)
	if limit > 0 && len(runes) > limit {
		desc = string(runes[:limit])
	}
	return desc
}
