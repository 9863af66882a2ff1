package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hirelens/hirelens/internal/catalog"
)

// Keyword tables for the offline parser. These cover the catalog's dominant
// vocabulary; anything they miss still reaches the ranker through the raw
// query text.
var (
	minutesPattern = regexp.MustCompile(`(\d{1,3})\s*(?:minutes|mins|min)\b`)
	hoursPattern   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:hours|hour|hrs|hr)\b`)

	skillKeywords = []string{
		"java", "python", "sql", "javascript", "excel", "marketing",
		"sales", "seo", "selenium", "tableau", "accounting", "devops",
	}

	// Ordered so the rewritten text is identical across runs.
	softSkillKeywords = []struct {
		stem string
		name string
	}{
		{"communicat", "communication"},
		{"collaborat", "collaboration"},
		{"team", "teamwork"},
		{"stakeholder", "stakeholder management"},
		{"leadership", "leadership"},
	}

	seniorityKeywords = []struct {
		words []string
		level catalog.JobLevel
	}{
		{[]string{"entry", "junior", "graduate", "intern"}, catalog.JobLevelEntry},
		{[]string{"executive", "director", "coo", "ceo", "cto", "vp "}, catalog.JobLevelExecutive},
		{[]string{"senior", "lead", "manager", "principal"}, catalog.JobLevelSenior},
		{[]string{"mid-level", "mid level", "experienced", " mid "}, catalog.JobLevelMid},
	}
)

// fallbackParse extracts constraints from the raw query with regexes and
// keyword tables. It never fails; a query it cannot interpret degrades to the
// raw text with no constraints.
func fallbackParse(raw string) StructuredQuery {
	q := strings.ToLower(raw)

	result := StructuredQuery{RawText: raw}

	if d, ok := parseDuration(q); ok {
		result.DurationConstraints = append(result.DurationConstraints, d)
	}

	for _, bucket := range seniorityKeywords {
		for _, word := range bucket.words {
			if strings.Contains(q, word) {
				result.JobLevelConstraints = append(result.JobLevelConstraints, bucket.level)
				break
			}
		}
		if len(result.JobLevelConstraints) > 0 {
			break
		}
	}

	var skills []string
	for _, kw := range skillKeywords {
		if strings.Contains(q, kw) {
			skills = append(skills, kw)
		}
	}

	var softs []string
	for _, kw := range softSkillKeywords {
		if strings.Contains(q, kw.stem) {
			softs = append(softs, kw.name)
		}
	}

	summary := strings.TrimSpace(raw)
	if runes := []rune(summary); len(runes) > 200 {
		summary = string(runes[:200])
	}

	var parts []string
	if len(skills) > 0 {
		parts = append(parts, "SKILL: "+strings.Join(skills, ", "))
	}
	if len(softs) > 0 {
		parts = append(parts, "SOFT: "+strings.Join(softs, ", "))
	}
	if len(result.JobLevelConstraints) > 0 {
		parts = append(parts, "JOBLEVEL: "+string(result.JobLevelConstraints[0]))
	}
	if d, ok := result.MinDuration(); ok {
		parts = append(parts, fmt.Sprintf("DURATION: %dMIN", d))
	}
	parts = append(parts, summary)

	result.RewrittenText = strings.Join(parts, " \n ")
	if strings.TrimSpace(result.RewrittenText) == "" {
		return Degraded(raw)
	}

	return result
}

// parseDuration extracts an explicit duration in minutes from the query text,
// accepting minute and hour phrasings ("40 minutes", "1.5 hours").
func parseDuration(q string) (int, bool) {
	if m := minutesPattern.FindStringSubmatch(q); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil && v > 0 {
			return v, true
		}
	}
	if m := hoursPattern.FindStringSubmatch(q); m != nil {
		if hours, err := strconv.ParseFloat(m[1], 64); err == nil && hours > 0 {
			return int(hours*60 + 0.5), true
		}
	}
	return 0, false
}
