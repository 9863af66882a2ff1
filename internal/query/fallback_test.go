package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirelens/hirelens/internal/catalog"
)

func TestFallbackParseExtractsConstraints(t *testing.T) {
	q := fallbackParse("Java developer, senior level, assessment under 30 minutes")

	require.Equal(t, []int{30}, q.DurationConstraints)
	require.Equal(t, []catalog.JobLevel{catalog.JobLevelSenior}, q.JobLevelConstraints)
	assert.Contains(t, strings.ToLower(q.RewrittenText), "java")
	assert.Contains(t, q.RewrittenText, "JOBLEVEL: Senior")
	assert.Contains(t, q.RewrittenText, "DURATION: 30MIN")
}

func TestFallbackParseHours(t *testing.T) {
	q := fallbackParse("personality test taking 1.5 hours")

	d, ok := q.MinDuration()
	require.True(t, ok)
	assert.Equal(t, 90, d)
}

func TestFallbackParseSoftSkills(t *testing.T) {
	q := fallbackParse("looking for collaboration and communication checks")

	// Table order, not discovery order in the query text.
	assert.Contains(t, q.RewrittenText, "SOFT: communication, collaboration")
}

func TestFallbackParseIsDeterministic(t *testing.T) {
	raw := "team player with communication, collaboration and stakeholder skills"
	first := fallbackParse(raw)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, fallbackParse(raw))
	}
}

func TestFallbackParseBlankQueryDegrades(t *testing.T) {
	q := fallbackParse("   ")
	assert.Equal(t, Degraded("   "), q)
}

func TestFallbackParseNeverEmpty(t *testing.T) {
	for _, raw := range []string{"zzz qqq", "hire people who are good"} {
		q := fallbackParse(raw)
		assert.NotEmpty(t, q.RewrittenText, raw)
		assert.Equal(t, raw, q.RawText)
	}
}

func TestFallbackParseSeniorityPrecedence(t *testing.T) {
	// "director" outranks "manager" even when both appear.
	q := fallbackParse("director and manager candidates")
	require.Equal(t, []catalog.JobLevel{catalog.JobLevelExecutive}, q.JobLevelConstraints)
}

func TestParseDurationRejectsZero(t *testing.T) {
	_, ok := parseDuration("0 minutes of anything")
	assert.False(t, ok)
}
