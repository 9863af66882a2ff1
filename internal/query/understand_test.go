package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/hirelens/hirelens/internal/catalog"
)

type stubGenerator struct {
	response string
	err      error
	prompt   string
}

func (s *stubGenerator) GenerateJSON(_ context.Context, prompt string, _ *genai.Schema) (string, error) {
	s.prompt = prompt
	return s.response, s.err
}

func TestUnderstandParsesStructuredResponse(t *testing.T) {
	gen := &stubGenerator{response: `{
		"rewrite": "SKILL: java \n Java developer, senior, max 30 minutes",
		"durations": [30],
		"job_levels": ["senior"],
		"languages": [" English "],
		"test_type_codes": ["k", "A"]
	}`}
	u := NewUnderstander(gen, nil, 0, 0)

	raw := "Java developer, senior level, under 30 minutes"
	q := u.Understand(context.Background(), raw)

	assert.Equal(t, raw, q.RawText)
	assert.Contains(t, q.RewrittenText, "java")
	assert.Equal(t, []int{30}, q.DurationConstraints)
	assert.Equal(t, []catalog.JobLevel{catalog.JobLevelSenior}, q.JobLevelConstraints)
	assert.Equal(t, []string{"English"}, q.LanguageConstraints)
	assert.Equal(t, []string{"K", "A"}, q.TestTypeConstraints)

	// The raw query must be substituted into the prompt template.
	assert.Contains(t, gen.prompt, raw)
	assert.NotContains(t, gen.prompt, "{{QUERY}}")
}

func TestUnderstandFallsBackOnGeneratorError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("deadline exceeded")}
	u := NewUnderstander(gen, nil, 0, 0)

	raw := "python test under 40 minutes"
	q := u.Understand(context.Background(), raw)

	// Offline parser still extracts what it can.
	require.Equal(t, []int{40}, q.DurationConstraints)
	assert.NotEmpty(t, q.RewrittenText)
}

func TestUnderstandFallsBackOnMalformedJSON(t *testing.T) {
	gen := &stubGenerator{response: "sure! here is the JSON you asked for"}
	u := NewUnderstander(gen, nil, 0, 0)

	q := u.Understand(context.Background(), "sales assessment")

	assert.Equal(t, "sales assessment", q.RawText)
	assert.NotEmpty(t, q.RewrittenText)
}

func TestUnderstandNilGeneratorUsesOfflineParser(t *testing.T) {
	u := NewUnderstander(nil, nil, 0, 0)

	q := u.Understand(context.Background(), "entry level excel test")

	assert.Equal(t, []catalog.JobLevel{catalog.JobLevelEntry}, q.JobLevelConstraints)
}

func TestBuildStructuredQueryNormalization(t *testing.T) {
	q := buildStructuredQuery("raw text", rewriteResponse{
		Rewrite:   "   ",
		Durations: []int{-5, 0, 30, 601},
		JobLevels: []string{"Senior", "lead", "nonsense"},
	})

	// Blank rewrite degrades to the raw text, out-of-range durations are
	// dropped, duplicate levels are collapsed.
	assert.Equal(t, "raw text", q.RewrittenText)
	assert.Equal(t, []int{30}, q.DurationConstraints)
	assert.Equal(t, []catalog.JobLevel{catalog.JobLevelSenior}, q.JobLevelConstraints)
}

func TestDegraded(t *testing.T) {
	q := Degraded("anything")
	assert.Equal(t, "anything", q.RawText)
	assert.Equal(t, "anything", q.RewrittenText)
	assert.Empty(t, q.DurationConstraints)
}
