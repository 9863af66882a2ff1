package rerank

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	_ "embed"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/hirelens/hirelens/internal/logger"
	"github.com/hirelens/hirelens/internal/query"
	"github.com/hirelens/hirelens/internal/ranking"
)

//go:embed prompt.md
var promptTemplate string

const (
	defaultTimeout   = 30 * time.Second
	defaultTopK      = 10
	summaryDescLimit = 200
)

type jsonGenerator interface {
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
}

// candidateSummary is the subset of record fields sent to the reranking
// service.
type candidateSummary struct {
	URL         string   `json:"url"`
	Name        string   `json:"name"`
	Desc        string   `json:"desc"`
	DurationMin int      `json:"duration_min,omitempty"`
	DurationMax int      `json:"duration_max,omitempty"`
	JobLevels   string   `json:"job_levels,omitempty"`
	Languages   []string `json:"languages,omitempty"`
	TestTypes   []string `json:"test_types,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Category    string   `json:"category"`
}

var rerankSchema = &genai.Schema{
	Type:     genai.TypeObject,
	Required: []string{"results"},
	Properties: map[string]*genai.Schema{
		"results": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type:     genai.TypeObject,
				Required: []string{"url", "score", "reason"},
				Properties: map[string]*genai.Schema{
					"url":    {Type: genai.TypeString},
					"score":  {Type: genai.TypeNumber},
					"reason": {Type: genai.TypeString},
				},
			},
		},
	},
}

type rerankResponse struct {
	Results []rerankItem `json:"results"`
}

type rerankItem struct {
	URL    string  `json:"url"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// Reranker reorders hybrid candidates through an external reasoning call.
// Reranking is best-effort: any failure falls back to the hybrid order and
// never surfaces as a request error.
type Reranker struct {
	generator jsonGenerator
	timeout   time.Duration
	logger    *zap.Logger
	maxLogLen int
}

// NewReranker creates a Reranker. A nil generator is allowed and means every
// request takes the fallback path.
func NewReranker(generator jsonGenerator, log *zap.Logger, timeout time.Duration, maxLogLength int) *Reranker {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxLogLength <= 0 {
		maxLogLength = 200
	}
	return &Reranker{
		generator: generator,
		timeout:   timeout,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// Rerank sends the candidate set to the reasoning service and returns the top
// topK candidates ordered by the returned relevance scores. Returned entries
// referencing unknown candidates are dropped; candidates the service skipped
// keep their hybrid score with no reason text and fill the remaining slots in
// hybrid order.
func (rr *Reranker) Rerank(ctx context.Context, q query.StructuredQuery, candidates []*ranking.ScoredCandidate, topK int) []*ranking.ScoredCandidate {
	if topK <= 0 {
		topK = defaultTopK
	}

	if rr.generator == nil || len(candidates) == 0 {
		return fallback(candidates, topK)
	}

	prompt, err := rr.buildPrompt(q, candidates)
	if err != nil {
		rr.logger.Warn("building rerank prompt failed, keeping hybrid order", zap.Error(err))
		return fallback(candidates, topK)
	}

	callCtx, cancel := context.WithTimeout(ctx, rr.timeout)
	defer cancel()

	rr.logger.Debug("rerank request",
		zap.Int("candidates", len(candidates)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, rr.maxLogLen)),
	)

	rawJSON, err := rr.generator.GenerateJSON(callCtx, prompt, rerankSchema)
	if err != nil {
		rr.logger.Warn("rerank call failed, keeping hybrid order", zap.Error(err))
		return fallback(candidates, topK)
	}

	rr.logger.Debug("rerank response",
		zap.String("response_preview", logger.TruncateForLog(rawJSON, rr.maxLogLen)),
	)

	var parsed rerankResponse
	if err := json.Unmarshal([]byte(rawJSON), &parsed); err != nil {
		rr.logger.Warn("rerank response is not valid json, keeping hybrid order", zap.Error(err))
		return fallback(candidates, topK)
	}

	return rr.merge(candidates, parsed.Results, topK)
}

// merge applies the service's scores over the candidate set. Ordering of the
// scored items is determined solely by the returned scores; the hybrid order
// is used only for skipped candidates.
func (rr *Reranker) merge(candidates []*ranking.ScoredCandidate, results []rerankItem, topK int) []*ranking.ScoredCandidate {
	byKey := make(map[string]*ranking.ScoredCandidate, len(candidates))
	for _, c := range candidates {
		byKey[candidateKey(c)] = c
	}

	type scoredEntry struct {
		candidate *ranking.ScoredCandidate
		// The raw returned score. Ordering uses it unclamped so that
		// out-of-range scores still rank against each other instead of
		// collapsing into a tie at the clamp boundary.
		score float64
	}

	entries := make([]scoredEntry, 0, len(results))
	taken := make(map[string]bool, len(results))

	for _, item := range results {
		key := strings.TrimSpace(item.URL)
		candidate, known := byKey[key]
		if !known {
			rr.logger.Debug("rerank returned unknown candidate id, dropping", zap.String("id", key))
			continue
		}
		if taken[key] {
			continue
		}
		taken[key] = true

		candidate.RelevanceScore = clamp01(item.Score)
		candidate.RelevanceReason = strings.TrimSpace(item.Reason)

		// Insertion sort by raw score keeps the response order of
		// equally-scored items stable.
		entry := scoredEntry{candidate: candidate, score: item.Score}
		pos := len(entries)
		for pos > 0 && entries[pos-1].score < entry.score {
			pos--
		}
		entries = append(entries, scoredEntry{})
		copy(entries[pos+1:], entries[pos:])
		entries[pos] = entry
	}

	scored := make([]*ranking.ScoredCandidate, 0, len(entries))
	for _, entry := range entries {
		scored = append(scored, entry.candidate)
	}

	// Skipped candidates keep their hybrid score and order.
	for _, c := range candidates {
		if len(scored) >= topK {
			break
		}
		if taken[candidateKey(c)] {
			continue
		}
		c.RelevanceScore = clamp01(c.FinalScore)
		scored = append(scored, c)
	}

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

func (rr *Reranker) buildPrompt(q query.StructuredQuery, candidates []*ranking.ScoredCandidate) (string, error) {
	summaries := make([]candidateSummary, 0, len(candidates))
	for _, c := range candidates {
		r := c.Record
		summaries = append(summaries, candidateSummary{
			URL:         candidateKey(c),
			Name:        r.Name,
			Desc:        r.ShortDescription(summaryDescLimit),
			DurationMin: r.DurationMin,
			DurationMax: r.DurationMax,
			JobLevels:   r.JobLevelsDisplay(),
			Languages:   r.Languages,
			TestTypes:   r.TestTypeLabels(),
			Tags:        r.Tags,
			Category:    r.Category.Label(),
		})
	}

	candidatesJSON, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return "", err
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{QUERY}}", q.RawText)
	prompt = strings.ReplaceAll(prompt, "{{REWRITTEN}}", q.RewrittenText)
	prompt = strings.ReplaceAll(prompt, "{{CANDIDATES_JSON}}", string(candidatesJSON))
	return prompt, nil
}

// fallback returns the first topK candidates unchanged, with no relevance
// reasons. The view-facing relevance score defaults to the clamped hybrid
// score.
func fallback(candidates []*ranking.ScoredCandidate, topK int) []*ranking.ScoredCandidate {
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	for _, c := range candidates {
		c.RelevanceScore = clamp01(c.FinalScore)
		c.RelevanceReason = ""
	}
	return candidates
}

// candidateKey is the identifier candidates are referenced by in the rerank
// exchange: the record URL, falling back to the id.
func candidateKey(c *ranking.ScoredCandidate) string {
	if c.Record.URL != "" {
		return c.Record.URL
	}
	return c.Record.ID
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
