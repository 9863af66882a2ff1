package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hirelens/hirelens/internal/query"
	"github.com/hirelens/hirelens/internal/ranking"
)

// ErrEmptyQuery is returned for blank query text. It is a client-side
// validation failure; the pipeline is not executed.
var ErrEmptyQuery = errors.New("query text must not be empty")

const (
	defaultTopK          = 10
	maxTopK              = 50
	defaultCandidatePool = 40
)

// AssessmentView is the caller-facing projection of one recommended record.
type AssessmentView struct {
	URL             string   `json:"url"`
	Name            string   `json:"name"`
	Desc            string   `json:"desc"`
	DurationMin     int      `json:"duration_min,omitempty"`
	DurationMax     int      `json:"duration_max,omitempty"`
	JobLevels       string   `json:"job_levels,omitempty"`
	Languages       []string `json:"languages,omitempty"`
	TestTypes       []string `json:"test_types,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	AdaptiveSupport string   `json:"adaptive_support,omitempty"`
	RemoteSupport   string   `json:"remote_support,omitempty"`
	RelevanceScore  float64  `json:"relevance_score"`
	RelevanceReason string   `json:"relevance_reason,omitempty"`
}

// Result is the response of one Recommend call.
type Result struct {
	Query          string           `json:"query"`
	RewrittenQuery string           `json:"rewritten_query"`
	Assessments    []AssessmentView `json:"assessments"`
	TotalResults   int              `json:"total_results"`
}

// Understander maps raw query text to a structured query.
type Understander interface {
	Understand(ctx context.Context, raw string) query.StructuredQuery
}

// Ranker produces the hybrid candidate set.
type Ranker interface {
	Rank(ctx context.Context, q query.StructuredQuery, topN int) ([]*ranking.ScoredCandidate, error)
}

// Reranker reorders the candidate set by multi-criteria relevance.
type Reranker interface {
	Rerank(ctx context.Context, q query.StructuredQuery, candidates []*ranking.ScoredCandidate, topK int) []*ranking.ScoredCandidate
}

// Service wires the full pipeline: understand, rank, rerank, project.
type Service struct {
	understander  Understander
	ranker        Ranker
	reranker      Reranker
	candidatePool int
	logger        *zap.Logger
}

// NewService creates the recommendation service. candidatePool is the size of
// the hybrid candidate set fed into reranking (default 40).
func NewService(u Understander, r Ranker, rr Reranker, candidatePool int, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if candidatePool <= 0 {
		candidatePool = defaultCandidatePool
	}
	return &Service{
		understander:  u,
		ranker:        r,
		reranker:      rr,
		candidatePool: candidatePool,
		logger:        log,
	}
}

// Recommend runs the pipeline for one query and returns the top topK
// assessments. Upstream AI degradation never fails the request; only a blank
// query or a catalog-level configuration problem does.
func (s *Service) Recommend(ctx context.Context, rawQuery string, topK int) (*Result, error) {
	rawQuery = strings.TrimSpace(rawQuery)
	if rawQuery == "" {
		return nil, ErrEmptyQuery
	}

	if topK <= 0 {
		topK = defaultTopK
	}
	if topK > maxTopK {
		topK = maxTopK
	}

	start := time.Now()

	q := s.understander.Understand(ctx, rawQuery)
	s.logger.Debug("query understood",
		zap.String("rewritten_preview", q.RewrittenText),
		zap.Ints("durations", q.DurationConstraints),
		zap.Int("job_levels", len(q.JobLevelConstraints)),
		zap.Int("languages", len(q.LanguageConstraints)),
		zap.Int("test_types", len(q.TestTypeConstraints)),
	)

	candidates, err := s.ranker.Rank(ctx, q, s.candidatePool)
	if err != nil {
		return nil, fmt.Errorf("hybrid ranking: %w", err)
	}

	final := s.reranker.Rerank(ctx, q, candidates, topK)

	views := make([]AssessmentView, 0, len(final))
	for _, c := range final {
		views = append(views, viewOf(c))
	}

	s.logger.Info("recommendation complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(views)),
		zap.Duration("took", time.Since(start)),
	)

	return &Result{
		Query:          rawQuery,
		RewrittenQuery: q.RewrittenText,
		Assessments:    views,
		TotalResults:   len(views),
	}, nil
}

func viewOf(c *ranking.ScoredCandidate) AssessmentView {
	r := c.Record

	url := r.URL
	if url == "" {
		url = r.ID
	}

	return AssessmentView{
		URL:             url,
		Name:            r.Name,
		Desc:            r.ShortDescription(200),
		DurationMin:     r.DurationMin,
		DurationMax:     r.DurationMax,
		JobLevels:       r.JobLevelsDisplay(),
		Languages:       r.Languages,
		TestTypes:       r.TestTypeLabels(),
		Tags:            r.Tags,
		AdaptiveSupport: r.AdaptiveSupport,
		RemoteSupport:   r.RemoteSupport,
		RelevanceScore:  c.RelevanceScore,
		RelevanceReason: c.RelevanceReason,
	}
}
