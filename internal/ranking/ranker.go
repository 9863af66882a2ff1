package ranking

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hirelens/hirelens/internal/ai"
	"github.com/hirelens/hirelens/internal/catalog"
	"github.com/hirelens/hirelens/internal/query"
)

// ScoredCandidate is one record with its per-request scores. The record is a
// reference into the catalog store and must never be mutated.
type ScoredCandidate struct {
	Record *catalog.AssessmentRecord

	VectorScore  float64
	LexicalScore float64
	BoostTotal   float64
	// FinalScore is alphaVector*vector + alphaLexical*lexical + boosts.
	// Deliberately not clamped to [0,1]: boosts can push past 1 and only
	// relative order matters.
	FinalScore float64

	// RelevanceScore and RelevanceReason are populated by the reranker only.
	RelevanceScore  float64
	RelevanceReason string
}

// Params are the tunable ranking constants. The alphas need not sum to 1 but
// do by convention.
type Params struct {
	AlphaVector  float64      `mapstructure:"alpha-vector"`
	AlphaLexical float64      `mapstructure:"alpha-lexical"`
	Boosts       BoostWeights `mapstructure:"boosts"`
}

// DefaultParams returns the tuned defaults.
func DefaultParams() Params {
	return Params{
		AlphaVector:  0.75,
		AlphaLexical: 0.25,
		Boosts:       DefaultBoostWeights(),
	}
}

// Ranker fuses lexical, semantic and rule-based signals into one ranking per
// query. It holds only immutable state and is safe for concurrent requests.
type Ranker struct {
	store    *catalog.Store
	lexical  *LexicalIndex
	embedder ai.Embedder
	params   Params
	logger   *zap.Logger
}

// NewRanker builds the lexical index over the store's records and returns a
// ready ranker. A nil embedder disables the semantic signal entirely.
func NewRanker(store *catalog.Store, embedder ai.Embedder, params Params, log *zap.Logger) *Ranker {
	if log == nil {
		log = zap.NewNop()
	}
	if params.AlphaVector == 0 && params.AlphaLexical == 0 {
		params = DefaultParams()
	}
	return &Ranker{
		store:    store,
		lexical:  NewLexicalIndex(store.Records()),
		embedder: embedder,
		params:   params,
		logger:   log,
	}
}

// Rank scores every catalog record against the structured query and returns
// the top topN candidates, ordered by final score descending with catalog
// order as the tie break. The result is deterministic for identical inputs.
func (rk *Ranker) Rank(ctx context.Context, q query.StructuredQuery, topN int) ([]*ScoredCandidate, error) {
	records := rk.store.Records()

	var (
		lexScores []float64
		vecScores []float64
	)

	// Lexical and semantic scoring are independent functions of the same
	// immutable inputs; run them concurrently.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		lexScores = rk.lexical.Score(q.RewrittenText)
		return nil
	})

	g.Go(func() error {
		var err error
		vecScores, err = rk.semantic(gctx, q.RewrittenText, records)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	candidates := make([]*ScoredCandidate, len(records))
	for i, r := range records {
		boost := BoostTotal(&q, r, rk.params.Boosts)
		c := &ScoredCandidate{
			Record:       r,
			VectorScore:  vecScores[i],
			LexicalScore: lexScores[i],
			BoostTotal:   boost,
		}
		c.FinalScore = rk.params.AlphaVector*c.VectorScore +
			rk.params.AlphaLexical*c.LexicalScore +
			c.BoostTotal
		candidates[i] = c
	}

	// Stable sort keeps catalog order as the tie break, which makes the
	// ranking byte-identical across repeated calls.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].FinalScore > candidates[j].FinalScore
	})

	if topN > 0 && topN < len(candidates) {
		candidates = candidates[:topN]
	}

	return candidates, nil
}

// semantic embeds the query and scores it against every record. An embedder
// call failure degrades to a zero vector signal (pure lexical ranking); a
// dimensionality mismatch is a configuration error and is returned as such.
func (rk *Ranker) semantic(ctx context.Context, text string, records []*catalog.AssessmentRecord) ([]float64, error) {
	zeros := make([]float64, len(records))
	if rk.embedder == nil {
		return zeros, nil
	}

	queryVec, err := rk.embedder.EmbedText(ctx, text)
	if err != nil {
		rk.logger.Warn("query embedding failed, ranking on lexical signal only", zap.Error(err))
		return zeros, nil
	}

	scores, err := semanticScores(queryVec, records)
	if err != nil {
		return nil, fmt.Errorf("semantic scoring: %w", err)
	}
	return scores, nil
}
