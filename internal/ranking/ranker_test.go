package ranking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirelens/hirelens/internal/catalog"
	"github.com/hirelens/hirelens/internal/query"
)

// fakeEmbedder returns a fixed query vector, or fails every call.
type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) EmbedText(context.Context, string) ([]float32, error) {
	return f.vector, f.err
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, f.err
}

// unitVec returns a deterministic 4-dim unit vector for index i.
func unitVec(i int) []float32 {
	angle := float64(i) * 0.1
	return []float32{
		float32(math.Cos(angle)),
		float32(math.Sin(angle)),
		0, 0,
	}
}

func syntheticStore(t *testing.T, n int) *catalog.Store {
	t.Helper()

	names := []string{"Java", "Python", "SQL", "Sales", "Personality", "Verify", "Excel"}
	records := make([]*catalog.AssessmentRecord, n)
	for i := range records {
		name := names[i%len(names)]
		records[i] = &catalog.AssessmentRecord{
			ID:          fmt.Sprintf("rec-%03d", i),
			URL:         fmt.Sprintf("https://example.com/rec-%03d", i),
			Name:        fmt.Sprintf("%s Assessment %d", name, i),
			Description: fmt.Sprintf("%s skills evaluation", name),
			DurationMin: 10 + i%50,
			DurationMax: 20 + i%50,
			Embedding:   unitVec(i),
		}
	}

	store, err := catalog.New(records)
	require.NoError(t, err)
	return store
}

func TestRankReturnsTopNWithoutDuplicates(t *testing.T) {
	store := syntheticStore(t, 377)
	rk := NewRanker(store, &fakeEmbedder{vector: unitVec(3)}, DefaultParams(), nil)

	got, err := rk.Rank(context.Background(), query.Degraded("java skills evaluation"), 40)
	require.NoError(t, err)
	require.Len(t, got, 40)

	seen := make(map[string]bool, len(got))
	for _, c := range got {
		assert.False(t, seen[c.Record.ID], "duplicate id %s", c.Record.ID)
		seen[c.Record.ID] = true
	}

	// Descending final score.
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].FinalScore, got[i].FinalScore)
	}
}

func TestRankIsDeterministic(t *testing.T) {
	store := syntheticStore(t, 120)
	rk := NewRanker(store, &fakeEmbedder{vector: unitVec(7)}, DefaultParams(), nil)
	q := query.Degraded("python skills evaluation")

	first, err := rk.Rank(context.Background(), q, 40)
	require.NoError(t, err)
	second, err := rk.Rank(context.Background(), q, 40)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Record.ID, second[i].Record.ID, "position %d", i)
		assert.Equal(t, first[i].FinalScore, second[i].FinalScore, "position %d", i)
	}
}

func TestRankBoostSignalImprovesPosition(t *testing.T) {
	// Two records identical in every retrieval signal; only one carries
	// the seniority metadata the query asks for.
	records := []*catalog.AssessmentRecord{
		{
			ID: "plain", URL: "https://example.com/plain",
			Name: "Java Assessment", Description: "Java skills evaluation",
			Embedding: unitVec(0),
		},
		{
			ID: "senior", URL: "https://example.com/senior",
			Name: "Java Assessment", Description: "Java skills evaluation",
			JobLevels: []catalog.JobLevel{catalog.JobLevelSenior},
			Embedding: unitVec(0),
		},
	}
	store, err := catalog.New(records)
	require.NoError(t, err)

	rk := NewRanker(store, &fakeEmbedder{vector: unitVec(0)}, DefaultParams(), nil)
	q := query.StructuredQuery{
		RawText:             "java assessment",
		RewrittenText:       "java assessment",
		JobLevelConstraints: []catalog.JobLevel{catalog.JobLevelSenior},
	}

	got, err := rk.Rank(context.Background(), q, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "senior", got[0].Record.ID)
	assert.Greater(t, got[0].BoostTotal, got[1].BoostTotal)
}

func candidateByID(t *testing.T, candidates []*ScoredCandidate, id string) *ScoredCandidate {
	t.Helper()
	for _, c := range candidates {
		if c.Record.ID == id {
			return c
		}
	}
	t.Fatalf("candidate %s not in result set", id)
	return nil
}

func TestRankFinalScoreMonotonicInLexicalSignal(t *testing.T) {
	// Identical embeddings and metadata; only the lexical overlap with the
	// query differs.
	records := []*catalog.AssessmentRecord{
		{
			ID: "weak", URL: "https://example.com/weak",
			Name: "Skills Assessment", Description: "general evaluation",
			Embedding: unitVec(0),
		},
		{
			ID: "strong", URL: "https://example.com/strong",
			Name: "Java Assessment", Description: "java skills evaluation",
			Embedding: unitVec(0),
		},
	}
	store, err := catalog.New(records)
	require.NoError(t, err)

	rk := NewRanker(store, &fakeEmbedder{vector: unitVec(0)}, DefaultParams(), nil)
	got, err := rk.Rank(context.Background(), query.Degraded("java skills evaluation"), 0)
	require.NoError(t, err)

	weak := candidateByID(t, got, "weak")
	strong := candidateByID(t, got, "strong")

	assert.Greater(t, strong.LexicalScore, weak.LexicalScore)
	assert.Equal(t, weak.VectorScore, strong.VectorScore)
	assert.Equal(t, weak.BoostTotal, strong.BoostTotal)
	assert.Greater(t, strong.FinalScore, weak.FinalScore)
}

func TestRankFinalScoreMonotonicInVectorSignal(t *testing.T) {
	// Identical text and metadata; only the embedding proximity to the
	// query differs.
	records := []*catalog.AssessmentRecord{
		{
			ID: "far", URL: "https://example.com/far",
			Name: "Java Assessment", Description: "java skills evaluation",
			Embedding: unitVec(10),
		},
		{
			ID: "near", URL: "https://example.com/near",
			Name: "Java Assessment", Description: "java skills evaluation",
			Embedding: unitVec(0),
		},
	}
	store, err := catalog.New(records)
	require.NoError(t, err)

	rk := NewRanker(store, &fakeEmbedder{vector: unitVec(0)}, DefaultParams(), nil)
	got, err := rk.Rank(context.Background(), query.Degraded("java skills evaluation"), 0)
	require.NoError(t, err)

	far := candidateByID(t, got, "far")
	near := candidateByID(t, got, "near")

	assert.Greater(t, near.VectorScore, far.VectorScore)
	assert.Equal(t, far.LexicalScore, near.LexicalScore)
	assert.Equal(t, far.BoostTotal, near.BoostTotal)
	assert.Greater(t, near.FinalScore, far.FinalScore)
}

func TestRankTiesKeepCatalogOrder(t *testing.T) {
	store := syntheticStore(t, 10)
	// No embedder and an unmatchable query text: every score ties at zero.
	rk := NewRanker(store, nil, DefaultParams(), nil)

	got, err := rk.Rank(context.Background(), query.Degraded("zzzz"), 0)
	require.NoError(t, err)
	for i, c := range got {
		assert.Equal(t, fmt.Sprintf("rec-%03d", i), c.Record.ID)
	}
}

func TestRankDegradesWhenEmbedderFails(t *testing.T) {
	store := syntheticStore(t, 30)
	rk := NewRanker(store, &fakeEmbedder{err: errors.New("quota exhausted")}, DefaultParams(), nil)

	got, err := rk.Rank(context.Background(), query.Degraded("java skills evaluation"), 10)
	require.NoError(t, err)
	require.Len(t, got, 10)
	for _, c := range got {
		assert.Equal(t, 0.0, c.VectorScore)
	}
	// Lexical signal alone still separates relevant records.
	assert.Greater(t, got[0].LexicalScore, 0.0)
}

func TestRankRejectsDimensionalityMismatch(t *testing.T) {
	store := syntheticStore(t, 5)
	rk := NewRanker(store, &fakeEmbedder{vector: []float32{1, 0}}, DefaultParams(), nil)

	_, err := rk.Rank(context.Background(), query.Degraded("java"), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding model mismatch")
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 0}))
}
