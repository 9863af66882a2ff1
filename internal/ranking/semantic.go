package ranking

import (
	"fmt"
	"math"

	"github.com/hirelens/hirelens/internal/catalog"
)

// CosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 when either vector has zero magnitude.
func CosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// semanticScores computes the normalized vector similarity between the query
// embedding and every record embedding, in catalog order. Raw cosine lives in
// [-1,1]; it is mapped affinely to [0,1] via (cos+1)/2 so that boost
// magnitudes stay calibrated against a single scale.
func semanticScores(queryVec []float32, records []*catalog.AssessmentRecord) ([]float64, error) {
	if len(records) == 0 {
		return nil, nil
	}
	if len(queryVec) != len(records[0].Embedding) {
		return nil, fmt.Errorf("query embedding dimensionality %d does not match catalog dimensionality %d: embedding model mismatch",
			len(queryVec), len(records[0].Embedding))
	}

	scores := make([]float64, len(records))
	for i, r := range records {
		cos := CosineSimilarity(queryVec, r.Embedding)
		scores[i] = clamp01((cos + 1) / 2)
	}
	return scores, nil
}
