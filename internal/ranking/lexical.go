package ranking

import (
	"math"
	"strings"

	"github.com/hirelens/hirelens/internal/catalog"
)

// stopWords are dropped from both documents and queries before weighting.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "or": true, "we": true, "our": true, "your": true,
	"their": true, "can": true, "will": true, "has": true, "who": true,
}

// tokenize lowercases, trims punctuation and removes stop words.
func tokenize(text string) []string {
	words := strings.Fields(text)
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}/"))
		if cleaned != "" && !stopWords[cleaned] {
			tokens = append(tokens, cleaned)
		}
	}
	return tokens
}

// LexicalIndex holds TF-IDF weight vectors for every record's searchable
// text. It is built once at catalog load and is read-only afterwards.
type LexicalIndex struct {
	idf  map[string]float64
	docs []map[string]float64 // unit-norm tf-idf vectors, catalog order
}

// NewLexicalIndex builds the term statistics over the full corpus.
func NewLexicalIndex(records []*catalog.AssessmentRecord) *LexicalIndex {
	termCounts := make([]map[string]int, len(records))
	df := make(map[string]int)

	for i, r := range records {
		counts := make(map[string]int)
		for _, tok := range tokenize(r.SearchableText()) {
			counts[tok]++
		}
		termCounts[i] = counts
		for term := range counts {
			df[term]++
		}
	}

	n := float64(len(records))
	idf := make(map[string]float64, len(df))
	for term, count := range df {
		// Smoothed idf; keeps weights positive so cosine stays in [0,1].
		idf[term] = math.Log((n+1)/(float64(count)+1)) + 1
	}

	docs := make([]map[string]float64, len(records))
	for i, counts := range termCounts {
		docs[i] = weightVector(counts, idf)
	}

	return &LexicalIndex{idf: idf, docs: docs}
}

// Score computes the cosine similarity between the query and every record's
// term vector, in catalog order. A record sharing no terms with the query
// scores exactly 0.
func (ix *LexicalIndex) Score(queryText string) []float64 {
	counts := make(map[string]int)
	for _, tok := range tokenize(queryText) {
		// Terms outside the corpus vocabulary carry no idf and cannot
		// match any document; skip them up front.
		if _, known := ix.idf[tok]; known {
			counts[tok]++
		}
	}
	queryVec := weightVector(counts, ix.idf)

	scores := make([]float64, len(ix.docs))
	if len(queryVec) == 0 {
		return scores
	}

	for i, doc := range ix.docs {
		var dot float64
		for term, qw := range queryVec {
			if dw, ok := doc[term]; ok {
				dot += qw * dw
			}
		}
		// Both vectors are unit norm, so the dot product is the cosine.
		// Clamp against floating-point overshoot only.
		scores[i] = clamp01(dot)
	}

	return scores
}

// weightVector turns raw term counts into a unit-norm tf-idf vector.
func weightVector(counts map[string]int, idf map[string]float64) map[string]float64 {
	if len(counts) == 0 {
		return nil
	}

	vec := make(map[string]float64, len(counts))
	var norm float64
	for term, count := range counts {
		w := float64(count) * idf[term]
		vec[term] = w
		norm += w * w
	}

	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil
	}
	for term := range vec {
		vec[term] /= norm
	}
	return vec
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
