package cmd

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirelens/hirelens/internal/catalog"
)

func TestEmbedAllFillsEveryRecord(t *testing.T) {
	records := make([]*catalog.AssessmentRecord, 37)
	for i := range records {
		records[i] = &catalog.AssessmentRecord{
			ID:   fmt.Sprintf("rec-%02d", i),
			Name: fmt.Sprintf("Assessment %d", i),
		}
	}

	var (
		mu    sync.Mutex
		calls int
	)
	embed := func(_ context.Context, texts []string) ([][]float32, error) {
		mu.Lock()
		calls++
		mu.Unlock()

		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{float32(len(texts[i])), 1}
		}
		return out, nil
	}

	require.NoError(t, embedAll(context.Background(), embed, records, 3, 10))

	// 37 records in batches of 10.
	assert.Equal(t, 4, calls)
	for _, r := range records {
		assert.Len(t, r.Embedding, 2, r.ID)
	}
}

func TestEmbedAllPropagatesFirstError(t *testing.T) {
	records := []*catalog.AssessmentRecord{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B"},
	}

	embed := func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("quota exhausted")
	}

	err := embedAll(context.Background(), embed, records, 2, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exhausted")
}

func TestEmbedAllEmptyInput(t *testing.T) {
	embed := func(context.Context, []string) ([][]float32, error) {
		t.Fatal("embed must not be called for an empty catalog")
		return nil, nil
	}
	assert.NoError(t, embedAll(context.Background(), embed, nil, 4, 16))
}
