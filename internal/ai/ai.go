package ai

import "context"

// Embedder encodes text into the catalog's embedding space. Query-time
// encoding must use the same model the catalog artifact was built with; a
// dimensionality mismatch between the two is a configuration error.
// Implementations must be safe for concurrent use.
type Embedder interface {
	// EmbedText encodes a single query string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts encodes a batch of document texts, preserving order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
