package storage

import "context"

// CachedEmbedding is a stored embedding of one catalog question.
// Model and Text together identify the record.
type CachedEmbedding struct {
	Model  string
	Text   string
	Vector []float32
}

// EmbeddingCache persists question embeddings across process restarts so a
// catalog can be rebuilt without re-embedding unchanged questions.
// Implementations must be thread-safe and support concurrent access.
type EmbeddingCache interface {
	// GetEmbedding retrieves the vector stored for (model, text).
	// Returns ErrNotFound if no vector is stored.
	GetEmbedding(ctx context.Context, model, text string) ([]float32, error)

	// GetEmbeddings retrieves the vectors stored for texts under model.
	// The result has one slot per text; missing vectors are nil.
	GetEmbeddings(ctx context.Context, model string, texts []string) ([][]float32, error)

	// PutEmbeddings stores the given embeddings, replacing existing ones.
	PutEmbeddings(ctx context.Context, embeddings ...CachedEmbedding) error

	// CountEmbeddings returns the number of stored embeddings for model.
	CountEmbeddings(ctx context.Context, model string) (int, error)

	// Close releases resources held by the cache.
	Close() error
}
