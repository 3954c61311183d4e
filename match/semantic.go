package match

import (
	"math"

	"github.com/poiesic/faqmatch/vector"
)

// Similarity compares two embeddings. Implementations must return 0 rather
// than fail for empty, zero or mismatched vectors.
type Similarity func(a, b []float32) float64

// SemanticScore returns the cosine similarity of the query and question
// embeddings clamped to [0, 1].
func SemanticScore(queryEmbedding, questionEmbedding []float32) float64 {
	return clampUnit(vector.Cosine(queryEmbedding, questionEmbedding))
}

func clampUnit(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(0, math.Min(1, x))
}
