package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedEmbeddingSerialization(t *testing.T) {
	t.Run("full record", func(t *testing.T) {
		in := &CachedEmbedding{
			Model:  "all-minilm",
			Text:   "How can I track my order?",
			Vector: []float32{0.1, -0.2, 0.3, 1e-7},
		}

		out, err := UnmarshalCachedEmbedding(MarshalCachedEmbedding(in))
		require.NoError(t, err)
		assert.Equal(t, in.Model, out.Model)
		assert.Equal(t, in.Text, out.Text)
		assert.Equal(t, in.Vector, out.Vector)
	})

	t.Run("size matches encoding", func(t *testing.T) {
		in := CachedEmbedding{Model: "m", Text: "Ünïcödé", Vector: make([]float32, 384)}
		assert.Len(t, MarshalCachedEmbedding(&in), CachedEmbeddingMUS.Size(in))
	})

	t.Run("truncated data", func(t *testing.T) {
		data := MarshalCachedEmbedding(&CachedEmbedding{
			Model:  "all-minilm",
			Text:   "What is your return policy?",
			Vector: []float32{1, 2, 3},
		})

		_, err := UnmarshalCachedEmbedding(data[:len(data)-3])
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})
}
