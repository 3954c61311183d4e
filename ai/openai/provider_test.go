package openai

import (
	"testing"

	"github.com/poiesic/faqmatch/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := ai.NewConfig(
			ai.WithEmbeddingHost("http://localhost:11434"),
			ai.WithEmbeddingModel("all-minilm"),
		)

		p, err := NewProvider(cfg)
		require.NoError(t, err)
		defer p.Close()

		assert.Equal(t, "all-minilm", p.Model())
		assert.NotNil(t, p.Embedder())
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})

	t.Run("missing model", func(t *testing.T) {
		cfg := &ai.Config{EmbeddingHost: "http://localhost:11434"}

		_, err := NewProvider(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "EmbeddingModel")
	})
}
