package tfidf

import (
	"context"
	"testing"

	"github.com/poiesic/faqmatch/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var corpus = []string{
	"What is your return policy?",
	"How long does shipping take?",
	"How can I track my order?",
}

func TestNewEmbedder(t *testing.T) {
	t.Run("builds vocabulary", func(t *testing.T) {
		e, err := NewEmbedder(corpus)
		require.NoError(t, err)
		// return, policy, long, shipping, track, order
		assert.Equal(t, 6, e.Dimension())
	})

	t.Run("empty corpus", func(t *testing.T) {
		_, err := NewEmbedder(nil)
		assert.ErrorIs(t, err, ErrEmptyCorpus)
	})

	t.Run("stopwords only", func(t *testing.T) {
		_, err := NewEmbedder([]string{"what is the", "?"})
		assert.ErrorIs(t, err, ErrEmptyCorpus)
	})
}

func TestEmbedder_EmbedText(t *testing.T) {
	ctx := context.Background()
	e, err := NewEmbedder(corpus)
	require.NoError(t, err)

	t.Run("unit length", func(t *testing.T) {
		v, err := e.EmbedText(ctx, corpus[0])
		require.NoError(t, err)
		assert.InDelta(t, 1.0, vector.Magnitude(v), 1e-6)
	})

	t.Run("identical text matches itself", func(t *testing.T) {
		a, err := e.EmbedText(ctx, "How can I track my order?")
		require.NoError(t, err)
		b, err := e.EmbedText(ctx, "track order")
		require.NoError(t, err)
		assert.InDelta(t, 1.0, vector.Cosine(a, b), 1e-6)
	})

	t.Run("unknown terms embed to zero", func(t *testing.T) {
		v, err := e.EmbedText(ctx, "asdkjasdkj random gibberish")
		require.NoError(t, err)
		assert.Len(t, v, e.Dimension())
		assert.True(t, vector.IsZero(v))
	})

	t.Run("unrelated questions are orthogonal", func(t *testing.T) {
		a, _ := e.EmbedText(ctx, corpus[0])
		b, _ := e.EmbedText(ctx, corpus[1])
		assert.InDelta(t, 0.0, vector.Cosine(a, b), 1e-9)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := e.EmbedText(cctx, "x")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestEmbedder_EmbedTexts(t *testing.T) {
	ctx := context.Background()
	e, err := NewEmbedder(corpus)
	require.NoError(t, err)

	vecs, err := e.EmbedTexts(ctx, corpus)
	require.NoError(t, err)
	require.Len(t, vecs, len(corpus))

	single, err := e.EmbedText(ctx, corpus[2])
	require.NoError(t, err)
	assert.Equal(t, single, vecs[2])
}

func TestProvider(t *testing.T) {
	p, err := NewProvider(corpus)
	require.NoError(t, err)
	assert.Equal(t, ModelName, p.Model())
	assert.NotNil(t, p.Embedder())
	assert.NoError(t, p.Close())
}
