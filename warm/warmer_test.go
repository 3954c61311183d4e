package warm

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/faqmatch/ai/mock"
	"github.com/poiesic/faqmatch/retry"
	"github.com/poiesic/faqmatch/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var questions = []string{
	"What is your return policy?",
	"How can I track my order?",
	"How long does shipping take?",
	"Do you ship internationally?",
	"What payment methods do you accept?",
}

func testConfig() *Config {
	return &Config{
		BatchSize:      2,
		ReportInterval: 2,
		Retry: retry.Policy{
			MaxAttempts: 3,
			BaseDelay:   time.Millisecond,
		},
	}
}

func TestNewWarmer(t *testing.T) {
	cache, backend, err := badger.NewMemoryEmbeddingCache()
	require.NoError(t, err)
	defer backend.Close()

	_, err = NewWarmer(nil, mock.NewMockEmbedder(), "m", nil, nil)
	assert.Error(t, err)

	_, err = NewWarmer(cache, nil, "m", nil, nil)
	assert.Error(t, err)

	_, err = NewWarmer(cache, mock.NewMockEmbedder(), "m", &Config{BatchSize: 0}, nil)
	assert.Error(t, err)

	w, err := NewWarmer(cache, mock.NewMockEmbedder(), "m", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().BatchSize, w.config.BatchSize)
}

func TestWarmer_Run(t *testing.T) {
	ctx := context.Background()
	cache, backend, err := badger.NewMemoryEmbeddingCache()
	require.NoError(t, err)
	defer backend.Close()

	embedder := mock.NewMockEmbedder()
	var buf bytes.Buffer
	w, err := NewWarmer(cache, embedder, "all-minilm", testConfig(), &buf)
	require.NoError(t, err)

	withDup := append(append([]string{}, questions...), questions[0])
	stats, err := w.Run(ctx, withDup)
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 0, stats.Cached)
	assert.Equal(t, 5, stats.Embedded)
	assert.Equal(t, 3, embedder.CallCount(), "five questions in batches of two")
	assert.Contains(t, buf.String(), "5/5")
	assert.Contains(t, buf.String(), "Warming complete")

	count, err := cache.CountEmbeddings(ctx, "all-minilm")
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	t.Run("second run skips cached questions", func(t *testing.T) {
		embedder.Reset()
		buf.Reset()
		stats, err := w.Run(ctx, questions)
		require.NoError(t, err)
		assert.Equal(t, 5, stats.Cached)
		assert.Equal(t, 0, stats.Embedded)
		assert.Equal(t, 0, embedder.CallCount())
		assert.Contains(t, buf.String(), "already cached")
	})

	t.Run("only new questions are embedded", func(t *testing.T) {
		embedder.Reset()
		stats, err := w.Run(ctx, append(append([]string{}, questions...), "Can I change or cancel my order?"))
		require.NoError(t, err)
		assert.Equal(t, 5, stats.Cached)
		assert.Equal(t, 1, stats.Embedded)
		assert.Equal(t, []string{"Can I change or cancel my order?"}, embedder.Texts())
	})

	t.Run("force re-embeds", func(t *testing.T) {
		embedder.Reset()
		cfg := testConfig()
		cfg.Force = true
		forced, err := NewWarmer(cache, embedder, "all-minilm", cfg, nil)
		require.NoError(t, err)
		stats, err := forced.Run(ctx, questions)
		require.NoError(t, err)
		assert.Equal(t, 5, stats.Embedded)
	})
}

func TestWarmer_RetriesTransientFailures(t *testing.T) {
	ctx := context.Background()
	cache, backend, err := badger.NewMemoryEmbeddingCache()
	require.NoError(t, err)
	defer backend.Close()

	embedder := mock.NewMockEmbedder()
	failures := 1
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		if failures > 0 {
			failures--
			return nil, errors.New("connection refused")
		}
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{1, 0, 0}
		}
		return out, nil
	}

	w, err := NewWarmer(cache, embedder, "m", testConfig(), nil)
	require.NoError(t, err)
	stats, err := w.Run(ctx, questions[:2])
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Embedded)
	assert.Equal(t, 2, embedder.CallCount())
}

func TestWarmer_GivesUp(t *testing.T) {
	cache, backend, err := badger.NewMemoryEmbeddingCache()
	require.NoError(t, err)
	defer backend.Close()

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("connection refused")
	}

	w, err := NewWarmer(cache, embedder, "m", testConfig(), nil)
	require.NoError(t, err)
	_, err = w.Run(context.Background(), questions)
	require.Error(t, err)
	assert.Equal(t, 3, embedder.CallCount())
}

func TestWarmer_CountMismatch(t *testing.T) {
	cache, backend, err := badger.NewMemoryEmbeddingCache()
	require.NoError(t, err)
	defer backend.Close()

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	}

	w, err := NewWarmer(cache, embedder, "m", testConfig(), nil)
	require.NoError(t, err)
	_, err = w.Run(context.Background(), questions[:2])
	assert.ErrorContains(t, err, "embedding count mismatch")
}
