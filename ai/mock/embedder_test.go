package mock

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	ctx := context.Background()
	m := NewMockEmbedder()

	a, err := m.EmbedText(ctx, "return policy")
	require.NoError(t, err)
	b, err := m.EmbedText(ctx, "return policy")
	require.NoError(t, err)
	c, err := m.EmbedText(ctx, "shipping")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, DefaultDimension)

	var sum float64
	for _, v := range a {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-4)
	assert.Equal(t, 3, m.CallCount())
}

func TestMockEmbedder_EmbedTexts(t *testing.T) {
	ctx := context.Background()
	m := NewMockEmbedder()

	vecs, err := m.EmbedTexts(ctx, []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)

	single, err := m.EmbedText(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, single, vecs[1])
	assert.Equal(t, []string{"a", "b", "b"}, m.Texts())
}

func TestMockEmbedder_InjectedError(t *testing.T) {
	ctx := context.Background()
	m := NewMockEmbedder()
	boom := errors.New("boom")
	m.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
		return nil, boom
	}

	_, err := m.EmbedText(ctx, "x")
	assert.ErrorIs(t, err, boom)

	_, err = m.EmbedTexts(ctx, []string{"x"})
	assert.ErrorIs(t, err, boom)

	m.Reset()
	assert.Equal(t, 0, m.CallCount())
	_, err = m.EmbedText(ctx, "x")
	assert.NoError(t, err)
}

func TestFixedEmbedder(t *testing.T) {
	ctx := context.Background()
	m := NewFixedEmbedder(map[string][]float32{"known": {1, 0, 0}})

	v, err := m.EmbedText(ctx, "known")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0}, v)

	v, err = m.EmbedText(ctx, "unknown")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0}, v)
}
