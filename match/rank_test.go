package match

import (
	"testing"

	"github.com/poiesic/faqmatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scores(fused ...float64) []core.ScoredEntry {
	out := make([]core.ScoredEntry, len(fused))
	for i, f := range fused {
		out[i] = core.ScoredEntry{Index: i, FusedScore: f}
	}
	return out
}

func indexes(entries []core.ScoredEntry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.Index
	}
	return out
}

func TestRank(t *testing.T) {
	t.Run("descending top k", func(t *testing.T) {
		r, err := Rank(scores(0.2, 0.9, 0.5, 0.7), 3, 0.6)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 3, 2}, indexes(r.Top))
		assert.True(t, r.Confident)
		assert.Equal(t, 1, r.Best().Index)
	})

	t.Run("ties keep catalog order", func(t *testing.T) {
		r, err := Rank(scores(0.5, 0.8, 0.8, 0.5, 0.8), 4, 0.6)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 4, 0}, indexes(r.Top))
	})

	t.Run("fewer entries than k", func(t *testing.T) {
		r, err := Rank(scores(0.9), 3, 0.6)
		require.NoError(t, err)
		assert.Len(t, r.Top, 1)
	})

	t.Run("k below one is one", func(t *testing.T) {
		r, err := Rank(scores(0.1, 0.9), 0, 0.6)
		require.NoError(t, err)
		assert.Equal(t, []int{1}, indexes(r.Top))
	})

	t.Run("threshold is inclusive", func(t *testing.T) {
		r, err := Rank(scores(0.6), 3, 0.6)
		require.NoError(t, err)
		assert.True(t, r.Confident)

		r, err = Rank(scores(0.5999), 3, 0.6)
		require.NoError(t, err)
		assert.False(t, r.Confident)
	})

	t.Run("input untouched", func(t *testing.T) {
		in := scores(0.1, 0.9)
		_, err := Rank(in, 2, 0.6)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1}, indexes(in))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Rank(nil, 3, 0.6)
		assert.ErrorIs(t, err, core.ErrEmptyCatalog)
	})
}
