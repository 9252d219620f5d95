package dense

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchRanksByInnerProductDescending(t *testing.T) {
	idx := &Index{Vectors: [][]float32{
		{1, 0},
		{0, 1},
		{0.7071, 0.7071},
	}}
	ids, sims := idx.Search([][]float32{{1, 0}}, 2)
	require.Len(t, ids, 1)
	assert.Equal(t, []int{0, 2}, ids[0])
	assert.Greater(t, sims[0][0], sims[0][1])
}

func TestSearchOnNilIndexReturnsEmptyRows(t *testing.T) {
	var idx *Index
	ids, sims := idx.Search([][]float32{{1, 0}}, 5)
	require.Len(t, ids, 1)
	assert.Empty(t, ids[0])
	assert.Empty(t, sims[0])
}

func TestNormalizeProducesUnitVector(t *testing.T) {
	v := []float32{3, 4}
	Normalize(v)
	assert.InDelta(t, 1.0, float64(v[0]*v[0]+v[1]*v[1]), 1e-4)
}

func TestNormalizeLeavesZeroVectorUnchanged(t *testing.T) {
	v := []float32{0, 0}
	Normalize(v)
	assert.Equal(t, []float32{0, 0}, v)
}
