package cache

import (
	"context"
	"testing"

	"github.com/joseon-annals/rag-service/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	calls int
	vec   []float32
}

func (e *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = e.vec
	}
	return out, nil
}

func TestEmbedManyCachesAcrossCalls(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{1, 2}}
	c := NewEmbeddingCache()

	_, err := c.EmbedMany(context.Background(), inner, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 2, c.Len())

	_, err = c.EmbedMany(context.Background(), inner, []string{"a", "c"})
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 3, c.Len())
}

func TestEmbedManyNoMissesSkipsUnderlyingCall(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{1}}
	c := NewEmbeddingCache()
	c.Set("x", []float32{9})

	out, err := c.EmbedMany(context.Background(), inner, []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, 0, inner.calls)
	assert.Equal(t, []float32{9}, out[0])
}

func TestCachedEmbedderImplementsProviderInterface(t *testing.T) {
	var _ provider.Embedder = &CachedEmbedder{Cache: NewEmbeddingCache(), Embedder: &countingEmbedder{}}
}
