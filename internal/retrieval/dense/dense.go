// Package dense implements exact (non-approximate) inner-product search
// over unit-norm embedding matrices, mirroring the flat-index search the
// corpus's offline builder produces — deliberately not an ANN structure,
// so top-k results stay exactly reproducible for a fixed query vector.
package dense

import (
	"math"
	"sort"
)

// Index is a flat matrix of unit-norm embedding vectors, one row per
// doc-id. A nil *Index represents an absent logical variant.
type Index struct {
	Vectors [][]float32
}

// Dim returns the embedding width, or 0 for an empty or absent index.
func (idx *Index) Dim() int {
	if idx == nil || len(idx.Vectors) == 0 {
		return 0
	}
	return len(idx.Vectors[0])
}

// Len returns the number of docs indexed.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.Vectors)
}

type scored struct {
	docID int
	sim   float32
}

// Search runs a batched top-k inner-product search: one result row per
// query vector, each sorted by similarity descending and truncated to
// topK. Both vectors and the index rows are assumed pre-normalized to
// unit L2 norm, so inner product equals cosine similarity.
func (idx *Index) Search(queries [][]float32, topK int) (ids [][]int, sims [][]float32) {
	if idx == nil || len(idx.Vectors) == 0 {
		ids = make([][]int, len(queries))
		sims = make([][]float32, len(queries))
		return
	}
	ids = make([][]int, len(queries))
	sims = make([][]float32, len(queries))
	for qi, qv := range queries {
		results := make([]scored, 0, len(idx.Vectors))
		for docID, vec := range idx.Vectors {
			results = append(results, scored{docID: docID, sim: dot(qv, vec)})
		}
		sort.Slice(results, func(i, j int) bool {
			if results[i].sim != results[j].sim {
				return results[i].sim > results[j].sim
			}
			return results[i].docID < results[j].docID
		})
		if topK < len(results) {
			results = results[:topK]
		}
		rowIDs := make([]int, len(results))
		rowSims := make([]float32, len(results))
		for i, r := range results {
			rowIDs[i] = r.docID
			rowSims[i] = r.sim
		}
		ids[qi] = rowIDs
		sims[qi] = rowSims
	}
	return
}

func dot(a, b []float32) float32 {
	var sum float32
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// Normalize scales v to unit L2 norm in place. A zero vector is left
// unchanged (normalizing it would divide by zero).
func Normalize(v []float32) {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return
	}
	norm := float32(math.Sqrt(sumSq))
	for i := range v {
		v[i] /= norm
	}
}
