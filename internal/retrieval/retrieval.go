// Package retrieval fuses per-channel ranked lists (dense indices and
// BM25) with reciprocal rank fusion, and reranks the fused candidate set
// with exact lexical BM25 scoring restricted to the candidate pool.
package retrieval

import (
	"context"
	"fmt"
	"sort"

	"github.com/joseon-annals/rag-service/internal/model"
	"github.com/joseon-annals/rag-service/internal/provider"
	"github.com/joseon-annals/rag-service/internal/query"
	"github.com/joseon-annals/rag-service/internal/retrieval/bm25"
	"github.com/joseon-annals/rag-service/internal/retrieval/dense"
	"github.com/joseon-annals/rag-service/internal/store"
	"golang.org/x/sync/errgroup"
)

const rrfK = 60

// ChannelWeights maps a channel name ("full", "sum", "title", "bm25") to
// its RRF weight for the current query mode.
type ChannelWeights map[string]float64

// Fused is the result of RRF fusion: an ordered candidate list plus the
// per-doc accumulated score and per-doc best-known similarity.
type Fused struct {
	Candidates []int
	Scores     map[int]float64
	Sims       map[int]float64
}

// MultiSearch embeds queries once, searches every supplied dense-index
// channel concurrently, then searches the bm25 store, and fuses the
// ranked lists with RRF. allowed, when non-nil, restricts every channel's results to
// that doc-id set. candCap bounds the returned candidate list to
// max(topK, candCap) per the corpus's own over-retrieval margin.
func MultiSearch(ctx context.Context, emb provider.Embedder, indices []store.NamedIndex, bm25Store *bm25.Store, queries []string, topK int, weights ChannelWeights, allowed map[int]bool, candCap int) (*Fused, error) {
	scores := map[int]float64{}
	sims := map[int]float64{}
	firstSeen := map[int]int{}
	touch := func(docID int) {
		if _, ok := firstSeen[docID]; !ok {
			firstSeen[docID] = len(firstSeen)
		}
	}

	if len(queries) > 0 && len(indices) > 0 {
		vecs, err := emb.Embed(ctx, queries)
		if err != nil {
			return nil, fmt.Errorf("retrieval.MultiSearch: embed: %w", err)
		}
		for i := range vecs {
			dense.Normalize(vecs[i])
		}

		type channelResult struct {
			name string
			ids  [][]int
			sim  [][]float32
		}
		results := make([]channelResult, len(indices))
		g, _ := errgroup.WithContext(ctx)
		for i, ni := range indices {
			i, ni := i, ni
			g.Go(func() error {
				ids, sim := ni.Index.Search(vecs, topK)
				results[i] = channelResult{name: ni.Name, ids: ids, sim: sim}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("retrieval.MultiSearch: %w", err)
		}

		for _, r := range results {
			w := weightOf(weights, r.name)
			for qi := range r.ids {
				for rank, docID := range r.ids[qi] {
					if allowed != nil && !allowed[docID] {
						continue
					}
					touch(docID)
					scores[docID] += w / float64(rrfK+rank+1)
					s := float64(r.sim[qi][rank])
					if cur, ok := sims[docID]; !ok || s > cur {
						sims[docID] = s
					}
				}
			}
		}
	}

	if bm25Store != nil {
		w := weightOf(weights, "bm25")
		for _, q := range queries {
			for rank, docID := range bm25.Search(q, bm25Store, topK, allowed) {
				touch(docID)
				scores[docID] += w / float64(rrfK+rank+1)
			}
		}
	}

	ids := make([]int, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return firstSeen[ids[i]] < firstSeen[ids[j]]
	})

	bound := topK
	if candCap > bound {
		bound = candCap
	}
	if bound < len(ids) {
		ids = ids[:bound]
	}

	return &Fused{Candidates: ids, Scores: scores, Sims: sims}, nil
}

func weightOf(w ChannelWeights, name string) float64 {
	if v, ok := w[name]; ok {
		return v
	}
	return 1.0
}

const titleMatchBonus = 0.5

// LexicalPrerank rescales the candidate set with a fresh BM25 pass
// restricted to cand, adds a flat bonus per distinct query term that
// appears in a doc's title, and truncates to topK.
func LexicalPrerank(q string, docs []model.Doc, cand []int, bm25Store *bm25.Store, topK int) []int {
	allowed := make(map[int]bool, len(cand))
	for _, id := range cand {
		allowed[id] = true
	}

	scores := bm25.Scores(q, bm25Store, allowed)
	terms := uniqueLower(query.Tokenize(q))

	for _, id := range cand {
		if id < 0 || id >= len(docs) {
			continue
		}
		title := docs[id].Title
		hits := 0
		titleTokens := tokenSet(query.Tokenize(title))
		for _, t := range terms {
			if titleTokens[t] {
				hits++
			}
		}
		if hits > 0 {
			scores[id] += float64(hits) * titleMatchBonus
		}
	}

	ranked := make([]int, len(cand))
	copy(ranked, cand)
	sort.Slice(ranked, func(i, j int) bool {
		if scores[ranked[i]] != scores[ranked[j]] {
			return scores[ranked[i]] > scores[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	if topK < len(ranked) {
		ranked = ranked[:topK]
	}
	return ranked
}

func uniqueLower(terms []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func tokenSet(terms []string) map[string]bool {
	s := make(map[string]bool, len(terms))
	for _, t := range terms {
		s[t] = true
	}
	return s
}
