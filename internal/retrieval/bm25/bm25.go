// Package bm25 implements Okapi BM25 lexical scoring over a precomputed
// posting-list store, matching the formula used by the corpus's offline
// indexer exactly so ranking stays reproducible.
package bm25

import (
	"math"
	"sort"

	"github.com/joseon-annals/rag-service/internal/query"
)

// Posting is one (doc-id, term-frequency) pair for a single term.
type Posting struct {
	DocID int
	TF    int
}

// Store is an inverted index over a fixed corpus: term -> postings,
// plus the per-doc lengths and tuning constants needed by the Okapi
// formula. A nil *Store is a valid "absent index" per the Doc Model.
type Store struct {
	Postings map[string][]Posting
	DocLen   map[int]int
	AvgDL    float64
	K1       float64
	B        float64
}

// N is the corpus size the store was built over (len(DocLen)).
func (s *Store) N() int {
	if s == nil {
		return 0
	}
	return len(s.DocLen)
}

// Scores returns the accumulated BM25 score for every doc-id that shares
// at least one query term, restricted to allowed when non-nil. Empty map
// when the store is absent, has no doc lengths, or avgdl is zero.
func Scores(q string, s *Store, allowed map[int]bool) map[int]float64 {
	out := map[int]float64{}
	if s == nil || len(s.DocLen) == 0 || s.AvgDL == 0 {
		return out
	}
	n := float64(len(s.DocLen))
	for _, term := range query.Tokenize(q) {
		plist := s.Postings[term]
		if len(plist) == 0 {
			continue
		}
		df := float64(len(plist))
		idf := math.Log((n-df+0.5)/(df+0.5) + 1.0)
		if idf < 0 {
			idf = 0
		}
		for _, p := range plist {
			if allowed != nil && !allowed[p.DocID] {
				continue
			}
			dl := float64(s.DocLen[p.DocID])
			tf := float64(p.TF)
			denom := tf + s.K1*(1-s.B+s.B*(dl/s.AvgDL))
			out[p.DocID] += idf * (tf * (s.K1 + 1)) / denom
		}
	}
	return out
}

// Search ranks doc-ids by BM25 score descending and returns the top-k ids.
func Search(q string, s *Store, topK int, allowed map[int]bool) []int {
	scores := Scores(q, s, allowed)
	if len(scores) == 0 {
		return nil
	}
	ids := make([]int, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if topK < len(ids) {
		ids = ids[:topK]
	}
	return ids
}
