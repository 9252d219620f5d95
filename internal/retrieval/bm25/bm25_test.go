package bm25

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleStore() *Store {
	return &Store{
		Postings: map[string][]Posting{
			"세종": {{DocID: 0, TF: 3}, {DocID: 1, TF: 1}},
			"즉위": {{DocID: 0, TF: 1}},
		},
		DocLen: map[int]int{0: 50, 1: 80, 2: 30},
		AvgDL:  53.33,
		K1:     1.5,
		B:      0.75,
	}
}

func TestScoresAccumulateAcrossTerms(t *testing.T) {
	scores := Scores("세종 즉위", sampleStore(), nil)
	assert.Greater(t, scores[0], scores[1])
	assert.NotContains(t, scores, 2)
}

func TestScoresRespectAllowedSet(t *testing.T) {
	scores := Scores("세종", sampleStore(), map[int]bool{1: true})
	assert.NotContains(t, scores, 0)
	assert.Contains(t, scores, 1)
}

func TestSearchOrdersDescendingAndTruncates(t *testing.T) {
	ids := Search("세종 즉위", sampleStore(), 1, nil)
	assert.Equal(t, []int{0}, ids)
}

func TestScoresEmptyWhenStoreAbsent(t *testing.T) {
	assert.Empty(t, Scores("세종", nil, nil))
}

func TestScoresEmptyWhenAvgDLZero(t *testing.T) {
	s := &Store{Postings: map[string][]Posting{"세종": {{DocID: 0, TF: 1}}}, DocLen: map[int]int{0: 10}, AvgDL: 0}
	assert.Empty(t, Scores("세종", s, nil))
}

func TestIDFNeverNegative(t *testing.T) {
	// A term appearing in every doc still yields idf clamped to >= 0.
	s := &Store{
		Postings: map[string][]Posting{"모든": {{DocID: 0, TF: 1}, {DocID: 1, TF: 1}}},
		DocLen:   map[int]int{0: 10, 1: 10},
		AvgDL:    10,
		K1:       1.5,
		B:        0.75,
	}
	scores := Scores("모든", s, nil)
	for _, v := range scores {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}
