package rerank

import (
	"context"
	"testing"

	"github.com/joseon-annals/rag-service/internal/model"
	"github.com/joseon-annals/rag-service/internal/provider"
	"github.com/stretchr/testify/assert"
)

func docs() []model.Doc {
	return []model.Doc{{Title: "a"}, {Title: "b"}, {Title: "c"}}
}

func TestRerankUsesModelOrder(t *testing.T) {
	llm := &provider.StubLLM{Responses: []string{`[2, 0]`}}
	got := Rerank(context.Background(), llm, "q", docs(), []int{0, 1, 2}, 8)
	assert.Equal(t, []int{2, 0}, got)
}

func TestRerankFallsBackOnEmptyResponse(t *testing.T) {
	llm := &provider.StubLLM{Responses: []string{"", ""}}
	got := Rerank(context.Background(), llm, "q", docs(), []int{0, 1, 2}, 2)
	assert.Equal(t, []int{0, 1}, got)
}

func TestRerankFiltersOutOfSetIDs(t *testing.T) {
	llm := &provider.StubLLM{Responses: []string{`[99, 1]`}}
	got := Rerank(context.Background(), llm, "q", docs(), []int{0, 1}, 8)
	assert.Equal(t, []int{1}, got)
}

func TestRerankNilLLMReturnsTruncatedCandidates(t *testing.T) {
	got := Rerank(context.Background(), nil, "q", docs(), []int{0, 1, 2}, 1)
	assert.Equal(t, []int{0}, got)
}

func TestRerankAllOutOfSetFallsBack(t *testing.T) {
	llm := &provider.StubLLM{Responses: []string{`[99]`}}
	got := Rerank(context.Background(), llm, "q", docs(), []int{0, 1}, 8)
	assert.Equal(t, []int{0, 1}, got)
}
