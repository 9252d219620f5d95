// Package rerank sends the lexical-prerank candidate set to an LLM for a
// relevance-ordered reranking, falling back to the prerank order whenever
// the model call fails or returns something unusable.
package rerank

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	ctxfmt "github.com/joseon-annals/rag-service/internal/context"
	"github.com/joseon-annals/rag-service/internal/jsonx"
	"github.com/joseon-annals/rag-service/internal/model"
	"github.com/joseon-annals/rag-service/internal/provider"
)

const (
	charLimit   = 1200
	maxAttempts = 2
)

type rerankItem struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Rerank asks llm to reorder cand by relevance to q, returning at most
// topK doc-ids. When disabled (llm is nil) or cand is empty, it returns
// cand truncated to topK directly. On any parse failure or empty result
// after two attempts, it falls back to cand truncated to topK. Ids the
// model returns outside the candidate set are discarded.
func Rerank(ctx context.Context, llm provider.LLM, q string, docs []model.Doc, cand []int, topK int) []int {
	if llm == nil || len(cand) == 0 {
		return truncate(cand, topK)
	}

	items := make([]rerankItem, 0, len(cand))
	for _, id := range cand {
		if id < 0 || id >= len(docs) {
			continue
		}
		d := docs[id]
		text := ctxfmt.Truncate(d.Text, charLimit)
		items = append(items, rerankItem{ID: id, Title: d.Title, Text: text})
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return truncate(cand, topK)
	}

	prompt := fmt.Sprintf(
		"당신은 엄격한 재랭커입니다. 질문과 문서 목록이 주어지면, 관련도 내림차순으로 "+
			"가장 관련 있는 문서 id의 JSON 배열을 반환하세요. "+
			"최대 %d개의 id만 반환하고 JSON 배열만 출력하세요.\n"+
			"이 질문은 조선왕조실록에 관한 검색/질의입니다.\n\n"+
			"질문: %s\n\n문서:\n%s", topK, q, string(payload))

	allowed := make(map[int]bool, len(cand))
	for _, id := range cand {
		allowed[id] = true
	}

	var ids []int
	for attempt := 0; attempt < maxAttempts; attempt++ {
		out, err := llm.Complete(ctx, prompt)
		if err != nil {
			slog.Warn("[RERANK] llm call failed", "attempt", attempt, "err", err)
			ids = nil
			continue
		}
		ids = jsonx.IntList(out)
		if len(ids) > 0 {
			break
		}
	}
	if len(ids) == 0 {
		return truncate(cand, topK)
	}

	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if allowed[id] {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return truncate(cand, topK)
	}
	return truncate(out, topK)
}

func truncate(ids []int, topK int) []int {
	if topK < len(ids) {
		return ids[:topK]
	}
	return ids
}
