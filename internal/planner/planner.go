// Package planner classifies a query into a routing mode and expands it
// into a bounded, deduplicated set of retrieval queries via
// decomposition, step-back, multi-query, HyDE, and domain-specific
// rewrite rules.
package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/joseon-annals/rag-service/internal/provider"
)

// MaxQueryExpansions bounds the size of a built query plan.
const MaxQueryExpansions = 10

var validModes = map[string]bool{
	"definition": true, "comparison": true, "multi-hop": true, "list": true, "other": true,
}

// ClassifyQuery asks llm to label q into one of the five routing modes.
// Any failure, or a label outside the valid set, falls back to "other".
func ClassifyQuery(ctx context.Context, llm provider.LLM, q string) string {
	if llm == nil {
		return "other"
	}
	prompt := fmt.Sprintf(
		"다음 질문을 다음 중 하나로 분류하세요: definition, comparison, multi-hop, list, other. "+
			"라벨만 반환하세요.\n"+
			"이 질문은 조선왕조실록에 관한 검색/질의입니다.\n\n"+
			"질문: %s", q)
	out, err := llm.Complete(ctx, prompt)
	if err != nil {
		return "other"
	}
	label := strings.ToLower(strings.TrimSpace(out))
	if validModes[label] {
		return label
	}
	return "other"
}

// RouteWeights returns the per-channel RRF weight table for a mode.
func RouteWeights(mode string) map[string]float64 {
	switch mode {
	case "definition":
		return map[string]float64{"full": 0.8, "sum": 1.4, "title": 1.0, "bm25": 1.0}
	case "list":
		return map[string]float64{"full": 1.0, "sum": 1.2, "title": 0.8, "bm25": 1.0}
	case "comparison":
		return map[string]float64{"full": 1.3, "sum": 0.8, "title": 0.8, "bm25": 1.2}
	case "multi-hop":
		return map[string]float64{"full": 1.4, "sum": 0.8, "title": 0.8, "bm25": 1.2}
	default:
		return map[string]float64{"full": 1.0, "sum": 1.0, "title": 1.0, "bm25": 1.0}
	}
}

// MetaOnlyWeights is the fixed channel weight table used when the query
// carries a meta-only marker: only the title channel participates.
func MetaOnlyWeights() map[string]float64 {
	return map[string]float64{"title": 1.0, "bm25": 1.0}
}

func decomposeQuery(ctx context.Context, llm provider.LLM, q, mode string) []string {
	if mode != "comparison" && mode != "multi-hop" && mode != "list" {
		return nil
	}
	if llm == nil {
		return nil
	}
	prompt := fmt.Sprintf(
		"질문을 2-4개의 집중된 하위 질문으로 분해하세요. 각 하위 질문은 독립적으로 "+
			"답할 수 있어야 합니다. 한 줄에 하나씩, 번호 없이 반환하세요.\n"+
			"이 질문은 조선왕조실록에 관한 검색/질의입니다.\n\n"+
			"질문: %s", q)
	out, err := llm.Complete(ctx, prompt)
	if err != nil {
		return nil
	}
	return splitNonEmptyLines(out)
}

func stepBackQuery(ctx context.Context, llm provider.LLM, q string) string {
	if llm == nil {
		return ""
	}
	prompt := fmt.Sprintf(
		"배경 정보를 찾기 위해 질문을 더 상위의 일반적인 수준으로 다시 작성하세요. "+
			"한 줄만 반환하세요.\n"+
			"이 질문은 조선왕조실록에 관한 검색/질의입니다.\n\n"+
			"질문: %s", q)
	out, err := llm.Complete(ctx, prompt)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

func multiQuery(ctx context.Context, llm provider.LLM, q string) []string {
	if llm == nil {
		return nil
	}
	prompt := fmt.Sprintf(
		"질문에 답할 수 있는 구절을 찾기 위해 짧은 검색 질의 3개를 생성하세요. "+
			"한 줄에 하나씩, 번호 없이 반환하세요.\n"+
			"이 질문은 조선왕조실록에 관한 검색/질의입니다.\n\n"+
			"질문: %s", q)
	out, err := llm.Complete(ctx, prompt)
	if err != nil {
		return nil
	}
	return splitNonEmptyLines(out)
}

func hydeQuery(ctx context.Context, llm provider.LLM, q string) string {
	if llm == nil {
		return ""
	}
	prompt := fmt.Sprintf(
		"질문에 대한 그럴듯한 짧은 답을 작성하세요. 3문장 이내로 유지하세요. "+
			"이 답변은 검색용입니다.\n"+
			"이 질문은 조선왕조실록에 관한 검색/질의입니다.\n\n"+
			"질문: %s", q)
	out, err := llm.Complete(ctx, prompt)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// DomainExpansions applies the fixed rule-based rewrites specific to the
// Annals corpus (always including the corpus name if missing, flagging
// compilation-authorship questions, faction-conflict questions, and
// comparison-style questions).
func DomainExpansions(q, mode string) []string {
	var ex []string
	if !strings.Contains(q, "조선왕조실록") {
		ex = append(ex, "조선왕조실록 "+q)
	}
	if strings.Contains(q, "수정실록") || strings.Contains(q, "편찬") || strings.Contains(q, "실록") {
		ex = append(ex, q+" 편찬 주체 사견")
	}
	if strings.Contains(q, "노론") || strings.Contains(q, "소론") {
		ex = append(ex, q+" 당파 갈등 사건")
	}
	if mode == "comparison" || strings.Contains(q, "비교") {
		ex = append(ex, q+" 차이점")
		ex = append(ex, q+" 서로 다른 기록")
	}
	if strings.Contains(q, "기사") {
		ex = append(ex, q+" 기록")
	}
	return ex
}

// BuildQueries assembles the ordered, case-insensitively deduplicated
// query plan: the original query first, then decomposition, step-back,
// multi-query, HyDE, the caller-supplied focus hint, and domain
// expansions, bounded to MaxQueryExpansions.
func BuildQueries(ctx context.Context, llm provider.LLM, q, mode, extraHint string) []string {
	queries := []string{q}

	for _, s := range decomposeQuery(ctx, llm, q, mode) {
		if s != "" && !strings.EqualFold(s, q) {
			queries = append(queries, s)
		}
	}

	if sb := stepBackQuery(ctx, llm, q); sb != "" && !strings.EqualFold(sb, q) {
		queries = append(queries, sb)
	}

	for _, x := range multiQuery(ctx, llm, q) {
		if x != "" {
			queries = append(queries, x)
		}
	}

	if h := hydeQuery(ctx, llm, q); h != "" {
		queries = append(queries, h)
	}

	if extraHint != "" {
		queries = append(queries, extraHint)
	}

	queries = append(queries, DomainExpansions(q, mode)...)

	seen := map[string]bool{}
	out := make([]string, 0, len(queries))
	for _, s := range queries {
		key := strings.ToLower(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	if len(out) > MaxQueryExpansions {
		out = out[:MaxQueryExpansions]
	}
	return out
}

func splitNonEmptyLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimLeft(line, "-"))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
