package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/joseon-annals/rag-service/internal/jsonx"
	"github.com/joseon-annals/rag-service/internal/provider"
)

// Action is the dispatch decision returned by answerOrRequest.
type Action struct {
	Kind           string // "answer", "search_more", "need_config", or "" (treated as answer)
	Answer         string
	Confidence     float64
	Query          string // for search_more
	Reason         string
	Message        string // for need_config
	EvidenceFound  []string
	EvidenceMissing []string
}

const schemaInstruction = "JSON만 반환하세요. 하나의 action을 선택하세요:\n" +
	"1) {\"action\":\"answer\",\"answer\":\"...\",\"confidence\":0-1}\n" +
	"2) {\"action\":\"search_more\",\"query\":\"...\",\"reason\":\"...\"}\n" +
	"3) {\"action\":\"need_config\",\"message\":\"...\"}\n" +
	"4) (답변일 때만) \"evidence_found\": [\"...\"], \"evidence_missing\": [\"...\"]\n"

// AnswerOrRequest asks llm to either answer from ctx, request another
// search round with a refined query, or surrender with a need_config
// message. allowMore must be false on the final round so the model is
// told it cannot ask for more search.
func AnswerOrRequest(ctx context.Context, llm provider.LLM, q string, ctxBlocks []string, allowMore, relaxContext bool, mode string) Action {
	guidance := ""
	if !allowMore {
		guidance = fmt.Sprintf("추가 검색을 요청할 수 없습니다. 답하거나 \"%s\"라고 하세요.\n", NotFoundMsg)
	}
	relax := ""
	if relaxContext {
		relax = "문맥에 없는 내용은 추정임을 명확히 표시하고, " +
			"문맥 근거가 있는 부분만 [1], [2]처럼 인라인 인용하세요. " +
			"문맥 밖 정보에는 인용을 붙이지 마세요.\n"
	}
	compare := ""
	if mode == "comparison" {
		compare = "비교 질문이면 2열 표 형식으로 답하세요. 질문에 나온 비교 대상을 각 열 제목으로 쓰고, " +
			"각 셀에 근거를 요약하세요.\n"
	}
	baseInstruction := "문맥만 사용하세요."
	if relaxContext {
		baseInstruction = "문맥을 우선 사용하세요."
	}

	prompt := fmt.Sprintf(
		"당신은 검색 증강 어시스턴트입니다. %s "+
			"근거는 [1], [2]처럼 본문에 인라인으로 표시하세요. "+
			"문맥에 답이 없으면 \"%s\"라고 하세요.\n"+
			"이 질문은 조선왕조실록에 관한 검색/질의입니다.\n"+
			"%s%s%s%s\n문맥:\n%s\n\n질문: %s",
		baseInstruction, NotFoundMsg, compare, relax, guidance, schemaInstruction,
		strings.Join(ctxBlocks, ""), q)

	out, err := llm.Complete(ctx, prompt)
	if err != nil {
		return Action{}
	}
	obj := jsonx.Object(out)
	a := Action{
		Kind:            jsonx.StringField(obj, "action"),
		Answer:          jsonx.StringField(obj, "answer"),
		Query:           jsonx.StringField(obj, "query"),
		Reason:          jsonx.StringField(obj, "reason"),
		Message:         jsonx.StringField(obj, "message"),
		EvidenceFound:   jsonx.StringListField(obj, "evidence_found"),
		EvidenceMissing: jsonx.StringListField(obj, "evidence_missing"),
	}
	if v, ok := obj["confidence"].(float64); ok {
		a.Confidence = v
	}
	return a
}

// VerifyAnswer checks whether answer is adequately supported by ctx.
// Any call failure is treated as supported (matching the original's
// fail-open behavior, since a broken verifier should not loop forever).
func VerifyAnswer(ctx context.Context, llm provider.LLM, q string, ctxBlocks []string, answer string) (supported bool, missing string) {
	prompt := fmt.Sprintf(
		"답변이 문맥에 의해 충분히 뒷받침되는지 확인하세요. "+
			"JSON으로 반환: {\"supported\": true/false, \"missing\": \"...\"}.\n"+
			"이 질문은 조선왕조실록에 관한 검색/질의입니다.\n\n"+
			"질문: %s\n\n문맥:\n%s\n\n답변: %s", q, strings.Join(ctxBlocks, ""), answer)

	out, err := llm.Complete(ctx, prompt)
	if err != nil {
		return true, ""
	}
	obj := jsonx.Object(out)
	return jsonx.BoolField(obj, "supported"), strings.TrimSpace(jsonx.StringField(obj, "missing"))
}

// RefineQuery rewrites q to target missing evidence. Empty missing or
// any call failure yields "" (caller should treat that as "no refinement
// available" and fall back to its own default).
func RefineQuery(ctx context.Context, llm provider.LLM, q, missing string) string {
	if missing == "" {
		return ""
	}
	prompt := fmt.Sprintf(
		"부족한 정보를 겨냥하도록 질문을 다시 작성하세요. "+
			"개선된 단일 질의를 반환하세요.\n"+
			"이 질문은 조선왕조실록에 관한 검색/질의입니다.\n\n"+
			"원본 질문: %s\n부족한 정보: %s", q, missing)
	out, err := llm.Complete(ctx, prompt)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}
