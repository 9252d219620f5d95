package agent

// Tuning constants shared by the agent loop and its collaborators,
// matching the corpus's reference constants exactly.
const (
	TopKRetrieve     = 60
	TopKFinal        = 8
	MaxRounds        = 3
	MaxCtxDocs       = 24
	PreRerankTopK    = 64
	CandidateCapMult = 12 // candidate pool cap is max(topK, TopKFinal*CandidateCapMult)
)

// NotFoundMsg is returned verbatim whenever the loop exhausts its rounds
// without committing to an answer or retrieving any context at all.
const NotFoundMsg = "제공된 데이터로는 답을 확정하기 어렵습니다. " +
	"더 가져오고 싶어도 과도한 확장은 RAG의 본질적 한계와 맞닿아 있어, " +
	"현 시점에선 확답이 어렵습니다."
