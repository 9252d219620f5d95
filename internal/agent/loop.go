// Package agent implements the bounded multi-round plan -> retrieve ->
// rerank -> answer_or_request -> verify -> refine loop, accumulating a
// growing doc context with stable display indices across rounds.
package agent

import (
	"context"
	"log/slog"
	"strings"

	ctxfmt "github.com/joseon-annals/rag-service/internal/context"
	"github.com/joseon-annals/rag-service/internal/model"
	"github.com/joseon-annals/rag-service/internal/planner"
	"github.com/joseon-annals/rag-service/internal/provider"
	"github.com/joseon-annals/rag-service/internal/query"
	"github.com/joseon-annals/rag-service/internal/rerank"
	"github.com/joseon-annals/rag-service/internal/retrieval"
	"github.com/joseon-annals/rag-service/internal/retrieval/bm25"
	"github.com/joseon-annals/rag-service/internal/store"
)

// Deps bundles the collaborators the loop calls through. Embedder
// should already be a cache.CachedEmbedder when process-lifetime
// memoization is wanted; the loop itself has no cache dependency.
type Deps struct {
	Store    *store.Store
	Embedder provider.Embedder
	LLM      provider.LLM
	Rerank   bool // when false, skip the LLM reranker and keep prerank order
}

// DocPayload is the per-doc shape emitted in a docs event.
type DocPayload struct {
	Index    int
	Title    string
	Link     string
	Text     string
	Meta     string
	RRFScore *float64
	SimScore *float64
}

// Result is the outcome of a completed loop run.
type Result struct {
	FinalAnswer string
	DocContext  *DocContext
	Rounds      int
	LastMode    string
	LastAction  string

	// Filters, MetaOnly, Queries and FinalIDs mirror the last round's
	// planning state, kept around for query-log entries.
	Filters  query.FilterSet
	MetaOnly bool
	Queries  []string
	FinalIDs []int
}

// DocsCallback is invoked once per round with the cumulative doc set.
type DocsCallback func(round int, docs []DocPayload)

// Run executes the bounded agent loop for query against deps, invoking
// onDocs once per round with the cumulative accumulated doc context.
// relaxContext, when true, breaks the loop after the first answer
// attempt without running the verify/refine step (the model is
// instructed to mark out-of-context content as inferred instead).
func Run(ctx context.Context, deps Deps, rawQuery string, relaxContext bool, onDocs DocsCallback) Result {
	cleanQuery, metaOnly := query.ParseMetaOnly(rawQuery)
	cleanQuery, filters := query.ParseFilters(cleanQuery)
	allowed := query.AllowedDocIDs(deps.Store.Docs, filters)

	docCtx := NewDocContext()
	refinedQ := ""
	finalAnswer := ""
	lastAction := ""
	mode := "other"
	round := 0
	var lastQueries []string
	var lastFinalIDs []int

	for round = 0; round < MaxRounds; round++ {
		mode = planner.ClassifyQuery(ctx, deps.LLM, cleanQuery)
		queries := planner.BuildQueries(ctx, deps.LLM, cleanQuery, mode, refinedQ)
		lastQueries = queries

		var indices []store.NamedIndex
		var bmStore *bm25.Store
		var weights retrieval.ChannelWeights
		if metaOnly {
			if deps.Store.Title != nil {
				indices = []store.NamedIndex{{Name: "title", Index: deps.Store.Title}}
			}
			bmStore = deps.Store.BM25Title
			weights = planner.MetaOnlyWeights()
		} else {
			indices = deps.Store.Indices()
			bmStore = deps.Store.BM25
			weights = planner.RouteWeights(mode)
		}

		fused, err := retrieval.MultiSearch(ctx, deps.Embedder, indices, bmStore, queries, TopKRetrieve, weights, allowed, TopKFinal*CandidateCapMult)
		if err != nil {
			slog.Error("[AGENT] retrieval failed", "round", round, "err", err)
			break
		}

		cand := retrieval.LexicalPrerank(cleanQuery, deps.Store.Docs, fused.Candidates, bmStore, PreRerankTopK)

		var finalIDs []int
		if deps.Rerank {
			finalIDs = rerank.Rerank(ctx, deps.LLM, cleanQuery, deps.Store.Docs, cand, TopKFinal)
		} else {
			finalIDs = truncateIDs(cand, TopKFinal)
		}
		lastFinalIDs = finalIDs

		docCtx.Merge(finalIDs, fused.Scores, fused.Sims)

		if onDocs != nil {
			onDocs(round, buildDocsPayload(docCtx, deps.Store.Docs))
		}

		ctxBlocks := buildContextBlocks(docCtx, deps.Store.Docs)

		resp := AnswerOrRequest(ctx, deps.LLM, rawQuery, ctxBlocks, round < MaxRounds-1, relaxContext, mode)
		lastAction = resp.Kind

		if resp.Kind == "search_more" {
			refinedQ = strings.TrimSpace(resp.Query)
			if refinedQ == "" {
				refinedQ = RefineQuery(ctx, deps.LLM, cleanQuery, "more specific evidence")
			}
			continue
		}
		if resp.Kind == "need_config" {
			finalAnswer = strings.TrimSpace(resp.Message)
			if finalAnswer == "" {
				finalAnswer = "Configuration change needed."
			}
			break
		}
		if resp.Kind != "answer" {
			finalAnswer = resp.Answer
			if finalAnswer == "" {
				finalAnswer = NotFoundMsg
			}
		} else {
			finalAnswer = resp.Answer
		}

		evidenceBlock := ctxfmt.EvidenceBlock(resp.EvidenceFound, resp.EvidenceMissing)
		if evidenceBlock != "" && !strings.Contains(finalAnswer, evidenceBlock) {
			finalAnswer += evidenceBlock
		}

		if relaxContext {
			break
		}
		supported, missing := VerifyAnswer(ctx, deps.LLM, rawQuery, ctxBlocks, finalAnswer)
		if supported {
			break
		}
		refinedQ = RefineQuery(ctx, deps.LLM, cleanQuery, missing)
	}

	if docCtx.Len() == 0 && finalAnswer == "" {
		finalAnswer = NotFoundMsg
	}

	return Result{
		FinalAnswer: finalAnswer,
		DocContext:  docCtx,
		Rounds:      round,
		LastMode:    mode,
		LastAction:  lastAction,
		Filters:     filters,
		MetaOnly:    metaOnly,
		Queries:     lastQueries,
		FinalIDs:    lastFinalIDs,
	}
}

func truncateIDs(ids []int, topK int) []int {
	if topK < len(ids) {
		return ids[:topK]
	}
	return ids
}

func buildContextBlocks(docCtx *DocContext, docs []model.Doc) []string {
	order := docCtx.Order()
	blocks := make([]string, 0, len(order))
	for _, id := range order {
		idx, _ := docCtx.DisplayIndex(id)
		blocks = append(blocks, ctxfmt.BuildBlock(idx, docs[id]))
	}
	return blocks
}

func buildDocsPayload(docCtx *DocContext, docs []model.Doc) []DocPayload {
	order := docCtx.Order()
	out := make([]DocPayload, 0, len(order))
	for _, id := range order {
		idx, _ := docCtx.DisplayIndex(id)
		d := docs[id]
		text := ctxfmt.Truncate(d.Text, ctxfmt.DocCharLimit)
		payload := DocPayload{
			Index: idx,
			Title: d.Title,
			Link:  d.Link,
			Text:  text,
			Meta:  ctxfmt.FormatMeta(d),
		}
		if v, ok := docCtx.RRFScore(id); ok {
			payload.RRFScore = &v
		}
		if v, ok := docCtx.SimScore(id); ok {
			payload.SimScore = &v
		}
		out = append(out, payload)
	}
	return out
}
