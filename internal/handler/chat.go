package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/joseon-annals/rag-service/internal/agent"
	"github.com/joseon-annals/rag-service/internal/middleware"
	"github.com/joseon-annals/rag-service/internal/provider"
	"github.com/joseon-annals/rag-service/internal/store"
)

// ChatRequest is the request body for the chat endpoint.
type ChatRequest struct {
	Query         string `json:"query"`
	ConversationID string `json:"conversation_id,omitempty"`
	RelaxContext  bool   `json:"relax_context,omitempty"`
}

// ChatDeps bundles the collaborators the chat handler needs.
type ChatDeps struct {
	Store    *store.Store
	Embedder provider.Embedder
	LLM      provider.LLM
	Rerank   bool
	Metrics  *middleware.Metrics // optional
}

type docsEvent struct {
	Type      string      `json:"type"`
	Documents []docPayload `json:"documents"`
}

type docPayload struct {
	Index    int      `json:"index"`
	Title    string   `json:"title"`
	Link     string   `json:"link"`
	Text     string   `json:"text"`
	Meta     string   `json:"meta"`
	RRFScore *float64 `json:"rrf_score,omitempty"`
	SimScore *float64 `json:"sim_score,omitempty"`
}

type tokenEvent struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type doneEvent struct {
	Type       string `json:"type"`
	FullAnswer string `json:"full_answer"`
}

const tokenChunkSize = 3
const tokenPaceDelay = 20 * time.Millisecond

// Chat returns an SSE streaming handler implementing the query/agentic
// retrieval loop over the Joseon Annals corpus.
// POST /api/chat
func Chat(deps ChatDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Query == "" {
			http.Error(w, "query is required", http.StatusBadRequest)
			return
		}

		conversationID := req.ConversationID
		if conversationID == "" {
			conversationID = uuid.NewString()
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.Header().Set("X-Conversation-Id", conversationID)

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}

		start := time.Now()
		agentDeps := agent.Deps{Store: deps.Store, Embedder: deps.Embedder, LLM: deps.LLM, Rerank: deps.Rerank}

		onDocs := func(round int, docs []agent.DocPayload) {
			payload := make([]docPayload, len(docs))
			for i, d := range docs {
				payload[i] = docPayload{
					Index: d.Index, Title: d.Title, Link: d.Link, Text: d.Text, Meta: d.Meta,
					RRFScore: d.RRFScore, SimScore: d.SimScore,
				}
			}
			evt := docsEvent{Type: "docs", Documents: payload}
			data, _ := json.Marshal(evt)
			sendEvent(w, flusher, string(data))
		}

		result := agent.Run(r.Context(), agentDeps, req.Query, req.RelaxContext, onDocs)

		answerRunes := []rune(result.FinalAnswer)
		for i := 0; i < len(answerRunes); i += tokenChunkSize {
			end := i + tokenChunkSize
			if end > len(answerRunes) {
				end = len(answerRunes)
			}
			chunk := string(answerRunes[i:end])
			data, _ := json.Marshal(tokenEvent{Type: "token", Content: chunk})
			sendEvent(w, flusher, string(data))
			time.Sleep(tokenPaceDelay)
		}

		if result.FinalAnswer == agent.NotFoundMsg && deps.Metrics != nil {
			deps.Metrics.IncrementNotFoundTrigger()
		}

		done, _ := json.Marshal(doneEvent{Type: "done", FullAnswer: result.FinalAnswer})
		sendEvent(w, flusher, string(done))

		slog.Info("chat query complete",
			"conversation_id", conversationID,
			"rounds", result.Rounds,
			"mode", result.LastMode,
			"action", result.LastAction,
			"docs", result.DocContext.Len(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}

// sendEvent writes a single SSE data-only event.
func sendEvent(w http.ResponseWriter, f http.Flusher, data string) {
	fmt.Fprintf(w, "data: %s\n\n", data)
	f.Flush()
}
