// Package cmd provides the ragquery CLI command tree.
package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseon-annals/rag-service/internal/agent"
	"github.com/joseon-annals/rag-service/internal/cache"
	"github.com/joseon-annals/rag-service/internal/config"
	"github.com/joseon-annals/rag-service/internal/store"
	"github.com/joseon-annals/rag-service/internal/vertex"
)

type replOptions struct {
	storeDir     string
	hideDocs     bool
	noRerank     bool
	relaxContext bool
}

// NewRootCmd builds the ragquery root command: a single REPL over the
// built retrieval store.
func NewRootCmd() *cobra.Command {
	var opts replOptions

	root := &cobra.Command{
		Use:   "ragquery",
		Short: "Interactive query REPL over the Annals hybrid retrieval store",
		Long: `ragquery loads a built retrieval store and runs the same
plan -> retrieve -> rerank -> answer -> verify -> refine loop the chat
server runs, printing retrieved documents and the final answer and
appending one JSON line per query to <store-dir>/logs/query_log.jsonl.

Type a blank line to exit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd.Context(), opts)
		},
	}

	root.Flags().StringVar(&opts.storeDir, "store-dir", "", "path to the built retrieval store (default: $STORE_DIR or ./rag_store)")
	root.Flags().BoolVar(&opts.hideDocs, "hide-docs", false, "don't print retrieved documents before the answer")
	root.Flags().BoolVar(&opts.noRerank, "no-rerank", false, "skip the LLM reranker and keep lexical prerank order")
	root.Flags().BoolVar(&opts.relaxContext, "relax-context", false, "prefer (not restrict to) the retrieved context and skip verify/refine once the model answers")

	return root
}

// Execute runs the ragquery root command.
func Execute() error {
	return NewRootCmd().ExecuteContext(context.Background())
}

func runREPL(ctx context.Context, opts replOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	storeDir := cfg.StoreDir
	if opts.storeDir != "" {
		storeDir = opts.storeDir
	}

	st, err := store.Load(storeDir)
	if err != nil {
		return fmt.Errorf("store.Load: %w", err)
	}

	embedAdapter, err := vertex.NewEmbeddingAdapter(ctx, cfg.GCPProject, cfg.EmbeddingLocation, cfg.EmbeddingModel)
	if err != nil {
		return fmt.Errorf("vertex.NewEmbeddingAdapter: %w", err)
	}
	llmAdapter, err := vertex.NewGenAIAdapter(ctx, cfg.GCPProject, cfg.VertexAILocation, cfg.VertexAIModel)
	if err != nil {
		return fmt.Errorf("vertex.NewGenAIAdapter: %w", err)
	}
	defer llmAdapter.Close()

	deps := agent.Deps{
		Store:    st,
		Embedder: &cache.CachedEmbedder{Cache: cache.NewEmbeddingCache(), Embedder: embedAdapter},
		LLM:      llmAdapter,
		Rerank:   cfg.RerankEnabled && !opts.noRerank,
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("Query> ")
		if !scanner.Scan() {
			break
		}
		rawQuery := strings.TrimSpace(scanner.Text())
		if rawQuery == "" {
			break
		}

		var lastDocs []agent.DocPayload
		onDocs := func(round int, docs []agent.DocPayload) { lastDocs = docs }

		result := agent.Run(ctx, deps, rawQuery, opts.relaxContext, onDocs)

		if !opts.hideDocs {
			printDocs(lastDocs)
		}

		if result.DocContext.Len() == 0 {
			fmt.Println(result.FinalAnswer)
			logQuery(storeDir, map[string]any{
				"query":     rawQuery,
				"action":    "no_context",
				"meta_only": result.MetaOnly,
			})
			continue
		}

		if strings.Contains(result.FinalAnswer, agent.NotFoundMsg) {
			fmt.Println(agent.NotFoundMsg)
		} else {
			fmt.Println(result.FinalAnswer)
		}

		action := result.LastAction
		if action == "" {
			action = "answer"
		}
		logQuery(storeDir, map[string]any{
			"query":     rawQuery,
			"filters":   result.Filters,
			"meta_only": result.MetaOnly,
			"mode":      result.LastMode,
			"queries":   result.Queries,
			"final_ids": result.FinalIDs,
			"action":    action,
			"answer":    result.FinalAnswer,
			"ctx_count": result.DocContext.Len(),
		})
	}

	return nil
}

func printDocs(docs []agent.DocPayload) {
	if len(docs) == 0 {
		return
	}
	fmt.Println("\n--- Retrieved docs ---")
	for _, d := range docs {
		title := strings.TrimSpace(d.Title)
		if title == "" {
			title = "(no title)"
		}
		var rrf, sim float64
		if d.RRFScore != nil {
			rrf = *d.RRFScore
		}
		if d.SimScore != nil {
			sim = *d.SimScore
		}
		fmt.Printf("\n[%d] %s\n", d.Index, title)
		metaLine := fmt.Sprintf("rrf=%.4f sim=%.4f", rrf, sim)
		if d.Meta != "" {
			metaLine += fmt.Sprintf(" meta=(%s)", d.Meta)
		}
		fmt.Println(metaLine)
		if d.Link != "" {
			fmt.Printf("link: %s\n", d.Link)
		}
		fmt.Println(d.Text)
	}
	fmt.Println("\n--- End docs ---")
}

// logQuery appends one JSON line to <storeDir>/logs/query_log.jsonl. entry
// carries only the fields relevant to the branch that produced it,
// matching the original query-log's loosely-shaped event records.
func logQuery(storeDir string, entry map[string]any) {
	dir := filepath.Join(storeDir, "logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "query log: %v\n", err)
		return
	}
	entry["ts"] = float64(time.Now().UnixNano()) / 1e9

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "query log: %v\n", err)
		return
	}

	f, err := os.OpenFile(filepath.Join(dir, "query_log.jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "query log: %v\n", err)
		return
	}
	defer f.Close()
	f.Write(append(data, '\n'))
}
