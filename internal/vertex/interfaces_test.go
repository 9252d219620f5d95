package vertex

import "github.com/joseon-annals/rag-service/internal/provider"

var (
	_ provider.Embedder = (*EmbeddingAdapter)(nil)
	_ provider.LLM      = (*GenAIAdapter)(nil)
)
