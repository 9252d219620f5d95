// Package provider declares the capability interfaces the retrieval and
// agent packages call through, so the embedding and chat-completion
// services stay swappable opaque collaborators — never imported
// directly by the algorithmic packages.
package provider

import "context"

// Embedder turns a batch of strings into embedding vectors. Implementations
// are responsible for any normalization their backing model expects;
// callers L2-normalize the result themselves (see internal/retrieval/dense.Normalize).
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// LLM completes a single prompt and returns raw text. Callers are
// responsible for tolerant JSON extraction from the response.
type LLM interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
