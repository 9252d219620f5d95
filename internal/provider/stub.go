package provider

import (
	"context"
	"strings"
)

// StubEmbedder returns deterministic vectors from a fixed lookup table
// for use in package tests that need a reproducible Embedder.
type StubEmbedder struct {
	Vectors map[string][]float32
	Default []float32
}

func (s *StubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := s.Vectors[t]; ok {
			out[i] = v
			continue
		}
		out[i] = s.Default
	}
	return out, nil
}

// StubLLM returns canned responses for deterministic tests. When
// ByPrompt is set, each prompt is checked in order against its keys (the
// first substring match wins) before falling back to the Responses
// queue consumed in call order, then finally Default once exhausted.
// ByPrompt lets multi-call flows (classify, then several query
// expansions, then answer) be scripted without depending on exact call
// ordering inside a collaborator package.
type StubLLM struct {
	Responses []string
	ByPrompt  []PromptResponse
	Default   string
	calls     int
}

// PromptResponse pairs a substring match against the prompt with the
// text StubLLM.Complete should return for it.
type PromptResponse struct {
	Contains string
	Response string
}

func (s *StubLLM) Complete(_ context.Context, prompt string) (string, error) {
	s.calls++
	for _, pr := range s.ByPrompt {
		if pr.Contains != "" && strings.Contains(prompt, pr.Contains) {
			return pr.Response, nil
		}
	}
	if s.calls-1 < len(s.Responses) {
		return s.Responses[s.calls-1], nil
	}
	return s.Default, nil
}

// Calls reports how many times Complete has been invoked.
func (s *StubLLM) Calls() int { return s.calls }
